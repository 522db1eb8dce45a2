package domain

import (
	"encoding/json"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	appValidation "github.com/mapan1908/notification-service/internal/validation"
)

// ChannelType identifies a delivery channel implementation. The set is
// closed; adding a channel means adding one constant, one config schema and
// one strategy registration.
type ChannelType string

const (
	ChannelWeComBot        ChannelType = "wecom_bot"
	ChannelTemplateMessage ChannelType = "template_message"
	ChannelVoiceSpeaker    ChannelType = "voice_speaker"
)

// Valid reports whether the channel type is a recognized variant.
func (c ChannelType) Valid() bool {
	switch c {
	case ChannelWeComBot, ChannelTemplateMessage, ChannelVoiceSpeaker:
		return true
	}
	return false
}

// ChannelConfig is one per-merchant, per-order-type, per-channel-type
// delivery configuration. Config is an opaque payload validated against the
// channel type's schema before use; multiple enabled configurations may match
// one event (fan-out to several channels).
type ChannelConfig struct {
	ID          uuid.UUID
	StoreCode   string
	OrderType   string
	ChannelType ChannelType
	Config      map[string]any
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the channel configuration record, including the
// channel-type-specific payload schema.
func (c *ChannelConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.StoreCode,
			validation.Required.Error("store code is required"),
			appValidation.NotBlank,
			validation.Length(1, 64).Error("store code must be between 1 and 64 characters"),
		),
		validation.Field(&c.OrderType,
			validation.Required.Error("order type is required"),
			appValidation.NotBlank,
			validation.Length(1, 32).Error("order type must be between 1 and 32 characters"),
		),
		validation.Field(&c.ChannelType,
			validation.Required.Error("channel type is required"),
			validation.By(func(value interface{}) error {
				t, _ := value.(ChannelType)
				if !t.Valid() {
					return validation.NewError("validation_channel_type", "unrecognized channel type")
				}
				return nil
			}),
		),
		validation.Field(&c.Config,
			validation.Required.Error("channel config payload is required"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}

	// Validate the opaque payload against the per-type schema at the boundary.
	switch c.ChannelType {
	case ChannelWeComBot:
		_, err = DecodeWeComBotConfig(c.Config)
	case ChannelTemplateMessage:
		_, err = DecodeTemplateMessageConfig(c.Config)
	case ChannelVoiceSpeaker:
		_, err = DecodeVoiceSpeakerConfig(c.Config)
	}
	return err
}

// WeComBotConfig is the payload schema for the wecom_bot channel.
type WeComBotConfig struct {
	WebhookURL string `json:"webhook_url"`
	MentionAll bool   `json:"mention_all"`
}

// Validate validates the wecom_bot payload.
func (c *WeComBotConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.WebhookURL,
			validation.Required.Error("webhook_url is required"),
			appValidation.HTTPURL,
		),
	)
	return appValidation.WrapValidationError(err)
}

// TemplateMessageConfig is the payload schema for the template_message channel.
type TemplateMessageConfig struct {
	Endpoint   string `json:"endpoint"`
	TemplateID string `json:"template_id"`
	ToUser     string `json:"to_user"`
}

// Validate validates the template_message payload.
func (c *TemplateMessageConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Endpoint,
			validation.Required.Error("endpoint is required"),
			appValidation.HTTPURL,
		),
		validation.Field(&c.TemplateID,
			validation.Required.Error("template_id is required"),
			appValidation.NotBlank,
		),
		validation.Field(&c.ToUser,
			validation.Required.Error("to_user is required"),
			appValidation.NotBlank,
		),
	)
	return appValidation.WrapValidationError(err)
}

// VoiceSpeakerConfig is the payload schema for the voice_speaker channel.
type VoiceSpeakerConfig struct {
	Endpoint string `json:"endpoint"`
	DeviceID string `json:"device_id"`
	Volume   int    `json:"volume"`
}

// Validate validates the voice_speaker payload.
func (c *VoiceSpeakerConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Endpoint,
			validation.Required.Error("endpoint is required"),
			appValidation.HTTPURL,
		),
		validation.Field(&c.DeviceID,
			validation.Required.Error("device_id is required"),
			appValidation.NotBlank,
		),
		validation.Field(&c.Volume,
			validation.Min(0).Error("volume must not be negative"),
			validation.Max(100).Error("volume must not exceed 100"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// DecodeWeComBotConfig decodes and validates an opaque payload as a
// wecom_bot configuration.
func DecodeWeComBotConfig(payload map[string]any) (*WeComBotConfig, error) {
	var cfg WeComBotConfig
	if err := decodePayload(payload, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DecodeTemplateMessageConfig decodes and validates an opaque payload as a
// template_message configuration.
func DecodeTemplateMessageConfig(payload map[string]any) (*TemplateMessageConfig, error) {
	var cfg TemplateMessageConfig
	if err := decodePayload(payload, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DecodeVoiceSpeakerConfig decodes and validates an opaque payload as a
// voice_speaker configuration.
func DecodeVoiceSpeakerConfig(payload map[string]any) (*VoiceSpeakerConfig, error) {
	var cfg VoiceSpeakerConfig
	if err := decodePayload(payload, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodePayload round-trips the opaque map through JSON into the typed schema.
func decodePayload(payload map[string]any, target any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}
