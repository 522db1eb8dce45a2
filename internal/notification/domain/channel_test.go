package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
)

func validChannelConfig() *ChannelConfig {
	return &ChannelConfig{
		ID:          uuid.Must(uuid.NewV7()),
		StoreCode:   "S1",
		OrderType:   "dine_in",
		ChannelType: ChannelWeComBot,
		Config: map[string]any{
			"webhook_url": "https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=abc",
			"mention_all": true,
		},
		Enabled: true,
	}
}

func TestChannelConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validChannelConfig().Validate())
	})

	tests := []struct {
		name   string
		mutate func(c *ChannelConfig)
	}{
		{"empty store code", func(c *ChannelConfig) { c.StoreCode = "" }},
		{"blank store code", func(c *ChannelConfig) { c.StoreCode = "   " }},
		{"empty order type", func(c *ChannelConfig) { c.OrderType = "" }},
		{"unrecognized channel type", func(c *ChannelConfig) { c.ChannelType = "carrier_pigeon" }},
		{"nil payload", func(c *ChannelConfig) { c.Config = nil }},
		{"payload missing webhook url", func(c *ChannelConfig) { c.Config = map[string]any{"mention_all": true} }},
		{"payload webhook url not http", func(c *ChannelConfig) {
			c.Config = map[string]any{"webhook_url": "ftp://example.com"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validChannelConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestDecodeWeComBotConfig(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		cfg, err := DecodeWeComBotConfig(map[string]any{
			"webhook_url": "https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=abc",
			"mention_all": true,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=abc", cfg.WebhookURL)
		assert.True(t, cfg.MentionAll)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		cfg, err := DecodeWeComBotConfig(map[string]any{
			"webhook_url": "https://example.com/hook",
			"color":       "red",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/hook", cfg.WebhookURL)
	})

	t.Run("missing webhook url", func(t *testing.T) {
		cfg, err := DecodeWeComBotConfig(map[string]any{})
		assert.Nil(t, cfg)
		assert.Error(t, err)
	})
}

func TestDecodeTemplateMessageConfig(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		cfg, err := DecodeTemplateMessageConfig(map[string]any{
			"endpoint":    "https://api.example.com/template/send",
			"template_id": "TPL-1",
			"to_user":     "ops-team",
		})
		require.NoError(t, err)
		assert.Equal(t, "TPL-1", cfg.TemplateID)
	})

	t.Run("missing template id", func(t *testing.T) {
		_, err := DecodeTemplateMessageConfig(map[string]any{
			"endpoint": "https://api.example.com/template/send",
			"to_user":  "ops-team",
		})
		assert.Error(t, err)
	})
}

func TestDecodeVoiceSpeakerConfig(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		cfg, err := DecodeVoiceSpeakerConfig(map[string]any{
			"endpoint":  "https://speaker.example.com/broadcast",
			"device_id": "spk-42",
			"volume":    80,
		})
		require.NoError(t, err)
		assert.Equal(t, "spk-42", cfg.DeviceID)
		assert.Equal(t, 80, cfg.Volume)
	})

	t.Run("volume out of range", func(t *testing.T) {
		_, err := DecodeVoiceSpeakerConfig(map[string]any{
			"endpoint":  "https://speaker.example.com/broadcast",
			"device_id": "spk-42",
			"volume":    150,
		})
		assert.Error(t, err)
	})
}

func TestChannelType_Valid(t *testing.T) {
	assert.True(t, ChannelWeComBot.Valid())
	assert.True(t, ChannelTemplateMessage.Valid())
	assert.True(t, ChannelVoiceSpeaker.Valid())
	assert.False(t, ChannelType("sms").Valid())
}
