package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// VoiceSpeakerStrategy delivers notifications as playback commands to an
// in-store cloud speaker gateway.
type VoiceSpeakerStrategy struct {
	client *http.Client
}

// NewVoiceSpeakerStrategy creates a VoiceSpeakerStrategy.
func NewVoiceSpeakerStrategy(timeout time.Duration) *VoiceSpeakerStrategy {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &VoiceSpeakerStrategy{client: &http.Client{Timeout: timeout}}
}

// ChannelType implements Strategy.
func (s *VoiceSpeakerStrategy) ChannelType() domain.ChannelType {
	return domain.ChannelVoiceSpeaker
}

// voiceSpeakerRequest is the speaker gateway request body.
type voiceSpeakerRequest struct {
	DeviceID string `json:"device_id"`
	Volume   int    `json:"volume"`
	Text     string `json:"text"`
}

// Send implements Strategy.
func (s *VoiceSpeakerStrategy) Send(ctx context.Context, payload Payload) (*SendResult, error) {
	result := &SendResult{}

	cfg, err := domain.DecodeVoiceSpeakerConfig(payload.Config.Config)
	if err != nil {
		return result, apperrors.Wrap(err, "invalid voice_speaker config")
	}

	reqBody := voiceSpeakerRequest{
		DeviceID: cfg.DeviceID,
		Volume:   cfg.Volume,
		Text:     renderSpeakerText(payload),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return result, apperrors.Wrap(err, "failed to marshal speaker command")
	}
	result.RequestSnapshot = string(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return result, apperrors.Wrap(err, "failed to build speaker request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return result, apperrors.Wrap(err, "speaker request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	result.ResponseSnapshot = string(respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, apperrors.New(fmt.Sprintf("speaker gateway returned status %d", resp.StatusCode))
	}

	return result, nil
}

// renderSpeakerText builds the spoken announcement for the event.
func renderSpeakerText(payload Payload) string {
	return fmt.Sprintf(
		"%s, order %s, amount %s",
		eventLabel(payload.Event.Event),
		payload.Order.OrderID,
		formatAmount(payload.Order.PayAmount),
	)
}
