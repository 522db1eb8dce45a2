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

// TemplateMessageStrategy delivers notifications through a template message
// gateway (e.g. a WeChat template push relay). The gateway endpoint and
// template binding come from the merchant's channel configuration.
type TemplateMessageStrategy struct {
	client *http.Client
}

// NewTemplateMessageStrategy creates a TemplateMessageStrategy.
func NewTemplateMessageStrategy(timeout time.Duration) *TemplateMessageStrategy {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TemplateMessageStrategy{client: &http.Client{Timeout: timeout}}
}

// ChannelType implements Strategy.
func (s *TemplateMessageStrategy) ChannelType() domain.ChannelType {
	return domain.ChannelTemplateMessage
}

// templateMessageRequest is the gateway request body.
type templateMessageRequest struct {
	TemplateID string            `json:"template_id"`
	ToUser     string            `json:"to_user"`
	Data       map[string]string `json:"data"`
}

// templateMessageResponse is the gateway response body.
type templateMessageResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

// Send implements Strategy.
func (s *TemplateMessageStrategy) Send(ctx context.Context, payload Payload) (*SendResult, error) {
	result := &SendResult{}

	cfg, err := domain.DecodeTemplateMessageConfig(payload.Config.Config)
	if err != nil {
		return result, apperrors.Wrap(err, "invalid template_message config")
	}

	order := payload.Order
	reqBody := templateMessageRequest{
		TemplateID: cfg.TemplateID,
		ToUser:     cfg.ToUser,
		Data: map[string]string{
			"event":      eventLabel(payload.Event.Event),
			"store_name": order.StoreName,
			"order_id":   order.OrderID,
			"amount":     formatAmount(order.PayAmount),
			"status":     order.Status,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return result, apperrors.Wrap(err, "failed to marshal template message")
	}
	result.RequestSnapshot = string(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return result, apperrors.Wrap(err, "failed to build template message request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return result, apperrors.Wrap(err, "template message request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	result.ResponseSnapshot = string(respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, apperrors.New(fmt.Sprintf("template message gateway returned status %d", resp.StatusCode))
	}

	var tr templateMessageResponse
	if err := json.Unmarshal(respBody, &tr); err == nil {
		result.MessageID = tr.MessageID
		if tr.Error != "" {
			return result, apperrors.New("template message gateway rejected message: " + tr.Error)
		}
	}

	return result, nil
}
