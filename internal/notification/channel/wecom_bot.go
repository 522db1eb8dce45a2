package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// maxResponseBytes caps how much of a provider response body is retained for
// the audit snapshot.
const maxResponseBytes = 8 << 10

// WeComBotStrategy delivers notifications as markdown messages to WeCom group
// robot webhooks. Webhooks are rate limited per process; Send blocks on the
// limiter until the context expires.
type WeComBotStrategy struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewWeComBotStrategy creates a WeComBotStrategy with a per-minute message
// budget shared across all merchants served by this process.
func NewWeComBotStrategy(perMinute int, timeout time.Duration) *WeComBotStrategy {
	if perMinute <= 0 {
		perMinute = 20
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &WeComBotStrategy{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

// ChannelType implements Strategy.
func (s *WeComBotStrategy) ChannelType() domain.ChannelType {
	return domain.ChannelWeComBot
}

// wecomMessage is the webhook request body.
type wecomMessage struct {
	MsgType  string `json:"msgtype"`
	Markdown struct {
		Content string `json:"content"`
	} `json:"markdown"`
}

// wecomResponse is the webhook response body. Errcode zero means accepted.
type wecomResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Send implements Strategy.
func (s *WeComBotStrategy) Send(ctx context.Context, payload Payload) (*SendResult, error) {
	result := &SendResult{}

	cfg, err := domain.DecodeWeComBotConfig(payload.Config.Config)
	if err != nil {
		return result, apperrors.Wrap(err, "invalid wecom_bot config")
	}

	var msg wecomMessage
	msg.MsgType = "markdown"
	msg.Markdown.Content = renderWeComMarkdown(payload, cfg.MentionAll)

	body, err := json.Marshal(msg)
	if err != nil {
		return result, apperrors.Wrap(err, "failed to marshal wecom message")
	}
	result.RequestSnapshot = string(body)

	if err := s.limiter.Wait(ctx); err != nil {
		return result, apperrors.Wrap(err, "rate limit wait aborted")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return result, apperrors.Wrap(err, "failed to build wecom request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return result, apperrors.Wrap(err, "wecom request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	result.ResponseSnapshot = string(respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, apperrors.New(fmt.Sprintf("wecom webhook returned status %d", resp.StatusCode))
	}

	var wr wecomResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return result, apperrors.Wrap(err, "failed to decode wecom response")
	}
	if wr.ErrCode != 0 {
		return result, apperrors.New(fmt.Sprintf("wecom webhook returned errcode %d: %s", wr.ErrCode, wr.ErrMsg))
	}

	return result, nil
}

// renderWeComMarkdown builds the markdown notification content.
func renderWeComMarkdown(payload Payload, mentionAll bool) string {
	order := payload.Order

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", eventLabel(payload.Event.Event))
	fmt.Fprintf(&b, "> Store: **%s**\n", order.StoreName)
	fmt.Fprintf(&b, "> Order: **%s**\n", order.OrderID)
	if order.OrderType != "" {
		fmt.Fprintf(&b, "> Type: %s\n", order.OrderType)
	}
	fmt.Fprintf(&b, "> Amount: **%s**\n", formatAmount(order.PayAmount))
	if order.ContactName != "" {
		fmt.Fprintf(&b, "> Contact: %s %s\n", order.ContactName, order.ContactPhone)
	}
	for _, item := range order.Items {
		fmt.Fprintf(&b, "> - %s x%d\n", item.Name, item.Quantity)
	}
	if mentionAll {
		b.WriteString("<@all>")
	}
	return b.String()
}
