// Package service provides outbound integrations used by the notification
// use cases: the order API client and the channel delivery transports.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// maxErrorBodyBytes caps how much of an error response body is retained for
// diagnostics.
const maxErrorBodyBytes = 4 << 10

// OrderAPIClientConfig holds the settings for the order API client.
type OrderAPIClientConfig struct {
	// BaseURL is the root of the order API, without a trailing slash.
	BaseURL string
	// DefaultToken is the service-wide fallback bearer credential used when an
	// event carries no token of its own.
	DefaultToken string
	// Timeout is the per-call timeout.
	Timeout time.Duration
}

// OrderAPIClient fetches order snapshots from the upstream order API and
// probes its health endpoint.
type OrderAPIClient struct {
	baseURL      string
	defaultToken string
	client       *http.Client
}

// NewOrderAPIClient creates a new OrderAPIClient.
func NewOrderAPIClient(cfg OrderAPIClientConfig) *OrderAPIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &OrderAPIClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultToken: cfg.DefaultToken,
		client:       &http.Client{Timeout: timeout},
	}
}

// GetOrder fetches the order snapshot for (storeCode, orderID). The token, when
// non-empty, overrides the configured default credential for this call. Non-2xx
// responses are returned as *domain.OrderAPIError so callers can classify them.
func (c *OrderAPIClient) GetOrder(
	ctx context.Context,
	storeCode, orderID, token string,
) (*domain.OrderInfo, error) {
	endpoint := fmt.Sprintf(
		"%s/orders/%s?store_code=%s",
		c.baseURL,
		url.PathEscape(orderID),
		url.QueryEscape(storeCode),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build order request")
	}
	req.Header.Set("Accept", "application/json")
	if bearer := c.bearerToken(token); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "order request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &domain.OrderAPIError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var order domain.OrderInfo
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode order response")
	}

	return &order, nil
}

// CheckHealth probes the order API health endpoint. A nil return means the
// upstream answered with a 2xx status within the context deadline.
func (c *OrderAPIClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return apperrors.Wrap(err, "failed to build health request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, "health request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.OrderAPIError{StatusCode: resp.StatusCode}
	}

	return nil
}

// bearerToken picks the per-event token when present, falling back to the
// configured default.
func (c *OrderAPIClient) bearerToken(token string) string {
	if token != "" {
		return token
	}
	return c.defaultToken
}
