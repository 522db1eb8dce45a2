package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapan1908/notification-service/internal/notification/domain"
)

func newTestClient(baseURL string) *OrderAPIClient {
	return NewOrderAPIClient(OrderAPIClientConfig{
		BaseURL:      baseURL,
		DefaultToken: "default-token",
		Timeout:      2 * time.Second,
	})
}

func TestOrderAPIClient_GetOrder(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/ORD-1001", r.URL.Path)
		assert.Equal(t, "S1", r.URL.Query().Get("store_code"))
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"order_id": "ORD-1001",
			"store_code": "S1",
			"store_name": "Main Street",
			"order_type": "dine_in",
			"status": "paid",
			"total_amount": 2500,
			"pay_amount": 2500,
			"items": [{"name": "Noodles", "quantity": 2, "price": 1250}],
			"created_at": 1756500000000,
			"paid_at": 1756500060000
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	order, err := client.GetOrder(context.Background(), "S1", "ORD-1001", "event-token")
	require.NoError(t, err)

	assert.Equal(t, "Bearer event-token", gotAuth)
	assert.Equal(t, "ORD-1001", order.OrderID)
	assert.Equal(t, "S1", order.StoreCode)
	assert.Equal(t, int64(2500), order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Noodles", order.Items[0].Name)
}

func TestOrderAPIClient_GetOrder_DefaultToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order_id": "ORD-1001", "store_code": "S1"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetOrder(context.Background(), "S1", "ORD-1001", "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer default-token", gotAuth)
}

func TestOrderAPIClient_GetOrder_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "order not found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	order, err := client.GetOrder(context.Background(), "S1", "ORD-9999", "")
	require.Error(t, err)
	assert.Nil(t, order)

	var apiErr *domain.OrderAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
	assert.True(t, apiErr.Definitive())
	assert.Contains(t, apiErr.Body, "order not found")
}

func TestOrderAPIClient_GetOrder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetOrder(context.Background(), "S1", "ORD-1001", "")
	require.Error(t, err)

	var apiErr *domain.OrderAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.False(t, apiErr.Definitive())
}

func TestOrderAPIClient_GetOrder_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetOrder(context.Background(), "S1", "ORD-1001", "")
	assert.Error(t, err)
	assert.False(t, domain.IsCritical(err))
}

func TestOrderAPIClient_CheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	assert.NoError(t, client.CheckHealth(context.Background()))
}

func TestOrderAPIClient_CheckHealth_Unhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.CheckHealth(context.Background())
	require.Error(t, err)

	var apiErr *domain.OrderAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestOrderAPIClient_CheckHealth_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	assert.Error(t, client.CheckHealth(context.Background()))
}

func TestOrderAPIClient_GetOrder_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.GetOrder(ctx, "S1", "ORD-1001", "")
	assert.Error(t, err)
}
