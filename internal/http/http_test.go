package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/metrics"
	"github.com/mapan1908/notification-service/internal/notification/domain"
	"github.com/mapan1908/notification-service/internal/notification/usecase"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubConsumer struct {
	state    usecase.ConsumerState
	inFlight int64
}

func (s *stubConsumer) State() usecase.ConsumerState { return s.state }
func (s *stubConsumer) InFlight() int64              { return s.inFlight }

type stubHealth struct {
	healthy bool
}

func (s *stubHealth) IsHealthy(ctx context.Context) bool { return s.healthy }

type stubPending struct {
	count int64
	err   error
}

func (s *stubPending) PendingCount(ctx context.Context) (int64, error) { return s.count, s.err }

type stubChannelConfigUC struct {
	configs []*domain.ChannelConfig
	err     error
}

func (s *stubChannelConfigUC) Create(ctx context.Context, cfg *domain.ChannelConfig) (*domain.ChannelConfig, error) {
	return cfg, s.err
}

func (s *stubChannelConfigUC) ListByStore(ctx context.Context, storeCode string) ([]*domain.ChannelConfig, error) {
	return s.configs, s.err
}

type stubDeliveryLogUC struct {
	attempts []*domain.DeliveryAttempt
	err      error
}

func (s *stubDeliveryLogUC) ListByOrder(
	ctx context.Context,
	storeCode, orderID string,
	limit int,
) ([]*domain.DeliveryAttempt, error) {
	return s.attempts, s.err
}

// createTestServer creates a test server with a discarding logger and stub
// dependencies.
func createTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(
		"localhost", 8080, logger, false, "",
		&stubConsumer{state: usecase.ConsumerStateRunning, inFlight: 3},
		&stubHealth{healthy: true},
		&stubPending{count: 7},
		&stubChannelConfigUC{},
		&stubDeliveryLogUC{},
	)
}

func TestServer_HealthEndpoint(t *testing.T) {
	server := createTestServer()
	router := server.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestServer_StatusEndpoint(t *testing.T) {
	server := createTestServer()
	router := server.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "running", response["consumer_state"])
	assert.Equal(t, float64(3), response["in_flight"])
	assert.Equal(t, true, response["upstream_healthy"])
	assert.Equal(t, float64(7), response["pending"])
}

func TestServer_StatusEndpoint_PendingUnavailable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(
		"localhost", 8080, logger, false, "",
		&stubConsumer{state: usecase.ConsumerStatePausedUnhealthy},
		&stubHealth{healthy: false},
		&stubPending{err: apperrors.New("redis down")},
		&stubChannelConfigUC{},
		&stubDeliveryLogUC{},
	)
	router := server.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "paused_unhealthy", response["consumer_state"])
	assert.Equal(t, false, response["upstream_healthy"])
	assert.NotContains(t, response, "pending")
	assert.Contains(t, response, "pending_error")
}

func TestServer_ListChannelConfigs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Now().UTC()
	server := NewServer(
		"localhost", 8080, logger, false, "",
		&stubConsumer{}, &stubHealth{}, &stubPending{},
		&stubChannelConfigUC{configs: []*domain.ChannelConfig{{
			ID:          uuid.Must(uuid.NewV7()),
			StoreCode:   "S1",
			OrderType:   "dine_in",
			ChannelType: domain.ChannelWeComBot,
			Config:      map[string]any{"webhook_url": "https://example.com/hook"},
			Enabled:     true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}}},
		&stubDeliveryLogUC{},
	)
	router := server.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/channel-configs?store_code=S1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		ChannelConfigs []channelConfigResponse `json:"channel_configs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.ChannelConfigs, 1)
	assert.Equal(t, "S1", response.ChannelConfigs[0].StoreCode)
	assert.Equal(t, "wecom_bot", response.ChannelConfigs[0].ChannelType)
}

func TestServer_ListChannelConfigs_MissingStoreCode(t *testing.T) {
	server := createTestServer()
	router := server.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/channel-configs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ListDeliveryAttempts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(
		"localhost", 8080, logger, false, "",
		&stubConsumer{}, &stubHealth{}, &stubPending{},
		&stubChannelConfigUC{},
		&stubDeliveryLogUC{attempts: []*domain.DeliveryAttempt{{
			ID:          uuid.Must(uuid.NewV7()),
			OrderID:     "ORD-1001",
			StoreCode:   "S1",
			EventType:   domain.OrderPaid,
			ChannelType: domain.ChannelWeComBot,
			Status:      domain.DeliveryStatusSuccess,
			DurationMs:  42,
			CreatedAt:   time.Now().UTC(),
		}}},
	)
	router := server.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/delivery-attempts?store_code=S1&order_id=ORD-1001", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		DeliveryAttempts []deliveryAttemptResponse `json:"delivery_attempts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.DeliveryAttempts, 1)
	assert.Equal(t, "success", response.DeliveryAttempts[0].Status)
	assert.Equal(t, int64(42), response.DeliveryAttempts[0].DurationMs)
}

func TestServer_ListDeliveryAttempts_MissingParams(t *testing.T) {
	server := createTestServer()
	router := server.SetupRouter()

	for _, path := range []string{
		"/delivery-attempts",
		"/delivery-attempts?store_code=S1",
		"/delivery-attempts?order_id=ORD-1001",
		"/delivery-attempts?store_code=S1&order_id=ORD-1001&limit=-1",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestServer_NotFoundEndpoint(t *testing.T) {
	server := createTestServer()
	router := server.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDMiddleware_HeaderPresent(t *testing.T) {
	server := createTestServer()
	router := server.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	requestID := w.Header().Get("X-Request-Id")
	require.NotEmpty(t, requestID)
	parsed, err := uuid.Parse(requestID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, parsed)
}

func TestCustomLoggerMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetricsServer_Endpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, logger, provider)
	require.NotNil(t, metricsServer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsServer.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestServer_NoMetricsEndpoint(t *testing.T) {
	server := createTestServer()
	router := server.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
