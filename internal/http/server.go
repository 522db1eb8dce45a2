package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/usecase"
)

// ConsumerStatus reports the ingestion loop's current condition.
type ConsumerStatus interface {
	State() usecase.ConsumerState
	InFlight() int64
}

// HealthReporter reports the upstream order API health verdict.
type HealthReporter interface {
	IsHealthy(ctx context.Context) bool
}

// PendingReporter reports the consumer group's unacknowledged backlog.
type PendingReporter interface {
	PendingCount(ctx context.Context) (int64, error)
}

// Server is the operational HTTP server. It never participates in message
// processing; losing it degrades observability only.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger

	corsEnabled       bool
	corsAllowOrigins  string
	metricsMiddleware gin.HandlerFunc

	consumer        ConsumerStatus
	healthGate      HealthReporter
	pending         PendingReporter
	channelConfigUC usecase.ChannelConfigUseCase
	deliveryLogUC   usecase.DeliveryLogUseCase
}

// NewServer creates the operational HTTP server.
func NewServer(
	host string,
	port int,
	logger *slog.Logger,
	corsEnabled bool,
	corsAllowOrigins string,
	consumer ConsumerStatus,
	healthGate HealthReporter,
	pending PendingReporter,
	channelConfigUC usecase.ChannelConfigUseCase,
	deliveryLogUC usecase.DeliveryLogUseCase,
) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:           logger,
		corsEnabled:      corsEnabled,
		corsAllowOrigins: corsAllowOrigins,
		consumer:         consumer,
		healthGate:       healthGate,
		pending:          pending,
		channelConfigUC:  channelConfigUC,
		deliveryLogUC:    deliveryLogUC,
	}
}

// UseMetricsMiddleware installs a request metrics middleware. Must be called
// before SetupRouter.
func (s *Server) UseMetricsMiddleware(middleware gin.HandlerFunc) {
	s.metricsMiddleware = middleware
}

// SetupRouter builds the gin router with middleware and routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if s.metricsMiddleware != nil {
		router.Use(s.metricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(s.corsEnabled, s.corsAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/status", s.statusHandler)
	router.GET("/channel-configs", s.listChannelConfigsHandler)
	router.GET("/delivery-attempts", s.listDeliveryAttemptsHandler)

	return router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.router = s.SetupRouter()
	}
	s.server.Handler = s.router

	if s.logger != nil {
		s.logger.Info("starting http server", slog.String("addr", s.server.Addr))
	}

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("shutting down http server")
	}
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// statusHandler reports the consumer state, in-flight count, upstream health
// and the group's unacknowledged backlog.
func (s *Server) statusHandler(c *gin.Context) {
	response := gin.H{
		"consumer_state":   s.consumer.State(),
		"in_flight":        s.consumer.InFlight(),
		"upstream_healthy": s.healthGate.IsHealthy(c.Request.Context()),
	}

	if pending, err := s.pending.PendingCount(c.Request.Context()); err == nil {
		response["pending"] = pending
	} else {
		response["pending_error"] = err.Error()
	}

	c.JSON(http.StatusOK, response)
}

// channelConfigResponse is the JSON shape of one channel configuration.
type channelConfigResponse struct {
	ID          string         `json:"id"`
	StoreCode   string         `json:"store_code"`
	OrderType   string         `json:"order_type"`
	ChannelType string         `json:"channel_type"`
	Config      map[string]any `json:"config"`
	Enabled     bool           `json:"enabled"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// listChannelConfigsHandler lists all channel configurations for a merchant.
func (s *Server) listChannelConfigsHandler(c *gin.Context) {
	storeCode := c.Query("store_code")
	if storeCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store_code is required"})
		return
	}

	configs, err := s.channelConfigUC.ListByStore(c.Request.Context(), storeCode)
	if err != nil {
		s.errorResponse(c, err)
		return
	}

	response := make([]channelConfigResponse, 0, len(configs))
	for _, cfg := range configs {
		response = append(response, channelConfigResponse{
			ID:          cfg.ID.String(),
			StoreCode:   cfg.StoreCode,
			OrderType:   cfg.OrderType,
			ChannelType: string(cfg.ChannelType),
			Config:      cfg.Config,
			Enabled:     cfg.Enabled,
			CreatedAt:   cfg.CreatedAt,
			UpdatedAt:   cfg.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"channel_configs": response})
}

// deliveryAttemptResponse is the JSON shape of one delivery audit record.
type deliveryAttemptResponse struct {
	ID               string    `json:"id"`
	OrderID          string    `json:"order_id"`
	StoreCode        string    `json:"store_code"`
	EventType        string    `json:"event_type"`
	ChannelType      string    `json:"channel_type,omitempty"`
	Status           string    `json:"status"`
	RequestSnapshot  string    `json:"request_snapshot,omitempty"`
	ResponseSnapshot string    `json:"response_snapshot,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	DurationMs       int64     `json:"duration_ms"`
	RetryCount       int       `json:"retry_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// listDeliveryAttemptsHandler lists the delivery attempts for one order.
func (s *Server) listDeliveryAttemptsHandler(c *gin.Context) {
	storeCode := c.Query("store_code")
	orderID := c.Query("order_id")
	if storeCode == "" || orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store_code and order_id are required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	attempts, err := s.deliveryLogUC.ListByOrder(c.Request.Context(), storeCode, orderID, limit)
	if err != nil {
		s.errorResponse(c, err)
		return
	}

	response := make([]deliveryAttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		response = append(response, deliveryAttemptResponse{
			ID:               attempt.ID.String(),
			OrderID:          attempt.OrderID,
			StoreCode:        attempt.StoreCode,
			EventType:        string(attempt.EventType),
			ChannelType:      string(attempt.ChannelType),
			Status:           string(attempt.Status),
			RequestSnapshot:  attempt.RequestSnapshot,
			ResponseSnapshot: attempt.ResponseSnapshot,
			ErrorMessage:     attempt.ErrorMessage,
			DurationMs:       attempt.DurationMs,
			RetryCount:       attempt.RetryCount,
			CreatedAt:        attempt.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"delivery_attempts": response})
}

// errorResponse maps domain errors to HTTP statuses.
func (s *Server) errorResponse(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if s.logger != nil {
			s.logger.Error("request failed", slog.Any("error", err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
