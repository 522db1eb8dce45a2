package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// HealthGateConfig holds health gate configuration.
type HealthGateConfig struct {
	// Enabled turns the gate on. A disabled gate reports healthy always.
	Enabled bool
	// Interval is the period between probes.
	Interval time.Duration
	// Timeout bounds one probe; it must stay below Interval.
	Timeout time.Duration
}

// flagTTLFactor sizes the shared flag TTL relative to the probe interval, so
// a few missed probes degrade the flag to absent instead of freezing the last
// verdict forever.
const flagTTLFactor = 3

// HealthGateUseCase probes the order API periodically and publishes the
// verdict to the shared health flag store. Readers fall back to the last
// locally observed verdict when the shared flag has expired.
type HealthGateUseCase struct {
	config     HealthGateConfig
	orderAPI   OrderAPI
	healthRepo HealthRepository
	logger     *slog.Logger

	lastObserved atomic.Bool
}

// NewHealthGateUseCase creates a new HealthGateUseCase.
func NewHealthGateUseCase(
	config HealthGateConfig,
	orderAPI OrderAPI,
	healthRepo HealthRepository,
	logger *slog.Logger,
) *HealthGateUseCase {
	return &HealthGateUseCase{
		config:     config,
		orderAPI:   orderAPI,
		healthRepo: healthRepo,
		logger:     logger,
	}
}

// Start runs the probe loop until the context is canceled. The first probe
// fires immediately so the gate opens without waiting a full interval.
func (uc *HealthGateUseCase) Start(ctx context.Context) error {
	if !uc.config.Enabled {
		return nil
	}

	if uc.logger != nil {
		uc.logger.Info("starting health gate",
			slog.Duration("interval", uc.config.Interval),
			slog.Duration("timeout", uc.config.Timeout),
		)
	}

	uc.ProbeOnce(ctx)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping health gate")
			}
			return ctx.Err()
		case <-ticker.C:
			uc.ProbeOnce(ctx)
		}
	}
}

// ProbeOnce performs one probe, records the verdict locally and publishes it
// to the shared flag store with a TTL covering a few missed probes.
func (uc *HealthGateUseCase) ProbeOnce(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, uc.config.Timeout)
	defer cancel()

	healthy := uc.orderAPI.CheckHealth(probeCtx) == nil

	previous := uc.lastObserved.Swap(healthy)
	if previous != healthy && uc.logger != nil {
		uc.logger.Warn("order api health changed", slog.Bool("healthy", healthy))
	}

	ttl := uc.config.Interval * flagTTLFactor
	if err := uc.healthRepo.Set(ctx, healthy, ttl); err != nil {
		if uc.logger != nil {
			uc.logger.Error("failed to publish health flag", slog.Any("error", err))
		}
	}

	return healthy
}

// IsHealthy reports the current health verdict. A missing or unreadable
// shared flag falls back to the last locally observed verdict, which starts
// out unhealthy until the first successful probe.
func (uc *HealthGateUseCase) IsHealthy(ctx context.Context) bool {
	if !uc.config.Enabled {
		return true
	}

	healthy, found, err := uc.healthRepo.Get(ctx)
	if err != nil {
		if uc.logger != nil {
			uc.logger.Error("failed to read health flag", slog.Any("error", err))
		}
		return uc.lastObserved.Load()
	}
	if !found {
		return uc.lastObserved.Load()
	}

	uc.lastObserved.Store(healthy)
	return healthy
}
