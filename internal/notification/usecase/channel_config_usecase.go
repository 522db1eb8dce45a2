package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mapan1908/notification-service/internal/database"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// channelConfigUseCase implements the ChannelConfigUseCase interface.
type channelConfigUseCase struct {
	txManager  database.TxManager
	configRepo ChannelConfigRepository
}

// NewChannelConfigUseCase creates a new ChannelConfigUseCase.
func NewChannelConfigUseCase(
	txManager database.TxManager,
	configRepo ChannelConfigRepository,
) ChannelConfigUseCase {
	return &channelConfigUseCase{
		txManager:  txManager,
		configRepo: configRepo,
	}
}

// Create validates and persists a new channel configuration. The record id
// and timestamps are assigned here.
func (uc *channelConfigUseCase) Create(
	ctx context.Context,
	cfg *domain.ChannelConfig,
) (*domain.ChannelConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cfg.ID = uuid.Must(uuid.NewV7())
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	err := uc.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return uc.configRepo.Create(txCtx, cfg)
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ListByStore returns all channel configurations for a merchant.
func (uc *channelConfigUseCase) ListByStore(
	ctx context.Context,
	storeCode string,
) ([]*domain.ChannelConfig, error) {
	return uc.configRepo.ListByStore(ctx, storeCode)
}

// deliveryLogUseCase implements the DeliveryLogUseCase interface.
type deliveryLogUseCase struct {
	deliveryLog DeliveryLogRepository
}

// NewDeliveryLogUseCase creates a new DeliveryLogUseCase.
func NewDeliveryLogUseCase(deliveryLog DeliveryLogRepository) DeliveryLogUseCase {
	return &deliveryLogUseCase{deliveryLog: deliveryLog}
}

// defaultDeliveryListLimit bounds unpaginated audit queries.
const defaultDeliveryListLimit = 50

// ListByOrder returns the delivery attempts recorded for one order, newest
// first.
func (uc *deliveryLogUseCase) ListByOrder(
	ctx context.Context,
	storeCode, orderID string,
	limit int,
) ([]*domain.DeliveryAttempt, error) {
	if limit <= 0 {
		limit = defaultDeliveryListLimit
	}
	return uc.deliveryLog.ListByOrder(ctx, storeCode, orderID, limit)
}
