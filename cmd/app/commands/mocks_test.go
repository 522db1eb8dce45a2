package commands

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mapan1908/notification-service/internal/notification/domain"
)

type mockChannelConfigUseCase struct {
	mock.Mock
}

func (m *mockChannelConfigUseCase) Create(
	ctx context.Context,
	cfg *domain.ChannelConfig,
) (*domain.ChannelConfig, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChannelConfig), args.Error(1)
}

func (m *mockChannelConfigUseCase) ListByStore(
	ctx context.Context,
	storeCode string,
) ([]*domain.ChannelConfig, error) {
	args := m.Called(ctx, storeCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChannelConfig), args.Error(1)
}

type mockDeliveryLogUseCase struct {
	mock.Mock
}

func (m *mockDeliveryLogUseCase) ListByOrder(
	ctx context.Context,
	storeCode, orderID string,
	limit int,
) ([]*domain.DeliveryAttempt, error) {
	args := m.Called(ctx, storeCode, orderID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DeliveryAttempt), args.Error(1)
}
