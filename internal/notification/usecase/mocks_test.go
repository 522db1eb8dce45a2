package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mapan1908/notification-service/internal/notification/channel"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

type mockStreamRepository struct {
	mock.Mock
}

func (m *mockStreamRepository) EnsureGroup(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStreamRepository) ReadBatch(
	ctx context.Context,
	count int64,
	block time.Duration,
) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, count, block)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *mockStreamRepository) Ack(ctx context.Context, ids ...string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *mockStreamRepository) PendingCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockOrderCacheRepository struct {
	mock.Mock
}

func (m *mockOrderCacheRepository) Get(
	ctx context.Context,
	storeCode, orderID string,
) (*domain.OrderInfo, error) {
	args := m.Called(ctx, storeCode, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderInfo), args.Error(1)
}

type mockHealthRepository struct {
	mock.Mock
}

func (m *mockHealthRepository) Set(ctx context.Context, healthy bool, ttl time.Duration) error {
	args := m.Called(ctx, healthy, ttl)
	return args.Error(0)
}

func (m *mockHealthRepository) Get(ctx context.Context) (bool, bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

type mockOrderAPI struct {
	mock.Mock
}

func (m *mockOrderAPI) GetOrder(
	ctx context.Context,
	storeCode, orderID, token string,
) (*domain.OrderInfo, error) {
	args := m.Called(ctx, storeCode, orderID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderInfo), args.Error(1)
}

func (m *mockOrderAPI) CheckHealth(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockHealthGate struct {
	mock.Mock
}

func (m *mockHealthGate) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockHealthGate) ProbeOnce(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *mockHealthGate) IsHealthy(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

type mockOrderResolver struct {
	mock.Mock
}

func (m *mockOrderResolver) Resolve(
	ctx context.Context,
	event *domain.StreamEvent,
) (*domain.OrderInfo, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderInfo), args.Error(1)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, event *domain.StreamEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockChannelConfigRepository struct {
	mock.Mock
}

func (m *mockChannelConfigRepository) Create(ctx context.Context, cfg *domain.ChannelConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *mockChannelConfigRepository) ListEnabled(
	ctx context.Context,
	storeCode, orderType string,
) ([]*domain.ChannelConfig, error) {
	args := m.Called(ctx, storeCode, orderType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChannelConfig), args.Error(1)
}

func (m *mockChannelConfigRepository) ListByStore(
	ctx context.Context,
	storeCode string,
) ([]*domain.ChannelConfig, error) {
	args := m.Called(ctx, storeCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChannelConfig), args.Error(1)
}

// mockDeliveryLogRepository records created attempts for inspection instead
// of expectation matching; audit rows carry generated ids and timestamps.
type mockDeliveryLogRepository struct {
	mu       sync.Mutex
	created  []*domain.DeliveryAttempt
	createFn func(attempt *domain.DeliveryAttempt) error
}

func (m *mockDeliveryLogRepository) Create(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createFn != nil {
		if err := m.createFn(attempt); err != nil {
			return err
		}
	}
	m.created = append(m.created, attempt)
	return nil
}

func (m *mockDeliveryLogRepository) ListByOrder(
	ctx context.Context,
	storeCode, orderID string,
	limit int,
) ([]*domain.DeliveryAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created, nil
}

func (m *mockDeliveryLogRepository) Created() []*domain.DeliveryAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.DeliveryAttempt, len(m.created))
	copy(out, m.created)
	return out
}

// mockStrategy is a configurable delivery strategy double.
type mockStrategy struct {
	channelType domain.ChannelType
	sendFn      func(ctx context.Context, payload channel.Payload) (*channel.SendResult, error)
}

func (m *mockStrategy) ChannelType() domain.ChannelType {
	return m.channelType
}

func (m *mockStrategy) Send(ctx context.Context, payload channel.Payload) (*channel.SendResult, error) {
	return m.sendFn(ctx, payload)
}

// mockRegistry resolves strategies from a plain map.
type mockRegistry struct {
	strategies map[domain.ChannelType]channel.Strategy
}

func (m *mockRegistry) Resolve(channelType domain.ChannelType) (channel.Strategy, bool) {
	s, ok := m.strategies[channelType]
	return s, ok
}

// recordingMetrics counts recorded pipeline metrics for assertions.
type recordingMetrics struct {
	mu         sync.Mutex
	messages   map[string]int
	resolver   map[string]int
	deliveries map[string]int
	states     []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		messages:   make(map[string]int),
		resolver:   make(map[string]int),
		deliveries: make(map[string]int),
	}
}

func (r *recordingMetrics) RecordMessage(ctx context.Context, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[outcome]++
}

func (r *recordingMetrics) RecordResolverAttempt(ctx context.Context, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolver[result]++
}

func (r *recordingMetrics) RecordDeliveryAttempt(
	ctx context.Context,
	channelType, status string,
	duration time.Duration,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries[channelType+"/"+status]++
}

func (r *recordingMetrics) RecordConsumerState(ctx context.Context, state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingMetrics) statesSeen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.states...)
}

func (r *recordingMetrics) messageCount(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[outcome]
}

func (r *recordingMetrics) resolverCount(result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolver[result]
}

func (r *recordingMetrics) deliveryCount(channelType, status string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deliveries[channelType+"/"+status]
}
