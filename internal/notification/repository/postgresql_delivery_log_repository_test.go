package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapan1908/notification-service/internal/notification/domain"
)

func TestPostgreSQLDeliveryLogRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLDeliveryLogRepository(db)
	attempt := &domain.DeliveryAttempt{
		ID:               uuid.Must(uuid.NewV7()),
		OrderID:          "ORD-1001",
		StoreCode:        "S1",
		EventType:        domain.OrderPaid,
		ChannelType:      domain.ChannelWeComBot,
		Status:           domain.DeliveryStatusSuccess,
		RequestSnapshot:  `{"msgtype":"markdown"}`,
		ResponseSnapshot: `{"errcode":0}`,
		DurationMs:       42,
		RetryCount:       0,
		CreatedAt:        time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO delivery_attempts").
		WithArgs(
			attempt.ID,
			attempt.OrderID,
			attempt.StoreCode,
			string(attempt.EventType),
			string(attempt.ChannelType),
			string(attempt.Status),
			attempt.RequestSnapshot,
			attempt.ResponseSnapshot,
			attempt.ErrorMessage,
			attempt.DurationMs,
			attempt.RetryCount,
			attempt.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), attempt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLDeliveryLogRepository_ListByOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLDeliveryLogRepository(db)
	now := time.Now().UTC()
	id := uuid.Must(uuid.NewV7())

	rows := sqlmock.NewRows([]string{
		"id", "order_id", "store_code", "event_type", "channel_type", "status",
		"request_snapshot", "response_snapshot", "error_message",
		"duration_ms", "retry_count", "created_at",
	}).AddRow(
		id.String(), "ORD-1001", "S1", "order_paid", "wecom_bot", "failed",
		`{"msgtype":"markdown"}`, "", "webhook returned errcode 93000",
		int64(120), 0, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM delivery_attempts").
		WithArgs("S1", "ORD-1001", 20).
		WillReturnRows(rows)

	attempts, err := repo.ListByOrder(context.Background(), "S1", "ORD-1001", 20)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, id, attempts[0].ID)
	assert.Equal(t, domain.DeliveryStatusFailed, attempts[0].Status)
	assert.Equal(t, "webhook returned errcode 93000", attempts[0].ErrorMessage)
	assert.Equal(t, int64(120), attempts[0].DurationMs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLDeliveryLogRepository_ListByOrder_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLDeliveryLogRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM delivery_attempts").
		WithArgs("S1", "ORD-9999", 20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "store_code", "event_type", "channel_type", "status",
			"request_snapshot", "response_snapshot", "error_message",
			"duration_ms", "retry_count", "created_at",
		}))

	attempts, err := repo.ListByOrder(context.Background(), "S1", "ORD-9999", 20)
	require.NoError(t, err)
	assert.NotNil(t, attempts)
	assert.Empty(t, attempts)
}
