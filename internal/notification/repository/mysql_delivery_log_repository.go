package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mapan1908/notification-service/internal/database"
	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// MySQLDeliveryLogRepository implements the append-only delivery audit log
// for MySQL.
type MySQLDeliveryLogRepository struct {
	db *sql.DB
}

// NewMySQLDeliveryLogRepository creates a new MySQLDeliveryLogRepository.
func NewMySQLDeliveryLogRepository(db *sql.DB) *MySQLDeliveryLogRepository {
	return &MySQLDeliveryLogRepository{db: db}
}

// Create inserts a delivery attempt record.
func (m *MySQLDeliveryLogRepository) Create(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO delivery_attempts
			  (id, order_id, store_code, event_type, channel_type, status, request_snapshot,
			   response_snapshot, error_message, duration_ms, retry_count, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		attempt.ID.String(),
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
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create delivery attempt")
	}

	return nil
}

// ListByOrder retrieves the delivery attempts recorded for one order, newest
// first, limited to the given count.
func (m *MySQLDeliveryLogRepository) ListByOrder(
	ctx context.Context,
	storeCode, orderID string,
	limit int,
) ([]*domain.DeliveryAttempt, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, order_id, store_code, event_type, channel_type, status, request_snapshot,
			  response_snapshot, error_message, duration_ms, retry_count, created_at
			  FROM delivery_attempts
			  WHERE store_code = ? AND order_id = ?
			  ORDER BY created_at DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, storeCode, orderID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list delivery attempts")
	}
	defer func() {
		_ = rows.Close()
	}()

	attempts := make([]*domain.DeliveryAttempt, 0)
	for rows.Next() {
		var attempt domain.DeliveryAttempt
		var id, eventType, channelType, status string

		err := rows.Scan(
			&id,
			&attempt.OrderID,
			&attempt.StoreCode,
			&eventType,
			&channelType,
			&status,
			&attempt.RequestSnapshot,
			&attempt.ResponseSnapshot,
			&attempt.ErrorMessage,
			&attempt.DurationMs,
			&attempt.RetryCount,
			&attempt.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan delivery attempt")
		}

		attempt.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse delivery attempt id")
		}
		attempt.EventType = domain.OrderEventType(eventType)
		attempt.ChannelType = domain.ChannelType(channelType)
		attempt.Status = domain.DeliveryStatus(status)

		attempts = append(attempts, &attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate delivery attempts")
	}

	return attempts, nil
}
