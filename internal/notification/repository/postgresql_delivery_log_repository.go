package repository

import (
	"context"
	"database/sql"

	"github.com/mapan1908/notification-service/internal/database"
	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// PostgreSQLDeliveryLogRepository implements the append-only delivery audit
// log for PostgreSQL.
type PostgreSQLDeliveryLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLDeliveryLogRepository creates a new PostgreSQLDeliveryLogRepository.
func NewPostgreSQLDeliveryLogRepository(db *sql.DB) *PostgreSQLDeliveryLogRepository {
	return &PostgreSQLDeliveryLogRepository{db: db}
}

// Create inserts a delivery attempt record. Records are never updated or
// deleted by this service.
func (p *PostgreSQLDeliveryLogRepository) Create(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO delivery_attempts
			  (id, order_id, store_code, event_type, channel_type, status, request_snapshot,
			   response_snapshot, error_message, duration_ms, retry_count, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
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
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create delivery attempt")
	}

	return nil
}

// ListByOrder retrieves the delivery attempts recorded for one order, newest
// first, limited to the given count.
func (p *PostgreSQLDeliveryLogRepository) ListByOrder(
	ctx context.Context,
	storeCode, orderID string,
	limit int,
) ([]*domain.DeliveryAttempt, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_id, store_code, event_type, channel_type, status, request_snapshot,
			  response_snapshot, error_message, duration_ms, retry_count, created_at
			  FROM delivery_attempts
			  WHERE store_code = $1 AND order_id = $2
			  ORDER BY created_at DESC
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, storeCode, orderID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list delivery attempts")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	attempts := make([]*domain.DeliveryAttempt, 0)
	for rows.Next() {
		var attempt domain.DeliveryAttempt
		var eventType, channelType, status string

		err := rows.Scan(
			&attempt.ID,
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
