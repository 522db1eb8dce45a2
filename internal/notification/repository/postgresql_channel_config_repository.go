package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/mapan1908/notification-service/internal/database"
	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// PostgreSQLChannelConfigRepository implements channel configuration
// persistence for PostgreSQL. Uses native UUID types with transaction support
// via database.GetTx().
type PostgreSQLChannelConfigRepository struct {
	db *sql.DB
}

// NewPostgreSQLChannelConfigRepository creates a new PostgreSQLChannelConfigRepository.
func NewPostgreSQLChannelConfigRepository(db *sql.DB) *PostgreSQLChannelConfigRepository {
	return &PostgreSQLChannelConfigRepository{db: db}
}

// Create inserts a new channel configuration. The opaque payload is stored as
// JSONB. Returns ErrConflict when a configuration already exists for the
// (store_code, order_type, channel_type) triple.
func (p *PostgreSQLChannelConfigRepository) Create(ctx context.Context, cfg *domain.ChannelConfig) error {
	querier := database.GetTx(ctx, p.db)

	payload, err := json.Marshal(cfg.Config)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal channel config payload")
	}

	query := `INSERT INTO channel_configs (id, store_code, order_type, channel_type, config, enabled, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		cfg.ID,
		cfg.StoreCode,
		cfg.OrderType,
		string(cfg.ChannelType),
		payload,
		cfg.Enabled,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "channel config already exists")
		}
		return apperrors.Wrap(err, "failed to create channel config")
	}

	return nil
}

// ListEnabled retrieves the enabled channel configurations matching the
// merchant and order type. Returns an empty slice when nothing matches.
func (p *PostgreSQLChannelConfigRepository) ListEnabled(
	ctx context.Context,
	storeCode, orderType string,
) ([]*domain.ChannelConfig, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, store_code, order_type, channel_type, config, enabled, created_at, updated_at
			  FROM channel_configs
			  WHERE store_code = $1 AND order_type = $2 AND enabled = TRUE
			  ORDER BY channel_type`

	rows, err := querier.QueryContext(ctx, query, storeCode, orderType)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list enabled channel configs")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanChannelConfigs(rows)
}

// ListByStore retrieves all channel configurations for a merchant, enabled or
// not, for the administrative listing surface.
func (p *PostgreSQLChannelConfigRepository) ListByStore(
	ctx context.Context,
	storeCode string,
) ([]*domain.ChannelConfig, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, store_code, order_type, channel_type, config, enabled, created_at, updated_at
			  FROM channel_configs
			  WHERE store_code = $1
			  ORDER BY order_type, channel_type`

	rows, err := querier.QueryContext(ctx, query, storeCode)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list channel configs")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanChannelConfigs(rows)
}

// scanChannelConfigs scans rows into channel configuration records.
// The column order must match the SELECT statements above.
func scanChannelConfigs(rows *sql.Rows) ([]*domain.ChannelConfig, error) {
	// Initialize empty slice to avoid returning nil for empty results
	configs := make([]*domain.ChannelConfig, 0)
	for rows.Next() {
		var cfg domain.ChannelConfig
		var channelType string
		var payload []byte

		err := rows.Scan(
			&cfg.ID,
			&cfg.StoreCode,
			&cfg.OrderType,
			&channelType,
			&payload,
			&cfg.Enabled,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan channel config")
		}

		cfg.ChannelType = domain.ChannelType(channelType)

		if payload != nil {
			if err := json.Unmarshal(payload, &cfg.Config); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal channel config payload")
			}
		}

		configs = append(configs, &cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate channel configs")
	}

	return configs, nil
}

// isPostgresUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgresUniqueViolation(err error) bool {
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
