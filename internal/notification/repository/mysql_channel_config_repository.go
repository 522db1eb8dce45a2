package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/mapan1908/notification-service/internal/database"
	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// MySQLChannelConfigRepository implements channel configuration persistence
// for MySQL. UUIDs are stored as CHAR(36) strings.
type MySQLChannelConfigRepository struct {
	db *sql.DB
}

// NewMySQLChannelConfigRepository creates a new MySQLChannelConfigRepository.
func NewMySQLChannelConfigRepository(db *sql.DB) *MySQLChannelConfigRepository {
	return &MySQLChannelConfigRepository{db: db}
}

// Create inserts a new channel configuration. Returns ErrConflict when a
// configuration already exists for the (store_code, order_type, channel_type)
// triple.
func (m *MySQLChannelConfigRepository) Create(ctx context.Context, cfg *domain.ChannelConfig) error {
	querier := database.GetTx(ctx, m.db)

	payload, err := json.Marshal(cfg.Config)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal channel config payload")
	}

	query := `INSERT INTO channel_configs (id, store_code, order_type, channel_type, config, enabled, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		cfg.ID.String(),
		cfg.StoreCode,
		cfg.OrderType,
		string(cfg.ChannelType),
		payload,
		cfg.Enabled,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "channel config already exists")
		}
		return apperrors.Wrap(err, "failed to create channel config")
	}

	return nil
}

// ListEnabled retrieves the enabled channel configurations matching the
// merchant and order type. Returns an empty slice when nothing matches.
func (m *MySQLChannelConfigRepository) ListEnabled(
	ctx context.Context,
	storeCode, orderType string,
) ([]*domain.ChannelConfig, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, store_code, order_type, channel_type, config, enabled, created_at, updated_at
			  FROM channel_configs
			  WHERE store_code = ? AND order_type = ? AND enabled = TRUE
			  ORDER BY channel_type`

	rows, err := querier.QueryContext(ctx, query, storeCode, orderType)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list enabled channel configs")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanMySQLChannelConfigs(rows)
}

// ListByStore retrieves all channel configurations for a merchant, enabled or
// not, for the administrative listing surface.
func (m *MySQLChannelConfigRepository) ListByStore(
	ctx context.Context,
	storeCode string,
) ([]*domain.ChannelConfig, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, store_code, order_type, channel_type, config, enabled, created_at, updated_at
			  FROM channel_configs
			  WHERE store_code = ?
			  ORDER BY order_type, channel_type`

	rows, err := querier.QueryContext(ctx, query, storeCode)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list channel configs")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanMySQLChannelConfigs(rows)
}

// scanMySQLChannelConfigs scans rows into channel configuration records,
// parsing the CHAR(36) id column into a UUID.
func scanMySQLChannelConfigs(rows *sql.Rows) ([]*domain.ChannelConfig, error) {
	configs := make([]*domain.ChannelConfig, 0)
	for rows.Next() {
		var cfg domain.ChannelConfig
		var id string
		var channelType string
		var payload []byte

		err := rows.Scan(
			&id,
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

		cfg.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse channel config id")
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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
