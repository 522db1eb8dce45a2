package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mapan1908/notification-service/internal/notification/domain"
	"github.com/mapan1908/notification-service/internal/notification/usecase"
)

// RunListChannelConfigs lists all channel configurations for a merchant,
// enabled or not.
//
// Requirements: Database must be migrated and accessible.
func RunListChannelConfigs(
	ctx context.Context,
	channelConfigUseCase usecase.ChannelConfigUseCase,
	logger *slog.Logger,
	writer io.Writer,
	storeCode string,
	format string,
) error {
	if storeCode == "" {
		return fmt.Errorf("store-code is required")
	}

	logger.Info("listing channel configs", slog.String("store_code", storeCode))

	configs, err := channelConfigUseCase.ListByStore(ctx, storeCode)
	if err != nil {
		return fmt.Errorf("failed to list channel configs: %w", err)
	}

	if format == "json" {
		outputChannelConfigListJSON(writer, configs)
	} else {
		outputChannelConfigListText(writer, storeCode, configs)
	}

	return nil
}

// outputChannelConfigListText outputs the configs in human-readable text format.
func outputChannelConfigListText(writer io.Writer, storeCode string, configs []*domain.ChannelConfig) {
	if len(configs) == 0 {
		fmt.Fprintf(writer, "No channel configs found for store %s\n", storeCode)
		return
	}

	fmt.Fprintf(writer, "Found %d channel config(s) for store %s\n", len(configs), storeCode)
	for _, cfg := range configs {
		fmt.Fprintf(writer, "  %s  order_type=%s channel_type=%s enabled=%t\n",
			cfg.ID, cfg.OrderType, cfg.ChannelType, cfg.Enabled)
	}
}

// outputChannelConfigListJSON outputs the configs in JSON format for machine consumption.
func outputChannelConfigListJSON(writer io.Writer, configs []*domain.ChannelConfig) {
	result := make([]map[string]interface{}, 0, len(configs))
	for _, cfg := range configs {
		result = append(result, map[string]interface{}{
			"id":           cfg.ID.String(),
			"store_code":   cfg.StoreCode,
			"order_type":   cfg.OrderType,
			"channel_type": string(cfg.ChannelType),
			"config":       cfg.Config,
			"enabled":      cfg.Enabled,
			"created_at":   cfg.CreatedAt,
			"updated_at":   cfg.UpdatedAt,
		})
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(writer, string(jsonBytes))
}
