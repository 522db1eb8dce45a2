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

// RunCreateChannelConfig creates a notification channel configuration for a
// merchant. The channel-specific settings are supplied as a JSON object and
// validated against the channel type before persisting.
//
// Requirements: Database must be migrated and accessible.
func RunCreateChannelConfig(
	ctx context.Context,
	channelConfigUseCase usecase.ChannelConfigUseCase,
	logger *slog.Logger,
	writer io.Writer,
	storeCode string,
	orderType string,
	channelTypeStr string,
	configJSON string,
	enabled bool,
	format string,
) error {
	channelType, err := parseChannelType(channelTypeStr)
	if err != nil {
		return err
	}

	var channelSettings map[string]any
	if err := json.Unmarshal([]byte(configJSON), &channelSettings); err != nil {
		return fmt.Errorf("config must be a JSON object: %w", err)
	}

	logger.Info("creating channel config",
		slog.String("store_code", storeCode),
		slog.String("order_type", orderType),
		slog.String("channel_type", string(channelType)),
	)

	created, err := channelConfigUseCase.Create(ctx, &domain.ChannelConfig{
		StoreCode:   storeCode,
		OrderType:   orderType,
		ChannelType: channelType,
		Config:      channelSettings,
		Enabled:     enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to create channel config: %w", err)
	}

	if format == "json" {
		outputChannelConfigJSON(writer, created)
	} else {
		outputChannelConfigText(writer, created)
	}

	logger.Info("channel config created",
		slog.String("id", created.ID.String()),
		slog.String("store_code", created.StoreCode),
		slog.String("channel_type", string(created.ChannelType)),
	)

	return nil
}

// outputChannelConfigText outputs the created config in human-readable text format.
func outputChannelConfigText(writer io.Writer, cfg *domain.ChannelConfig) {
	fmt.Fprintf(writer, "Channel config created successfully\n")
	fmt.Fprintf(writer, "  ID:           %s\n", cfg.ID)
	fmt.Fprintf(writer, "  Store code:   %s\n", cfg.StoreCode)
	fmt.Fprintf(writer, "  Order type:   %s\n", cfg.OrderType)
	fmt.Fprintf(writer, "  Channel type: %s\n", cfg.ChannelType)
	fmt.Fprintf(writer, "  Enabled:      %t\n", cfg.Enabled)
}

// outputChannelConfigJSON outputs the created config in JSON format for machine consumption.
func outputChannelConfigJSON(writer io.Writer, cfg *domain.ChannelConfig) {
	result := map[string]interface{}{
		"id":           cfg.ID.String(),
		"store_code":   cfg.StoreCode,
		"order_type":   cfg.OrderType,
		"channel_type": string(cfg.ChannelType),
		"config":       cfg.Config,
		"enabled":      cfg.Enabled,
		"created_at":   cfg.CreatedAt,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(writer, string(jsonBytes))
}
