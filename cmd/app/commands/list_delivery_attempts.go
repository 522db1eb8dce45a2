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

// RunListDeliveryAttempts lists the delivery attempts recorded for one order,
// newest first.
//
// Requirements: Database must be migrated and accessible.
func RunListDeliveryAttempts(
	ctx context.Context,
	deliveryLogUseCase usecase.DeliveryLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	storeCode string,
	orderID string,
	limit int,
	format string,
) error {
	if storeCode == "" || orderID == "" {
		return fmt.Errorf("store-code and order-id are required")
	}
	if limit < 0 {
		return fmt.Errorf("limit must be a non-negative number, got: %d", limit)
	}

	logger.Info("listing delivery attempts",
		slog.String("store_code", storeCode),
		slog.String("order_id", orderID),
	)

	attempts, err := deliveryLogUseCase.ListByOrder(ctx, storeCode, orderID, limit)
	if err != nil {
		return fmt.Errorf("failed to list delivery attempts: %w", err)
	}

	if format == "json" {
		outputDeliveryAttemptsJSON(writer, attempts)
	} else {
		outputDeliveryAttemptsText(writer, orderID, attempts)
	}

	return nil
}

// outputDeliveryAttemptsText outputs the attempts in human-readable text format.
func outputDeliveryAttemptsText(writer io.Writer, orderID string, attempts []*domain.DeliveryAttempt) {
	if len(attempts) == 0 {
		fmt.Fprintf(writer, "No delivery attempts found for order %s\n", orderID)
		return
	}

	fmt.Fprintf(writer, "Found %d delivery attempt(s) for order %s\n", len(attempts), orderID)
	for _, attempt := range attempts {
		line := fmt.Sprintf("  %s  event=%s status=%s duration_ms=%d",
			attempt.CreatedAt.Format("2006-01-02 15:04:05"),
			attempt.EventType, attempt.Status, attempt.DurationMs)
		if attempt.ChannelType != "" {
			line += fmt.Sprintf(" channel=%s", attempt.ChannelType)
		}
		if attempt.ErrorMessage != "" {
			line += fmt.Sprintf(" error=%q", attempt.ErrorMessage)
		}
		fmt.Fprintln(writer, line)
	}
}

// outputDeliveryAttemptsJSON outputs the attempts in JSON format for machine consumption.
func outputDeliveryAttemptsJSON(writer io.Writer, attempts []*domain.DeliveryAttempt) {
	result := make([]map[string]interface{}, 0, len(attempts))
	for _, attempt := range attempts {
		result = append(result, map[string]interface{}{
			"id":            attempt.ID.String(),
			"order_id":      attempt.OrderID,
			"store_code":    attempt.StoreCode,
			"event_type":    string(attempt.EventType),
			"channel_type":  string(attempt.ChannelType),
			"status":        string(attempt.Status),
			"error_message": attempt.ErrorMessage,
			"duration_ms":   attempt.DurationMs,
			"retry_count":   attempt.RetryCount,
			"created_at":    attempt.CreatedAt,
		})
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(writer, string(jsonBytes))
}
