// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/mapan1908/notification-service/internal/app"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// parseChannelType converts a channel type string to domain.ChannelType.
// Returns an error if the channel type string is invalid.
func parseChannelType(channelTypeStr string) (domain.ChannelType, error) {
	channelType := domain.ChannelType(channelTypeStr)
	if !channelType.Valid() {
		return "", fmt.Errorf(
			"invalid channel type: %s (valid options: wecom_bot, template_message, voice_speaker)",
			channelTypeStr,
		)
	}
	return channelType, nil
}
