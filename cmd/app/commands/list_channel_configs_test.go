package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mapan1908/notification-service/internal/notification/domain"
)

func TestRunListChannelConfigs(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockChannelConfigUseCase{}
		mockUseCase.On("ListByStore", ctx, "S1").Return([]*domain.ChannelConfig{
			{
				ID:          uuid.Must(uuid.NewV7()),
				StoreCode:   "S1",
				OrderType:   "dine_in",
				ChannelType: domain.ChannelWeComBot,
				Enabled:     true,
			},
			{
				ID:          uuid.Must(uuid.NewV7()),
				StoreCode:   "S1",
				OrderType:   "takeout",
				ChannelType: domain.ChannelTemplateMessage,
				Enabled:     false,
			},
		}, nil)

		var out bytes.Buffer
		err := RunListChannelConfigs(ctx, mockUseCase, logger, &out, "S1", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Found 2 channel config(s) for store S1")
		require.Contains(t, out.String(), "channel_type=wecom_bot")
		require.Contains(t, out.String(), "enabled=false")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		mockUseCase := &mockChannelConfigUseCase{}
		mockUseCase.On("ListByStore", ctx, "S2").Return([]*domain.ChannelConfig{}, nil)

		var out bytes.Buffer
		err := RunListChannelConfigs(ctx, mockUseCase, logger, &out, "S2", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "No channel configs found for store S2")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockChannelConfigUseCase{}
		mockUseCase.On("ListByStore", ctx, "S1").Return([]*domain.ChannelConfig{
			{
				ID:          uuid.Must(uuid.NewV7()),
				StoreCode:   "S1",
				OrderType:   "dine_in",
				ChannelType: domain.ChannelWeComBot,
				Config:      map[string]any{"webhook_url": "https://example.com/hook"},
				Enabled:     true,
			},
		}, nil)

		var out bytes.Buffer
		err := RunListChannelConfigs(ctx, mockUseCase, logger, &out, "S1", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"store_code": "S1"`)
		require.Contains(t, out.String(), `"channel_type": "wecom_bot"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("missing-store-code", func(t *testing.T) {
		mockUseCase := &mockChannelConfigUseCase{}

		err := RunListChannelConfigs(ctx, mockUseCase, logger, &bytes.Buffer{}, "", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "store-code is required")
	})
}
