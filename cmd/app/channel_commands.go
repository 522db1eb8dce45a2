package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/mapan1908/notification-service/cmd/app/commands"
	"github.com/mapan1908/notification-service/internal/app"
	"github.com/mapan1908/notification-service/internal/config"
)

func getChannelCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-channel-config",
			Usage: "Create a notification channel configuration for a merchant",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "store-code",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Merchant store code (e.g., S1)",
				},
				&cli.StringFlag{
					Name:     "order-type",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Order type the channel applies to (e.g., dine_in, takeout)",
				},
				&cli.StringFlag{
					Name:     "channel-type",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Channel type: wecom_bot, template_message or voice_speaker",
				},
				&cli.StringFlag{
					Name:     "config",
					Required: true,
					Usage:    "Channel-specific configuration as a JSON object",
				},
				&cli.BoolFlag{
					Name:    "enabled",
					Aliases: []string{"e"},
					Value:   true,
					Usage:   "Whether the channel receives notifications immediately",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				channelConfigUseCase, err := container.ChannelConfigUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateChannelConfig(
					ctx,
					channelConfigUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("store-code"),
					cmd.String("order-type"),
					cmd.String("channel-type"),
					cmd.String("config"),
					cmd.Bool("enabled"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-channel-configs",
			Usage: "List all channel configurations for a merchant",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "store-code",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Merchant store code (e.g., S1)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				channelConfigUseCase, err := container.ChannelConfigUseCase()
				if err != nil {
					return err
				}

				return commands.RunListChannelConfigs(
					ctx,
					channelConfigUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("store-code"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-delivery-attempts",
			Usage: "List the delivery attempts recorded for one order",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "store-code",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Merchant store code (e.g., S1)",
				},
				&cli.StringFlag{
					Name:     "order-id",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Order identifier (e.g., ORD-1001)",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   0,
					Usage:   "Maximum number of attempts to return (0 uses the default)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				deliveryLogUseCase, err := container.DeliveryLogUseCase()
				if err != nil {
					return err
				}

				return commands.RunListDeliveryAttempts(
					ctx,
					deliveryLogUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("store-code"),
					cmd.String("order-id"),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
	}
}
