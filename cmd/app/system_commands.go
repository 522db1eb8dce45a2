package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/mapan1908/notification-service/cmd/app/commands"
	"github.com/mapan1908/notification-service/internal/app"
	"github.com/mapan1908/notification-service/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "consumer",
			Usage: "Start the stream consumer with the operational HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunConsumer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}
