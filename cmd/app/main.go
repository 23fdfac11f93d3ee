// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kabourne/wordmatch/cmd/app/commands"
	"github.com/kabourne/wordmatch/internal/app"
	"github.com/kabourne/wordmatch/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "wordmatch",
		Usage:   "Vocabulary matching game backend with an encrypted content channel",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "generate-keypair",
				Usage: "Generate an RSA keypair for the secure exchange",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunGenerateKeypair(commands.DefaultIO().Writer)
				},
			},
			{
				Name:  "fetch",
				Usage: "Fetch one vocabulary unit over the encrypted channel",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "book",
						Aliases:  []string{"b"},
						Required: true,
						Usage:    "Book name (e.g., CET4)",
					},
					&cli.StringFlag{
						Name:     "unit",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Unit name within the book (e.g., unit1)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					defer func() { _ = container.Shutdown(ctx) }()

					return commands.RunFetch(
						ctx,
						container.SecureChannelClient(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("book"),
						cmd.String("unit"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
