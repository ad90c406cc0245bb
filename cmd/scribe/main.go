package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scribe/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "scribe",
		Usage: "Autoregressive text generation with greedy search and sampling",
		Flags: append(loggingFlags(), configFlag()),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return ctx, err
			}
			appConfig = cfg
			applyLoggingConfig(cmd, cfg)

			level := logger.ParseLevel(logLevel)
			if debug {
				level = slog.LevelDebug
			}
			log, err := logger.Build(os.Stderr, logFormat, level)
			if err != nil {
				return ctx, err
			}
			return logger.WithContext(ctx, log), nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			generateCmd(),
			serveCmd(),
			tokenizeCmd(),
			initWeightsCmd(),
			devicesCmd(),
			versionCmd(),
		},
	}
}
