package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scribe/internal/api"
	"github.com/samcharles93/scribe/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr              string
		readHeaderTimeout time.Duration
		device            string
		storeSize         int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the generation REST API",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-header-timeout",
				Usage:       "time allowed to read request headers",
				Value:       30 * time.Second,
				Destination: &readHeaderTimeout,
			},
			&cli.StringFlag{
				Name:        "device",
				Usage:       "default compute device for requests that do not name one",
				Destination: &device,
			},
			&cli.Int64Flag{
				Name:        "keep",
				Usage:       "number of finished generations kept for GET /v1/generations/:id",
				Value:       api.DefaultStoreCapacity,
				Destination: &storeSize,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, appConfig, &addr, &device)

			loaded, err := loader().Load(log)
			if err != nil {
				return err
			}
			provider := api.NewSharedEngineProvider(loaded.Engine, serverDefaults(appConfig, loaded.GenerationDefaults, device))
			defer func() { _ = provider.Close() }()

			server := api.NewServer(api.NewGenerationStore(int(storeSize)), api.NewGenerationService(provider))
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "tokenizer", tokenizerSpec, "vocab", loaded.Engine.VocabSize())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					applyServerTimeouts(srv, readHeaderTimeout)
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

func applyServerTimeouts(srv *http.Server, readHeader time.Duration) {
	srv.ReadHeaderTimeout = readHeader
}
