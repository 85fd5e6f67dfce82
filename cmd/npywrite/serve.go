package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/npywrite/internal/logger"
	"github.com/samcharles93/npywrite/internal/server"
)

func serveCmd(o *cliOptions) *cli.Command {
	var (
		addr         string
		readTimeout  time.Duration
		maxBodyBytes int64
	)

	return &cli.Command{
		Name:         "serve",
		Usage:        "Serve text-to-.npy conversion over HTTP",
		OnUsageError: usageError,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-body-bytes",
				Usage:       "largest accepted request body",
				Value:       server.DefaultMaxBodyBytes,
				Destination: &maxBodyBytes,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			if o.serverAddress != "" && !cmd.IsSet("addr") {
				addr = o.serverAddress
			}
			if o.maxBodyBytes > 0 && !cmd.IsSet("max-body-bytes") {
				maxBodyBytes = o.maxBodyBytes
			}
			dt, err := resolveDType(o.dtype, o.strictDType, log)
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				DType:        dt,
				Separator:    o.separator,
				AllowRagged:  o.allowRagged,
				MaxBodyBytes: maxBodyBytes,
				Logger:       log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			srv.Register(e)

			log.Info("starting server", "address", addr, "dtype", dt.String())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(s *http.Server) error {
					s.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

