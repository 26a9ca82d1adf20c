package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atende-erp/atende/cmd/atendectl/cli"
	"github.com/atende-erp/atende/internal/app"
	"github.com/atende-erp/atende/internal/platform/cache"
	"github.com/atende-erp/atende/internal/platform/db"
	"github.com/atende-erp/atende/internal/recibos"
)

func main() {
	if err := app.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(factory(cfg, logger))
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func factory(cfg *app.Config, logger *slog.Logger) cli.Factory {
	return cli.Factory{
		Receipts: func(ctx context.Context) (cli.Receipts, func(), error) {
			pool, err := db.New(ctx, cfg.PGDSN)
			if err != nil {
				return nil, nil, err
			}
			service, err := app.NewReceiptService(ctx, cfg, pool, logger)
			if err != nil {
				pool.Close()
				return nil, nil, err
			}
			return service, func() {
				if err := service.Close(); err != nil {
					logger.Warn("close receipt storage", slog.Any("error", err))
				}
				pool.Close()
			}, nil
		},
		OfflineReceipts: func(context.Context) (cli.Receipts, func(), error) {
			renderer, err := app.NewRenderer(cfg)
			if err != nil {
				return nil, nil, err
			}
			return recibos.NewService(nil, app.NewComposer(cfg), renderer, nil, logger), nil, nil
		},
		History: func(ctx context.Context) (cli.History, func(), error) {
			pool, err := db.New(ctx, cfg.PGDSN)
			if err != nil {
				return nil, nil, err
			}
			var redisClient *redis.Client
			if cfg.RedisAddr != "" {
				if client, err := cache.New(ctx, cfg.RedisAddr); err == nil {
					redisClient = client
				} else {
					logger.Warn("redis unavailable, name cache disabled", slog.Any("error", err))
				}
			}
			loader := app.NewHistoricoLoader(cfg, pool, redisClient, nil, logger)
			return loader, closeAll(logger, pool, redisClient), nil
		},
		Jobs: func(context.Context) (cli.Jobs, func(), error) {
			client, err := cli.NewJobsCLI(cfg.RedisAddr)
			if err != nil {
				return nil, nil, err
			}
			return client, func() {
				if err := client.Close(); err != nil {
					logger.Warn("close jobs client", slog.Any("error", err))
				}
			}, nil
		},
	}
}

func closeAll(logger *slog.Logger, pool *pgxpool.Pool, redisClient *redis.Client) func() {
	return func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
		pool.Close()
	}
}
