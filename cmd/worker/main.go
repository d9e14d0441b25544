package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/vidhub/internal/config"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
	"github.com/hszk-dev/vidhub/internal/infrastructure/queue"
	"github.com/hszk-dev/vidhub/internal/infrastructure/storage"
	"github.com/hszk-dev/vidhub/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	assets, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("connected to asset store", slog.String("backend", cfg.Assets.Backend))

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	cleanupSvc := usecase.NewCleanupService(assets, usecase.CleanupServiceConfig{
		MaxRetries: cfg.Worker.MaxRetries,
	})

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server stopped", slog.String("error", err.Error()))
		}
	}()

	// Setup signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming asset cleanup tasks")
		err := queueClient.ConsumeCleanupTasks(ctx, func(task repository.AssetCleanupTask) error {
			logger.Info("processing cleanup task",
				slog.String("video_id", task.VideoID.String()),
				slog.String("reason", task.Reason),
				slog.Int("assets", len(task.AssetURLs)),
				slog.Int("retry_count", task.RetryCount),
			)

			// Deletions run to completion even when shutdown cancels ctx.
			if err := cleanupSvc.ProcessTask(context.WithoutCancel(ctx), task); err != nil {
				logger.Error("cleanup task failed",
					slog.String("video_id", task.VideoID.String()),
					slog.Int("retry_count", task.RetryCount),
					slog.String("error", err.Error()),
				)
				return err
			}

			logger.Info("cleanup task completed",
				slog.String("video_id", task.VideoID.String()),
			)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Stop consuming new messages
	cancel()

	if err := queueClient.Drain(shutdownCtx); err != nil {
		logger.Warn("shutdown timeout exceeded, some tasks may not have completed",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("all in-flight tasks completed")
	}

	_ = metricsSrv.Shutdown(shutdownCtx)

	logger.Info("worker stopped")
	return nil
}
