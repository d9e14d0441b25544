package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/vidhub/internal/api/handler"
	"github.com/hszk-dev/vidhub/internal/api/middleware"
	"github.com/hszk-dev/vidhub/internal/config"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
	"github.com/hszk-dev/vidhub/internal/infrastructure/cache"
	"github.com/hszk-dev/vidhub/internal/infrastructure/memory"
	"github.com/hszk-dev/vidhub/internal/infrastructure/mongodb"
	"github.com/hszk-dev/vidhub/internal/infrastructure/postgres"
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

// stores bundles the repositories selected by STORE_DRIVER.
type stores struct {
	videos repository.VideoRepository
	users  repository.UserRepository
	ping   handler.Pinger
	close  func()
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Auth.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	assets, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("connected to asset store", slog.String("backend", cfg.Assets.Backend))

	checks := map[string]handler.Pinger{
		"store":  st.ping,
		"assets": assets,
	}

	var mq repository.MessageQueue
	if cfg.RabbitMQ.CleanupEnabled {
		queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		defer queueClient.Close()
		mq = queueClient
		logger.Info("connected to RabbitMQ, orphan cleanup enabled")
	}

	svc := usecase.NewVideoService(st.videos, st.users, assets, mq)

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("connected to Redis")

		videoCache := cache.NewRedisVideoCache(redisClient)
		svc = usecase.NewCachedVideoService(svc, videoCache, usecase.CachedVideoServiceConfig{
			CacheTTL: cfg.Redis.CacheTTL,
		})
		checks["cache"] = videoCache
	}

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret)
	r := setupRouter(logger, handler.NewVideoHandler(svc, cfg.Server.MaxUploadBytes), handler.NewHealthHandler(checks), auth)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.Database.Driver {
	case config.StoreDriverMongo:
		client, err := mongodb.NewClient(ctx, mongodb.DefaultClientConfig(cfg.Mongo.URI, cfg.Mongo.Database))
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, client.Database()); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		logger.Info("connected to MongoDB", slog.String("database", cfg.Mongo.Database))
		return &stores{
			videos: mongodb.NewVideoRepository(client.Database()),
			users:  mongodb.NewUserRepository(client.Database()),
			ping:   client,
			close:  func() { _ = client.Close(context.Background()) },
		}, nil

	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return &stores{
			videos: memory.NewVideoRepository(),
			users:  memory.NewUserRepository(),
			ping:   handler.PingFunc(func(context.Context) error { return nil }),
			close:  func() {},
		}, nil

	default:
		pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, pgClient.Pool()); err != nil {
				pgClient.Close()
				return nil, err
			}
		}
		logger.Info("connected to PostgreSQL")
		return &stores{
			videos: postgres.NewVideoRepository(pgClient.Pool()),
			users:  postgres.NewUserRepository(pgClient.Pool()),
			ping:   pgClient,
			close:  pgClient.Close,
		}, nil
	}
}

func setupRouter(logger *slog.Logger, videos *handler.VideoHandler, health *handler.HealthHandler, auth *middleware.Authenticator) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics)

	r.Get("/health", handler.Health)
	r.Get("/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		videos.Routes(r, auth.Require)
	})

	return r
}
