package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/merchstudio/internal/config"
	"github.com/kailas-cloud/merchstudio/internal/db"
	dbRedis "github.com/kailas-cloud/merchstudio/internal/db/redis"
	logpkg "github.com/kailas-cloud/merchstudio/internal/logger"
	"github.com/kailas-cloud/merchstudio/internal/metrics"
	historyrepo "github.com/kailas-cloud/merchstudio/internal/repository/history"
	sessionrepo "github.com/kailas-cloud/merchstudio/internal/repository/session"
	chiTransport "github.com/kailas-cloud/merchstudio/internal/transport/chi"
	"github.com/kailas-cloud/merchstudio/internal/transport/flapjack"
	healthuc "github.com/kailas-cloud/merchstudio/internal/usecase/health"
	studiouc "github.com/kailas-cloud/merchstudio/internal/usecase/studio"
	"github.com/kailas-cloud/merchstudio/internal/version"
)

func newServeCommand() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the studio HTTP API. Configuration is read from config/<env>.yaml, where env
comes from --env or the ENV variable (default "local").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if env == "" {
				env = config.GetEnv()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, env)
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "environment name (local, dev, docker, prod)")
	return cmd
}

func serve(ctx context.Context, env string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting merchstudio API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("engine", cfg.Engine.BaseURL),
	)

	// Redis and Valkey speak the same protocol; one rueidis store serves both drivers.
	var store db.Store
	store, err = dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	metrics.Register()

	engine, err := flapjack.New(flapjack.Config{
		BaseURL:     cfg.Engine.BaseURL,
		AppID:       cfg.Engine.AppID,
		APIKey:      cfg.Engine.APIKey,
		Timeout:     time.Duration(cfg.Engine.TimeoutSec) * time.Second,
		HitsPerPage: cfg.Engine.HitsPerPage,
		Logger:      logger.Named("engine"),
	})
	if err != nil {
		return fmt.Errorf("create engine client: %w", err)
	}
	if err := engine.HealthCheck(ctx); err != nil {
		logger.Warn("Search engine not reachable at startup", zap.Error(err))
	}

	sessions := sessionrepo.New(store, cfg.Storage.KeyPrefix, time.Duration(cfg.Studio.SessionTTLSec)*time.Second)

	// Pass a nil interface, not a typed nil pointer, when history is off.
	var history studiouc.HistoryRepository
	if cfg.Studio.HistoryLimit > 0 {
		history = historyrepo.New(store, cfg.Storage.KeyPrefix, cfg.Studio.HistoryLimit)
	}

	studioSvc := studiouc.New(sessions, history, engine, engine)
	healthSvc := healthuc.New(store, engine)

	server := chiTransport.NewServer(studioSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Router(cfg.Auth.APIKeys),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
