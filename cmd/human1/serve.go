// cmd/human1/serve.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"human1-sdk/internal/common/config"
	apperrors "human1-sdk/internal/common/errors"
	"human1-sdk/internal/common/logger"
	"human1-sdk/internal/models"
	"human1-sdk/pkg/human1"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `serve mounts the SDK routes under server.base_path and adds /health, /ready
and /metrics. It stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, loader, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog, level := logger.NewAtomic(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting human1 server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("envFile", loader.EnvResult.LoadedPath),
		zap.String("configFile", loader.ConfigFileUsed()),
	)

	app := human1.NewApp(human1.WithAppLogger(log))
	app.Use(
		human1.Recover(log),
		human1.RequestLogger(log),
		human1.CORS(cfg.Server.CORSOrigins),
	)
	if err := human1.Register(app); err != nil {
		return err
	}

	sdk, err := human1.Init(ctx, human1.Options{Config: cfg, Logger: log})
	if err != nil {
		return fmt.Errorf("sdk init failed: %w", err)
	}
	defer func() { _ = sdk.Close() }()

	err = retryWithBackoff(ctx, func() error {
		return sdk.Ready(ctx)
	}, 10, 2*time.Second, zapLog, "database connection")
	if err != nil {
		return err
	}
	zapLog.Info("database connected successfully")

	app.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		human1.WriteEnvelope(w, models.OK(map[string]string{
			"status":  "ok",
			"message": "Server is running",
		}))
	})
	app.Get("/ready", readyHandler(sdk))

	separateMetrics := cfg.Metrics.Enabled && cfg.Metrics.Address != ""
	if cfg.Metrics.Enabled && !separateMetrics {
		app.Handle(http.MethodGet, "/metrics", promhttp.Handler())
	}

	loader.Watch(func(next *config.Config, err error) {
		if err != nil {
			zapLog.Warn("config reload rejected", zap.Error(err))
			return
		}
		level.SetLevel(logger.ParseLevel(next.Logging.Level))
		zapLog.Info("config reloaded", zap.String("logLevel", next.Logging.Level))
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(gctx, cfg.Server.Address())
	})
	if separateMetrics {
		metricsApp := human1.NewApp(human1.WithAppLogger(log))
		metricsApp.Handle(http.MethodGet, "/metrics", promhttp.Handler())
		g.Go(func() error {
			return metricsApp.Listen(gctx, cfg.Metrics.Address)
		})
	}

	err = g.Wait()
	zapLog.Info("human1 server stopped")
	return err
}

func readyHandler(sdk *human1.SDK) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := sdk.Ready(ctx); err != nil {
			human1.WriteEnvelope(w, models.Envelope{
				Status: apperrors.HTTPStatus(err),
				Data:   map[string]string{"status": "unavailable", "error": apperrors.UserMessage(err)},
			})
			return
		}
		human1.WriteEnvelope(w, models.OK(map[string]string{"status": "ready"}))
	}
}

func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
