// cmd/dashboard/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"billing-intelligence/internal/common/config"
	"billing-intelligence/internal/common/database"
	apperrors "billing-intelligence/internal/common/errors"
	"billing-intelligence/internal/common/logger"
	"billing-intelligence/internal/common/observability"
	"billing-intelligence/internal/dashboard"
	anomalylister "billing-intelligence/internal/panels/anomaly-lister"
	billingseries "billing-intelligence/internal/panels/billing-series"
	copilotbridge "billing-intelligence/internal/panels/copilot-bridge"
	segmentselector "billing-intelligence/internal/panels/segment-selector"
	"billing-intelligence/internal/web"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
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
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// openAndPing opens a client and pings it. A client that fails the ping is
// closed so retries do not leak pools.
func openAndPing[T pingCloser](ctx context.Context, open func() (T, error)) (T, error) {
	var zero T
	client, err := open()
	if err != nil {
		return zero, err
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return zero, err
	}
	return client, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":         cfg.App.Name,
		"environment": cfg.App.Environment,
	})

	zapLog.Info("Starting billing dashboard...",
		zap.String("driver", cfg.Warehouse.Driver),
		zap.String("billingView", cfg.Warehouse.BillingView),
		zap.String("copilotBackend", cfg.Copilot.Backend),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics exporter unavailable", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Warehouse with retry ---
	var wh *database.WarehouseClient
	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		var err error
		wh, err = openAndPing(pingCtx, func() (*database.WarehouseClient, error) {
			return database.NewWarehouse(cfg.Warehouse)
		})
		return err
	}, 10, 2*time.Second, zapLog, "Warehouse connection")
	if err != nil {
		stdErr := apperrors.NewWarehouseConnectionFailedError(err)
		zapLog.Fatal("warehouse failed after retries",
			zap.String("code", string(stdErr.Code)),
			zap.String("details", stdErr.Details),
			zap.Bool("retryable", stdErr.Retryable),
		)
	}
	defer wh.Close()
	zapLog.Info("Warehouse connected successfully")

	readiness := map[string]web.Pinger{"warehouse": wh}

	// --- Redis segment cache (optional) with retry ---
	var rc *database.RedisClient
	if cfg.Cache.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			rc, err = openAndPing(ctx, func() (*database.RedisClient, error) {
				return database.NewRedis(cfg.Cache.Redis)
			})
			return err
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		readiness["redis"] = rc
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Info("Redis not configured, segment cache disabled")
	}

	// --- Panels ---
	queryTimeout := config.GetDuration(cfg.Warehouse.QueryTimeout)

	segments := segmentselector.NewHandler(&segmentselector.Config{
		Timeout:  queryTimeout,
		CacheTTL: config.GetDuration(cfg.Cache.SegmentTTL),
	}, wh, rc.GetClient(), log)

	billing := billingseries.NewHandler(&billingseries.Config{Timeout: queryTimeout}, wh, log)

	anomalies := anomalylister.NewHandler(&anomalylister.Config{
		Timeout: queryTimeout,
		Limit:   anomalylister.LoadConfig().Limit,
	}, wh, log)

	completer, err := copilotbridge.NewCompleter(cfg.Copilot, wh)
	if err != nil {
		zapLog.Fatal("failed to create copilot completer", zap.Error(err))
	}
	copilot := copilotbridge.NewHandler(&copilotbridge.Config{
		Model:   cfg.Copilot.Model,
		Timeout: config.GetDuration(cfg.Copilot.Timeout),
	}, completer, log)

	svc := dashboard.NewService(segments, billing, anomalies, copilot, log)

	// --- HTTP server ---
	srv, err := web.NewServer(cfg.Server, svc, obs, readiness, log)
	if err != nil {
		zapLog.Fatal("failed to create http server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received, stopping server...")
	case err := <-errCh:
		if err != nil {
			zapLog.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down http server", zap.Error(err))
	}

	zapLog.Info("Billing dashboard stopped gracefully")
}
