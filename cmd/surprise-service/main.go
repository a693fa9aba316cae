package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surprise-service/internal/app"
	"surprise-service/internal/common/config"
	"surprise-service/internal/common/logger"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.NewFromConfig(cfg.Logging)
	if err != nil {
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	zapLog.Info("Starting surprise service...",
		zap.String("environment", cfg.App.Environment),
		zap.String("command", cfg.Slack.Command),
	)

	application, err := app.New(cfg, log, app.Options{})
	if err != nil {
		zapLog.Fatal("service init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional stores only degrade their provider, so a failed ping is logged, not fatal.
	if application.Redis != nil {
		err = retryWithBackoff(func() error {
			return application.Redis.Ping(ctx)
		}, 3, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, weather cache disabled until it recovers", zap.Error(err))
		} else {
			zapLog.Info("Redis connected successfully")
		}
	}

	if application.Elasticsearch != nil {
		err = retryWithBackoff(func() error {
			return application.Elasticsearch.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, job provider will fail", zap.Error(err))
		} else {
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	if err := application.Run(ctx); err != nil {
		zapLog.Error("server stopped with error", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	application.Close(closeCtx)

	zapLog.Info("Surprise service stopped gracefully")
}
