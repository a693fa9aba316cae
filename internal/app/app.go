// Package app wires configuration, clients, providers and the HTTP server.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"surprise-service/internal/command"
	"surprise-service/internal/common/config"
	"surprise-service/internal/common/database"
	httpclient "surprise-service/internal/common/http"
	"surprise-service/internal/common/logger"
	"surprise-service/internal/common/observability"
	"surprise-service/internal/providers"
	"surprise-service/internal/providers/dog"
	"surprise-service/internal/providers/job"
	"surprise-service/internal/providers/weather"
	"surprise-service/internal/server"
)

// App is the fully wired service.
type App struct {
	Config        *config.Config
	Logger        logger.Logger
	Server        *server.Server
	Observability *observability.Observability
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
	Registry      *providers.Registry
}

type Options struct {
	// Registerer receives the otel exporter collectors. Defaults to the
	// Prometheus default registerer.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Command    []command.Option
}

// New builds the service. Redis and Elasticsearch are optional: without Redis
// the weather provider runs uncached, without Elasticsearch the job provider
// fails every call.
func New(cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	obs, err := observability.New(cfg.Observability, registerer)
	if err != nil {
		return nil, fmt.Errorf("observability init failed: %w", err)
	}

	a := &App{
		Config:        cfg,
		Logger:        log,
		Observability: obs,
	}

	checks := map[string]server.Check{}

	var cache weather.Cache
	if cfg.Database.Redis.Address != "" {
		a.Redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			a.Close(context.Background())
			return nil, err
		}
		cache = a.Redis
		checks["redis"] = a.Redis.Ping
	} else {
		log.Warn("redis not configured, weather results are not cached", nil)
	}

	var searcher job.Searcher
	if len(cfg.Database.Elasticsearch.GetAddresses()) > 0 {
		a.Elasticsearch, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			a.Close(context.Background())
			return nil, err
		}
		searcher = a.Elasticsearch
		checks["elasticsearch"] = a.Elasticsearch.Ping
	} else {
		log.Warn("elasticsearch not configured, job provider is unavailable", nil)
	}

	dogCfg := dog.NewConfig(cfg.Providers.Dog)
	weatherCfg := weather.NewConfig(cfg.Providers.Weather)
	jobCfg := job.NewConfig(cfg.Providers.Job)

	a.Registry = providers.NewRegistry(
		dog.NewProvider(dogCfg, httpclient.NewClient(dogCfg.Timeout), log),
		weather.NewProvider(weatherCfg, httpclient.NewClient(weatherCfg.Timeout), cache, log),
		job.NewProvider(jobCfg, searcher, log),
	)

	commands := command.NewHandler(command.NewConfig(cfg.Slack), a.Registry, obs, log, opts.Command...)

	a.Server = server.New(cfg.Server, server.Dependencies{
		Commands: commands,
		Logger:   log,
		Checks:   checks,
		Gatherer: opts.Gatherer,
	})

	return a, nil
}

// Run serves until ctx is cancelled, then drains the server.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutdown signal received, draining requests", nil)
	if err := a.Server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

// Close releases clients and flushes telemetry.
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("error closing redis client", map[string]interface{}{"error": err.Error()})
		}
	}
	if err := a.Observability.Shutdown(ctx); err != nil {
		a.Logger.Error("error shutting down observability", map[string]interface{}{"error": err.Error()})
	}
}
