// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"surprise-service/internal/command"
	"surprise-service/internal/common/config"
	apperrors "surprise-service/internal/common/errors"
	"surprise-service/internal/common/logger"
)

// Executor runs one slash command invocation.
type Executor interface {
	Execute(ctx context.Context, input *command.Input) (*command.Output, error)
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Dependencies struct {
	Commands Executor
	Logger   logger.Logger
	Checks   map[string]Check
	Gatherer prometheus.Gatherer
}

type Server struct {
	config   config.ServerConfig
	commands Executor
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	checks   map[string]Check
	router   *gin.Engine
	http     *http.Server
}

func New(cfg config.ServerConfig, deps Dependencies) *Server {
	s := &Server{
		config:   cfg,
		commands: deps.Commands,
		errors:   apperrors.NewErrorHandler(deps.Logger),
		logger:   deps.Logger,
		checks:   deps.Checks,
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(deps.Logger), AccessLog(deps.Logger))

	r.GET("/", s.handleRoot)
	r.POST("/api", s.handleCommand)
	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	s.router = r
	s.http = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := config.GetDuration(s.config.ShutdownTimeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
