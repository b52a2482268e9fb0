package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/impairment-ledger/internal/api_gateway/handler"
	"github.com/impairment-ledger/internal/api_gateway/service"
	"github.com/impairment-ledger/internal/config"
)

// Server serves the impairment API until stopped
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// NewServer wires the handlers for the impairment and history services onto a gin router
func NewServer(log *slog.Logger, cfg *config.Config, impairmentService service.ImpairmentService, historyService service.HistoryService) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()
	setupRouter(
		log,
		httpRouter,
		cfg.Auth,
		handler.NewImpairmentHandler(log, impairmentService),
		handler.NewHistoryHandler(log, historyService),
	)

	return &Server{
		logger: log,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           httpRouter,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until Stop is called
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests. Without a deadline on ctx the configured
// shutdown timeout applies.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")

	if _, ok := ctx.Deadline(); !ok && s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
