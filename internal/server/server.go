// Package server exposes the dashboard API: the current snapshot, price
// histories, health, Prometheus metrics and the static dashboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinchodeluca/scann-url/internal/logger"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "pricewatch"

// Deps are the data sources behind the routes. Metrics and StaticDir are
// optional.
type Deps struct {
	Snapshots SnapshotReader
	History   HistoryReader
	Metrics   http.Handler
	StaticDir string
	Version   string
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg    Config
	router *gin.Engine
	server *http.Server
	logger logger.Logger
}

// NewServer builds the router and the underlying http.Server.
func NewServer(cfg Config, deps Deps, log logger.Logger) *Server {
	cfg = cfg.WithDefaults()

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(recoveryMiddleware(log))
	router.Use(loggerMiddleware(log))

	h := &handlers{
		snapshots: deps.Snapshots,
		history:   deps.History,
		version:   deps.Version,
		started:   time.Now(),
	}

	router.GET("/health", h.health)
	router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/prices", h.prices)
	v1.GET("/history", h.allHistory)
	v1.GET("/history/:name", h.productHistory)

	if deps.StaticDir != "" {
		files := http.FileServer(http.Dir(deps.StaticDir))
		router.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	}

	return &Server{
		cfg:    cfg,
		router: router,
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: log,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server",
			logger.String("address", s.server.Addr),
			logger.Duration("read_timeout", s.server.ReadTimeout),
			logger.Duration("write_timeout", s.server.WriteTimeout),
		)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Context cancelled, shutting down")
	}

	//nolint:contextcheck // the parent context is already done
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("HTTP server stopped gracefully")
	return nil
}
