package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"geoclip-service/domain/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Dependencies are the application services the HTTP layer exposes
type Dependencies struct {
	Trimmer     Trimmer
	Housekeeper Housekeeper
	ClipStore   storage.ClipStore
	Logger      logrus.FieldLogger
}

// RouterConfig contains HTTP settings that shape the router
type RouterConfig struct {
	PublicBaseURL string
	MaxBodyBytes  int64
}

// NewRouter builds the gin engine with every route and middleware
func NewRouter(deps Dependencies, cfg RouterConfig) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestLogger(logger))
	r.Use(CORSMiddleware())

	trimHandler := NewTrimHandler(deps.Trimmer, cfg.PublicBaseURL, logger)
	videoHandler := NewVideoHandler(deps.ClipStore, logger)
	housekeeping := NewHousekeepingHandler(deps.Housekeeper, logger)

	r.GET("/ping", Ping)

	if cfg.MaxBodyBytes > 0 {
		r.POST("/trim", MaxBodySizeMiddleware(cfg.MaxBodyBytes), trimHandler.Trim)
	} else {
		r.POST("/trim", trimHandler.Trim)
	}

	r.GET("/video/:filename", videoHandler.ServeVideo)
	r.HEAD("/video/:filename", videoHandler.ServeVideo)

	trimmed := r.Group("/trimmed")
	{
		trimmed.GET("/count", housekeeping.Count)
		trimmed.DELETE("/delete-all", housekeeping.DeleteAll)
	}

	// Preflight requests to any path are answered by CORSMiddleware
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}

// Server runs the HTTP API until its context is cancelled
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          logrus.FieldLogger
}

// NewServer creates a server listening on addr
func NewServer(addr string, handler http.Handler, shutdownTimeout time.Duration, logger logrus.FieldLogger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Run serves requests until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", s.httpServer.Addr).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
