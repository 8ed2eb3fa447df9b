// Package server exposes the habit use cases over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/habit/internal/app"
)

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 5 * time.Second

// Server is the habit HTTP API server.
type Server struct {
	c      *app.Container
	router *gin.Engine
	logger *slog.Logger
}

// New creates a new API server backed by the container's use cases.
func New(c *app.Container) *Server {
	router := gin.New()

	s := &Server{
		c:      c,
		router: router,
		logger: c.Slog,
	}

	router.Use(gin.Recovery(), s.requestLogger())

	// API routes
	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleList)
		api.POST("/tasks", s.handleCreate)
		api.POST("/tasks/complete", s.handleComplete)
		api.POST("/tasks/process-daily-rollover", s.handleRollover)
		api.GET("/tasks/:id", s.handleShow)
		api.PUT("/tasks/:id", s.handleEdit)
		api.DELETE("/tasks/:id", s.handleDelete)
		api.POST("/tasks/:id/reactivate", s.handleReactivate)
		api.GET("/tasks/:id/statistics", s.handleStatistics)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// requestLogger logs one line per request to the process logger.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
