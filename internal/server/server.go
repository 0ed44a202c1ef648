// Package server serves calculator sessions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/keycalc/internal/session"
)

// Server is the HTTP adapter.
type Server struct {
	store  *session.Store
	log    logrus.FieldLogger
	router *gin.Engine
}

// New creates a server over store. mode is a gin mode: debug, release, or
// test.
func New(store *session.Store, log logrus.FieldLogger, mode string) *Server {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	s := &Server{store: store, log: log}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.loggerMiddleware())
	s.registerRoutes(r)
	s.router = r
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	api := r.Group("/api/v1")
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("", s.create)
			sessions.GET("/:id", s.get)
			sessions.DELETE("/:id", s.delete)
			sessions.POST("/:id/append", s.append)
			sessions.POST("/:id/clear", s.clear)
			sessions.POST("/:id/commit", s.commit)
			sessions.POST("/:id/keys", s.keys)
		}
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("starting server")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.log.WithFields(logrus.Fields{
			"method":   method,
			"path":     path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}).Info("HTTP request")
	}
}
