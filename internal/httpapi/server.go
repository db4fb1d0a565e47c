// Package httpapi exposes the matcher over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/pipeline"
	"github.com/spigell/fundraiser/internal/scoring"
)

const (
	DefaultAddr = ":8000"

	readTimeout     = 30 * time.Second
	writeTimeout    = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Service is the part of the pipeline the handlers need.
type Service interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Result
	DraftEmail(ctx context.Context, inv investor.Investor, score *scoring.Score, brief investor.Brief, useLLM bool) string
}

type Server struct {
	router *gin.Engine
	server *http.Server
	logger *zap.Logger
}

// NewServer builds the router and the underlying http.Server.
func NewServer(addr string, svc Service, debug bool, log *zap.Logger) *Server {
	log = logger.OrNop(log)

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if addr == "" {
		addr = DefaultAddr
	}

	router := NewRouter(NewHandler(svc, log), log)

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger: log,
	}
}

// NewRouter registers the API routes on a fresh engine.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(recoveryMiddleware(log), loggerMiddleware(log))

	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	api.POST("/generate", h.Generate)
	api.POST("/generate_email", h.GenerateEmail)

	return router
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", zap.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server", zap.Duration("timeout", shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return <-errCh
}

func loggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func recoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
