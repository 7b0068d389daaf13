// Package server exposes the cut plan optimizer over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/piwi3910/LayCut/internal/config"
	"github.com/piwi3910/LayCut/internal/engine"
	"github.com/piwi3910/LayCut/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RootMessage is the liveness text served at "/".
const RootMessage = "Garment Cutting Application Backend Running Successfully"

// Server wires the optimizer, the exporters and the importer to gin routes.
type Server struct {
	cfg       config.Config
	log       *zap.Logger
	optimizer *engine.Optimizer
	registry  *prometheus.Registry
	metrics   *Metrics
	router    *gin.Engine
	http      *http.Server
}

// New builds a server from the configuration. A nil logger disables logging.
func New(cfg config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(cfg.Server.Mode)

	registry := prometheus.NewRegistry()
	s := &Server{
		cfg:       cfg,
		log:       log,
		optimizer: engine.New(cfg.ApplyToSettings(model.DefaultSettings())),
		registry:  registry,
		metrics:   NewMetrics(registry),
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.log), recovery(s.log), cors.New(corsConfig(s.cfg.CORS)))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, RootMessage)
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api/orders")
	api.POST("/optimize-cutting", s.handleOptimize)
	api.POST("/compare", s.handleCompare)
	api.POST("/import", s.handleImport)

	return r
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowOrigins) == 0 || slices.Contains(c.AllowOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowOrigins
	}
	return cc
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", zap.String("addr", s.cfg.Server.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
