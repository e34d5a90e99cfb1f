package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/andrescamacho/imperium/internal/adapters/metrics"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/domain/shared"
	"github.com/andrescamacho/imperium/internal/infrastructure/config"
)

// Server exposes the application over HTTP. Every route dispatches through
// the mediator; handlers never touch repositories.
type Server struct {
	mediator    mediator.Mediator
	server      config.ServerConfig
	auth        config.AuthConfig
	metricsPath string
	limiter     *RateLimiter
	logger      *zap.Logger
	handler     http.Handler
}

// NewServer builds the router. metricsPath is served only when the metrics
// registry is initialised.
func NewServer(med mediator.Mediator, serverCfg config.ServerConfig, authCfg config.AuthConfig, metricsPath string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mediator:    med,
		server:      serverCfg,
		auth:        authCfg,
		metricsPath: metricsPath,
		limiter:     NewRateLimiter(serverCfg.RateLimit),
		logger:      logger.Named("api"),
	}
	s.handler = s.withCORS(s.routes())
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(s.logger))

	engine.GET("/healthz", s.Health)
	if metrics.IsEnabled() && s.metricsPath != "" {
		engine.GET(s.metricsPath, gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	}

	v1 := engine.Group("/api/v1", ActorAuth(s.auth), s.limiter.Middleware())

	v1.GET("/empire", s.GetEmpire)
	v1.GET("/empire/credits/history", s.GetCreditHistory)

	for _, track := range shared.AllTracks() {
		group := v1.Group("/" + track.String())
		group.POST("/start", s.StartProduction(track))
		group.GET("/queue", s.ListQueue(track))
		group.DELETE("/queue/:id", s.CancelProduction(track))
	}

	return engine
}

func (s *Server) withCORS(h http.Handler) http.Handler {
	if len(s.server.CORS.AllowedOrigins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.server.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", s.auth.Header},
		ExposedHeaders: []string{requestIDKey},
		MaxAge:         300,
	}).Handler(h)
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.server.Host, strconv.Itoa(s.server.Port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  s.server.ReadTimeout,
		WriteTimeout: s.server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	pruneTicker := time.NewTicker(time.Minute)
	defer pruneTicker.Stop()

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server failed: %w", err)
		case now := <-pruneTicker.C:
			s.limiter.Prune(now)
		case <-ctx.Done():
			s.logger.Info("http server shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http server shutdown: %w", err)
			}
			return nil
		}
	}
}

// Health reports liveness
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
