// Package api serves read-only views of the exchange over HTTP: a gin REST
// API with a JSON-RPC price endpoint, and a separate monitoring router for
// health probes and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/paw-chain/pawdex/x/dex/keeper"
)

// Backend is the committed state the API reads from
type Backend interface {
	Query(ctx context.Context, fn func(sdk.Context) error) error
	Querier() keeper.Querier
	Height() int64
}

// Config holds server configuration
type Config struct {
	Address         string
	MonitorAddress  string
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	// RateLimitTTL is how long an idle client IP keeps its bucket
	RateLimitTTL    time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Address:         "127.0.0.1:1317",
		MonitorAddress:  "127.0.0.1:36660",
		CORSOrigins:     []string{"*"},
		RateLimitRPS:    20,
		RateLimitBurst:  40,
		RateLimitTTL:    10 * time.Minute,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server represents the API server
type Server struct {
	router  *gin.Engine
	handler http.Handler
	backend Backend
	config  *Config
	limiter *IPRateLimiter
	logger  log.Logger
}

// NewServer creates a new API server instance
func NewServer(backend Backend, config *Config, logger log.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Server{
		backend: backend,
		config:  config,
		logger:  logger.With("module", "api"),
	}
	s.setupRouter()
	return s
}

// setupRouter configures the gin router with all routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()

	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(SecurityHeadersMiddleware())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	if s.config.RateLimitRPS > 0 {
		s.limiter = NewIPRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst, s.config.RateLimitTTL)
		s.router.Use(s.limiter.Middleware())
	}

	s.registerRoutes()

	s.handler = cors.New(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         86400,
	}).Handler(s.router)
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/params", s.handleGetParams)

		markets := v1.Group("/markets")
		{
			markets.GET("", s.handleGetMarkets)
			markets.GET("/:base/:quote", s.handleGetMarket)
			markets.GET("/:base/:quote/price", s.handleGetPrice)
			markets.GET("/:base/:quote/simulate", s.handleSimulate)
			markets.GET("/:base/:quote/positions/:address", s.handleGetPosition)
		}
	}

	s.router.POST("/rpc", s.handleRPC)
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "route not found", Code: "NOT_FOUND"})
	})
}

// Handler returns the CORS-wrapped router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves the API until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	if s.limiter != nil {
		go s.limiter.Run(ctx, time.Minute)
	}
	return serve(ctx, s.logger, &http.Server{
		Addr:           s.config.Address,
		Handler:        s.handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}, s.config.ShutdownTimeout)
}

func serve(ctx context.Context, logger log.Logger, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("HTTP server stopped", "address", srv.Addr)
	return nil
}
