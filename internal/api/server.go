package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stock-intelligence/internal/checkpoint"
	"stock-intelligence/internal/decision"
	"stock-intelligence/internal/market"
	"stock-intelligence/internal/metrics"
)

// MarketData is the slice of the market client the handlers need
type MarketData interface {
	FetchIntraday(ctx context.Context, symbol, interval, rng string) ([]market.Candle, error)
	FetchFrames(ctx context.Context, symbol string) (market.Frames, error)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string
	ProductionMode bool
	MetricsEnabled bool
	DefaultSymbol  string
}

// Server represents the HTTP API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     ServerConfig

	data     MarketData
	pipeline *decision.Pipeline
	store    *checkpoint.Store
	runner   *checkpoint.Runner
	log      zerolog.Logger
}

// NewServer creates a new API server
func NewServer(
	config ServerConfig,
	data MarketData,
	pipeline *decision.Pipeline,
	store *checkpoint.Store,
	runner *checkpoint.Runner,
	log zerolog.Logger,
) *Server {
	// Set Gin mode
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:   router,
		config:   config,
		data:     data,
		pipeline: pipeline,
		store:    store,
		runner:   runner,
		log:      log,
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	if s.config.MetricsEnabled {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := s.router.Group("/api/v1")
	{
		api.GET("/analyze", s.handleAnalyze)
		api.GET("/advanced-analyze", s.handleAdvancedAnalyze)

		api.GET("/checkpoints", s.handleGetCheckpoints)
		api.POST("/checkpoints/trigger", s.handleTriggerCheckpoint)
	}
}

// Router exposes the gin engine, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stock-intelligence",
		"redis":   s.store.IsAvailable(),
		"time":    time.Now().In(market.IST).Format(time.RFC3339),
	})
}

// errorResponse is a helper to send error responses
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}
