package server

import (
	"context"
	"fmt"
	"net/http"

	"solana-trade-bot-go/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server exposes the trade service over HTTP.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// New creates the HTTP server with all routes registered.
func New(cfg *config.Server, service TradeService, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: newRouter(cfg, service, logger),
		},
		logger: logger.Named("api-server"),
	}
}

// newRouter wires the handlers; split out so tests can drive the routes
// without a listening socket.
func newRouter(cfg *config.Server, service TradeService, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &handler{service: service, logger: logger.Named("api")}
	router.GET("/health", h.health)

	authed := router.Group("/", apiKeyAuth(cfg.APIKey))
	authed.POST("/buy", h.buy)
	authed.POST("/sell", h.sell)
	authed.GET("/pnl/:userId", h.pnl)

	return router
}

// Start runs the HTTP server in a new goroutine.
func (s *Server) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}
