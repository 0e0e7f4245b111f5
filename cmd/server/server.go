// cmd/server/server.go
// HTTP server setup with dependency injection

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"eventengine/internal/api"
	"eventengine/internal/config"
	"eventengine/internal/database"
	"eventengine/internal/middleware"
	"eventengine/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	services *services.Container
	logger   zerolog.Logger
	server   *http.Server
}

// New creates a new server with all dependencies
func New(cfg *config.Config, db *database.Connections, logger zerolog.Logger) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	serviceContainer := services.NewContainer(db, cfg, logger)

	router := setupRouter(cfg, serviceContainer, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		config:   cfg,
		router:   router,
		services: serviceContainer,
		logger:   logger,
		server:   srv,
	}
}

// setupRouter configures all routes and middleware
func setupRouter(cfg *config.Config, svc *services.Container, logger zerolog.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimiter(svc.Cache))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	if cfg.Features.MaintenanceMode {
		router.Use(middleware.MaintenanceMode())
	}

	router.GET("/health", api.HealthCheck(cfg))

	api.RegisterRoutes(router, svc, cfg)

	router.Static("/uploads", cfg.Storage.UploadPath)

	return router
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")
	s.services.Close()
	return s.server.Shutdown(ctx)
}
