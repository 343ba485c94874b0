// Package router assembles the gin engine from handlers and middleware.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fetchtube/fetchtube/internal/handler"
	"github.com/fetchtube/fetchtube/internal/middleware"
	"github.com/fetchtube/fetchtube/internal/ratelimit"
)

// New builds the service router. Rate limiting covers the two core
// operations identically; health and metrics stay outside the budget.
func New(mediaHandler *handler.MediaHandler, limiter *ratelimit.Limiter, corsOrigins string) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.CORS(corsOrigins))

	healthHandler := handler.NewHealthHandler()
	engine.GET("/healthz", healthHandler.Liveness)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := engine.Group("/", middleware.RateLimit(limiter))
	limited.POST("/metadata", mediaHandler.Metadata)
	limited.POST("/download", mediaHandler.Download)

	return engine
}
