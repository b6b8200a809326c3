package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthFunc reports whether the storage behind the API is reachable.
type HealthFunc func(ctx context.Context) error

// NewRouter assembles the catalog engine. limiter and health may be nil.
func NewRouter(h *Handler, logger *zap.Logger, limiter *RateLimiter, health HealthFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Logger(logger), Recovery(logger))

	router.GET("/manage/health", healthCheck(health))

	api := router.Group("/api/v1")
	if limiter != nil {
		api.Use(limiter.Middleware())
	}
	h.RegisterRoutes(api)

	return router
}

func healthCheck(health HealthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "DOWN",
					"details": "Database ping failed",
					"error":   err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	}
}
