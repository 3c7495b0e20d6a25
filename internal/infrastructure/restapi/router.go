package restapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter wires the monitoring API, health and Prometheus endpoints.
func SetupRouter(handler *MonitorHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/alerts", handler.ListAlerts)
		v1.POST("/alerts/prune", handler.PruneAlerts)

		v1.GET("/thresholds/:symbol", handler.GetThreshold)
		v1.PUT("/thresholds/:symbol", handler.SetThreshold)

		v1.GET("/targets", handler.ListTargets)
		v1.POST("/targets", handler.RegisterTarget)
		v1.DELETE("/targets/:kind/:chain/:address", handler.UnregisterTarget)

		v1.GET("/snapshots/:kind/:chain/:address", handler.GetSnapshot)
		v1.GET("/summary", handler.GetSummary)
	}

	return router
}

// ZapLoggerMiddleware logs every request with its status and latency.
func ZapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("HTTP")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIP", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			logger.Warn(c.Errors.String(), fields...)
			return
		}
		logger.Debug("Request served", fields...)
	}
}
