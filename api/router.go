package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"morsel_sales/internal/sales"
)

// InitRoutes registers the dashboard endpoints on the given Gin engine.
// The service wraps the canonical table loaded once at startup; every request
// recomputes from it.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger, allowedOrigins []string) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(allowedOrigins) > 0 {
		e.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	m := newMetrics(salesService.Metadata().RecordCount)
	salesHandler := NewSalesHandler(salesService, logger, m)

	e.GET("/sales/dashboard", salesHandler.handleDashboard)
	e.GET("/sales/meta", salesHandler.handleMetadata)
	e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})))

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
