// Package apiserver assembles the HTTP router for the FlowSight API.
package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/ai"
	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/apiserver/handler"
	"github.com/flowsight/flowsight/internal/apiserver/middleware"
	"github.com/flowsight/flowsight/internal/auth/jwt"
	"github.com/flowsight/flowsight/internal/common/config"
	"github.com/flowsight/flowsight/pkg/metrics"
)

// NewRouter wires every endpoint onto a gin engine. Read endpoints take
// an optional token so anonymous visitors land on the demo dataset;
// account and import endpoints require one.
func NewRouter(db database.Database, jwtService *jwt.Service, aiService *ai.Service, cfg *config.APIServerConfig, logger *zap.Logger) *gin.Engine {
	h := handler.NewHandler(db, jwtService, aiService, cfg, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	if cfg.Metrics.Enabled {
		m := metrics.NewHTTPMetrics(&cfg.Metrics)
		r.Use(m.Middleware())
		r.GET("/metrics", m.Handler())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.PUT("/password", middleware.JWTAuthMiddleware(jwtService), h.ChangePassword)
	}

	imports := r.Group("/api/import", middleware.JWTAuthMiddleware(jwtService))
	{
		imports.POST("/validate", h.ValidateImport)
		imports.POST("/process", h.ProcessImport)
		imports.GET("/template", h.ImportTemplate)
	}

	api := r.Group("/api", middleware.OptionalJWTMiddleware(jwtService))
	{
		api.GET("/dashboard", h.Dashboard)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/stats", h.OrderStats)
		api.GET("/users", h.ListUsers)
		api.GET("/users/stats", h.UserStats)
		api.GET("/subscriptions", h.ListSubscriptions)
		api.GET("/subscriptions/stats", h.SubscriptionStats)
		api.GET("/activity", h.ListActivity)
		api.GET("/activity/stats", h.ActivityStats)
		api.GET("/workspace", h.WorkspaceInfo)
		api.GET("/ai/summary", h.BusinessSummary)
		api.POST("/ai/explain-chart", h.ExplainChart)
	}

	return r
}
