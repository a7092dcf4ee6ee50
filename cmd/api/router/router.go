package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutri-lens/cmd/api/handlers"
	"nutri-lens/cmd/api/middleware"
	"nutri-lens/cmd/api/services"
)

// Services are the dependencies of every route.
type Services struct {
	Products     *services.ProductService
	Users        *services.UserService
	Consumptions *services.ConsumptionService
	Analyses     *services.AnalysisService
	CronSecret   string
	// Health reports whether the database is reachable. nil skips the check.
	Health func(ctx context.Context) error
}

func New(s Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLoggingMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if s.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := s.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/products", handlers.ListProductsHandler(s.Products))
		api.GET("/products/:id", handlers.GetProductHandler(s.Products))
		api.GET("/products/:id/overview", handlers.GetProductOverviewHandler(s.Products))
		api.GET("/products/:id/nutrition", handlers.GetNutritionHandler(s.Products))
		api.GET("/products/:id/ingredients", handlers.ListIngredientsHandler(s.Products))
		api.GET("/products/:id/claims", handlers.ListClaimsHandler(s.Products))
		api.GET("/products/:id/allergens", handlers.ListAllergensHandler(s.Products))
		api.GET("/categories", handlers.ListCategoriesHandler(s.Products))

		user := api.Group("", middleware.UserMiddleware())
		user.POST("/products", handlers.SubmitProductHandler(s.Products))
		user.GET("/products/:id/personalized", handlers.GetPersonalizedOverviewHandler(s.Products))
		user.POST("/consumptions", handlers.LogConsumptionHandler(s.Consumptions))
		user.GET("/users/me", handlers.GetCurrentUserHandler(s.Users))
		user.POST("/users/me", handlers.OnboardUserHandler(s.Users))
		user.PUT("/users/me", handlers.UpdateUserHandler(s.Users))
		user.GET("/users/me/analysis", handlers.GetLatestAnalysisHandler(s.Analyses))

		api.GET("/cron/analyze", middleware.CronAuthMiddleware(s.CronSecret), handlers.CronAnalyzeHandler(s.Analyses))
	}

	return r
}
