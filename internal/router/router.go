package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/internal/api"
	"github.com/calorieking/backend/internal/middleware"
)

// Dependencies groups everything the route table needs
type Dependencies struct {
	AuthHandler   *api.AuthHandler
	MealHandler   *api.MealHandler
	HealthHandler *api.HealthHandler
	Sessions      middleware.SessionValidator
	// AnalysisLimiter is optional; nil disables rate limiting.
	AnalysisLimiter *middleware.RateLimiter
	AllowedOrigins  []string
	Log             logrus.FieldLogger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.ErrorHandler(deps.Log))
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.Authenticate(deps.Sessions, deps.Log))

	router.GET("/health", deps.HealthHandler.HealthCheck)

	analysis := []gin.HandlerFunc{}
	if deps.AnalysisLimiter != nil {
		analysis = append(analysis, deps.AnalysisLimiter.Middleware())
	}

	router.POST("/analyze", append(analysis, deps.MealHandler.Analyze)...)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", deps.HealthHandler.HealthCheck)
		apiGroup.POST("/register", deps.AuthHandler.Register)
		apiGroup.POST("/login", deps.AuthHandler.Login)
		apiGroup.GET("/current-user", deps.AuthHandler.CurrentUser)
		apiGroup.POST("/reanalyze-item", append(analysis, deps.MealHandler.ReanalyzeItem)...)
	}

	// Protected routes
	protected := apiGroup.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.POST("/logout", deps.AuthHandler.Logout)
		protected.GET("/meals", deps.MealHandler.ListMeals)
		protected.DELETE("/meals/:id", deps.MealHandler.DeleteMeal)
	}

	return router
}
