// Package router sets up the HTTP routing for the application.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ethergyx/backend/internal/integration/entrypoint/controller"
	"github.com/ethergyx/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine              *gin.Engine
	healthController    *controller.HealthController
	authController      *controller.AuthController
	userController      *controller.UserController
	dashboardController *controller.DashboardController
	authRateLimiter     middleware.Limiter
	authMiddleware      *middleware.AuthMiddleware
	metricsHandler      http.Handler
}

// NewRouter creates a new router instance with all dependencies.
// A nil rate limiter disables rate limiting and a nil metrics handler
// leaves /metrics unregistered.
func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	userController *controller.UserController,
	dashboardController *controller.DashboardController,
	authRateLimiter middleware.Limiter,
	authMiddleware *middleware.AuthMiddleware,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		healthController:    healthController,
		authController:      authController,
		userController:      userController,
		dashboardController: dashboardController,
		authRateLimiter:     authRateLimiter,
		authMiddleware:      authMiddleware,
		metricsHandler:      metricsHandler,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check and metrics endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
	if r.metricsHandler != nil {
		r.engine.GET("/metrics", gin.WrapH(r.metricsHandler))
	}
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	limited := r.rateLimit()

	v1 := r.engine.Group("/api/v1")
	{
		if r.authController != nil {
			auth := v1.Group("/auth")
			{
				auth.POST("/register", append(limited, r.authController.Register)...)
				auth.POST("/login", append(limited, r.authController.Login)...)
				auth.POST("/refresh", r.authController.RefreshToken)
				auth.POST("/logout", r.authController.Logout)
				auth.POST("/forgot-password", append(limited, r.authController.ForgotPassword)...)
				auth.POST("/reset-password", r.authController.ResetPassword)
				auth.GET("/confirm", r.authController.ConfirmEmail)
				auth.POST("/password-strength", r.authController.PasswordStrength)
			}
		}

		if r.userController != nil && r.authMiddleware != nil {
			users := v1.Group("/users")
			users.Use(r.authMiddleware.Authenticate())
			{
				users.GET("/me", r.userController.GetMe)
				users.DELETE("/me", r.userController.DeleteAccount)
			}
		}

		if r.dashboardController != nil && r.authMiddleware != nil {
			dashboard := v1.Group("/dashboard")
			dashboard.Use(r.authMiddleware.Authenticate())
			{
				dashboard.GET("", r.dashboardController.GetDashboard)
				dashboard.POST("/activities", r.dashboardController.RecordActivity)
			}
		}
	}
}

func (r *Router) rateLimit() []gin.HandlerFunc {
	if r.authRateLimiter == nil {
		return nil
	}
	return []gin.HandlerFunc{middleware.RateLimit(r.authRateLimiter)}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
