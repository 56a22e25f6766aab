package routes

import (
	"github.com/gin-gonic/gin"

	"ecanteen/internal/authz"
	"ecanteen/internal/handlers"
	"ecanteen/internal/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Order      *handlers.OrderHandler
	FoodItem   *handlers.FoodItemHandler
	Restaurant *handlers.RestaurantHandler
	Health     *handlers.HealthHandler
	Board      *handlers.BoardHandler
}

// SetupRoutes mounts the API under /api. otpLimit guards the endpoints that
// send mail or check passcodes; it may be nil.
func SetupRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenParser, otpLimit gin.HandlerFunc) *gin.Engine {
	if otpLimit == nil {
		otpLimit = func(c *gin.Context) { c.Next() }
	}
	requireAuth := middleware.AuthMiddleware(tokens)
	staff := middleware.RequireRoles(authz.RoleSeller, authz.RoleAdmin)
	admin := middleware.RequireRoles(authz.RoleAdmin)

	api := r.Group("/api")
	api.GET("/health", h.Health.Health)

	// ---- auth
	auth := api.Group("/auth")
	{
		auth.POST("/register", otpLimit, h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/forgot-password", otpLimit, h.Auth.ForgotPassword)
		auth.POST("/verify-otp", otpLimit, h.Auth.VerifyOTP)
		auth.POST("/reset-password", otpLimit, h.Auth.ResetPassword)
		auth.POST("/resend-otp", otpLimit, h.Auth.ResendOTP)
		auth.POST("/verify-email", otpLimit, h.Auth.VerifyEmail)
		auth.POST("/resend-verification", otpLimit, h.Auth.ResendVerification)
		auth.GET("/me", requireAuth, h.Auth.Me)
	}

	// ---- catalog
	items := api.Group("/food-items")
	{
		items.GET("", h.FoodItem.List)
		items.GET("/data/categories", h.FoodItem.Categories)
		items.GET("/:id", h.FoodItem.Get)
		items.POST("", requireAuth, admin, h.FoodItem.Create)
		items.PUT("/:id", requireAuth, admin, h.FoodItem.Update)
		items.DELETE("/:id", requireAuth, admin, h.FoodItem.Delete)
	}

	api.GET("/restaurant", h.Restaurant.Get)
	api.PUT("/restaurant", requireAuth, admin, h.Restaurant.Update)

	// ---- protected
	users := api.Group("/users", requireAuth)
	{
		users.GET("/profile", h.User.GetProfile)
		users.PUT("/profile", h.User.UpdateProfile)
		users.PUT("/change-password", h.User.ChangePassword)
	}

	orders := api.Group("/orders", requireAuth)
	{
		orders.GET("", h.Order.List)
		orders.POST("", h.Order.Create)
		orders.GET("/:id", h.Order.Get)
		orders.GET("/:id/receipt", h.Order.Receipt)
		orders.PATCH("/:id/status", staff, h.Order.UpdateStatus)
		if h.Board != nil {
			orders.GET("/stream", staff, h.Board.Stream)
		}
	}

	return r
}
