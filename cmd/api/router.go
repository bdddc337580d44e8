package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"homefinder-backend/internal/shared"
	"homefinder-backend/internal/shared/middleware"
	"homefinder-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.AllowedOrigins()),
	)
	if c.Metrics != nil {
		router.Use(middleware.Metrics(c.Metrics))
		router.GET("/metrics", gin.WrapH(c.Metrics.Handler()))
	}

	// Websocket sessions authenticate with ?token= since browsers cannot set headers
	router.GET("/ws", c.RealtimeHandler.ServeWS)

	auth := middleware.AuthMiddleware(c.JWTManager, c.Cache, c.Config.JWT.CookieName)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c, auth)
		setupPropertyRoutes(v1, c, auth)
		setupBookingRoutes(v1, c, auth)
		setupChatRoutes(v1, c, auth)
		setupGeocodeRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", c.UserHandler.Register)
		authGroup.POST("/verify-email-otp", c.UserHandler.VerifyEmailOTP)
		authGroup.POST("/login", c.UserHandler.Login)
		authGroup.POST("/forgotpassword", c.UserHandler.ForgotPassword)

		authGroup.POST("/logout", auth, c.UserHandler.Logout)
		authGroup.GET("/me", auth, c.UserHandler.GetMe)
		authGroup.PUT("/updatedetails", auth, c.UserHandler.UpdateDetails)
		authGroup.PUT("/updatepassword", auth, c.UserHandler.UpdatePassword)
	}
}

// ========================================
// PROPERTY ROUTES
// ========================================
func setupPropertyRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	properties := v1.Group("/properties")
	{
		// Public
		properties.GET("", c.PropertyHandler.ListProperties)
		properties.GET("/with-availability", c.PropertyHandler.ListWithAvailability)
		properties.GET("/:id", c.PropertyHandler.GetProperty)
		properties.GET("/:id/check-availability", c.BookingHandler.CheckAvailability)
		properties.POST("/:id/check-availability", c.BookingHandler.CheckAvailability)

		// Authenticated
		properties.GET("/my-properties", auth, c.PropertyHandler.GetMyProperties)
		properties.GET("/my-properties/export", auth, c.PropertyHandler.ExportMyProperties)
		properties.POST("", auth, c.PropertyHandler.CreateProperty)
		properties.PUT("/:id", auth, c.PropertyHandler.UpdateProperty)
		properties.DELETE("/:id", auth, c.PropertyHandler.DeleteProperty)

		// Bookings nested under a property
		properties.POST("/:id/bookings", auth, c.BookingHandler.CreateBooking)
		properties.GET("/:id/bookings", auth, c.BookingHandler.ListPropertyBookings)
		properties.POST("/:id/bookings/demo-booking", auth, c.BookingHandler.CreateDemoBooking)
	}
}

// ========================================
// BOOKING ROUTES
// ========================================
func setupBookingRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	bookings := v1.Group("/bookings")
	bookings.Use(auth)
	{
		bookings.GET("", middleware.RequireRole(shared.RoleAdmin), c.BookingHandler.ListAll)
		bookings.GET("/my-bookings", c.BookingHandler.ListMyBookings)
		bookings.GET("/my-property-bookings", c.BookingHandler.ListMyPropertyBookings)
		bookings.GET("/:id", c.BookingHandler.GetBooking)
		bookings.PUT("/:id", c.BookingHandler.UpdateBooking)
		bookings.DELETE("/:id", c.BookingHandler.DeleteBooking)
	}
}

// ========================================
// CHAT ROUTES
// ========================================
func setupChatRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	chats := v1.Group("/chats")
	chats.Use(auth)
	{
		chats.GET("", c.ChatHandler.ListMyChats)
		chats.POST("", c.ChatHandler.StartChat)
		chats.GET("/unread-count", c.ChatHandler.UnreadCount)
		chats.GET("/:id", c.ChatHandler.GetChat)
		chats.POST("/:id/messages", c.ChatHandler.SendMessage)
		chats.PUT("/:id/read", c.ChatHandler.MarkRead)
	}
}

// ========================================
// GEOCODE ROUTES
// ========================================
func setupGeocodeRoutes(v1 *gin.RouterGroup, c *container.Container) {
	geocode := v1.Group("/geocode")
	{
		geocode.GET("/reverse", c.LocationHandler.Reverse)
		geocode.GET("/forward", c.LocationHandler.Forward)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		// Postgres and Mongo are required, Redis only degrades the service
		dbStatus := checkStatus(appCtx.DB != nil, func() error { return appCtx.DB.HealthCheck(ctx) })
		mongoStatus := checkStatus(appCtx.Mongo != nil, func() error { return appCtx.Mongo.HealthCheck(ctx) })
		redisStatus := "in-memory fallback"
		if appCtx.Redis != nil {
			redisStatus = checkStatus(true, func() error { return appCtx.Redis.HealthCheck(ctx) })
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"mongo":    mongoStatus,
			"redis":    redisStatus,
			"realtime": gin.H{"sessions": appCtx.Hub.SessionCount()},
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" || mongoStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
			health["status"] = "degraded"
		} else if appCtx.Redis == nil || redisStatus != "ok" {
			health["status"] = "degraded"
		}

		c.JSON(statusCode, health)
	}
}

func checkStatus(connected bool, ping func() error) string {
	if !connected {
		return "disconnected"
	}
	if err := ping(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
