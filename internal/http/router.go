package api

import (
	stdhttp "net/http"

	"fumotion/internal/auth"
	intconfig "fumotion/internal/config"
	"fumotion/internal/domain"
	"fumotion/internal/http/handlers"
	"fumotion/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the router needs from main.
type Deps struct {
	Env     intconfig.Env
	Handler *handlers.Handler
	Tokens  auth.Issuer
	// Limiter guards the auth endpoints; nil disables rate limiting.
	Limiter *middleware.RateLimiter
	Log     *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	h := d.Handler
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		gin.Recovery(),
		middleware.CORS(d.Env.CORSAllowedOrigins),
		middleware.Metrics(),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"code":       "not_found",
			"message":    "route not found",
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := middleware.Auth(d.Tokens)
	admin := middleware.RequireRoles(domain.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		authGroup := api.Group("/auth")
		authGroup.POST("/register", d.Limiter.Middleware(), h.Register)
		authGroup.POST("/login", d.Limiter.Middleware(), h.Login)
		authGroup.GET("/me", authed, h.Me)
		authGroup.PUT("/me", authed, h.UpdateMe)
		authGroup.PUT("/password", authed, h.ChangePassword)

		// Users (public profiles)
		users := api.Group("/users")
		users.GET("/:id", h.GetUser)
		users.GET("/:id/reviews", h.ListUserReviews)

		// Vehicles
		vehicles := api.Group("/vehicles", authed)
		vehicles.GET("", h.ListVehicles)
		vehicles.POST("", h.CreateVehicle)
		vehicles.PUT("/:id", h.UpdateVehicle)
		vehicles.DELETE("/:id", h.DeleteVehicle)

		// Trips
		trips := api.Group("/trips")
		trips.GET("", h.SearchTrips)
		trips.GET("/mine", authed, h.MyTrips)
		trips.GET("/:id", h.GetTrip)
		trips.GET("/:id/availability", h.TripAvailability)
		trips.POST("", authed, h.CreateTrip)
		trips.PUT("/:id", authed, h.UpdateTrip)
		trips.PUT("/:id/status", authed, h.UpdateTripStatus)
		trips.GET("/:id/bookings", authed, h.TripBookings)
		trips.POST("/:id/book", authed, h.BookTrip)
		trips.POST("/:id/reviews", authed, h.CreateReview)

		// Bookings
		bookings := api.Group("/bookings", authed)
		bookings.GET("", h.MyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/ticket", h.BookingTicket)
		bookings.PUT("/:id/cancel", h.CancelBooking)
		bookings.PUT("/:id/status", h.UpdateBookingStatus)
		bookings.PUT("/:id/payment", h.UpdatePaymentStatus)

		// Messages
		messages := api.Group("/messages", authed)
		messages.POST("", h.SendMessage)
		messages.GET("/conversations", h.Conversations)
		messages.GET("/unread-count", h.UnreadCount)
		messages.GET("/:userId", h.Thread)
		messages.PUT("/:userId/read", h.MarkThreadRead)

		// Admin
		adminGroup := api.Group("/admin", authed, admin)
		adminGroup.GET("/users", h.AdminListUsers)
		adminGroup.PUT("/users/:id/status", h.AdminSetUserStatus)
		adminGroup.PUT("/trips/:id/status", h.UpdateTripStatus)
		adminGroup.GET("/stats", h.AdminStats)
	}

	h.SetRouter(r)
	return r
}
