package routes

import (
	"seatpool/internal/handlers"
	"seatpool/internal/middleware"
	"seatpool/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Vehicle *handlers.VehicleHandler
	Ride    *handlers.RideHandler
	Booking *handlers.BookingHandler
	Payment *handlers.PaymentHandler
	Review  *handlers.ReviewHandler
	Chat    *handlers.ChatHandler
	WS      *websocket.Handler
}

// Setup wires all routes onto the engine.
func Setup(router *gin.Engine, h *Handlers, jwtSecret string) {
	api := router.Group("/api/v1")

	SetupAuthRoutes(api, h.Auth)
	SetupUserRoutes(api, h.User, jwtSecret)
	SetupVehicleRoutes(api, h.Vehicle, jwtSecret)
	SetupRideRoutes(api, h.Ride, h.Booking, h.Review, jwtSecret)
	SetupBookingRoutes(api, h.Booking, h.Payment, h.Chat, jwtSecret)
	SetupReviewRoutes(api, h.Review, jwtSecret)
	SetupWebhookRoutes(api, h.Payment)

	// Live updates: ride watchers and booking chats share one socket.
	router.GET("/ws", middleware.AuthRequired(jwtSecret), h.WS.HandleWebSocket)
}
