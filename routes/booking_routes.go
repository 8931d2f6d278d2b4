package routes

import (
	"seatpool/internal/handlers"
	"seatpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes sets up the booking lifecycle and per-booking chat
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, paymentHandler *handlers.PaymentHandler, chatHandler *handlers.ChatHandler, jwtSecret string) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthRequired(jwtSecret))
	{
		bookings.POST("", bookingHandler.RequestBooking)
		bookings.GET("", bookingHandler.GetMyBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)

		// Driver decisions
		bookings.PUT("/:id/confirm", bookingHandler.ConfirmBooking)
		bookings.PUT("/:id/decline", bookingHandler.DeclineBooking)

		// Passenger withdrawal
		bookings.PUT("/:id/cancel", bookingHandler.CancelBooking)

		// Checkout
		bookings.POST("/:id/payment-intent", paymentHandler.CreatePaymentIntent)

		// Chat between passenger and driver
		bookings.POST("/:id/messages", chatHandler.SendMessage)
		bookings.GET("/:id/messages", chatHandler.GetMessages)
	}
}
