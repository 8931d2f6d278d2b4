package routes

import (
	"seatpool/internal/handlers"
	"seatpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes sets up ride listing, search and management
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, bookingHandler *handlers.BookingHandler, reviewHandler *handlers.ReviewHandler, jwtSecret string) {
	// Public browsing
	rides := r.Group("/rides")
	{
		rides.GET("", rideHandler.SearchRides)
		rides.GET("/:id", rideHandler.GetRide)
		rides.GET("/:id/reviews", reviewHandler.GetRideReviews)
	}

	// Driver operations
	protected := r.Group("/rides")
	protected.Use(middleware.AuthRequired(jwtSecret))
	{
		protected.POST("", rideHandler.CreateRide)
		protected.PUT("/:id", rideHandler.UpdateRide)
		protected.DELETE("/:id", rideHandler.DeleteRide)
		protected.GET("/:id/bookings", bookingHandler.GetRideBookings)
	}

	mine := r.Group("/my-rides")
	mine.Use(middleware.AuthRequired(jwtSecret))
	{
		mine.GET("", rideHandler.GetMyRides)
	}
}
