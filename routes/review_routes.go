package routes

import (
	"seatpool/internal/handlers"
	"seatpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReviewRoutes sets up driver reviews
func SetupReviewRoutes(r *gin.RouterGroup, reviewHandler *handlers.ReviewHandler, jwtSecret string) {
	reviews := r.Group("/reviews")
	reviews.Use(middleware.AuthRequired(jwtSecret))
	{
		reviews.POST("", reviewHandler.CreateReview)
	}

	drivers := r.Group("/drivers")
	{
		drivers.GET("/:id/reviews", reviewHandler.GetDriverReviews)
	}
}
