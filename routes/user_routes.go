package routes

import (
	"seatpool/internal/handlers"
	"seatpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes sets up profile routes
func SetupUserRoutes(r *gin.RouterGroup, userHandler *handlers.UserHandler, jwtSecret string) {
	users := r.Group("/users")
	{
		users.GET("/:id", userHandler.GetProfile)
	}

	me := r.Group("/me")
	me.Use(middleware.AuthRequired(jwtSecret))
	{
		me.GET("", userHandler.GetMe)
		me.PUT("", userHandler.UpdateMe)
	}
}
