package routes

import (
	"seatpool/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up registration and login
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}
}
