package routes

import (
	"seatpool/internal/handlers"
	"seatpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupVehicleRoutes sets up vehicle management
func SetupVehicleRoutes(r *gin.RouterGroup, vehicleHandler *handlers.VehicleHandler, jwtSecret string) {
	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.AuthRequired(jwtSecret))
	{
		vehicles.POST("", vehicleHandler.CreateVehicle)
		vehicles.GET("", vehicleHandler.GetMyVehicles)
		vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
	}
}
