package handlers

import (
	"seatpool/internal/services"
	"seatpool/internal/utils"
	"seatpool/internal/validators"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService services.VehicleService
}

func NewVehicleHandler(vehicleService services.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
	}
}

// CreateVehicle registers a vehicle for the authenticated user
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), ownerID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Vehicle registered successfully", vehicle)
}

// GetMyVehicles lists the authenticated user's vehicles
func (h *VehicleHandler) GetMyVehicles(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	vehicles, err := h.vehicleService.GetOwnerVehicles(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicles retrieved successfully", vehicles)
}

// DeleteVehicle removes one of the authenticated user's vehicles
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	vehicleID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), vehicleID, ownerID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle deleted successfully", nil)
}
