package handlers

import (
	"time"

	"seatpool/internal/models"
	"seatpool/internal/services"
	"seatpool/internal/utils"
	"seatpool/internal/validators"

	"github.com/gin-gonic/gin"
)

type RideHandler struct {
	rideService   services.RideService
	ledgerService services.LedgerService
}

func NewRideHandler(rideService services.RideService, ledgerService services.LedgerService) *RideHandler {
	return &RideHandler{
		rideService:   rideService,
		ledgerService: ledgerService,
	}
}

// CreateRide publishes a new ride listing
func (h *RideHandler) CreateRide(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request services.CreateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateCreateRide(&request); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), driverID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride created successfully", ride)
}

// GetRide retrieves a single ride
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride retrieved successfully", ride)
}

// SearchRides lists rides matching the query parameters
func (h *RideHandler) SearchRides(c *gin.Context) {
	criteria := &models.RideSearchCriteria{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}

	if from := c.Query("departure_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			criteria.DepartureFrom = &t
		}
	}
	if to := c.Query("departure_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			criteria.DepartureTo = &t
		}
	}
	if seats := c.Query("min_seats"); seats != "" {
		criteria.MinSeats = utils.ParseIntOrZero(seats)
	}
	if fare := c.Query("max_fare"); fare != "" {
		criteria.MaxFare = utils.ParseFloatOrZero(fare)
	}

	params := utils.GetPaginationParams(c)
	rides, total, err := h.rideService.SearchRides(c.Request.Context(), criteria, params)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(rides),
	}
	utils.SuccessResponseWithMeta(c, "Rides retrieved successfully", rides, meta)
}

// GetMyRides lists the authenticated driver's rides
func (h *RideHandler) GetMyRides(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	rides, total, err := h.rideService.GetDriverRides(c.Request.Context(), driverID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(rides),
	}
	utils.SuccessResponseWithMeta(c, "Rides retrieved successfully", rides, meta)
}

// UpdateRide edits a ride listing
func (h *RideHandler) UpdateRide(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}

	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request services.UpdateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateUpdateRide(&request); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	ride, err := h.rideService.UpdateRide(c.Request.Context(), rideID, driverID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride updated successfully", ride)
}

// DeleteRide removes a ride with no bookings
func (h *RideHandler) DeleteRide(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}

	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteRide(c.Request.Context(), rideID, driverID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride deleted successfully", nil)
}
