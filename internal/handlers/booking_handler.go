package handlers

import (
	"seatpool/internal/services"
	"seatpool/internal/utils"
	"seatpool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingHandler struct {
	bookingService services.BookingService
	ledgerService  services.LedgerService
}

func NewBookingHandler(bookingService services.BookingService, ledgerService services.LedgerService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		ledgerService:  ledgerService,
	}
}

type createBookingRequest struct {
	RideID string `json:"ride_id" binding:"required"`
	Seats  int    `json:"seats" binding:"required"`
}

// RequestBooking asks for seats on a ride
func (h *BookingHandler) RequestBooking(c *gin.Context) {
	passengerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request createBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	rideID, err := primitive.ObjectIDFromHex(request.RideID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	if err := validators.ValidateSeatRequest(request.Seats); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	booking, err := h.ledgerService.RequestBooking(c.Request.Context(), rideID, passengerID, request.Seats)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking requested successfully", booking)
}

// GetBooking retrieves a single booking
func (h *BookingHandler) GetBooking(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookingID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), bookingID, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved successfully", booking)
}

// GetMyBookings lists the caller's bookings as a passenger
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	passengerID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.GetPassengerBookings(c.Request.Context(), passengerID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(bookings),
	}
	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", bookings, meta)
}

// GetRideBookings lists all bookings on one of the caller's rides
func (h *BookingHandler) GetRideBookings(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}

	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.GetRideBookings(c.Request.Context(), rideID, driverID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(bookings),
	}
	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", bookings, meta)
}

// ConfirmBooking accepts a pending request and reserves its seats
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookingID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	booking, err := h.ledgerService.ConfirmBooking(c.Request.Context(), bookingID, driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking confirmed successfully", booking)
}

// DeclineBooking rejects a pending request
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookingID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	booking, err := h.ledgerService.DeclineBooking(c.Request.Context(), bookingID, driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking declined", booking)
}

// CancelBooking withdraws the caller's own booking
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	passengerID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookingID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	booking, err := h.ledgerService.CancelBooking(c.Request.Context(), bookingID, passengerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking cancelled", booking)
}
