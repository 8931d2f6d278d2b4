package handlers

import (
	"errors"

	"seatpool/internal/models"
	"seatpool/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError maps domain errors to HTTP responses. Anything unmapped is
// a server fault and intentionally opaque to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		utils.NotFoundResponse(c, "resource")
	case errors.Is(err, models.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, models.ErrInsufficientSeats):
		utils.ConflictResponse(c, "INSUFFICIENT_SEATS", err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		utils.ConflictResponse(c, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, models.ErrDeletionBlocked):
		utils.ConflictResponse(c, "DELETION_BLOCKED", err.Error())
	case errors.Is(err, models.ErrRideLocked):
		utils.ConflictResponse(c, "RIDE_LOCKED", err.Error())
	case errors.Is(err, models.ErrDuplicateBooking):
		utils.ConflictResponse(c, "DUPLICATE_BOOKING", err.Error())
	case errors.Is(err, models.ErrDuplicateReview):
		utils.ConflictResponse(c, "DUPLICATE_REVIEW", err.Error())
	case errors.Is(err, models.ErrRideDeparted):
		utils.ConflictResponse(c, "RIDE_DEPARTED", err.Error())
	case errors.Is(err, models.ErrPaymentNotConfirmed):
		utils.ConflictResponse(c, "PAYMENT_NOT_CONFIRMED", err.Error())
	case errors.Is(err, models.ErrChatNotAvailable):
		utils.ForbiddenResponse(c, err.Error())
	default:
		utils.InternalServerErrorResponse(c)
	}
}

// currentUserID reads the authenticated user set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}

	userID, ok := value.(primitive.ObjectID)
	if !ok {
		utils.BadRequestResponse(c, "Invalid user ID")
		return primitive.NilObjectID, false
	}

	return userID, true
}

// pathObjectID parses an ObjectID path parameter.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
