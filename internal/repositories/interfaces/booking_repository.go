package interfaces

import (
	"context"

	"seatpool/internal/models"
	"seatpool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Booking, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// UpdateStatus is a guarded transition: the write only applies when the
	// booking is still in fromStatus. Returns models.ErrInvalidTransition
	// when the guard fails.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, fromStatus, toStatus models.BookingStatus, updates map[string]interface{}) error

	// Listing
	GetByRide(ctx context.Context, rideID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetByPassenger(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetLiveByRideAndPassenger(ctx context.Context, rideID, passengerID primitive.ObjectID) (*models.Booking, error)
	CountByRide(ctx context.Context, rideID primitive.ObjectID) (int64, error)
	CountConfirmedSeats(ctx context.Context, rideID primitive.ObjectID) (int64, error)
}
