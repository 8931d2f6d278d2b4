package interfaces

import (
	"context"

	"seatpool/internal/models"
	"seatpool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewRepository interface {
	// Create returns models.ErrDuplicateReview when the reviewer already
	// reviewed the ride (backed by a unique index).
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error)
	GetByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Review, error)
	GetDriverRating(ctx context.Context, driverID primitive.ObjectID) (float64, int, error)
}
