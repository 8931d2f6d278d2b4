package interfaces

import (
	"context"
	"time"

	"seatpool/internal/models"
	"seatpool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Seat inventory. Both are conditional writes: ReserveSeats only
	// succeeds when enough seats remain, and both record the passenger
	// roster change in the same update.
	ReserveSeats(ctx context.Context, id primitive.ObjectID, seats int, passengerID primitive.ObjectID) error
	ReleaseSeats(ctx context.Context, id primitive.ObjectID, seats int, passengerID primitive.ObjectID) error

	// Search and filtering
	Search(ctx context.Context, criteria *models.RideSearchCriteria, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetUpcoming(ctx context.Context, after time.Time, params *utils.PaginationParams) ([]*models.Ride, int64, error)
}
