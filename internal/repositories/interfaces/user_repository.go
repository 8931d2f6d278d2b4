package interfaces

import (
	"context"

	"seatpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	UpdateRating(ctx context.Context, id primitive.ObjectID, ratingAvg float64, ratingCount int) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
}
