package interfaces

import (
	"context"

	"seatpool/internal/models"
	"seatpool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByBooking(ctx context.Context, bookingID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Message, int64, error)
}
