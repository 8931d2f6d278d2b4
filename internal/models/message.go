package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookingID primitive.ObjectID `json:"booking_id" bson:"booking_id" validate:"required"`
	SenderID  primitive.ObjectID `json:"sender_id" bson:"sender_id" validate:"required"`
	Text      string             `json:"text" bson:"text" validate:"required,max=1000"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
