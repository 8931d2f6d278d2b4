package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID     primitive.ObjectID `json:"ride_id" bson:"ride_id" validate:"required"`
	DriverID   primitive.ObjectID `json:"driver_id" bson:"driver_id" validate:"required"`
	ReviewerID primitive.ObjectID `json:"reviewer_id" bson:"reviewer_id" validate:"required"`
	Rating     int                `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment    string             `json:"comment" bson:"comment" validate:"max=1000"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}
