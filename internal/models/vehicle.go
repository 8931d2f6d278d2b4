package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vehicle struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID      primitive.ObjectID `json:"owner_id" bson:"owner_id" validate:"required"`
	Make         string             `json:"make" bson:"make" validate:"required,max=50"`
	Model        string             `json:"model" bson:"model" validate:"required,max=50"`
	Color        string             `json:"color" bson:"color" validate:"max=30"`
	LicensePlate string             `json:"license_plate" bson:"license_plate" validate:"required,license_plate"`
	Seats        int                `json:"seats" bson:"seats" validate:"required,min=1,max=8"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
