package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Ride struct {
	ID                  primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	DriverID            primitive.ObjectID   `json:"driver_id" bson:"driver_id" validate:"required"`
	VehicleID           *primitive.ObjectID  `json:"vehicle_id" bson:"vehicle_id"`
	Origin              string               `json:"origin" bson:"origin" validate:"required"`
	Destination         string               `json:"destination" bson:"destination" validate:"required"`
	DepartureTime       time.Time            `json:"departure_time" bson:"departure_time" validate:"required"`
	FarePerSeat         float64              `json:"fare_per_seat" bson:"fare_per_seat" validate:"required"`
	Currency            string               `json:"currency" bson:"currency" default:"USD"`
	SeatCapacity        int                  `json:"seat_capacity" bson:"seat_capacity" validate:"required"`
	AvailableSeats      int                  `json:"available_seats" bson:"available_seats"`
	ConfirmedPassengers []primitive.ObjectID `json:"confirmed_passengers" bson:"confirmed_passengers"`
	EstimatedDistance   float64              `json:"estimated_distance" bson:"estimated_distance"` // kilometers
	EstimatedDuration   int                  `json:"estimated_duration" bson:"estimated_duration"` // minutes
	Notes               string               `json:"notes" bson:"notes"`
	CreatedAt           time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at" bson:"updated_at"`
}

// HasDeparted reports whether the ride's departure instant has passed.
func (r *Ride) HasDeparted(now time.Time) bool {
	return !r.DepartureTime.After(now)
}

// RideSearchCriteria narrows ride listings. Zero-valued fields are ignored.
type RideSearchCriteria struct {
	Origin        string     `json:"origin" form:"origin"`
	Destination   string     `json:"destination" form:"destination"`
	DepartureFrom *time.Time `json:"departure_from" form:"departure_from"`
	DepartureTo   *time.Time `json:"departure_to" form:"departure_to"`
	MinSeats      int        `json:"min_seats" form:"min_seats"`
	MaxFare       float64    `json:"max_fare" form:"max_fare"`
	DriverID      *primitive.ObjectID
}
