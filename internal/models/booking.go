package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string
type PaymentStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusDeclined  BookingStatus = "declined"
	BookingStatusCancelled BookingStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Booking struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID          primitive.ObjectID `json:"ride_id" bson:"ride_id" validate:"required"`
	PassengerID     primitive.ObjectID `json:"passenger_id" bson:"passenger_id" validate:"required"`
	Seats           int                `json:"seats" bson:"seats" validate:"required,min=1"`
	Status          BookingStatus      `json:"status" bson:"status" default:"pending"`
	PaymentStatus   PaymentStatus      `json:"payment_status" bson:"payment_status" default:"pending"`
	PaymentIntentID string             `json:"payment_intent_id" bson:"payment_intent_id"`
	Amount          float64            `json:"amount" bson:"amount"`
	DecidedAt       *time.Time         `json:"decided_at" bson:"decided_at"`
	CancelledAt     *time.Time         `json:"cancelled_at" bson:"cancelled_at"`
	PaidAt          *time.Time         `json:"paid_at" bson:"paid_at"`
	RefundedAt      *time.Time         `json:"refunded_at" bson:"refunded_at"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsLive reports whether the booking still occupies the passenger's slot on
// the ride: pending requests and confirmed bookings block a second request.
func (b *Booking) IsLive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// CanTransitionTo enforces the booking state machine:
// pending -> {confirmed, declined, cancelled}; confirmed -> cancelled.
// Declined and cancelled are terminal.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusDeclined || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	default:
		return false
	}
}
