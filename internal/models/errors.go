package models

import "errors"

// Domain errors surfaced to callers. Handlers map these to HTTP responses
// with errors.Is; services wrap them with context on the way up.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInsufficientSeats   = errors.New("not enough seats available")
	ErrInvalidTransition   = errors.New("operation not permitted in current status")
	ErrDeletionBlocked     = errors.New("ride has bookings and cannot be deleted")
	ErrRideLocked          = errors.New("ride has bookings and can no longer be edited")
	ErrPaymentNotConfirmed = errors.New("payment processor has not confirmed this payment")
	ErrForbidden           = errors.New("caller is not allowed to perform this action")
	ErrRideDeparted        = errors.New("ride has already departed")
	ErrDuplicateBooking    = errors.New("passenger already has a live booking on this ride")
	ErrDuplicateReview     = errors.New("ride already reviewed by this passenger")
	ErrChatNotAvailable    = errors.New("chat opens once the booking is paid")
)
