package utils

import "time"

// Application Constants
const (
	AppName    = "SeatPool"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency = "USD"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 8
	PasswordMaxLength  = 128

	// Ride Constants
	MaxSeatsPerRide     = 8
	MaxSeatsPerBooking  = 8
	MaxRideAdvanceDays  = 90
	MaxRideNotesLength  = 500
	RideCacheTTL        = 15 * time.Minute

	// Payment Constants
	MinFarePerSeat = 1.0
	MaxFarePerSeat = 1000.0

	// Chat
	MaxMessageLength = 1000

	// Reviews
	MinRating = 1
	MaxRating = 5
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrValidationFailed = "validation failed"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
)
