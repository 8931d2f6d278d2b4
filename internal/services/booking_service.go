package services

import (
	"context"
	"fmt"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/internal/utils"
	"seatpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingService covers the read side of bookings. Writes go through the
// ledger.
type BookingService interface {
	GetBooking(ctx context.Context, bookingID, callerID primitive.ObjectID) (*models.Booking, error)
	GetPassengerBookings(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetRideBookings(ctx context.Context, rideID, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
}

type bookingService struct {
	bookingRepo interfaces.BookingRepository
	rideRepo    interfaces.RideRepository
	logger      *logger.Logger
}

func NewBookingService(
	bookingRepo interfaces.BookingRepository,
	rideRepo interfaces.RideRepository,
	logger *logger.Logger,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		rideRepo:    rideRepo,
		logger:      logger,
	}
}

// GetBooking returns the booking to its passenger or ride driver; anyone
// else gets ErrForbidden.
func (s *bookingService) GetBooking(ctx context.Context, bookingID, callerID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PassengerID == callerID {
		return booking, nil
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != callerID {
		return nil, fmt.Errorf("booking belongs to another user: %w", models.ErrForbidden)
	}

	return booking, nil
}

func (s *bookingService) GetPassengerBookings(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.bookingRepo.GetByPassenger(ctx, passengerID, params)
}

func (s *bookingService) GetRideBookings(ctx context.Context, rideID, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, 0, err
	}
	if ride.DriverID != driverID {
		return nil, 0, fmt.Errorf("only the ride's driver can list its bookings: %w", models.ErrForbidden)
	}

	return s.bookingRepo.GetByRide(ctx, rideID, params)
}
