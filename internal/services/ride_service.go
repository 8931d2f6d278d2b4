package services

import (
	"context"
	"fmt"
	"time"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/internal/utils"
	"seatpool/pkg/logger"
	"seatpool/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateRideRequest struct {
	VehicleID     *primitive.ObjectID `json:"vehicle_id"`
	Origin        string              `json:"origin" validate:"required"`
	Destination   string              `json:"destination" validate:"required"`
	DepartureTime time.Time           `json:"departure_time" validate:"required,future_date"`
	FarePerSeat   float64             `json:"fare_per_seat" validate:"required,fare_amount"`
	Currency      string              `json:"currency"`
	SeatCapacity  int                 `json:"seat_capacity" validate:"required,seat_count"`
	Notes         string              `json:"notes"`
}

type UpdateRideRequest struct {
	DepartureTime *time.Time `json:"departure_time" validate:"omitempty,future_date"`
	FarePerSeat   *float64   `json:"fare_per_seat" validate:"omitempty,fare_amount"`
	Notes         *string    `json:"notes"`
}

type RideService interface {
	CreateRide(ctx context.Context, driverID primitive.ObjectID, req *CreateRideRequest) (*models.Ride, error)
	GetRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error)
	SearchRides(ctx context.Context, criteria *models.RideSearchCriteria, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetDriverRides(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	UpdateRide(ctx context.Context, rideID, driverID primitive.ObjectID, req *UpdateRideRequest) (*models.Ride, error)
}

type rideService struct {
	rideRepo    interfaces.RideRepository
	vehicleRepo interfaces.VehicleRepository
	bookingRepo interfaces.BookingRepository
	txnManager  interfaces.TxnManager
	maps        maps.Provider
	logger      *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	vehicleRepo interfaces.VehicleRepository,
	bookingRepo interfaces.BookingRepository,
	txnManager interfaces.TxnManager,
	mapsProvider maps.Provider,
	logger *logger.Logger,
) RideService {
	return &rideService{
		rideRepo:    rideRepo,
		vehicleRepo: vehicleRepo,
		bookingRepo: bookingRepo,
		txnManager:  txnManager,
		maps:        mapsProvider,
		logger:      logger,
	}
}

func (s *rideService) CreateRide(ctx context.Context, driverID primitive.ObjectID, req *CreateRideRequest) (*models.Ride, error) {
	if req.VehicleID != nil {
		vehicle, err := s.vehicleRepo.GetByID(ctx, *req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve vehicle: %w", err)
		}
		if vehicle.OwnerID != driverID {
			return nil, fmt.Errorf("vehicle belongs to another user: %w", models.ErrForbidden)
		}
		if req.SeatCapacity > vehicle.Seats {
			return nil, fmt.Errorf("ride offers %d seats but vehicle has %d", req.SeatCapacity, vehicle.Seats)
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = utils.DefaultCurrency
	}

	ride := &models.Ride{
		DriverID:      driverID,
		VehicleID:     req.VehicleID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		FarePerSeat:   req.FarePerSeat,
		Currency:      currency,
		SeatCapacity:  req.SeatCapacity,
		Notes:         req.Notes,
	}

	// Route estimates are nice-to-have; a maps outage never blocks a
	// ride listing.
	if s.maps != nil {
		if estimate, err := s.maps.EstimateRoute(ctx, req.Origin, req.Destination); err == nil {
			ride.EstimatedDistance = estimate.DistanceMeters / 1000
			ride.EstimatedDuration = estimate.DurationSeconds / 60
		} else {
			s.logger.WithError(err).Warn("route estimation failed")
		}
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.logger.WithRideID(ride.ID).WithUserID(driverID).Info("ride created")

	return ride, nil
}

func (s *rideService) GetRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	return s.rideRepo.GetByID(ctx, rideID)
}

func (s *rideService) SearchRides(ctx context.Context, criteria *models.RideSearchCriteria, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return s.rideRepo.Search(ctx, criteria, params)
}

func (s *rideService) GetDriverRides(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return s.rideRepo.GetByDriver(ctx, driverID, params)
}

// UpdateRide edits listing details. Any booking on the ride locks the
// listing: passengers committed to the posted fare and departure, and the
// count is checked in the same transaction as the write so a racing
// request cannot slip in between check and edit.
func (s *rideService) UpdateRide(ctx context.Context, rideID, driverID primitive.ObjectID, req *UpdateRideRequest) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, fmt.Errorf("only the ride's driver can edit it: %w", models.ErrForbidden)
	}
	if ride.HasDeparted(time.Now()) {
		return nil, models.ErrRideDeparted
	}

	updates := map[string]interface{}{}
	if req.DepartureTime != nil {
		updates["departure_time"] = *req.DepartureTime
		ride.DepartureTime = *req.DepartureTime
	}
	if req.FarePerSeat != nil {
		updates["fare_per_seat"] = *req.FarePerSeat
		ride.FarePerSeat = *req.FarePerSeat
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
		ride.Notes = *req.Notes
	}
	if len(updates) == 0 {
		return ride, nil
	}

	err = s.txnManager.WithTransaction(ctx, func(txCtx context.Context) error {
		count, err := s.bookingRepo.CountByRide(txCtx, rideID)
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrRideLocked
		}
		return s.rideRepo.Update(txCtx, rideID, updates)
	})
	if err != nil {
		return nil, err
	}

	return ride, nil
}
