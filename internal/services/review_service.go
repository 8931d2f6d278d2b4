package services

import (
	"context"
	"fmt"
	"time"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/internal/utils"
	"seatpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateReviewRequest struct {
	RideID  primitive.ObjectID `json:"ride_id" validate:"required"`
	Rating  int                `json:"rating" validate:"required,min=1,max=5"`
	Comment string             `json:"comment" validate:"max=1000"`
}

type ReviewService interface {
	CreateReview(ctx context.Context, reviewerID primitive.ObjectID, req *CreateReviewRequest) (*models.Review, error)
	GetDriverReviews(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error)
	GetRideReviews(ctx context.Context, rideID primitive.ObjectID) ([]*models.Review, error)
}

type reviewService struct {
	reviewRepo  interfaces.ReviewRepository
	rideRepo    interfaces.RideRepository
	bookingRepo interfaces.BookingRepository
	userRepo    interfaces.UserRepository
	logger      *logger.Logger
}

func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	rideRepo interfaces.RideRepository,
	bookingRepo interfaces.BookingRepository,
	userRepo interfaces.UserRepository,
	logger *logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// CreateReview lets a passenger with a paid booking rate the driver once
// the ride has departed. One review per passenger per ride; the unique
// index backs the duplicate check under races.
func (s *reviewService) CreateReview(ctx context.Context, reviewerID primitive.ObjectID, req *CreateReviewRequest) (*models.Review, error) {
	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if !ride.HasDeparted(time.Now()) {
		return nil, fmt.Errorf("ride has not departed yet: %w", models.ErrInvalidTransition)
	}

	booking, err := s.bookingRepo.GetLiveByRideAndPassenger(ctx, req.RideID, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("no booking found for reviewer on this ride: %w", models.ErrForbidden)
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, fmt.Errorf("only confirmed passengers can review: %w", models.ErrForbidden)
	}
	if booking.PaymentStatus != models.PaymentStatusPaid {
		return nil, fmt.Errorf("only passengers with a paid booking can review: %w", models.ErrForbidden)
	}

	review := &models.Review{
		RideID:     req.RideID,
		DriverID:   ride.DriverID,
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	// Recompute the driver's aggregate; the denormalized copy on the
	// user document keeps profile reads cheap.
	if avg, count, err := s.reviewRepo.GetDriverRating(ctx, ride.DriverID); err == nil {
		if err := s.userRepo.UpdateRating(ctx, ride.DriverID, avg, count); err != nil {
			s.logger.WithUserID(ride.DriverID).WithError(err).Error("failed to update driver rating")
		}
	}

	s.logger.WithRideID(req.RideID).WithUserID(reviewerID).Info("review created")

	return review, nil
}

func (s *reviewService) GetDriverReviews(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	return s.reviewRepo.GetByDriver(ctx, driverID, params)
}

func (s *reviewService) GetRideReviews(ctx context.Context, rideID primitive.ObjectID) ([]*models.Review, error) {
	return s.reviewRepo.GetByRide(ctx, rideID)
}
