package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/pkg/logger"
	"seatpool/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LedgerService owns every state change that touches seat inventory. All
// multi-document writes go through the transaction manager so a ride's
// seat count and its bookings never drift apart.
type LedgerService interface {
	RequestBooking(ctx context.Context, rideID, passengerID primitive.ObjectID, seats int) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID, driverID primitive.ObjectID) (*models.Booking, error)
	DeclineBooking(ctx context.Context, bookingID, driverID primitive.ObjectID) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, passengerID primitive.ObjectID) (*models.Booking, error)
	RecordPayment(ctx context.Context, bookingID primitive.ObjectID, intentID string) (*models.Booking, error)
	DeleteRide(ctx context.Context, rideID, driverID primitive.ObjectID) error
}

type ledgerService struct {
	rideRepo    interfaces.RideRepository
	bookingRepo interfaces.BookingRepository
	txnManager  interfaces.TxnManager
	payments    payment.Provider
	feed        FeedPublisher
	logger      *logger.Logger
}

func NewLedgerService(
	rideRepo interfaces.RideRepository,
	bookingRepo interfaces.BookingRepository,
	txnManager interfaces.TxnManager,
	payments payment.Provider,
	feed FeedPublisher,
	logger *logger.Logger,
) LedgerService {
	return &ledgerService{
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		txnManager:  txnManager,
		payments:    payments,
		feed:        feed,
		logger:      logger,
	}
}

// RequestBooking creates a pending booking. Pending requests hold no
// inventory; seats only move when the driver confirms.
func (s *ledgerService) RequestBooking(ctx context.Context, rideID, passengerID primitive.ObjectID, seats int) (*models.Booking, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID == passengerID {
		return nil, fmt.Errorf("drivers cannot book their own ride: %w", models.ErrForbidden)
	}
	if ride.HasDeparted(time.Now()) {
		return nil, models.ErrRideDeparted
	}
	if seats < 1 || seats > ride.SeatCapacity {
		return nil, fmt.Errorf("requested %d seats on a %d-seat ride: %w", seats, ride.SeatCapacity, models.ErrInsufficientSeats)
	}

	if _, err := s.bookingRepo.GetLiveByRideAndPassenger(ctx, rideID, passengerID); err == nil {
		return nil, models.ErrDuplicateBooking
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	booking := &models.Booking{
		RideID:        rideID,
		PassengerID:   passengerID,
		Seats:         seats,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		Amount:        ride.FarePerSeat * float64(seats),
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.LogLedgerEvent(rideID, booking.ID, "booking_requested", map[string]interface{}{
		"passenger_id": passengerID.Hex(),
		"seats":        seats,
	})
	s.publishEvent(ctx, rideID, booking, "booking_requested")

	return booking, nil
}

// ConfirmBooking moves a pending booking to confirmed and reserves its
// seats in one transaction. If the ride no longer has the seats, the
// transaction aborts and the booking stays pending.
func (s *ledgerService) ConfirmBooking(ctx context.Context, bookingID, driverID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, fmt.Errorf("only the ride's driver can confirm bookings: %w", models.ErrForbidden)
	}
	if !booking.CanTransitionTo(models.BookingStatusConfirmed) {
		return nil, models.ErrInvalidTransition
	}

	now := time.Now()
	err = s.txnManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, models.BookingStatusPending, models.BookingStatusConfirmed, map[string]interface{}{
			"decided_at": now,
		}); err != nil {
			return err
		}
		return s.rideRepo.ReserveSeats(txCtx, booking.RideID, booking.Seats, booking.PassengerID)
	})
	if err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusConfirmed
	booking.DecidedAt = &now

	s.logger.LogLedgerEvent(booking.RideID, bookingID, "booking_confirmed", map[string]interface{}{
		"seats": booking.Seats,
	})
	s.publishEvent(ctx, booking.RideID, booking, "booking_confirmed")

	return booking, nil
}

// DeclineBooking is a pure status change; a pending booking never held
// inventory, so nothing else moves.
func (s *ledgerService) DeclineBooking(ctx context.Context, bookingID, driverID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, fmt.Errorf("only the ride's driver can decline bookings: %w", models.ErrForbidden)
	}

	now := time.Now()
	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, models.BookingStatusPending, models.BookingStatusDeclined, map[string]interface{}{
		"decided_at": now,
	}); err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusDeclined
	booking.DecidedAt = &now

	s.logger.LogLedgerEvent(booking.RideID, bookingID, "booking_declined", nil)
	s.publishEvent(ctx, booking.RideID, booking, "booking_declined")

	return booking, nil
}

// CancelBooking retires a booking on the passenger's request. Cancelling
// a confirmed booking returns its seats in the same transaction; a paid
// booking is refunded after the cancellation commits.
func (s *ledgerService) CancelBooking(ctx context.Context, bookingID, passengerID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PassengerID != passengerID {
		return nil, fmt.Errorf("only the booking's passenger can cancel it: %w", models.ErrForbidden)
	}
	if !booking.CanTransitionTo(models.BookingStatusCancelled) {
		return nil, models.ErrInvalidTransition
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	if ride.HasDeparted(time.Now()) {
		return nil, models.ErrRideDeparted
	}

	now := time.Now()
	wasConfirmed := booking.Status == models.BookingStatusConfirmed

	if wasConfirmed {
		err = s.txnManager.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, models.BookingStatusConfirmed, models.BookingStatusCancelled, map[string]interface{}{
				"cancelled_at": now,
			}); err != nil {
				return err
			}
			return s.rideRepo.ReleaseSeats(txCtx, booking.RideID, booking.Seats, booking.PassengerID)
		})
	} else {
		err = s.bookingRepo.UpdateStatus(ctx, bookingID, models.BookingStatusPending, models.BookingStatusCancelled, map[string]interface{}{
			"cancelled_at": now,
		})
	}
	if err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now

	if booking.PaymentStatus == models.PaymentStatusPaid {
		s.refundBooking(ctx, booking)
	}

	s.logger.LogLedgerEvent(booking.RideID, bookingID, "booking_cancelled", map[string]interface{}{
		"was_confirmed": wasConfirmed,
	})
	s.publishEvent(ctx, booking.RideID, booking, "booking_cancelled")

	return booking, nil
}

// RecordPayment marks a booking paid once the processor has confirmed the
// charge. Payment can only land while the booking is confirmed; the
// guarded update makes the call idempotent against webhook retries.
func (s *ledgerService) RecordPayment(ctx context.Context, bookingID primitive.ObjectID, intentID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus == models.PaymentStatusPaid {
		return booking, nil
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, fmt.Errorf("booking %s is %s: %w", bookingID.Hex(), booking.Status, models.ErrPaymentNotConfirmed)
	}

	now := time.Now()
	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, models.BookingStatusConfirmed, models.BookingStatusConfirmed, map[string]interface{}{
		"payment_status":    models.PaymentStatusPaid,
		"payment_intent_id": intentID,
		"paid_at":           now,
	}); err != nil {
		return nil, err
	}

	booking.PaymentStatus = models.PaymentStatusPaid
	booking.PaymentIntentID = intentID
	booking.PaidAt = &now

	s.logger.LogPaymentEvent(bookingID, "payment_recorded", booking.Amount, "")
	s.publishEvent(ctx, booking.RideID, booking, "booking_paid")

	return booking, nil
}

// DeleteRide removes a ride that never attracted interest. Any booking,
// live or settled, blocks deletion so the history stays intact.
func (s *ledgerService) DeleteRide(ctx context.Context, rideID, driverID primitive.ObjectID) error {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.DriverID != driverID {
		return fmt.Errorf("only the ride's driver can delete it: %w", models.ErrForbidden)
	}

	err = s.txnManager.WithTransaction(ctx, func(txCtx context.Context) error {
		count, err := s.bookingRepo.CountByRide(txCtx, rideID)
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrDeletionBlocked
		}
		return s.rideRepo.Delete(txCtx, rideID)
	})
	if err != nil {
		return err
	}

	s.logger.WithRideID(rideID).Info("ride deleted")

	return nil
}

func (s *ledgerService) refundBooking(ctx context.Context, booking *models.Booking) {
	resp, err := s.payments.RefundPayment(ctx, &payment.RefundRequest{
		IntentID: booking.PaymentIntentID,
		Amount:   booking.Amount,
		Reason:   "requested_by_customer",
	})
	if err != nil {
		// The cancellation already committed; the refund is retried by
		// support tooling, not rolled into the booking transaction.
		s.logger.WithBookingID(booking.ID).WithError(err).Error("refund failed for cancelled booking")
		return
	}

	now := time.Now()
	if err := s.bookingRepo.Update(ctx, booking.ID, map[string]interface{}{
		"payment_status": models.PaymentStatusRefunded,
		"refunded_at":    now,
	}); err != nil {
		s.logger.WithBookingID(booking.ID).WithError(err).Error("failed to record refund")
		return
	}

	booking.PaymentStatus = models.PaymentStatusRefunded
	booking.RefundedAt = &now

	s.logger.LogPaymentEvent(booking.ID, "payment_refunded", booking.Amount, resp.Currency)
}

func (s *ledgerService) publishEvent(ctx context.Context, rideID primitive.ObjectID, booking *models.Booking, eventType string) {
	if s.feed == nil {
		return
	}
	s.feed.PublishBookingEvent(ctx, rideID, booking, eventType)
}
