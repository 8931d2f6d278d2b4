package services

import (
	"context"
	"fmt"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/pkg/logger"
	"seatpool/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentService owns the provider round trips: creating intents for
// confirmed bookings and turning webhook deliveries into ledger updates.
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, bookingID, passengerID primitive.ObjectID) (*payment.IntentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	bookingRepo interfaces.BookingRepository
	rideRepo    interfaces.RideRepository
	ledger      LedgerService
	provider    payment.Provider
	logger      *logger.Logger
}

func NewPaymentService(
	bookingRepo interfaces.BookingRepository,
	rideRepo interfaces.RideRepository,
	ledger LedgerService,
	provider payment.Provider,
	logger *logger.Logger,
) PaymentService {
	return &paymentService{
		bookingRepo: bookingRepo,
		rideRepo:    rideRepo,
		ledger:      ledger,
		provider:    provider,
		logger:      logger,
	}
}

// CreatePaymentIntent registers the booking's amount with the processor
// and stores the intent ID so the webhook can find its way back. Only the
// passenger of a confirmed, unpaid booking can start a checkout.
func (s *paymentService) CreatePaymentIntent(ctx context.Context, bookingID, passengerID primitive.ObjectID) (*payment.IntentResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PassengerID != passengerID {
		return nil, fmt.Errorf("only the booking's passenger can pay for it: %w", models.ErrForbidden)
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, fmt.Errorf("booking %s is %s: %w", bookingID.Hex(), booking.Status, models.ErrInvalidTransition)
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, fmt.Errorf("booking %s is already paid: %w", bookingID.Hex(), models.ErrInvalidTransition)
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, &payment.IntentRequest{
		BookingID: booking.ID.Hex(),
		Amount:    booking.Amount,
		Currency:  ride.Currency,
		Metadata: map[string]interface{}{
			"ride_id":      ride.ID.Hex(),
			"passenger_id": passengerID.Hex(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.bookingRepo.Update(ctx, bookingID, map[string]interface{}{
		"payment_intent_id": intent.IntentID,
	}); err != nil {
		return nil, err
	}

	s.logger.LogPaymentEvent(bookingID, "intent_created", booking.Amount, ride.Currency)

	return intent, nil
}

// HandleWebhook verifies the delivery signature and records successful
// payments in the ledger. Events the ledger rejects (booking no longer
// confirmed) are logged and acknowledged; the processor should not retry
// them forever.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ValidateWebhook(ctx, payload, signature)
	if err != nil {
		return fmt.Errorf("webhook validation failed: %w", err)
	}

	if !event.Succeeded {
		s.logger.WithField("event_type", event.EventType).Debug("ignoring non-success payment event")
		return nil
	}

	booking, err := s.resolveBooking(ctx, event)
	if err != nil {
		return err
	}

	if _, err := s.ledger.RecordPayment(ctx, booking.ID, event.IntentID); err != nil {
		s.logger.WithBookingID(booking.ID).WithError(err).Error("payment event rejected by ledger")
		return err
	}

	return nil
}

func (s *paymentService) resolveBooking(ctx context.Context, event *payment.WebhookEvent) (*models.Booking, error) {
	if event.BookingID != "" {
		id, err := primitive.ObjectIDFromHex(event.BookingID)
		if err == nil {
			return s.bookingRepo.GetByID(ctx, id)
		}
	}
	if event.IntentID != "" {
		return s.bookingRepo.GetByPaymentIntentID(ctx, event.IntentID)
	}
	return nil, fmt.Errorf("payment event carries no booking reference: %w", models.ErrNotFound)
}
