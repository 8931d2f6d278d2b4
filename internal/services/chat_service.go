package services

import (
	"context"
	"fmt"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/internal/utils"
	"seatpool/pkg/logger"
	"seatpool/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatService handles the per-booking conversation between passenger and
// driver. Chat opens once the booking is paid and both sides know the
// trip is happening.
type ChatService interface {
	SendMessage(ctx context.Context, bookingID, senderID primitive.ObjectID, text string) (*models.Message, error)
	GetMessages(ctx context.Context, bookingID, callerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Message, int64, error)
}

type chatService struct {
	messageRepo interfaces.MessageRepository
	bookingRepo interfaces.BookingRepository
	rideRepo    interfaces.RideRepository
	hub         *websocket.Handler
	logger      *logger.Logger
}

func NewChatService(
	messageRepo interfaces.MessageRepository,
	bookingRepo interfaces.BookingRepository,
	rideRepo interfaces.RideRepository,
	hub *websocket.Handler,
	logger *logger.Logger,
) ChatService {
	return &chatService{
		messageRepo: messageRepo,
		bookingRepo: bookingRepo,
		rideRepo:    rideRepo,
		hub:         hub,
		logger:      logger,
	}
}

func (s *chatService) SendMessage(ctx context.Context, bookingID, senderID primitive.ObjectID, text string) (*models.Message, error) {
	if text == "" || len(text) > utils.MaxMessageLength {
		return nil, fmt.Errorf("message must be between 1 and %d characters", utils.MaxMessageLength)
	}

	booking, err := s.authorize(ctx, bookingID, senderID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != models.PaymentStatusPaid {
		return nil, models.ErrChatNotAvailable
	}

	message := &models.Message{
		BookingID: bookingID,
		SenderID:  senderID,
		Text:      text,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.SendChatMessage(bookingID, senderID, map[string]interface{}{
			"message_id": message.ID.Hex(),
			"text":       message.Text,
			"created_at": message.CreatedAt,
		})
	}

	return message, nil
}

func (s *chatService) GetMessages(ctx context.Context, bookingID, callerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Message, int64, error) {
	if _, err := s.authorize(ctx, bookingID, callerID); err != nil {
		return nil, 0, err
	}

	return s.messageRepo.GetByBooking(ctx, bookingID, params)
}

// authorize resolves the booking and checks the caller is one of the two
// chat parties.
func (s *chatService) authorize(ctx context.Context, bookingID, callerID primitive.ObjectID) (*models.Booking, error) {
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
		return nil, fmt.Errorf("chat belongs to another booking's parties: %w", models.ErrForbidden)
	}

	return booking, nil
}
