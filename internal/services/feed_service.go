package services

import (
	"context"
	"encoding/json"
	"time"

	"seatpool/internal/models"
	"seatpool/pkg/cache"
	"seatpool/pkg/logger"
	"seatpool/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const bookingEventsChannel = "booking_events"

// BookingEvent is the feed payload fanned out to ride watchers. Each event
// carries a snapshot of the booking so subscribers never need a follow-up
// read to render it.
type BookingEvent struct {
	Type        string               `json:"type"`
	RideID      primitive.ObjectID   `json:"ride_id"`
	BookingID   primitive.ObjectID   `json:"booking_id"`
	PassengerID primitive.ObjectID   `json:"passenger_id"`
	Seats       int                  `json:"seats"`
	Status      models.BookingStatus `json:"status"`
	Timestamp   time.Time            `json:"timestamp"`
}

type FeedPublisher interface {
	PublishBookingEvent(ctx context.Context, rideID primitive.ObjectID, booking *models.Booking, eventType string)
}

// FeedService publishes booking events to Redis and relays them to
// websocket rooms, so updates reach watchers on every instance behind the
// load balancer, not just the one that handled the write.
type FeedService interface {
	FeedPublisher
	Run(ctx context.Context)
}

type feedService struct {
	redis  *cache.RedisCache
	hub    *websocket.Handler
	logger *logger.Logger
}

func NewFeedService(redis *cache.RedisCache, hub *websocket.Handler, logger *logger.Logger) FeedService {
	return &feedService{
		redis:  redis,
		hub:    hub,
		logger: logger,
	}
}

func (s *feedService) PublishBookingEvent(ctx context.Context, rideID primitive.ObjectID, booking *models.Booking, eventType string) {
	event := BookingEvent{
		Type:        eventType,
		RideID:      rideID,
		BookingID:   booking.ID,
		PassengerID: booking.PassengerID,
		Seats:       booking.Seats,
		Status:      booking.Status,
		Timestamp:   time.Now(),
	}

	if err := s.redis.Publish(ctx, bookingEventsChannel, event); err != nil {
		s.logger.WithRideID(rideID).WithError(err).Error("failed to publish booking event")
	}
}

// Run consumes the Redis channel and fans events out to websocket rooms
// until the context is cancelled. Intended to run as a goroutine started
// at boot.
func (s *feedService) Run(ctx context.Context) {
	sub := s.redis.Subscribe(ctx, bookingEventsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event BookingEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.logger.WithError(err).Error("failed to decode booking event")
				continue
			}

			s.hub.SendRideUpdate(event.RideID, event.Type, map[string]interface{}{
				"booking_id":   event.BookingID.Hex(),
				"passenger_id": event.PassengerID.Hex(),
				"seats":        event.Seats,
				"status":       event.Status,
				"timestamp":    event.Timestamp,
			})
			s.hub.SendUserNotification(event.PassengerID, event.Type, map[string]interface{}{
				"booking_id": event.BookingID.Hex(),
				"ride_id":    event.RideID.Hex(),
				"status":     event.Status,
			})
		}
	}
}
