package mongodb

import (
	"context"
	"fmt"
	"time"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection("bookings"),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	_, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"payment_intent_id": intentID}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking by payment intent: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdateStatus applies a state transition guarded by the current status.
// Concurrent decisions on the same booking race on the filter: the first
// write wins and the rest see ErrInvalidTransition.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, fromStatus, toStatus models.BookingStatus, updates map[string]interface{}) error {
	set := bson.M{
		"status":     toStatus,
		"updated_at": time.Now(),
	}
	for key, value := range updates {
		set[key] = value
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": fromStatus},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count == 0 {
			return models.ErrNotFound
		}
		return models.ErrInvalidTransition
	}

	return nil
}

func (r *bookingRepository) GetByRide(ctx context.Context, rideID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{"ride_id": rideID}
	return r.findBookingsWithFilter(ctx, filter, params)
}

func (r *bookingRepository) GetByPassenger(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{"passenger_id": passengerID}
	return r.findBookingsWithFilter(ctx, filter, params)
}

func (r *bookingRepository) GetLiveByRideAndPassenger(ctx context.Context, rideID, passengerID primitive.ObjectID) (*models.Booking, error) {
	filter := bson.M{
		"ride_id":      rideID,
		"passenger_id": passengerID,
		"status": bson.M{"$in": []models.BookingStatus{
			models.BookingStatusPending,
			models.BookingStatusConfirmed,
		}},
	}

	var booking models.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get live booking: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) CountByRide(ctx context.Context, rideID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"ride_id": rideID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// CountConfirmedSeats totals the seats held by confirmed bookings. Used
// to audit seat conservation against the ride document.
func (r *bookingRepository) CountConfirmedSeats(ctx context.Context, rideID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ride_id": rideID,
			"status":  models.BookingStatusConfirmed,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"seats": bson.M{"$sum": "$seats"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate confirmed seats: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Seats int64 `bson:"seats"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode seat count: %w", err)
		}
	}

	return result.Seats, nil
}

func (r *bookingRepository) findBookingsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, 0, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, total, nil
}
