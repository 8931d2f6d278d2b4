package mongodb

import (
	"context"
	"fmt"
	"time"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/internal/services"
	"seatpool/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type rideRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewRideRepository(db *mongo.Database, cache services.CacheService) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.AvailableSeats = ride.SeatCapacity
	ride.ConfirmedPassengers = []primitive.ObjectID{}
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	r.cacheRide(ctx, ride)

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	// Cache lookups are skipped inside transactions: a session context
	// must always read through the collection.
	if _, inTxn := ctx.(mongo.SessionContext); !inTxn {
		if ride := r.getRideFromCache(ctx, id.Hex()); ride != nil {
			return ride, nil
		}
	}

	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return &ride, nil
}

func (r *rideRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

func (r *rideRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete ride: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// ReserveSeats decrements available_seats only when enough remain. The
// filter makes the decrement and the capacity check a single atomic
// write, so concurrent confirmations cannot oversell the ride.
func (r *rideRepository) ReserveSeats(ctx context.Context, id primitive.ObjectID, seats int, passengerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":             id,
		"available_seats": bson.M{"$gte": seats},
	}
	update := bson.M{
		"$inc":      bson.M{"available_seats": -seats},
		"$addToSet": bson.M{"confirmed_passengers": passengerID},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing ride from an oversold one.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count == 0 {
			return models.ErrNotFound
		}
		return models.ErrInsufficientSeats
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// ReleaseSeats restores seats freed by a cancelled booking. The capacity
// ceiling guards against double releases.
func (r *rideRepository) ReleaseSeats(ctx context.Context, id primitive.ObjectID, seats int, passengerID primitive.ObjectID) error {
	filter := bson.M{
		"_id": id,
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$available_seats", seats}},
				"$seat_capacity",
			},
		},
	}
	update := bson.M{
		"$inc":  bson.M{"available_seats": seats},
		"$pull": bson.M{"confirmed_passengers": passengerID},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	if result.MatchedCount == 0 {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count == 0 {
			return models.ErrNotFound
		}
		return fmt.Errorf("seat release would exceed capacity for ride %s", id.Hex())
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// Search and filtering
func (r *rideRepository) Search(ctx context.Context, criteria *models.RideSearchCriteria, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := bson.M{}

	if criteria.Origin != "" {
		filter["origin"] = bson.M{"$regex": criteria.Origin, "$options": "i"}
	}
	if criteria.Destination != "" {
		filter["destination"] = bson.M{"$regex": criteria.Destination, "$options": "i"}
	}
	if criteria.DepartureFrom != nil || criteria.DepartureTo != nil {
		departure := bson.M{}
		if criteria.DepartureFrom != nil {
			departure["$gte"] = *criteria.DepartureFrom
		}
		if criteria.DepartureTo != nil {
			departure["$lte"] = *criteria.DepartureTo
		}
		filter["departure_time"] = departure
	}
	if criteria.MinSeats > 0 {
		filter["available_seats"] = bson.M{"$gte": criteria.MinSeats}
	}
	if criteria.MaxFare > 0 {
		filter["fare_per_seat"] = bson.M{"$lte": criteria.MaxFare}
	}
	if criteria.DriverID != nil {
		filter["driver_id"] = *criteria.DriverID
	}

	return r.findRidesWithFilter(ctx, filter, params)
}

func (r *rideRepository) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := bson.M{"driver_id": driverID}
	return r.findRidesWithFilter(ctx, filter, params)
}

func (r *rideRepository) GetUpcoming(ctx context.Context, after time.Time, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := bson.M{"departure_time": bson.M{"$gte": after}}
	return r.findRidesWithFilter(ctx, filter, params)
}

func (r *rideRepository) findRidesWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	if params.Search != "" {
		searchFields := []string{"origin", "destination", "notes"}
		searchFilter := params.GetSearchFilter(searchFields)
		if len(searchFilter) > 0 {
			filter = bson.M{
				"$and": []bson.M{filter, searchFilter},
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, 0, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}

	return rides, total, nil
}

// Cache operations
func (r *rideRepository) cacheRide(ctx context.Context, ride *models.Ride) {
	if r.cache != nil {
		key := "ride:" + ride.ID.Hex()
		r.cache.Set(ctx, key, ride, utils.RideCacheTTL)
	}
}

func (r *rideRepository) getRideFromCache(ctx context.Context, rideID string) *models.Ride {
	if r.cache == nil {
		return nil
	}

	var ride models.Ride
	if err := r.cache.Get(ctx, "ride:"+rideID, &ride); err != nil {
		return nil
	}
	return &ride
}

func (r *rideRepository) invalidateRideCache(ctx context.Context, rideID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, "ride:"+rideID)
	}
}
