package services

import (
	"context"
	"io"
	"sync"
	"time"

	"seatpool/internal/models"
	"seatpool/internal/utils"
	"seatpool/pkg/logger"
	"seatpool/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is a shared in-memory database for the fake repositories. The
// fake transaction manager snapshots it so a failing transaction rolls
// every write back, matching the real store's semantics.
type memStore struct {
	mu       sync.Mutex
	rides    map[primitive.ObjectID]*models.Ride
	bookings map[primitive.ObjectID]*models.Booking
}

func newMemStore() *memStore {
	return &memStore{
		rides:    make(map[primitive.ObjectID]*models.Ride),
		bookings: make(map[primitive.ObjectID]*models.Booking),
	}
}

func copyRide(r *models.Ride) *models.Ride {
	clone := *r
	clone.ConfirmedPassengers = append([]primitive.ObjectID(nil), r.ConfirmedPassengers...)
	return &clone
}

func copyBooking(b *models.Booking) *models.Booking {
	clone := *b
	return &clone
}

func (s *memStore) snapshot() (map[primitive.ObjectID]*models.Ride, map[primitive.ObjectID]*models.Booking) {
	rides := make(map[primitive.ObjectID]*models.Ride, len(s.rides))
	for id, r := range s.rides {
		rides[id] = copyRide(r)
	}
	bookings := make(map[primitive.ObjectID]*models.Booking, len(s.bookings))
	for id, b := range s.bookings {
		bookings[id] = copyBooking(b)
	}
	return rides, bookings
}

// fakeTxnManager serializes transactions and restores the store snapshot
// when the callback fails.
type fakeTxnManager struct {
	store *memStore
	txnMu sync.Mutex
}

func (m *fakeTxnManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txnMu.Lock()
	defer m.txnMu.Unlock()

	m.store.mu.Lock()
	rides, bookings := m.store.snapshot()
	m.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.store.mu.Lock()
		m.store.rides = rides
		m.store.bookings = bookings
		m.store.mu.Unlock()
		return err
	}
	return nil
}

type fakeRideRepo struct {
	store *memStore
}

func (r *fakeRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ride.ID = primitive.NewObjectID()
	ride.AvailableSeats = ride.SeatCapacity
	ride.ConfirmedPassengers = []primitive.ObjectID{}
	ride.CreatedAt = time.Now()
	r.store.rides[ride.ID] = copyRide(ride)
	return nil
}

func (r *fakeRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ride, ok := r.store.rides[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyRide(ride), nil
}

func (r *fakeRideRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ride, ok := r.store.rides[id]
	if !ok {
		return models.ErrNotFound
	}
	if v, ok := updates["departure_time"].(time.Time); ok {
		ride.DepartureTime = v
	}
	if v, ok := updates["fare_per_seat"].(float64); ok {
		ride.FarePerSeat = v
	}
	if v, ok := updates["notes"].(string); ok {
		ride.Notes = v
	}
	return nil
}

func (r *fakeRideRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.rides[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.store.rides, id)
	return nil
}

func (r *fakeRideRepo) ReserveSeats(ctx context.Context, id primitive.ObjectID, seats int, passengerID primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ride, ok := r.store.rides[id]
	if !ok {
		return models.ErrNotFound
	}
	if ride.AvailableSeats < seats {
		return models.ErrInsufficientSeats
	}
	ride.AvailableSeats -= seats
	ride.ConfirmedPassengers = append(ride.ConfirmedPassengers, passengerID)
	return nil
}

func (r *fakeRideRepo) ReleaseSeats(ctx context.Context, id primitive.ObjectID, seats int, passengerID primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ride, ok := r.store.rides[id]
	if !ok {
		return models.ErrNotFound
	}
	if ride.AvailableSeats+seats > ride.SeatCapacity {
		return models.ErrInvalidTransition
	}
	ride.AvailableSeats += seats
	for i, p := range ride.ConfirmedPassengers {
		if p == passengerID {
			ride.ConfirmedPassengers = append(ride.ConfirmedPassengers[:i], ride.ConfirmedPassengers[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRideRepo) Search(ctx context.Context, criteria *models.RideSearchCriteria, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rides []*models.Ride
	for _, ride := range r.store.rides {
		rides = append(rides, copyRide(ride))
	}
	return rides, int64(len(rides)), nil
}

func (r *fakeRideRepo) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rides []*models.Ride
	for _, ride := range r.store.rides {
		if ride.DriverID == driverID {
			rides = append(rides, copyRide(ride))
		}
	}
	return rides, int64(len(rides)), nil
}

func (r *fakeRideRepo) GetUpcoming(ctx context.Context, after time.Time, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.Search(ctx, nil, params)
}

type fakeBookingRepo struct {
	store *memStore
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	r.store.bookings[booking.ID] = copyBooking(booking)
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyBooking(booking), nil
}

func (r *fakeBookingRepo) GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, booking := range r.store.bookings {
		if booking.PaymentIntentID == intentID {
			return copyBooking(booking), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeBookingRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking, ok := r.store.bookings[id]
	if !ok {
		return models.ErrNotFound
	}
	r.applyUpdates(booking, updates)
	return nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, fromStatus, toStatus models.BookingStatus, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking, ok := r.store.bookings[id]
	if !ok {
		return models.ErrNotFound
	}
	if booking.Status != fromStatus {
		return models.ErrInvalidTransition
	}
	booking.Status = toStatus
	r.applyUpdates(booking, updates)
	return nil
}

func (r *fakeBookingRepo) applyUpdates(booking *models.Booking, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "decided_at":
			t := value.(time.Time)
			booking.DecidedAt = &t
		case "cancelled_at":
			t := value.(time.Time)
			booking.CancelledAt = &t
		case "paid_at":
			t := value.(time.Time)
			booking.PaidAt = &t
		case "refunded_at":
			t := value.(time.Time)
			booking.RefundedAt = &t
		case "payment_status":
			booking.PaymentStatus = value.(models.PaymentStatus)
		case "payment_intent_id":
			booking.PaymentIntentID = value.(string)
		}
	}
}

func (r *fakeBookingRepo) GetByRide(ctx context.Context, rideID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var bookings []*models.Booking
	for _, booking := range r.store.bookings {
		if booking.RideID == rideID {
			bookings = append(bookings, copyBooking(booking))
		}
	}
	return bookings, int64(len(bookings)), nil
}

func (r *fakeBookingRepo) GetByPassenger(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var bookings []*models.Booking
	for _, booking := range r.store.bookings {
		if booking.PassengerID == passengerID {
			bookings = append(bookings, copyBooking(booking))
		}
	}
	return bookings, int64(len(bookings)), nil
}

func (r *fakeBookingRepo) GetLiveByRideAndPassenger(ctx context.Context, rideID, passengerID primitive.ObjectID) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, booking := range r.store.bookings {
		if booking.RideID == rideID && booking.PassengerID == passengerID && booking.IsLive() {
			return copyBooking(booking), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeBookingRepo) CountByRide(ctx context.Context, rideID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for _, booking := range r.store.bookings {
		if booking.RideID == rideID {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) CountConfirmedSeats(ctx context.Context, rideID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var seats int64
	for _, booking := range r.store.bookings {
		if booking.RideID == rideID && booking.Status == models.BookingStatusConfirmed {
			seats += int64(booking.Seats)
		}
	}
	return seats, nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []*models.Review
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.RideID == review.RideID && existing.ReviewerID == review.ReviewerID {
			return models.ErrDuplicateReview
		}
	}
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	r.reviews = append(r.reviews, review)
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, review := range r.reviews {
		if review.ID == id {
			return review, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeReviewRepo) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reviews []*models.Review
	for _, review := range r.reviews {
		if review.DriverID == driverID {
			reviews = append(reviews, review)
		}
	}
	return reviews, int64(len(reviews)), nil
}

func (r *fakeReviewRepo) GetByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reviews []*models.Review
	for _, review := range r.reviews {
		if review.RideID == rideID {
			reviews = append(reviews, review)
		}
	}
	return reviews, nil
}

func (r *fakeReviewRepo) GetDriverRating(ctx context.Context, driverID primitive.ObjectID) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sum, count int
	for _, review := range r.reviews {
		if review.DriverID == driverID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// fakeUserRepo only tracks what the review flow touches.
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]*models.User
	ratings map[primitive.ObjectID]float64
	counts  map[primitive.ObjectID]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[primitive.ObjectID]*models.User),
		ratings: make(map[primitive.ObjectID]float64),
		counts:  make(map[primitive.ObjectID]int),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeUserRepo) UpdateRating(ctx context.Context, id primitive.ObjectID, ratingAvg float64, ratingCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ratings[id] = ratingAvg
	r.counts[id] = ratingCount
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (r *fakeVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vehicle.ID = primitive.NewObjectID()
	r.vehicles[vehicle.ID] = vehicle
	return nil
}

func (r *fakeVehicleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return vehicle, nil
}

func (r *fakeVehicleRepo) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var vehicles []*models.Vehicle
	for _, vehicle := range r.vehicles {
		if vehicle.OwnerID == ownerID {
			vehicles = append(vehicles, vehicle)
		}
	}
	return vehicles, nil
}

func (r *fakeVehicleRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeVehicleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.vehicles, id)
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) GetByBooking(ctx context.Context, bookingID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var messages []*models.Message
	for _, message := range r.messages {
		if message.BookingID == bookingID {
			messages = append(messages, message)
		}
	}
	return messages, int64(len(messages)), nil
}

// fakePaymentProvider records calls and answers with canned responses.
type fakePaymentProvider struct {
	mu           sync.Mutex
	intents      []*payment.IntentRequest
	refunds      []*payment.RefundRequest
	refundErr    error
	webhookEvent *payment.WebhookEvent
	webhookErr   error
}

func (p *fakePaymentProvider) CreateIntent(ctx context.Context, request *payment.IntentRequest) (*payment.IntentResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.intents = append(p.intents, request)
	return &payment.IntentResponse{
		IntentID:     "pi_test_" + request.BookingID,
		ClientSecret: "secret_" + request.BookingID,
		Status:       "requires_payment_method",
		Amount:       request.Amount,
		Currency:     request.Currency,
	}, nil
}

func (p *fakePaymentProvider) RefundPayment(ctx context.Context, request *payment.RefundRequest) (*payment.RefundResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refundErr != nil {
		return nil, p.refundErr
	}
	p.refunds = append(p.refunds, request)
	return &payment.RefundResponse{
		RefundID: "re_test",
		Status:   "succeeded",
		Amount:   request.Amount,
	}, nil
}

func (p *fakePaymentProvider) ValidateWebhook(ctx context.Context, payload []byte, signature string) (*payment.WebhookEvent, error) {
	if p.webhookErr != nil {
		return nil, p.webhookErr
	}
	return p.webhookEvent, nil
}

// fakeFeed collects published events.
type fakeFeed struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeFeed) PublishBookingEvent(ctx context.Context, rideID primitive.ObjectID, booking *models.Booking, eventType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}

func newTestLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stdout"})
	log.SetOutput(io.Discard)
	return log
}

// ledgerFixture wires a ledger service over the in-memory store.
type ledgerFixture struct {
	store    *memStore
	rides    *fakeRideRepo
	bookings *fakeBookingRepo
	payments *fakePaymentProvider
	feed     *fakeFeed
	txn      *fakeTxnManager
	ledger   LedgerService
}

func newLedgerFixture() *ledgerFixture {
	store := newMemStore()
	rides := &fakeRideRepo{store: store}
	bookings := &fakeBookingRepo{store: store}
	payments := &fakePaymentProvider{}
	feed := &fakeFeed{}
	txn := &fakeTxnManager{store: store}

	return &ledgerFixture{
		store:    store,
		rides:    rides,
		bookings: bookings,
		payments: payments,
		feed:     feed,
		txn:      txn,
		ledger:   NewLedgerService(rides, bookings, txn, payments, feed, newTestLogger()),
	}
}

func (f *ledgerFixture) addRide(driverID primitive.ObjectID, capacity int, fare float64, departure time.Time) *models.Ride {
	ride := &models.Ride{
		DriverID:      driverID,
		Origin:        "Berkeley",
		Destination:   "Los Angeles",
		DepartureTime: departure,
		FarePerSeat:   fare,
		Currency:      "USD",
		SeatCapacity:  capacity,
	}
	f.rides.Create(context.Background(), ride)
	return ride
}

// setDeparture rewrites the stored departure instant, used to age a ride
// past departure without waiting.
func (f *ledgerFixture) setDeparture(rideID primitive.ObjectID, at time.Time) {
	f.store.mu.Lock()
	f.store.rides[rideID].DepartureTime = at
	f.store.mu.Unlock()
}
