package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"seatpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func departureIn(d time.Duration) time.Time {
	return time.Now().Add(d)
}

func (f *ledgerFixture) mustRequest(t *testing.T, rideID, passengerID primitive.ObjectID, seats int) *models.Booking {
	t.Helper()
	booking, err := f.ledger.RequestBooking(context.Background(), rideID, passengerID, seats)
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	return booking
}

func (f *ledgerFixture) rideState(t *testing.T, rideID primitive.ObjectID) *models.Ride {
	t.Helper()
	ride, err := f.rides.GetByID(context.Background(), rideID)
	if err != nil {
		t.Fatalf("GetByID(ride): %v", err)
	}
	return ride
}

func TestRequestBookingHoldsNoInventory(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))

	booking := f.mustRequest(t, ride.ID, passenger, 2)

	if booking.Status != models.BookingStatusPending {
		t.Errorf("status = %s, want pending", booking.Status)
	}
	if booking.Amount != 50.0 {
		t.Errorf("amount = %.2f, want 50.00", booking.Amount)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 3 {
		t.Errorf("available seats after pending request = %d, want 3", got)
	}
}

func TestRequestBookingRejectsDriver(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))

	if _, err := f.ledger.RequestBooking(context.Background(), ride.ID, driver, 1); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("driver booking own ride: err = %v, want ErrForbidden", err)
	}
}

func TestRequestBookingRejectsDepartedRide(t *testing.T) {
	f := newLedgerFixture()
	ride := f.addRide(primitive.NewObjectID(), 3, 25.0, departureIn(-time.Hour))

	if _, err := f.ledger.RequestBooking(context.Background(), ride.ID, primitive.NewObjectID(), 1); !errors.Is(err, models.ErrRideDeparted) {
		t.Errorf("booking departed ride: err = %v, want ErrRideDeparted", err)
	}
}

func TestRequestBookingRejectsSecondLiveBooking(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))

	f.mustRequest(t, ride.ID, passenger, 1)

	if _, err := f.ledger.RequestBooking(context.Background(), ride.ID, passenger, 1); !errors.Is(err, models.ErrDuplicateBooking) {
		t.Errorf("second live booking: err = %v, want ErrDuplicateBooking", err)
	}
}

func TestRequestBookingAllowedAfterDecline(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))

	booking := f.mustRequest(t, ride.ID, passenger, 1)
	if _, err := f.ledger.DeclineBooking(context.Background(), booking.ID, driver); err != nil {
		t.Fatalf("DeclineBooking: %v", err)
	}

	// A declined booking no longer blocks the passenger from trying again.
	f.mustRequest(t, ride.ID, passenger, 1)
}

func TestConfirmBookingReservesSeats(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))

	booking := f.mustRequest(t, ride.ID, passenger, 2)

	confirmed, err := f.ledger.ConfirmBooking(context.Background(), booking.ID, driver)
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if confirmed.Status != models.BookingStatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
	if confirmed.DecidedAt == nil {
		t.Error("decided_at not set")
	}

	state := f.rideState(t, ride.ID)
	if state.AvailableSeats != 1 {
		t.Errorf("available seats = %d, want 1", state.AvailableSeats)
	}
	if len(state.ConfirmedPassengers) != 1 || state.ConfirmedPassengers[0] != passenger {
		t.Errorf("confirmed passengers = %v, want [%s]", state.ConfirmedPassengers, passenger.Hex())
	}
}

func TestConfirmBookingRequiresDriver(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, primitive.NewObjectID(), 1)

	if _, err := f.ledger.ConfirmBooking(context.Background(), booking.ID, primitive.NewObjectID()); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("confirm by stranger: err = %v, want ErrForbidden", err)
	}
}

func TestConfirmBookingInsufficientSeatsRollsBack(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	ride := f.addRide(driver, 2, 25.0, departureIn(24*time.Hour))

	first := f.mustRequest(t, ride.ID, primitive.NewObjectID(), 2)
	second := f.mustRequest(t, ride.ID, primitive.NewObjectID(), 1)

	if _, err := f.ledger.ConfirmBooking(context.Background(), first.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking(first): %v", err)
	}

	_, err := f.ledger.ConfirmBooking(context.Background(), second.ID, driver)
	if !errors.Is(err, models.ErrInsufficientSeats) {
		t.Fatalf("confirm beyond capacity: err = %v, want ErrInsufficientSeats", err)
	}

	// The failed confirmation must leave the booking pending so the driver
	// can still decline it or confirm it after a cancellation frees seats.
	state, getErr := f.bookings.GetByID(context.Background(), second.ID)
	if getErr != nil {
		t.Fatalf("GetByID(booking): %v", getErr)
	}
	if state.Status != models.BookingStatusPending {
		t.Errorf("booking status after failed confirm = %s, want pending", state.Status)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 0 {
		t.Errorf("available seats = %d, want 0", got)
	}
}

func TestConcurrentConfirmsNeverOversell(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	const capacity = 3
	const requests = 10
	ride := f.addRide(driver, capacity, 25.0, departureIn(24*time.Hour))

	bookingIDs := make([]primitive.ObjectID, requests)
	for i := range bookingIDs {
		bookingIDs[i] = f.mustRequest(t, ride.ID, primitive.NewObjectID(), 1).ID
	}

	var wg sync.WaitGroup
	errs := make([]error, requests)
	for i, id := range bookingIDs {
		wg.Add(1)
		go func(i int, id primitive.ObjectID) {
			defer wg.Done()
			_, errs[i] = f.ledger.ConfirmBooking(context.Background(), id, driver)
		}(i, id)
	}
	wg.Wait()

	var confirmed, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			confirmed++
		case errors.Is(err, models.ErrInsufficientSeats):
			rejected++
		default:
			t.Errorf("unexpected confirm error: %v", err)
		}
	}

	if confirmed != capacity {
		t.Errorf("confirmed = %d, want %d", confirmed, capacity)
	}
	if rejected != requests-capacity {
		t.Errorf("rejected = %d, want %d", rejected, requests-capacity)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 0 {
		t.Errorf("available seats = %d, want 0", got)
	}

	seats, err := f.bookings.CountConfirmedSeats(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("CountConfirmedSeats: %v", err)
	}
	if int(seats) != capacity {
		t.Errorf("confirmed seats = %d, want %d", seats, capacity)
	}
}

func TestDeclineBookingIsTerminal(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, primitive.NewObjectID(), 1)

	declined, err := f.ledger.DeclineBooking(context.Background(), booking.ID, driver)
	if err != nil {
		t.Fatalf("DeclineBooking: %v", err)
	}
	if declined.Status != models.BookingStatusDeclined {
		t.Errorf("status = %s, want declined", declined.Status)
	}

	if _, err := f.ledger.ConfirmBooking(context.Background(), booking.ID, driver); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("confirm after decline: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.ledger.DeclineBooking(context.Background(), booking.ID, driver); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("second decline: err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelPendingBookingLeavesSeatsUntouched(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, passenger, 2)

	cancelled, err := f.ledger.CancelBooking(context.Background(), booking.ID, passenger)
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if cancelled.Status != models.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 3 {
		t.Errorf("available seats = %d, want 3", got)
	}
	if len(f.payments.refunds) != 0 {
		t.Errorf("refunds issued = %d, want 0", len(f.payments.refunds))
	}
}

func TestCancelConfirmedBookingRestoresSeats(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, passenger, 2)

	if _, err := f.ledger.ConfirmBooking(context.Background(), booking.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if _, err := f.ledger.CancelBooking(context.Background(), booking.ID, passenger); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	state := f.rideState(t, ride.ID)
	if state.AvailableSeats != 3 {
		t.Errorf("available seats = %d, want 3", state.AvailableSeats)
	}
	if len(state.ConfirmedPassengers) != 0 {
		t.Errorf("confirmed passengers = %v, want empty", state.ConfirmedPassengers)
	}
}

func TestCancelPaidBookingTriggersRefund(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, passenger, 2)

	if _, err := f.ledger.ConfirmBooking(context.Background(), booking.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if _, err := f.ledger.RecordPayment(context.Background(), booking.ID, "pi_123"); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	cancelled, err := f.ledger.CancelBooking(context.Background(), booking.ID, passenger)
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	if len(f.payments.refunds) != 1 {
		t.Fatalf("refunds issued = %d, want 1", len(f.payments.refunds))
	}
	refund := f.payments.refunds[0]
	if refund.IntentID != "pi_123" {
		t.Errorf("refund intent = %s, want pi_123", refund.IntentID)
	}
	if refund.Amount != 50.0 {
		t.Errorf("refund amount = %.2f, want 50.00", refund.Amount)
	}
	if cancelled.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("payment status = %s, want refunded", cancelled.PaymentStatus)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 3 {
		t.Errorf("available seats = %d, want 3", got)
	}
}

func TestCancelWithFailedRefundStillCancels(t *testing.T) {
	f := newLedgerFixture()
	f.payments.refundErr = errors.New("processor unavailable")
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, passenger, 1)

	if _, err := f.ledger.ConfirmBooking(context.Background(), booking.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if _, err := f.ledger.RecordPayment(context.Background(), booking.ID, "pi_123"); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := f.ledger.CancelBooking(context.Background(), booking.ID, passenger); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	// The seat release committed; the refund is picked up out of band.
	state, err := f.bookings.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetByID(booking): %v", err)
	}
	if state.Status != models.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", state.Status)
	}
	if state.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid until the refund lands", state.PaymentStatus)
	}
}

func TestCancelBookingRejectedAfterDeparture(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, passenger, 1)
	f.setDeparture(ride.ID, time.Now().Add(-time.Hour))

	if _, err := f.ledger.CancelBooking(context.Background(), booking.ID, passenger); !errors.Is(err, models.ErrRideDeparted) {
		t.Errorf("cancel after departure: err = %v, want ErrRideDeparted", err)
	}
}

func TestCancelBookingRequiresPassenger(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, primitive.NewObjectID(), 1)

	if _, err := f.ledger.CancelBooking(context.Background(), booking.ID, driver); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("cancel by non-passenger: err = %v, want ErrForbidden", err)
	}
}

func TestRecordPaymentRequiresConfirmedBooking(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, primitive.NewObjectID(), 1)

	if _, err := f.ledger.RecordPayment(context.Background(), booking.ID, "pi_123"); !errors.Is(err, models.ErrPaymentNotConfirmed) {
		t.Errorf("payment on pending booking: err = %v, want ErrPaymentNotConfirmed", err)
	}
}

func TestRecordPaymentIsIdempotent(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, passenger, 1)

	if _, err := f.ledger.ConfirmBooking(context.Background(), booking.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}

	first, err := f.ledger.RecordPayment(context.Background(), booking.ID, "pi_123")
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if first.PaidAt == nil {
		t.Fatal("paid_at not set")
	}

	// Webhook retries deliver the same event again.
	second, err := f.ledger.RecordPayment(context.Background(), booking.ID, "pi_123")
	if err != nil {
		t.Fatalf("RecordPayment(retry): %v", err)
	}
	if second.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", second.PaymentStatus)
	}
	if !second.PaidAt.Equal(*first.PaidAt) {
		t.Errorf("retry moved paid_at from %v to %v", first.PaidAt, second.PaidAt)
	}
}

func TestDeleteRideBlockedByAnyBooking(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))
	booking := f.mustRequest(t, ride.ID, passenger, 1)

	if err := f.ledger.DeleteRide(context.Background(), ride.ID, driver); !errors.Is(err, models.ErrDeletionBlocked) {
		t.Errorf("delete with pending booking: err = %v, want ErrDeletionBlocked", err)
	}

	// Even a settled booking keeps the ride around for its history.
	if _, err := f.ledger.CancelBooking(context.Background(), booking.ID, passenger); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if err := f.ledger.DeleteRide(context.Background(), ride.ID, driver); !errors.Is(err, models.ErrDeletionBlocked) {
		t.Errorf("delete with cancelled booking: err = %v, want ErrDeletionBlocked", err)
	}
}

func TestDeleteRideWithoutBookings(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))

	if err := f.ledger.DeleteRide(context.Background(), ride.ID, primitive.NewObjectID()); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("delete by stranger: err = %v, want ErrForbidden", err)
	}
	if err := f.ledger.DeleteRide(context.Background(), ride.ID, driver); err != nil {
		t.Fatalf("DeleteRide: %v", err)
	}
	if _, err := f.rides.GetByID(context.Background(), ride.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("ride after delete: err = %v, want ErrNotFound", err)
	}
}

func TestTwoPassengersShareCapacity(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	ride := f.addRide(driver, 2, 30.0, departureIn(24*time.Hour))

	aliceBooking := f.mustRequest(t, ride.ID, alice, 1)
	bobBooking := f.mustRequest(t, ride.ID, bob, 2)

	if _, err := f.ledger.ConfirmBooking(context.Background(), aliceBooking.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking(alice): %v", err)
	}
	if _, err := f.ledger.ConfirmBooking(context.Background(), bobBooking.ID, driver); !errors.Is(err, models.ErrInsufficientSeats) {
		t.Fatalf("confirm over capacity: err = %v, want ErrInsufficientSeats", err)
	}

	// Alice cancels; her seat comes back and Bob still doesn't fit, but a
	// one-seat request would.
	if _, err := f.ledger.CancelBooking(context.Background(), aliceBooking.ID, alice); err != nil {
		t.Fatalf("CancelBooking(alice): %v", err)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 2 {
		t.Errorf("available seats after cancel = %d, want 2", got)
	}
	if _, err := f.ledger.ConfirmBooking(context.Background(), bobBooking.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking(bob) after seats freed: %v", err)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 0 {
		t.Errorf("available seats = %d, want 0", got)
	}
}

func TestCancelFreesSeatsForWaitingRequest(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	ride := f.addRide(driver, 2, 30.0, departureIn(24*time.Hour))

	// Alice takes the whole car; Bob's one-seat request waits.
	aliceBooking := f.mustRequest(t, ride.ID, alice, 2)
	bobBooking := f.mustRequest(t, ride.ID, bob, 1)

	if _, err := f.ledger.ConfirmBooking(context.Background(), aliceBooking.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking(alice): %v", err)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 0 {
		t.Errorf("available seats = %d, want 0", got)
	}
	if _, err := f.ledger.ConfirmBooking(context.Background(), bobBooking.ID, driver); !errors.Is(err, models.ErrInsufficientSeats) {
		t.Fatalf("confirm with no seats: err = %v, want ErrInsufficientSeats", err)
	}

	// Alice cancels; both her seats come back and Bob's still-pending
	// request can now be confirmed, leaving one seat open.
	if _, err := f.ledger.CancelBooking(context.Background(), aliceBooking.ID, alice); err != nil {
		t.Fatalf("CancelBooking(alice): %v", err)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 2 {
		t.Errorf("available seats after cancel = %d, want 2", got)
	}
	if _, err := f.ledger.ConfirmBooking(context.Background(), bobBooking.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking(bob): %v", err)
	}
	if got := f.rideState(t, ride.ID).AvailableSeats; got != 1 {
		t.Errorf("available seats = %d, want 1", got)
	}
}

func TestFeedReceivesLifecycleEvents(t *testing.T) {
	f := newLedgerFixture()
	driver := primitive.NewObjectID()
	passenger := primitive.NewObjectID()
	ride := f.addRide(driver, 3, 25.0, departureIn(24*time.Hour))

	booking := f.mustRequest(t, ride.ID, passenger, 1)
	if _, err := f.ledger.ConfirmBooking(context.Background(), booking.ID, driver); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if _, err := f.ledger.CancelBooking(context.Background(), booking.ID, passenger); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	want := []string{"booking_requested", "booking_confirmed", "booking_cancelled"}
	if len(f.feed.events) != len(want) {
		t.Fatalf("events = %v, want %v", f.feed.events, want)
	}
	for i, event := range want {
		if f.feed.events[i] != event {
			t.Errorf("event[%d] = %s, want %s", i, f.feed.events[i], event)
		}
	}
}
