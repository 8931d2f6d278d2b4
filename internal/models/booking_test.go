package models

import "testing"

func TestBookingTransitions(t *testing.T) {
	cases := []struct {
		from BookingStatus
		to   BookingStatus
		ok   bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusDeclined, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusDeclined, false},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusDeclined, BookingStatusConfirmed, false},
		{BookingStatusDeclined, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCancelled, BookingStatusPending, false},
	}

	for _, tc := range cases {
		b := &Booking{Status: tc.from}
		if got := b.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestBookingIsLive(t *testing.T) {
	live := map[BookingStatus]bool{
		BookingStatusPending:   true,
		BookingStatusConfirmed: true,
		BookingStatusDeclined:  false,
		BookingStatusCancelled: false,
	}

	for status, want := range live {
		b := &Booking{Status: status}
		if got := b.IsLive(); got != want {
			t.Errorf("IsLive(%s) = %v, want %v", status, got, want)
		}
	}
}
