package validators

import (
	"fmt"

	"seatpool/internal/utils"
)

// ValidateSeatRequest bounds a booking request's seat count before it
// reaches the ledger.
func ValidateSeatRequest(seats int) error {
	if seats < 1 {
		return fmt.Errorf("at least one seat must be requested")
	}
	if seats > utils.MaxSeatsPerBooking {
		return fmt.Errorf("cannot request more than %d seats", utils.MaxSeatsPerBooking)
	}
	return nil
}
