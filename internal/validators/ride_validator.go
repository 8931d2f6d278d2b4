package validators

import (
	"fmt"
	"time"

	"seatpool/internal/services"
	"seatpool/internal/utils"
)

// ValidateCreateRide runs struct validation plus the listing rules that
// cannot be expressed as field tags.
func ValidateCreateRide(req *services.CreateRideRequest) error {
	if errs := ValidateStruct(req); len(errs) > 0 {
		return errs
	}

	maxAdvance := time.Now().AddDate(0, 0, utils.MaxRideAdvanceDays)
	if req.DepartureTime.After(maxAdvance) {
		return fmt.Errorf("departure cannot be more than %d days ahead", utils.MaxRideAdvanceDays)
	}

	if len(req.Notes) > utils.MaxRideNotesLength {
		return fmt.Errorf("notes cannot exceed %d characters", utils.MaxRideNotesLength)
	}

	return nil
}

func ValidateUpdateRide(req *services.UpdateRideRequest) error {
	if errs := ValidateStruct(req); len(errs) > 0 {
		return errs
	}

	if req.Notes != nil && len(*req.Notes) > utils.MaxRideNotesLength {
		return fmt.Errorf("notes cannot exceed %d characters", utils.MaxRideNotesLength)
	}

	return nil
}
