package appointment

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no appointment exists for the requested id.
var ErrNotFound = errors.New("appointment not found")

// ErrAlreadyBooked is returned when a booking targets a slot that is already
// taken, whether booked earlier or lost to a concurrent caller. Both cases
// read the same to the patient: the slot is no longer available.
var ErrAlreadyBooked = errors.New("appointment is already booked")

// ValidationError reports a rejected slot or search field before any store
// write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
