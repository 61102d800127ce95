package review

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no review exists for the requested id.
var ErrNotFound = errors.New("review not found")

// ErrAlreadyReviewed is returned when an appointment already has a review;
// the existing review can be updated instead.
var ErrAlreadyReviewed = errors.New("appointment has already been reviewed")

// ErrNotReviewer is returned when a caller who did not book the appointment
// tries to create or edit its review.
var ErrNotReviewer = errors.New("only the booking patient may review this appointment")

// ValidationError reports a rejected review field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
