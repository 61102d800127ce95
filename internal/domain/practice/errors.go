package practice

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no practice exists for the requested id.
var ErrNotFound = errors.New("practice not found")

// ErrNotVerified is returned when an operation requires an approved practice.
var ErrNotVerified = errors.New("practice is not verified")

// ValidationError reports a rejected practice field before any store write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// HoursConflictError aggregates every existing appointment that would fall
// outside a proposed opening-hours schedule. The edit is rejected wholesale;
// all offending ids are reported in one pass so the practice never has to
// retry to discover the next conflict.
type HoursConflictError struct {
	AppointmentIDs []uuid.UUID
}

func (e *HoursConflictError) Error() string {
	return fmt.Sprintf("%d existing appointment(s) fall outside the proposed opening hours", len(e.AppointmentIDs))
}
