// Package hours converts a practice's weekly open/close schedule into
// containment checks for proposed appointment intervals. All functions are
// pure; no timezone conversion is performed — instants are compared in the
// same implicit local time the hours were entered in, which is a documented
// limitation of the scheduling model rather than something to correct here.
package hours

import (
	"fmt"
	"strings"
	"time"
)

// ClosedMarker is the literal value (case-insensitive) that marks a weekday
// as closed in either the open or close field.
const ClosedMarker = "closed"

// DayHours is one weekday's open/close window, e.g. {"09:00", "17:00"}.
// A day is closed when either field equals ClosedMarker.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// WeekSchedule holds exactly one entry per weekday, keyed by time.Weekday.
type WeekSchedule map[time.Weekday]DayHours

// FormatError reports a time string that does not match "HH:MM".
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time %q: expected HH:MM", e.Value)
}

// OutOfHoursError reports an interval that falls outside a weekday's open
// window. Open and Close carry the offending day's window so callers can
// show the rejected constraint.
type OutOfHoursError struct {
	Weekday time.Weekday
	Open    string
	Close   string
}

func (e *OutOfHoursError) Error() string {
	if e.Open == "" && e.Close == "" {
		return fmt.Sprintf("practice is closed on %s", strings.ToLower(e.Weekday.String()))
	}
	return fmt.Sprintf("outside %s opening hours (%s-%s)",
		strings.ToLower(e.Weekday.String()), e.Open, e.Close)
}

// TimeToMinutes parses an "HH:MM" string into minutes since midnight. Both
// components must be exactly two digits; signed values like "+9" are not
// valid clock times.
func TimeToMinutes(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, &FormatError{Value: hhmm}
	}
	h, ok := twoDigits(parts[0])
	if !ok || h > 23 {
		return 0, &FormatError{Value: hhmm}
	}
	m, ok := twoDigits(parts[1])
	if !ok || m > 59 {
		return 0, &FormatError{Value: hhmm}
	}
	return h*60 + m, nil
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// IsOpen reports whether a weekday entry represents an open day.
func IsOpen(day DayHours) bool {
	return !strings.EqualFold(day.Open, ClosedMarker) &&
		!strings.EqualFold(day.Close, ClosedMarker)
}

// ContainedInOpeningHours checks that [start, end) lies entirely within the
// open window of start's weekday. Start and end must fall on the same
// calendar day; slots crossing midnight are rejected as out of hours.
func ContainedInOpeningHours(start, end time.Time, week WeekSchedule) error {
	weekday := start.Weekday()
	day, ok := week[weekday]
	if !ok || !IsOpen(day) {
		return &OutOfHoursError{Weekday: weekday}
	}

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return &OutOfHoursError{Weekday: weekday, Open: day.Open, Close: day.Close}
	}

	openMin, err := TimeToMinutes(day.Open)
	if err != nil {
		return err
	}
	closeMin, err := TimeToMinutes(day.Close)
	if err != nil {
		return err
	}

	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()
	if end.Second() > 0 || end.Nanosecond() > 0 {
		endMin++
	}
	if startMin < openMin || endMin > closeMin {
		return &OutOfHoursError{Weekday: weekday, Open: day.Open, Close: day.Close}
	}
	return nil
}
