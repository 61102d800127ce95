package practice

import (
	"time"

	"github.com/google/uuid"

	"github.com/danbennett239/CI601-sub000/internal/platform/hours"
)

// Address is a practice's structured postal address. Postcode drives
// geocoding; the remaining fields are display-only.
type Address struct {
	Line1    string  `json:"line1"`
	Line2    *string `json:"line2,omitempty"`
	Line3    *string `json:"line3,omitempty"`
	City     string  `json:"city"`
	County   *string `json:"county,omitempty"`
	Postcode string  `json:"postcode"`
	Country  string  `json:"country"`
}

// OpeningHours holds the weekly schedule, one entry per weekday.
type OpeningHours struct {
	Monday    hours.DayHours `json:"monday"`
	Tuesday   hours.DayHours `json:"tuesday"`
	Wednesday hours.DayHours `json:"wednesday"`
	Thursday  hours.DayHours `json:"thursday"`
	Friday    hours.DayHours `json:"friday"`
	Saturday  hours.DayHours `json:"saturday"`
	Sunday    hours.DayHours `json:"sunday"`
}

// Week converts the schedule into the weekday-keyed form the hours package
// checks against.
func (o OpeningHours) Week() hours.WeekSchedule {
	return hours.WeekSchedule{
		time.Monday:    o.Monday,
		time.Tuesday:   o.Tuesday,
		time.Wednesday: o.Wednesday,
		time.Thursday:  o.Thursday,
		time.Friday:    o.Friday,
		time.Saturday:  o.Saturday,
		time.Sunday:    o.Sunday,
	}
}

// Practice maps to the practice table.
type Practice struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	Name         string             `db:"practice_name" json:"practice_name"`
	Email        string             `db:"email" json:"email"`
	PhoneNumber  string             `db:"phone_number" json:"phone_number"`
	Photo        *string            `db:"photo" json:"photo,omitempty"`
	Address      Address            `db:"address" json:"address"`
	Latitude     *float64           `db:"latitude" json:"latitude,omitempty"`
	Longitude    *float64           `db:"longitude" json:"longitude,omitempty"`
	OpeningHours OpeningHours       `db:"opening_hours" json:"opening_hours"`
	AllowedTypes []string           `db:"allowed_types" json:"allowed_types"`
	Pricing      map[string]float64 `db:"pricing" json:"pricing"`
	Verified     bool               `db:"verified" json:"verified"`
	VerifiedAt   *time.Time         `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}

// AllowsType reports whether a service type is offered by the practice.
func (p *Practice) AllowsType(serviceType string) bool {
	for _, t := range p.AllowedTypes {
		if t == serviceType {
			return true
		}
	}
	return false
}

// Preferences maps to the practice_preferences table (one row per practice).
// Notification toggles affect dashboard dialogs only; booking confirmations
// always fire.
type Preferences struct {
	PracticeID             uuid.UUID `db:"practice_id" json:"practice_id"`
	NotifyBookingEmail     bool      `db:"notify_booking_email" json:"notify_booking_email"`
	NotifyBookingSMS       bool      `db:"notify_booking_sms" json:"notify_booking_sms"`
	HideDeleteConfirmation bool      `db:"hide_delete_confirmation" json:"hide_delete_confirmation"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultPreferences returns the preferences row created alongside a new
// practice.
func DefaultPreferences(practiceID uuid.UUID) *Preferences {
	return &Preferences{
		PracticeID:         practiceID,
		NotifyBookingEmail: true,
	}
}
