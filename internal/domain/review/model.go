package review

import (
	"time"

	"github.com/google/uuid"
)

// Review maps to the review table. One review exists per appointment,
// written by the patient who booked it after the appointment has started.
type Review struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PracticeID    uuid.UUID `db:"practice_id" json:"practice_id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Rating        float64   `db:"rating" json:"rating"`
	Comment       *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Summary is a practice's paginated reviews with the aggregate rating.
type Summary struct {
	Reviews       []*Review `json:"reviews"`
	Total         int       `json:"total"`
	AverageRating float64   `json:"average_rating"`
}
