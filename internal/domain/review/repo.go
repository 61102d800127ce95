package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/danbennett239/CI601-sub000/internal/domain/appointment"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Review, error)
	Update(ctx context.Context, r *Review) error

	// ListByPractice returns a page of reviews newest first, the total count
	// and the average rating across all of the practice's reviews.
	ListByPractice(ctx context.Context, practiceID uuid.UUID, limit, offset int) ([]*Review, int, float64, error)
}

// AppointmentSource is the slice of the appointment store review gating
// needs.
type AppointmentSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
}
