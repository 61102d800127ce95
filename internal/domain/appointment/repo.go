package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/danbennett239/CI601-sub000/internal/domain/practice"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByPractice returns every appointment owned by a practice, past and
	// future, ordered by start time. Opening-hours re-validation depends on
	// the full set.
	ListByPractice(ctx context.Context, practiceID uuid.UUID) ([]*Appointment, error)

	// ListByPracticeDay returns appointments starting within [dayStart, dayEnd).
	ListByPracticeDay(ctx context.Context, practiceID uuid.UUID, dayStart, dayEnd time.Time) ([]*Appointment, error)

	// Book atomically transitions a slot to booked, guarded on booked still
	// being false at write time. Returns false when the guard failed.
	Book(ctx context.Context, id, userID uuid.UUID) (bool, error)

	Search(ctx context.Context, q SearchQuery) ([]*SearchResult, int, error)
}

// PracticeDirectory is the slice of the practice store slot validation and
// booking notifications need.
type PracticeDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*practice.Practice, error)
}
