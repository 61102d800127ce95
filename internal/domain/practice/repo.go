package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Practice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Practice, error)
	Update(ctx context.Context, p *Practice) error
	UpdateOpeningHours(ctx context.Context, id uuid.UUID, oh OpeningHours) error
	SetVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, verifiedOnly bool, limit, offset int) ([]*Practice, int, error)
}

type PreferencesRepository interface {
	Create(ctx context.Context, p *Preferences) error
	GetByPractice(ctx context.Context, practiceID uuid.UUID) (*Preferences, error)
	Update(ctx context.Context, p *Preferences) error
}

// BookedSlot is the slice of an appointment the hours re-validation needs.
type BookedSlot struct {
	ID        uuid.UUID
	StartTime time.Time
	EndTime   time.Time
}

// SlotSource supplies every existing appointment for a practice. Implemented
// by an adapter over the appointment repository; defined here so this
// package never imports that one.
type SlotSource interface {
	ListByPractice(ctx context.Context, practiceID uuid.UUID) ([]BookedSlot, error)
}
