package review

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo         Repository
	appointments AppointmentSource
	now          func() time.Time
}

func NewService(repo Repository, appointments AppointmentSource) *Service {
	return &Service{repo: repo, appointments: appointments, now: time.Now}
}

func validateRating(rating float64) error {
	if rating < 0.5 || rating > 5 {
		return &ValidationError{Field: "rating", Reason: "must be between 0.5 and 5"}
	}
	if math.Mod(rating*2, 1) != 0 {
		return &ValidationError{Field: "rating", Reason: "must be a multiple of 0.5"}
	}
	return nil
}

// Create writes the one review an appointment may have. Only the patient
// who booked it may review, and only once the appointment has started.
func (s *Service) Create(ctx context.Context, appointmentID, userID uuid.UUID, rating float64, comment *string) (*Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !a.Booked || a.UserID == nil || *a.UserID != userID {
		return nil, ErrNotReviewer
	}
	if s.now().Before(a.StartTime) {
		return nil, &ValidationError{Field: "appointment", Reason: "cannot review before the appointment starts"}
	}

	if _, err := s.repo.GetByAppointment(ctx, appointmentID); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	r := &Review{
		AppointmentID: appointmentID,
		PracticeID:    a.PracticeID,
		UserID:        userID,
		Rating:        rating,
		Comment:       comment,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update edits an existing review in place. Only the original reviewer may
// change it.
func (s *Service) Update(ctx context.Context, reviewID, userID uuid.UUID, rating float64, comment *string) (*Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrNotReviewer
	}

	r.Rating = rating
	r.Comment = comment
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) ListByPractice(ctx context.Context, practiceID uuid.UUID, limit, offset int) (*Summary, error) {
	items, total, average, err := s.repo.ListByPractice(ctx, practiceID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &Summary{Reviews: items, Total: total, AverageRating: average}, nil
}
