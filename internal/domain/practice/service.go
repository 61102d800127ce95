package practice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danbennett239/CI601-sub000/internal/platform/geo"
	"github.com/danbennett239/CI601-sub000/internal/platform/hours"
)

type Service struct {
	practices   Repository
	preferences PreferencesRepository
	slots       SlotSource
	geocoder    geo.Geocoder
}

func NewService(practices Repository, preferences PreferencesRepository, slots SlotSource, geocoder geo.Geocoder) *Service {
	return &Service{
		practices:   practices,
		preferences: preferences,
		slots:       slots,
		geocoder:    geocoder,
	}
}

// validateOpeningHours checks every weekday entry parses: either the closed
// marker on both fields, or HH:MM times with open strictly before close.
func validateOpeningHours(oh OpeningHours) error {
	for weekday, day := range oh.Week() {
		if !hours.IsOpen(day) {
			continue
		}
		open, err := hours.TimeToMinutes(day.Open)
		if err != nil {
			return err
		}
		closeMin, err := hours.TimeToMinutes(day.Close)
		if err != nil {
			return err
		}
		if open >= closeMin {
			return &ValidationError{
				Field:  "opening_hours",
				Reason: fmt.Sprintf("%s opens at or after it closes", weekday),
			}
		}
	}
	return nil
}

// Create registers a new, unverified practice. The postcode is geocoded up
// front so distance search works the moment the practice is approved; a
// default preferences row is created alongside.
func (s *Service) Create(ctx context.Context, p *Practice) error {
	if p.Name == "" {
		return &ValidationError{Field: "practice_name", Reason: "required"}
	}
	if p.Email == "" {
		return &ValidationError{Field: "email", Reason: "required"}
	}
	if p.Address.Postcode == "" {
		return &ValidationError{Field: "postcode", Reason: "required"}
	}
	if len(p.AllowedTypes) == 0 {
		return &ValidationError{Field: "allowed_types", Reason: "at least one service type is required"}
	}
	if err := validateOpeningHours(p.OpeningHours); err != nil {
		return err
	}

	coords, err := s.geocoder.Geocode(ctx, p.Address.Postcode)
	if err != nil {
		return err
	}
	p.Latitude = &coords.Latitude
	p.Longitude = &coords.Longitude
	p.Verified = false
	p.VerifiedAt = nil

	if err := s.practices.Create(ctx, p); err != nil {
		return err
	}
	return s.preferences.Create(ctx, DefaultPreferences(p.ID))
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Practice, error) {
	return s.practices.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, verifiedOnly bool, limit, offset int) ([]*Practice, int, error) {
	return s.practices.List(ctx, verifiedOnly, limit, offset)
}

// Update applies profile changes. A postcode change re-geocodes the
// location; opening-hours changes go through UpdateOpeningHours instead so
// existing appointments are re-validated.
func (s *Service) Update(ctx context.Context, p *Practice) error {
	existing, err := s.practices.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.Address.Postcode != existing.Address.Postcode {
		coords, err := s.geocoder.Geocode(ctx, p.Address.Postcode)
		if err != nil {
			return err
		}
		p.Latitude = &coords.Latitude
		p.Longitude = &coords.Longitude
	} else {
		p.Latitude = existing.Latitude
		p.Longitude = existing.Longitude
	}
	return s.practices.Update(ctx, p)
}

// UpdateOpeningHours validates the proposed schedule against every existing
// appointment for the practice. All conflicts are collected into a single
// HoursConflictError and nothing is persisted when any exist.
func (s *Service) UpdateOpeningHours(ctx context.Context, practiceID uuid.UUID, oh OpeningHours) error {
	if err := validateOpeningHours(oh); err != nil {
		return err
	}
	if _, err := s.practices.GetByID(ctx, practiceID); err != nil {
		return err
	}

	existing, err := s.slots.ListByPractice(ctx, practiceID)
	if err != nil {
		return err
	}

	week := oh.Week()
	var conflicts []uuid.UUID
	for _, slot := range existing {
		if err := hours.ContainedInOpeningHours(slot.StartTime, slot.EndTime, week); err != nil {
			conflicts = append(conflicts, slot.ID)
		}
	}
	if len(conflicts) > 0 {
		return &HoursConflictError{AppointmentIDs: conflicts}
	}

	return s.practices.UpdateOpeningHours(ctx, practiceID, oh)
}

// Verify approves a pending practice.
func (s *Service) Verify(ctx context.Context, id uuid.UUID) error {
	return s.practices.SetVerified(ctx, id, time.Now().UTC())
}

// Deny rejects a pending practice, deleting it outright. The preferences
// row goes with it via the store's cascade.
func (s *Service) Deny(ctx context.Context, id uuid.UUID) error {
	p, err := s.practices.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Verified {
		return &ValidationError{Field: "verified", Reason: "cannot deny an approved practice"}
	}
	return s.practices.Delete(ctx, id)
}

func (s *Service) GetPreferences(ctx context.Context, practiceID uuid.UUID) (*Preferences, error) {
	return s.preferences.GetByPractice(ctx, practiceID)
}

func (s *Service) UpdatePreferences(ctx context.Context, p *Preferences) error {
	return s.preferences.Update(ctx, p)
}
