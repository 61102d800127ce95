package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danbennett239/CI601-sub000/internal/domain/practice"
	"github.com/danbennett239/CI601-sub000/internal/platform/geo"
	"github.com/danbennett239/CI601-sub000/internal/platform/hours"
	"github.com/danbennett239/CI601-sub000/internal/platform/layout"
	"github.com/danbennett239/CI601-sub000/internal/platform/notify"
	"github.com/danbennett239/CI601-sub000/pkg/pagination"
)

// Calendar window the dashboard displays, minutes since midnight.
const (
	CalendarWindowStart = 8 * 60
	CalendarWindowEnd   = 20 * 60
)

type Service struct {
	repo      Repository
	practices PracticeDirectory
	geocoder  geo.Geocoder
	mailer    *notify.Mailer
	log       zerolog.Logger
}

func NewService(repo Repository, practices PracticeDirectory, geocoder geo.Geocoder, mailer *notify.Mailer, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		practices: practices,
		geocoder:  geocoder,
		mailer:    mailer,
		log:       log,
	}
}

// CreateSlot validates a proposed slot against the owning practice and
// persists it unbooked. Validation runs entirely before the insert.
func (s *Service) CreateSlot(ctx context.Context, practiceID uuid.UUID, start, end time.Time, services ServiceMap) (*Appointment, error) {
	if !end.After(start) {
		return nil, &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	if len(services) == 0 {
		return nil, &ValidationError{Field: "services", Reason: "at least one service is required"}
	}
	for name, price := range services {
		if price < 0 {
			return nil, &ValidationError{Field: "services", Reason: fmt.Sprintf("price for %q must not be negative", name)}
		}
	}

	p, err := s.practices.GetByID(ctx, practiceID)
	if err != nil {
		return nil, err
	}
	if !p.Verified {
		return nil, practice.ErrNotVerified
	}
	for name := range services {
		if !p.AllowsType(name) {
			return nil, &ValidationError{Field: "services", Reason: fmt.Sprintf("%q is not offered by this practice", name)}
		}
	}
	if err := hours.ContainedInOpeningHours(start, end, p.OpeningHours.Week()); err != nil {
		return nil, err
	}

	a := &Appointment{
		PracticeID: practiceID,
		Title:      services.Title(),
		StartTime:  start,
		EndTime:    end,
		Services:   services,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Book transitions a slot from available to booked exactly once. The
// pre-check gives a fast answer for slots already taken; the conditional
// store write is what actually decides a race, so a lost race surfaces as
// ErrAlreadyBooked rather than being retried. Confirmation emails go out
// concurrently after the write and never affect the result.
func (s *Service) Book(ctx context.Context, id, userID uuid.UUID, userEmail string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Booked {
		return nil, ErrAlreadyBooked
	}

	won, err := s.repo.Book(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrAlreadyBooked
	}
	a.Booked = true
	a.UserID = &userID

	s.sendConfirmations(ctx, a, userEmail)
	return a, nil
}

// sendConfirmations mails the patient and the practice concurrently.
// Failures, including a missing practice record, are logged and swallowed.
func (s *Service) sendConfirmations(ctx context.Context, a *Appointment, userEmail string) {
	data := map[string]string{
		"title": a.Title,
		"date":  a.StartTime.Format("Monday 2 January 2006"),
		"time":  a.StartTime.Format("15:04"),
	}

	practiceEmail := ""
	if p, err := s.practices.GetByID(ctx, a.PracticeID); err != nil {
		s.log.Error().Err(err).
			Str("appointment_id", a.ID.String()).
			Str("practice_id", a.PracticeID.String()).
			Msg("loading practice for booking confirmation failed")
	} else {
		practiceEmail = p.Email
		data["practice_name"] = p.Name
	}

	var wg sync.WaitGroup
	send := func(template, to string) {
		defer wg.Done()
		if err := s.mailer.SendTemplate(ctx, template, data, to); err != nil {
			s.log.Error().Err(err).
				Str("appointment_id", a.ID.String()).
				Str("template", template).
				Msg("booking confirmation email failed")
		}
	}

	wg.Add(1)
	go send("booking-confirmed-patient", userEmail)
	if practiceEmail != "" {
		wg.Add(1)
		go send("booking-confirmed-practice", practiceEmail)
	}
	wg.Wait()
}

// Search resolves a postcode to an origin when one is supplied, then runs
// the filtered query. A geocode failure is returned to the caller; the
// search never silently degrades to an un-located result set.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]*SearchResult, int, error) {
	if q.Postcode != "" {
		coords, err := s.geocoder.Geocode(ctx, q.Postcode)
		if err != nil {
			return nil, 0, err
		}
		q.Latitude = &coords.Latitude
		q.Longitude = &coords.Longitude
	}

	hasOrigin := q.Latitude != nil && q.Longitude != nil
	if q.SortBy == SortClosest && !hasOrigin {
		return nil, 0, &ValidationError{Field: "sort_by", Reason: "closest requires a postcode or coordinates"}
	}
	if q.MaxDistanceKm != nil && !hasOrigin {
		return nil, 0, &ValidationError{Field: "max_distance", Reason: "requires a postcode or coordinates"}
	}
	switch q.SortBy {
	case "", SortSoonest, SortLowestPrice, SortHighestPrice, SortClosest:
	default:
		return nil, 0, &ValidationError{Field: "sort_by", Reason: fmt.Sprintf("unknown sort order %q", q.SortBy)}
	}

	if q.Limit <= 0 {
		q.Limit = pagination.DefaultLimit
	}
	if q.Limit > pagination.MaxLimit {
		q.Limit = pagination.MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	return s.repo.Search(ctx, q)
}

// PositionedSlot is an appointment with its calendar geometry for one day
// of the practice dashboard.
type PositionedSlot struct {
	Appointment *Appointment `json:"appointment"`
	Column      int          `json:"column"`
	Columns     int          `json:"columns"`
	Left        float64      `json:"left"`
	Width       float64      `json:"width"`
	Top         float64      `json:"top"`
	Height      float64      `json:"height"`
}

// Layout returns the practice's appointments for the day containing date,
// arranged into non-overlapping calendar columns.
func (s *Service) Layout(ctx context.Context, practiceID uuid.UUID, date time.Time) ([]PositionedSlot, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	appts, err := s.repo.ListByPracticeDay(ctx, practiceID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Appointment, len(appts))
	entries := make([]layout.Entry, 0, len(appts))
	for _, a := range appts {
		byID[a.ID.String()] = a
		entries = append(entries, layout.Entry{
			ID:           a.ID.String(),
			StartMinutes: a.StartTime.Hour()*60 + a.StartTime.Minute(),
			EndMinutes:   a.EndTime.Hour()*60 + a.EndTime.Minute(),
		})
	}

	positioned := layout.Day(entries, CalendarWindowStart, CalendarWindowEnd)
	out := make([]PositionedSlot, 0, len(positioned))
	for _, pos := range positioned {
		out = append(out, PositionedSlot{
			Appointment: byID[pos.ID],
			Column:      pos.Column,
			Columns:     pos.Columns,
			Left:        pos.Left,
			Width:       pos.Width,
			Top:         pos.Top,
			Height:      pos.Height,
		})
	}
	return out, nil
}

// ListByPractice exposes the bulk read used by the opening-hours
// re-validation adapter.
func (s *Service) ListByPractice(ctx context.Context, practiceID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByPractice(ctx, practiceID)
}
