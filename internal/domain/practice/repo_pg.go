package practice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const practiceCols = `id, practice_name, email, phone_number, photo, address,
	latitude, longitude, opening_hours, allowed_types, pricing,
	verified, verified_at, created_at, updated_at`

func scanPractice(row pgx.Row) (*Practice, error) {
	var p Practice
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PhoneNumber, &p.Photo, &p.Address,
		&p.Latitude, &p.Longitude, &p.OpeningHours, &p.AllowedTypes, &p.Pricing,
		&p.Verified, &p.VerifiedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Practice) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO practice (id, practice_name, email, phone_number, photo, address,
			latitude, longitude, opening_hours, allowed_types, pricing, verified)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,false)`,
		p.ID, p.Name, p.Email, p.PhoneNumber, p.Photo, p.Address,
		p.Latitude, p.Longitude, p.OpeningHours, p.AllowedTypes, p.Pricing)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Practice, error) {
	return scanPractice(r.pool.QueryRow(ctx, `SELECT `+practiceCols+` FROM practice WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Practice) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE practice SET practice_name=$2, email=$3, phone_number=$4, photo=$5,
			address=$6, latitude=$7, longitude=$8, allowed_types=$9, pricing=$10,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Email, p.PhoneNumber, p.Photo,
		p.Address, p.Latitude, p.Longitude, p.AllowedTypes, p.Pricing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateOpeningHours(ctx context.Context, id uuid.UUID, oh OpeningHours) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE practice SET opening_hours=$2, updated_at=NOW() WHERE id = $1`, id, oh)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SetVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE practice SET verified=true, verified_at=$2, updated_at=NOW() WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM practice WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, verifiedOnly bool, limit, offset int) ([]*Practice, int, error) {
	where := ``
	if verifiedOnly {
		where = ` WHERE verified = true`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM practice`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+practiceCols+` FROM practice`+where+` ORDER BY practice_name ASC, id ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Practice
	for rows.Next() {
		p, err := scanPractice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

type preferencesRepoPG struct{ pool *pgxpool.Pool }

func NewPreferencesRepoPG(pool *pgxpool.Pool) PreferencesRepository {
	return &preferencesRepoPG{pool: pool}
}

func (r *preferencesRepoPG) Create(ctx context.Context, p *Preferences) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO practice_preferences (practice_id, notify_booking_email, notify_booking_sms, hide_delete_confirmation)
		VALUES ($1,$2,$3,$4)`,
		p.PracticeID, p.NotifyBookingEmail, p.NotifyBookingSMS, p.HideDeleteConfirmation)
	return err
}

func (r *preferencesRepoPG) GetByPractice(ctx context.Context, practiceID uuid.UUID) (*Preferences, error) {
	var p Preferences
	err := r.pool.QueryRow(ctx, `
		SELECT practice_id, notify_booking_email, notify_booking_sms, hide_delete_confirmation, updated_at
		FROM practice_preferences WHERE practice_id = $1`, practiceID).
		Scan(&p.PracticeID, &p.NotifyBookingEmail, &p.NotifyBookingSMS, &p.HideDeleteConfirmation, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *preferencesRepoPG) Update(ctx context.Context, p *Preferences) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE practice_preferences
		SET notify_booking_email=$2, notify_booking_sms=$3, hide_delete_confirmation=$4, updated_at=NOW()
		WHERE practice_id = $1`,
		p.PracticeID, p.NotifyBookingEmail, p.NotifyBookingSMS, p.HideDeleteConfirmation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
