package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const reviewCols = `id, appointment_id, practice_id, user_id, rating, comment, created_at, updated_at`

func scanReview(row pgx.Row) (*Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.AppointmentID, &r.PracticeID, &r.UserID,
		&r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &r, err
}

func (r *repoPG) Create(ctx context.Context, rev *Review) error {
	rev.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO review (id, appointment_id, practice_id, user_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rev.ID, rev.AppointmentID, rev.PracticeID, rev.UserID, rev.Rating, rev.Comment)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	return scanReview(r.pool.QueryRow(ctx,
		`SELECT `+reviewCols+` FROM review WHERE id = $1`, id))
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Review, error) {
	return scanReview(r.pool.QueryRow(ctx,
		`SELECT `+reviewCols+` FROM review WHERE appointment_id = $1`, appointmentID))
}

func (r *repoPG) Update(ctx context.Context, rev *Review) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE review SET rating=$2, comment=$3, updated_at=NOW() WHERE id = $1`,
		rev.ID, rev.Rating, rev.Comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPractice(ctx context.Context, practiceID uuid.UUID, limit, offset int) ([]*Review, int, float64, error) {
	var (
		total   int
		average float64
	)
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM review WHERE practice_id = $1`,
		practiceID).Scan(&total, &average); err != nil {
		return nil, 0, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+reviewCols+` FROM review
		WHERE practice_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3`,
		practiceID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var items []*Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		items = append(items, rev)
	}
	return items, total, average, rows.Err()
}
