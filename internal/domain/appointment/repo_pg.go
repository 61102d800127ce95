package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const appointmentCols = `id, practice_id, user_id, title, start_time, end_time,
	services, booked, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PracticeID, &a.UserID, &a.Title, &a.StartTime, &a.EndTime,
		&a.Services, &a.Booked, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, practice_id, title, start_time, end_time, services, booked)
		VALUES ($1,$2,$3,$4,$5,$6,false)`,
		a.ID, a.PracticeID, a.Title, a.StartTime, a.EndTime, a.Services)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) listRows(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByPractice(ctx context.Context, practiceID uuid.UUID) ([]*Appointment, error) {
	return r.listRows(ctx,
		`SELECT `+appointmentCols+` FROM appointment WHERE practice_id = $1 ORDER BY start_time ASC, id ASC`,
		practiceID)
}

func (r *repoPG) ListByPracticeDay(ctx context.Context, practiceID uuid.UUID, dayStart, dayEnd time.Time) ([]*Appointment, error) {
	return r.listRows(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE practice_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC, id ASC`,
		practiceID, dayStart, dayEnd)
}

// Book is the compare-and-set at the heart of the booking flow. The WHERE
// guard on booked makes concurrent bookings of the same slot resolve to one
// winner; the loser sees zero rows affected.
func (r *repoPG) Book(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointment SET booked = true, user_id = $2, updated_at = NOW()
		WHERE id = $1 AND booked = false`,
		id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const searchCols = `a.id, a.practice_id, a.user_id, a.title, a.start_time, a.end_time,
	a.services, a.booked, a.created_at, a.updated_at,
	p.practice_name, p.address->>'postcode', p.address->>'city'`

// anyPriceExpr is the cheapest service price on a slot, used for price
// sorting when no service type is selected.
const anyPriceExpr = `(SELECT MIN(v.value::numeric) FROM jsonb_each_text(a.services) v)`

// buildSearchFilter renders the WHERE clause, the distance column expression
// and the ORDER BY for a search query, accumulating placeholder args as it
// goes. Split out from Search so the generated SQL can be pinned by tests.
func buildSearchFilter(q SearchQuery) (whereSQL, distanceExpr, orderBy string, args []interface{}) {
	var where strings.Builder
	arg := func(v interface{}) int {
		args = append(args, v)
		return len(args)
	}

	where.WriteString(` WHERE a.booked = false AND a.start_time > NOW() AND p.verified = true`)

	distanceExpr = `NULL::float8`
	if q.Latitude != nil && q.Longitude != nil {
		lat := arg(*q.Latitude)
		lon := arg(*q.Longitude)
		distanceExpr = fmt.Sprintf(
			`2 * 6371 * asin(sqrt(
				power(sin(radians(p.latitude - $%d) / 2), 2) +
				cos(radians($%d)) * cos(radians(p.latitude)) *
				power(sin(radians(p.longitude - $%d) / 2), 2)))`,
			lat, lat, lon)
		where.WriteString(` AND p.latitude IS NOT NULL AND p.longitude IS NOT NULL`)
		if q.MaxDistanceKm != nil {
			fmt.Fprintf(&where, ` AND %s <= $%d`, distanceExpr, arg(*q.MaxDistanceKm))
		}
	}

	priceExpr := anyPriceExpr
	if q.ServiceType != "" {
		n := arg(q.ServiceType)
		fmt.Fprintf(&where, ` AND a.services ? $%d`, n)
		priceExpr = fmt.Sprintf(`(a.services ->> $%d)::numeric`, n)
		if q.PriceMin != nil {
			fmt.Fprintf(&where, ` AND %s >= $%d`, priceExpr, arg(*q.PriceMin))
		}
		if q.PriceMax != nil {
			fmt.Fprintf(&where, ` AND %s <= $%d`, priceExpr, arg(*q.PriceMax))
		}
	} else if q.PriceMin != nil || q.PriceMax != nil {
		// No type selected: a slot qualifies when any one of its services
		// falls inside the range, not just its cheapest.
		var conds []string
		if q.PriceMin != nil {
			conds = append(conds, fmt.Sprintf(`v.value::numeric >= $%d`, arg(*q.PriceMin)))
		}
		if q.PriceMax != nil {
			conds = append(conds, fmt.Sprintf(`v.value::numeric <= $%d`, arg(*q.PriceMax)))
		}
		fmt.Fprintf(&where,
			` AND EXISTS (SELECT 1 FROM jsonb_each_text(a.services) v WHERE %s)`,
			strings.Join(conds, " AND "))
	}
	if q.DateStart != nil {
		fmt.Fprintf(&where, ` AND a.start_time >= $%d`, arg(*q.DateStart))
	}
	if q.DateEnd != nil {
		fmt.Fprintf(&where, ` AND a.start_time <= $%d`, arg(*q.DateEnd))
	}

	// Every order ends on a.id so identical queries paginate identically.
	switch q.SortBy {
	case SortLowestPrice:
		orderBy = priceExpr + ` ASC, a.id ASC`
	case SortHighestPrice:
		orderBy = priceExpr + ` DESC, a.id ASC`
	case SortClosest:
		orderBy = distanceExpr + ` ASC, a.id ASC`
	default:
		orderBy = `a.start_time ASC, a.id ASC`
	}
	return where.String(), distanceExpr, orderBy, args
}

func (r *repoPG) Search(ctx context.Context, q SearchQuery) ([]*SearchResult, int, error) {
	whereSQL, distanceExpr, orderBy, args := buildSearchFilter(q)

	from := ` FROM appointment a JOIN practice p ON p.id = a.practice_id`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, q.Limit, q.Offset)
	query := `SELECT ` + searchCols + `, ` + distanceExpr + from + whereSQL +
		` ORDER BY ` + orderBy +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*SearchResult
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(&res.ID, &res.PracticeID, &res.UserID, &res.Title,
			&res.StartTime, &res.EndTime, &res.Services, &res.Booked,
			&res.CreatedAt, &res.UpdatedAt,
			&res.PracticeName, &res.Postcode, &res.City, &res.DistanceKm); err != nil {
			return nil, 0, err
		}
		items = append(items, &res)
	}
	return items, total, rows.Err()
}
