package appointment

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceMap maps a service type to the price the practice charges for it in
// this slot. Keys must be a subset of the owning practice's allowed types.
type ServiceMap map[string]float64

// Title derives the display label for a slot: the service names, sorted and
// comma-joined.
func (s ServiceMap) Title() string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Appointment maps to the appointment table. A slot starts available
// (booked=false, user_id NULL) and is booked at most once; the flag never
// reverses, deletion is the only way a slot leaves the corpus.
type Appointment struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PracticeID uuid.UUID  `db:"practice_id" json:"practice_id"`
	UserID     *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Title      string     `db:"title" json:"title"`
	StartTime  time.Time  `db:"start_time" json:"start_time"`
	EndTime    time.Time  `db:"end_time" json:"end_time"`
	Services   ServiceMap `db:"services" json:"services"`
	Booked     bool       `db:"booked" json:"booked"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Sort orders accepted by Search.
const (
	SortLowestPrice  = "lowest_price"
	SortHighestPrice = "highest_price"
	SortClosest      = "closest"
	SortSoonest      = "soonest"
)

// SearchQuery is the filter configuration for Search. All filters are
// optional; zero values mean "no filter". Latitude/Longitude can be supplied
// directly or resolved from Postcode before the query runs.
type SearchQuery struct {
	Postcode      string
	Latitude      *float64
	Longitude     *float64
	MaxDistanceKm *float64
	ServiceType   string
	PriceMin      *float64
	PriceMax      *float64
	DateStart     *time.Time
	DateEnd       *time.Time
	SortBy        string
	Limit         int
	Offset        int
}

// SearchResult is an appointment joined with the practice fields a search
// listing displays. DistanceKm is set only when the query carried an origin.
type SearchResult struct {
	Appointment
	PracticeName string   `json:"practice_name"`
	Postcode     string   `json:"postcode"`
	City         string   `json:"city"`
	DistanceKm   *float64 `json:"distance_km,omitempty"`
}
