package appointment

import (
	"strings"
	"testing"
)

func f64(v float64) *float64 { return &v }

func TestBuildSearchFilter_PriceRangeMatchesAnyService(t *testing.T) {
	// A slot offering {checkup: 40, extraction: 120} must match
	// price_min=100&price_max=150 on the extraction price even though its
	// cheapest service is below the minimum. That means the filter has to
	// range over every service on the slot, not its minimum price.
	whereSQL, _, _, args := buildSearchFilter(SearchQuery{
		PriceMin: f64(100), PriceMax: f64(150),
	})

	want := `EXISTS (SELECT 1 FROM jsonb_each_text(a.services) v` +
		` WHERE v.value::numeric >= $1 AND v.value::numeric <= $2)`
	if !strings.Contains(whereSQL, want) {
		t.Fatalf("where = %q, want it to contain %q", whereSQL, want)
	}
	if strings.Contains(whereSQL, "MIN(") {
		t.Fatalf("where = %q, must not filter on the minimum service price", whereSQL)
	}
	if len(args) != 2 || args[0] != 100.0 || args[1] != 150.0 {
		t.Fatalf("args = %v, want [100 150]", args)
	}
}

func TestBuildSearchFilter_PriceBoundsIndependent(t *testing.T) {
	whereSQL, _, _, _ := buildSearchFilter(SearchQuery{PriceMin: f64(100)})
	if !strings.Contains(whereSQL, `v.value::numeric >= $1`) {
		t.Fatalf("min-only where = %q, missing lower bound", whereSQL)
	}
	if strings.Contains(whereSQL, `<=`) {
		t.Fatalf("min-only where = %q, has an unexpected upper bound", whereSQL)
	}

	whereSQL, _, _, _ = buildSearchFilter(SearchQuery{PriceMax: f64(60)})
	if !strings.Contains(whereSQL, `v.value::numeric <= $1`) {
		t.Fatalf("max-only where = %q, missing upper bound", whereSQL)
	}
}

func TestBuildSearchFilter_TypedPriceUsesSelectedService(t *testing.T) {
	whereSQL, _, _, args := buildSearchFilter(SearchQuery{
		ServiceType: "checkup", PriceMin: f64(20), PriceMax: f64(80),
	})
	if !strings.Contains(whereSQL, `a.services ? $1`) {
		t.Fatalf("where = %q, missing service type filter", whereSQL)
	}
	if !strings.Contains(whereSQL, `(a.services ->> $1)::numeric >= $2`) ||
		!strings.Contains(whereSQL, `(a.services ->> $1)::numeric <= $3`) {
		t.Fatalf("where = %q, price bounds must target the selected service", whereSQL)
	}
	if strings.Contains(whereSQL, "EXISTS") {
		t.Fatalf("where = %q, typed search must not range over all services", whereSQL)
	}
	if len(args) != 3 || args[0] != "checkup" {
		t.Fatalf("args = %v, want [checkup 20 80]", args)
	}
}

func TestBuildSearchFilter_SortAndTiebreak(t *testing.T) {
	_, _, orderBy, _ := buildSearchFilter(SearchQuery{SortBy: SortLowestPrice})
	if !strings.Contains(orderBy, "MIN(") {
		t.Fatalf("orderBy = %q, untyped price sort should use the cheapest service", orderBy)
	}
	if !strings.HasSuffix(orderBy, "a.id ASC") {
		t.Fatalf("orderBy = %q, want a.id tiebreak", orderBy)
	}

	lat, lon := 50.82, -0.13
	_, _, orderBy, _ = buildSearchFilter(SearchQuery{
		SortBy: SortClosest, Latitude: &lat, Longitude: &lon,
	})
	if !strings.Contains(orderBy, "6371") || !strings.HasSuffix(orderBy, "a.id ASC") {
		t.Fatalf("orderBy = %q, want haversine distance with a.id tiebreak", orderBy)
	}
}
