package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestGeocodeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/postcodes/BN11AA" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":200,"result":{"latitude":50.82,"longitude":-0.14}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	coords, err := client.Geocode(context.Background(), "bn1 1aa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Latitude != 50.82 || coords.Longitude != -0.14 {
		t.Errorf("coords = %+v", coords)
	}
}

func TestGeocodeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":404,"error":"Postcode not found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.Geocode(context.Background(), "ZZ9 9ZZ")
	var ge *GeocodeError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GeocodeError, got %T (%v)", err, err)
	}
	if ge.Postcode != "ZZ9 9ZZ" {
		t.Errorf("error postcode = %q", ge.Postcode)
	}
}

func TestGeocodeEmptyPostcode(t *testing.T) {
	client := NewClient("http://unused.invalid", nil)
	_, err := client.Geocode(context.Background(), "   ")
	var ge *GeocodeError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GeocodeError, got %T", err)
	}
}

type memoryCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.store[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func TestGeocodeUsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"status":200,"result":{"latitude":51.5,"longitude":-0.1}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &memoryCache{store: map[string][]byte{}})
	for i := 0; i < 3; i++ {
		if _, err := client.Geocode(context.Background(), "SW1A 1AA"); err != nil {
			t.Fatalf("geocode %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("API hit %d times, want 1 (cache should absorb repeats)", hits)
	}
}
