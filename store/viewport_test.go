package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"thorbis-backend/search"
)

func view(id string, lat, lng float64) search.BusinessView {
	return search.BusinessView{ID: id, Coordinates: search.Coordinates{Lat: lat, Lng: lng}}
}

func boundsAround(lat, lng float64) search.Bounds {
	return search.Bounds{North: lat + 1, South: lat - 1, East: lng + 1, West: lng - 1}
}

func TestFetchInitial(t *testing.T) {
	s := NewViewportStore(func(ctx context.Context, b search.Bounds, zoom int, query string) ([]search.BusinessView, error) {
		return []search.BusinessView{view("a", 35, -78), view("b", 50, 10)}, nil
	}, time.Millisecond)

	bounds := boundsAround(35, -78)
	if err := s.FetchInitial(context.Background(), bounds, 12, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(s.AllBusinesses()); got != 2 {
		t.Errorf("expected 2 in the full set, got %d", got)
	}
	// Only the business inside the viewport survives the filter.
	filtered := s.FilteredBusinesses()
	if len(filtered) != 1 || filtered[0].ID != "a" {
		t.Errorf("expected only business a in the filtered set, got %v", filtered)
	}
}

func TestNilResultsNormalized(t *testing.T) {
	s := NewViewportStore(func(ctx context.Context, b search.Bounds, zoom int, query string) ([]search.BusinessView, error) {
		return nil, nil
	}, time.Millisecond)

	if err := s.FetchInitial(context.Background(), boundsAround(0, 0), 10, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.AllBusinesses() == nil {
		t.Error("all must never be nil")
	}
	if s.FilteredBusinesses() == nil {
		t.Error("filtered must never be nil")
	}
}

func TestStaleFetchDiscarded(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	s := NewViewportStore(func(ctx context.Context, b search.Bounds, zoom int, query string) ([]search.BusinessView, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-release // first fetch resolves late
			return []search.BusinessView{view("stale", 0, 0)}, nil
		}
		return []search.BusinessView{view("fresh", 0, 0)}, nil
	}, time.Millisecond)

	first := boundsAround(0, 0)
	second := boundsAround(10, 10)

	done := make(chan error, 1)
	go func() { done <- s.FetchInitial(context.Background(), first, 10, "") }()

	// Wait until the first fetch is in flight, then run a second that wins.
	for {
		mu.Lock()
		n := calls
		mu.Unlock()
		if n >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := s.FetchInitial(context.Background(), second, 10, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	close(release)
	<-done

	all := s.AllBusinesses()
	if len(all) != 1 || all[0].ID != "fresh" {
		t.Errorf("stale response must not overwrite the newer one, got %v", all)
	}
}

func TestFetchFilteredDebounce(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	s := NewViewportStore(func(ctx context.Context, b search.Bounds, zoom int, query string) ([]search.BusinessView, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return []search.BusinessView{view("x", b.South+1, b.West+1)}, nil
	}, 20*time.Millisecond)

	// Three rapid calls within the window coalesce into one fetch.
	for i := 0; i < 3; i++ {
		s.FetchFiltered(context.Background(), boundsAround(float64(i*10), 0), 10, "")
	}
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("expected 1 fetch after debounce, got %d", got)
	}
	if len(s.AllBusinesses()) != 1 {
		t.Error("expected the final fetch to commit")
	}
}

func TestCacheHitSkipsFetch(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	s := NewViewportStore(func(ctx context.Context, b search.Bounds, zoom int, query string) ([]search.BusinessView, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return []search.BusinessView{view("cached", b.South+1, b.West+1)}, nil
	}, time.Millisecond)

	bounds := boundsAround(35, -78)
	s.FetchInitial(context.Background(), bounds, 10, "")
	s.FetchInitial(context.Background(), bounds, 10, "")

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("identical bounds must be served from cache, got %d fetches", got)
	}
}

func TestFilterByBoundsSkipsUnchanged(t *testing.T) {
	s := NewViewportStore(func(ctx context.Context, b search.Bounds, zoom int, query string) ([]search.BusinessView, error) {
		return []search.BusinessView{view("a", 35, -78)}, nil
	}, time.Millisecond)

	bounds := boundsAround(35, -78)
	s.FetchInitial(context.Background(), bounds, 10, "")

	before := s.FilteredBusinesses()
	s.FilterByBounds(bounds) // deep-equal bounds: no-op
	after := s.FilteredBusinesses()

	if len(before) != len(after) {
		t.Error("unchanged bounds must not alter the filtered set")
	}

	// A shifted viewport that excludes the point empties the filtered set
	// without re-fetching.
	s.FilterByBounds(boundsAround(50, 10))
	if len(s.FilteredBusinesses()) != 0 {
		t.Error("expected empty filtered set for a viewport without matches")
	}
	if len(s.AllBusinesses()) != 1 {
		t.Error("the full set survives a pan")
	}
}

func TestActiveBusinessSuspendsFetching(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	s := NewViewportStore(func(ctx context.Context, b search.Bounds, zoom int, query string) ([]search.BusinessView, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return []search.BusinessView{}, nil
	}, time.Millisecond)

	s.SetActiveBusiness("biz-1")
	if s.ActiveBusinessID() != "biz-1" {
		t.Fatal("active id not recorded")
	}

	s.FetchInitial(context.Background(), boundsAround(0, 0), 10, "")
	s.FetchFiltered(context.Background(), boundsAround(0, 0), 10, "")
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 0 {
		t.Errorf("fetching must be suppressed while a business is focused, got %d fetches", got)
	}

	s.ClearActiveBusiness()
	s.FetchInitial(context.Background(), boundsAround(0, 0), 10, "")
	mu.Lock()
	got = calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("fetching resumes after the focus clears, got %d fetches", got)
	}
}

func TestCameraMoveDefersResume(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	s := NewViewportStore(func(ctx context.Context, b search.Bounds, zoom int, query string) ([]search.BusinessView, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return []search.BusinessView{}, nil
	}, time.Millisecond)

	s.SetActiveBusiness("biz-1")
	s.BeginCameraMove()
	s.ClearActiveBusiness() // zoom-out animation still running

	// Still suspended until the animation's moveend.
	s.FetchInitial(context.Background(), boundsAround(0, 0), 10, "")
	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 0 {
		t.Errorf("fetching must stay suppressed during the animation, got %d", got)
	}

	s.EndCameraMove()
	s.FetchInitial(context.Background(), boundsAround(0, 0), 10, "")
	mu.Lock()
	got = calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("fetching resumes after moveend, got %d", got)
	}
}
