// Package store holds the map-viewport state container backing the directory
// map UI. It caches fetched businesses by viewport bounds, filters the
// in-memory set on minor pans without re-fetching, and guarantees that a
// stale in-flight fetch can never overwrite a newer one.
package store

import (
	"context"
	"sync"
	"time"

	"thorbis-backend/search"
)

// DefaultDebounce is the window within which rapid viewport changes coalesce
// into a single fetch.
const DefaultDebounce = 300 * time.Millisecond

// Fetcher loads businesses for a viewport from the backend.
type Fetcher func(ctx context.Context, bounds search.Bounds, zoom int, query string) ([]search.BusinessView, error)

// ViewportStore is an explicit state container; construct one per view and
// inject it rather than sharing a module-level singleton, so tests can run
// isolated instances.
type ViewportStore struct {
	mu       sync.Mutex
	fetch    Fetcher
	debounce time.Duration

	all        []search.BusinessView
	filtered   []search.BusinessView
	activeID   string
	prevBounds *search.Bounds
	cache      map[string][]search.BusinessView

	// Fetching is suppressed while a business is focused or a programmatic
	// camera animation is running. Clearing the focus mid-animation leaves
	// fetching suspended until the animation's moveend.
	animating bool

	timer *time.Timer

	// token rises with every issued fetch; a resolution only commits when its
	// token still matches, so stale responses are discarded instead of
	// type-checked away.
	token uint64
}

func NewViewportStore(fetch Fetcher, debounce time.Duration) *ViewportStore {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ViewportStore{
		fetch:    fetch,
		debounce: debounce,
		all:      []search.BusinessView{},
		filtered: []search.BusinessView{},
		cache:    make(map[string][]search.BusinessView),
	}
}

// FetchInitial loads businesses for the first viewport synchronously. It is
// a no-op while a business is focused or fetching is suppressed.
func (s *ViewportStore) FetchInitial(ctx context.Context, bounds search.Bounds, zoom int, query string) error {
	s.mu.Lock()
	if s.suspendedLocked() {
		s.mu.Unlock()
		return nil
	}
	if cached, ok := s.cache[bounds.Key()]; ok {
		s.commitLocked(s.token, bounds, cached)
		s.mu.Unlock()
		return nil
	}
	s.token++
	token := s.token
	s.mu.Unlock()

	results, err := s.fetch(ctx, bounds, zoom, query)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(token, bounds, results)
	return nil
}

// FetchFiltered schedules a debounced background fetch for the viewport.
// Only the most recent call within the debounce window reaches the network;
// older in-flight responses are discarded by the token check on commit.
func (s *ViewportStore) FetchFiltered(ctx context.Context, bounds search.Bounds, zoom int, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suspendedLocked() {
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		if s.suspendedLocked() {
			s.mu.Unlock()
			return
		}
		if cached, ok := s.cache[bounds.Key()]; ok {
			s.commitLocked(s.token, bounds, cached)
			s.mu.Unlock()
			return
		}
		s.token++
		token := s.token
		s.mu.Unlock()

		results, err := s.fetch(ctx, bounds, zoom, query)
		if err != nil {
			return
		}

		s.mu.Lock()
		s.commitLocked(token, bounds, results)
		s.mu.Unlock()
	})
}

// FilterByBounds recomputes the filtered subset from the cached full set.
// Unchanged bounds are a no-op.
func (s *ViewportStore) FilterByBounds(bounds search.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterLocked(bounds)
}

// SetActiveBusiness focuses one business and suspends bounds-driven fetching.
func (s *ViewportStore) SetActiveBusiness(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// ClearActiveBusiness removes the focus. If a camera animation is in flight,
// fetching resumes only after EndCameraMove, preventing a fetch storm during
// the zoom-out transition.
func (s *ViewportStore) ClearActiveBusiness() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
}

// BeginCameraMove suppresses fetching for the duration of a programmatic
// camera animation.
func (s *ViewportStore) BeginCameraMove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animating = true
}

// EndCameraMove marks the animation's moveend; bounds-driven fetching resumes
// on the next viewport event.
func (s *ViewportStore) EndCameraMove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animating = false
}

// AllBusinesses returns the last fully fetched set. Never nil.
func (s *ViewportStore) AllBusinesses() []search.BusinessView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all
}

// FilteredBusinesses returns the subset intersecting the current viewport.
// Never nil.
func (s *ViewportStore) FilteredBusinesses() []search.BusinessView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered
}

func (s *ViewportStore) ActiveBusinessID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *ViewportStore) suspendedLocked() bool {
	return s.activeID != "" || s.animating
}

// commitLocked is the single write path into state. It only applies results
// whose token is still current and normalizes nil results to an empty slice,
// so state never holds anything but a concrete array.
func (s *ViewportStore) commitLocked(token uint64, bounds search.Bounds, results []search.BusinessView) {
	if token != s.token {
		return
	}
	if results == nil {
		results = []search.BusinessView{}
	}
	s.cache[bounds.Key()] = results
	s.all = results
	s.prevBounds = nil // force the filter to recompute against the new set
	s.filterLocked(bounds)
}

func (s *ViewportStore) filterLocked(bounds search.Bounds) {
	if s.prevBounds != nil && *s.prevBounds == bounds {
		return
	}

	filtered := make([]search.BusinessView, 0, len(s.all))
	for _, b := range s.all {
		if bounds.Contains(b.Coordinates.Lat, b.Coordinates.Lng) {
			filtered = append(filtered, b)
		}
	}
	s.filtered = filtered
	bcopy := bounds
	s.prevBounds = &bcopy
}
