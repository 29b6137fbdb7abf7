package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/ports"
)

// LookupService caches the normalized reference tables for the life of the
// process. The bootstrap fetch happens once; concurrent triggers collapse
// onto a single upstream call via singleflight, so the check-then-fetch gap
// can never issue duplicate requests.
type LookupService struct {
	source ports.LookupSource

	mu     sync.RWMutex
	set    lookup.Set
	loaded bool

	sf singleflight.Group
}

// NewLookupService constructs a LookupService over the given source.
func NewLookupService(source ports.LookupSource) *LookupService {
	return &LookupService{source: source}
}

// Ensure populates the cache if it is not loaded yet. A failed fetch leaves
// the cache unloaded; callers log the returned error, render dropdowns as
// unavailable, and retry on a later navigation. The token is whichever
// authenticated session triggered the bootstrap; reference data is not
// user-scoped.
func (s *LookupService) Ensure(ctx context.Context, token string) error {
	if s.Loaded() {
		return nil
	}

	_, err, _ := s.sf.Do("bootstrap", func() (any, error) {
		// Re-check under the flight: a concurrent caller may have won.
		if s.Loaded() {
			return nil, nil
		}
		raw, fetchErr := s.source.FetchLookups(ctx, token)
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch lookups: %w", fetchErr)
		}
		s.Set(raw)
		return nil, nil
	})
	return err
}

// Set normalizes a raw lookups payload and replaces all ten tables
// atomically. Missing or non-array categories become empty tables; Set never
// fails. Calling it again replaces rather than merges.
func (s *LookupService) Set(raw map[string]any) {
	normalized := lookup.Normalize(raw)

	s.mu.Lock()
	s.set = normalized
	s.loaded = true
	s.mu.Unlock()
}

// Loaded reports whether the cache holds a normalized payload. Once true it
// stays true for the life of the process.
func (s *LookupService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Tables returns the current lookup set. The zero Set is returned before the
// bootstrap completes; callers gate on Loaded for submit-ability, not here.
func (s *LookupService) Tables() lookup.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Name resolves an id to its display name within a category.
func (s *LookupService) Name(c lookup.Category, id int) string {
	return s.Tables().Name(c, id)
}
