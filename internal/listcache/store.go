// Package listcache holds the last successful fetch result for a list
// resource plus its pagination and filter state. The cached list is
// replaced wholesale on every successful fetch, never merged
// incrementally; a failed fetch only touches the error field.
package listcache

import (
	"context"
	"sync"
)

// MaxLimit is the hard ceiling for a page size. A fetch asking for more
// is refused locally; no request is issued.
const MaxLimit = 100

// DefaultLimit applies when a store is created without an explicit page size.
const DefaultLimit = 20

// Query is what the fetcher receives: the merged filter set and the
// resolved pagination for one request.
type Query struct {
	Page    int
	Limit   int
	Filters map[string]string
}

// Page is one fetched page of results.
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int
}

// Fetcher issues the actual request, typically through the upstream proxy
// client.
type Fetcher[T any] func(ctx context.Context, q Query) (Page[T], error)

// FetchOptions are merged over the store's current state. A nil filter
// value clears that filter key; absent keys are left untouched.
type FetchOptions struct {
	Page    *int
	Limit   *int
	Filters map[string]*string
}

// State is a point-in-time snapshot of the store.
type State[T any] struct {
	Items   []T
	Loading bool
	Err     string
	Page    int
	Limit   int
	Total   int
	Filters map[string]string
}

type Store[T any] struct {
	mu      sync.Mutex
	fetch   Fetcher[T]
	items   []T
	loading bool
	err     string
	page    int
	limit   int
	total   int
	filters map[string]string

	// generation sequences fetches so that a response older than the
	// latest issued request is discarded instead of overwriting newer data.
	generation uint64
}

func New[T any](fetch Fetcher[T]) *Store[T] {
	return &Store[T]{
		fetch:   fetch,
		page:    1,
		limit:   DefaultLimit,
		filters: make(map[string]string),
	}
}

// Fetch merges the supplied options into the stored filter and pagination
// state, issues one request, and on success replaces the entire cached
// list. On failure the previous items stay visible and only Err changes.
func (s *Store[T]) Fetch(ctx context.Context, opts FetchOptions) {
	s.mu.Lock()

	if opts.Limit != nil && *opts.Limit > MaxLimit {
		s.err = "limit cannot exceed 100"
		s.mu.Unlock()
		return
	}

	for key, value := range opts.Filters {
		if value == nil {
			delete(s.filters, key)
		} else {
			s.filters[key] = *value
		}
	}
	if opts.Page != nil {
		s.page = *opts.Page
	}
	if opts.Limit != nil {
		s.limit = *opts.Limit
	}

	s.generation++
	gen := s.generation
	s.loading = true

	q := Query{
		Page:    s.page,
		Limit:   s.limit,
		Filters: cloneFilters(s.filters),
	}
	s.mu.Unlock()

	page, err := s.fetch(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// a newer fetch was issued while this one was in flight
		return
	}

	s.loading = false
	if err != nil {
		s.err = err.Error()
		return
	}

	s.err = ""
	s.items = page.Items
	s.page = page.Page
	s.limit = page.Limit
	s.total = page.Total
}

// UpdateItem splices a single record into the cached list after a
// mutation succeeded elsewhere. The first match wins.
func (s *Store[T]) UpdateItem(match func(T) bool, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if match(s.items[i]) {
			s.items[i] = item
			return
		}
	}
}

// RemoveItem drops the first matching record from the cached list and
// decrements the total.
func (s *Store[T]) RemoveItem(match func(T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if match(s.items[i]) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			if s.total > 0 {
				s.total--
			}
			return
		}
	}
}

// State returns a snapshot safe to read concurrently with fetches.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]T, len(s.items))
	copy(items, s.items)

	return State[T]{
		Items:   items,
		Loading: s.loading,
		Err:     s.err,
		Page:    s.page,
		Limit:   s.limit,
		Total:   s.total,
		Filters: cloneFilters(s.filters),
	}
}

// String is a convenience for building FetchOptions filter values.
func String(v string) *string { return &v }

// Clear is the nil filter value that removes a key on merge.
var Clear *string

func cloneFilters(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
