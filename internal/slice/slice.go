// Package slice holds client-side caches of remote collections. Each slice
// proxies CRUD calls to a service.Service and records the outcome as
// loading/error/pagination state.
//
// Calls are not ordered: results are applied in completion order, so of two
// overlapping updates to one record the one that finishes last wins.
package slice

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"taskflow/internal/service"
)

// Pagination tracks paging of a remote collection.
type Pagination struct {
	Total  int `json:"total" yaml:"total"`
	Limit  int `json:"limit" yaml:"limit"`
	Offset int `json:"offset" yaml:"offset"`
}

// State is a snapshot of a slice.
type State[T any] struct {
	Items      []T        `json:"items" yaml:"items"`
	Loading    bool       `json:"loading" yaml:"loading"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// Ops are the remote calls a Resource proxies. A nil op is unsupported.
type Ops[T, In any] struct {
	Fetch  func(ctx context.Context, params service.FetchParams) (service.Page[T], error)
	Create func(ctx context.Context, in In) (T, error)
	Update func(ctx context.Context, id service.ID, in In) (T, error)
	Delete func(ctx context.Context, id service.ID) error
}

// Resource is a cached remote collection of T written with In.
type Resource[T, In any] struct {
	name   string
	ops    Ops[T, In]
	idOf   func(T) service.ID
	logger zerolog.Logger

	mu       sync.Mutex
	state    State[T]
	inflight int

	// Hooks run with mu held after the matching fulfilled reducer.
	afterUpdate func(T)
	afterDelete func(service.ID)
}

// NewResource creates an empty resource slice with the given page size.
func NewResource[T, In any](name string, ops Ops[T, In], idOf func(T) service.ID, limit int, logger zerolog.Logger) *Resource[T, In] {
	return &Resource[T, In]{
		name:   name,
		ops:    ops,
		idOf:   idOf,
		logger: logger.With().Str("slice", name).Logger(),
		state: State[T]{
			Items:      []T{},
			Pagination: Pagination{Limit: limit},
		},
	}
}

// State returns a copy of the current state.
func (r *Resource[T, In]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// snapshot copies the state. r.mu must be held.
func (r *Resource[T, In]) snapshot() State[T] {
	st := r.state
	st.Items = slices.Clone(r.state.Items)
	return st
}

// SetPagination updates the page window used by later fetches.
// A non-positive limit or negative offset leaves that field unchanged.
func (r *Resource[T, In]) SetPagination(limit, offset int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > 0 {
		r.state.Pagination.Limit = limit
	}
	if offset >= 0 {
		r.state.Pagination.Offset = offset
	}
}

// ClearError clears the recorded error message.
func (r *Resource[T, In]) ClearError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Error = ""
}

// Fetch replaces the cached items with one page from the remote. The page
// window always comes from the slice's pagination; the Limit and Offset of
// params are ignored, so move the window with SetPagination first.
func (r *Resource[T, In]) Fetch(ctx context.Context, params service.FetchParams) error {
	if r.ops.Fetch == nil {
		return r.unsupported("fetch")
	}

	r.mu.Lock()
	params.Limit = r.state.Pagination.Limit
	params.Offset = r.state.Pagination.Offset
	r.mu.Unlock()
	params = params.Normalize(service.DefaultLimit)

	r.begin("fetch")
	page, err := r.ops.Fetch(ctx, params)
	return r.end("fetch", err, func(st *State[T]) {
		items := page.Items
		if items == nil {
			items = []T{}
		}
		st.Items = items
		st.Pagination.Total = page.Total
	})
}

// Create creates a record and prepends it to the cache.
func (r *Resource[T, In]) Create(ctx context.Context, in In) (T, error) {
	var zero T
	if r.ops.Create == nil {
		return zero, r.unsupported("create")
	}

	r.begin("create")
	rec, err := r.ops.Create(ctx, in)
	err = r.end("create", err, func(st *State[T]) {
		st.Items = slices.Insert(st.Items, 0, rec)
		st.Pagination.Total++
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// Update patches a record and replaces the cached copy with the same id.
func (r *Resource[T, In]) Update(ctx context.Context, id service.ID, in In) (T, error) {
	var zero T
	if r.ops.Update == nil {
		return zero, r.unsupported("update")
	}

	r.begin("update")
	rec, err := r.ops.Update(ctx, id, in)
	err = r.end("update", err, func(st *State[T]) {
		recID := r.idOf(rec)
		if i := slices.IndexFunc(st.Items, func(x T) bool { return r.idOf(x) == recID }); i >= 0 {
			st.Items[i] = rec
		}
		if r.afterUpdate != nil {
			r.afterUpdate(rec)
		}
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// Delete removes a record remotely and from the cache.
func (r *Resource[T, In]) Delete(ctx context.Context, id service.ID) error {
	if r.ops.Delete == nil {
		return r.unsupported("delete")
	}

	r.begin("delete")
	err := r.ops.Delete(ctx, id)
	return r.end("delete", err, func(st *State[T]) {
		st.Items = slices.DeleteFunc(st.Items, func(x T) bool { return r.idOf(x) == id })
		st.Pagination.Total--
		if r.afterDelete != nil {
			r.afterDelete(id)
		}
	})
}

// begin marks an operation pending.
func (r *Resource[T, In]) begin(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight++
	r.state.Loading = true
	r.logger.Debug().
		Str("op", op).
		Msg("pending")
}

// end settles an operation: on failure the message is recorded, otherwise
// apply reduces the result into the state.
func (r *Resource[T, In]) end(op string, err error, apply func(*State[T])) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight--
	r.state.Loading = r.inflight > 0

	if err != nil {
		r.state.Error = err.Error()
		r.logger.Error().
			Err(err).
			Str("op", op).
			Msg("rejected")
		return err
	}

	apply(&r.state)
	r.logger.Debug().
		Str("op", op).
		Int("count", len(r.state.Items)).
		Msg("fulfilled")
	return nil
}

func (r *Resource[T, In]) unsupported(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Error = service.ErrUnsupported.Error()
	r.logger.Error().
		Str("op", op).
		Msg("unsupported operation")
	return service.ErrUnsupported
}
