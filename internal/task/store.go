package task

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskflow/internal/storage"
)

// Store is the ordered, persisted task collection.
// Every mutation writes the whole collection to storage.KeyTasks before it
// becomes visible; a failed write leaves the collection unchanged.
type Store struct {
	mu     sync.RWMutex
	kv     storage.KV
	tasks  []Task
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open rehydrates the collection from kv. A missing key yields an empty store.
func Open(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:     kv,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var tasks []Task
	found, err := storage.GetJSON(ctx, kv, storage.KeyTasks, &tasks)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to load tasks")
		return nil, err
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("load tasks: %w", err)
		}
	}
	s.tasks = tasks

	s.logger.Debug().
		Bool("found", found).
		Int("count", len(tasks)).
		Msg("loaded tasks")
	return s, nil
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return s.tasks[i], nil
}

// Add appends t to the end of the collection.
func (s *Store) Add(ctx context.Context, t Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(t.ID) >= 0 {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalid, t.ID)
	}

	next := append(slices.Clone(s.tasks), t)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logger.Info().
		Str("task_id", t.ID).
		Msg("added task")
	return nil
}

// Create builds a task from d and adds it.
func (s *Store) Create(ctx context.Context, d Draft) (Task, error) {
	t, err := New(d, s.now())
	if err != nil {
		return Task{}, err
	}
	if err := s.Add(ctx, t); err != nil {
		return Task{}, err
	}
	return t, nil
}

// ToggleStatus flips the task between pending and completed, setting or
// clearing CompletedAt accordingly.
func (s *Store) ToggleStatus(ctx context.Context, id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}

	next := slices.Clone(s.tasks)
	next[i] = next[i].Toggled(s.now())
	if err := s.commit(ctx, next); err != nil {
		return Task{}, err
	}

	s.logger.Info().
		Str("task_id", id).
		Str("status", string(next[i].Status)).
		Msg("toggled task status")
	return next[i], nil
}

// Delete removes the task with the given id. It reports whether a task was
// removed; deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.Debug().
			Str("task_id", id).
			Msg("delete of unknown task ignored")
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.tasks), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}

	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return true, nil
}

// Counts summarizes the collection.
type Counts struct {
	Total     int `json:"total" yaml:"total"`
	Completed int `json:"completed" yaml:"completed"`
	Pending   int `json:"pending" yaml:"pending"`
}

// Counts returns the total, completed and pending task counts.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := Counts{Total: len(s.tasks)}
	for _, t := range s.tasks {
		switch t.Status {
		case StatusCompleted:
			c.Completed++
		case StatusPending:
			c.Pending++
		}
	}
	return c
}

// commit persists next and installs it. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []Task) error {
	if next == nil {
		next = []Task{}
	}
	if err := storage.SetJSON(ctx, s.kv, storage.KeyTasks, next); err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to persist tasks")
		return fmt.Errorf("persist tasks: %w", err)
	}
	s.tasks = next
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}
