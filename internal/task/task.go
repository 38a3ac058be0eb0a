// Package task holds the local task list: the records, the store that
// persists them and the filtered, sorted views derived from it.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")

	// ErrInvalid is returned for records that break the task invariants.
	ErrInvalid = errors.New("invalid task")

	// ErrTitleRequired is returned when a new task has a blank title.
	ErrTitleRequired = errors.New("task title is required")
)

// Task is a single to-do item.
// CompletedAt is non-nil exactly when Status is StatusCompleted.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Status      Status     `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	CompletedAt *time.Time `json:"completedAt" yaml:"completedAt"`
}

// Draft is the user input for a new task.
type Draft struct {
	Title       string
	Description string
	Priority    Priority
}

// New builds a pending task from a draft.
// The title is required; priority defaults to medium.
func New(d Draft, now time.Time) (Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Task{}, ErrTitleRequired
	}

	priority := d.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return Task{}, fmt.Errorf("%w: unknown priority %q", ErrInvalid, priority)
	}

	return Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Priority:    priority,
		Status:      StatusPending,
		CreatedAt:   now,
	}, nil
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities: high > medium > low > unknown.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Completed reports whether the task is done.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// Validate checks the record invariants.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalid)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: %s: unknown priority %q", ErrInvalid, t.ID, t.Priority)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %s: unknown status %q", ErrInvalid, t.ID, t.Status)
	}
	if t.Completed() != (t.CompletedAt != nil) {
		return fmt.Errorf("%w: %s: completedAt does not match status", ErrInvalid, t.ID)
	}
	return nil
}

// Toggled returns a copy of t with its status flipped.
func (t Task) Toggled(now time.Time) Task {
	if t.Completed() {
		t.Status = StatusPending
		t.CompletedAt = nil
		return t
	}
	t.Status = StatusCompleted
	completedAt := now
	t.CompletedAt = &completedAt
	return t
}
