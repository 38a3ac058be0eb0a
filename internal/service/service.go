package service

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by backends for operations they cannot serve.
var ErrUnsupported = errors.New("operation not supported by backend")

const (
	// DefaultLimit is the page size used when FetchParams.Limit is zero.
	DefaultLimit = 20

	// MemberLimit is the page size used for team members.
	MemberLimit = 50
)

// DefaultOrder sorts records newest first.
var DefaultOrder = []Order{{Field: "CreatedOn", Direction: "desc"}}

// Service defines the interface for remote record operations.
// Slices and commands never import a backend SDK directly.
type Service interface {
	// FetchTasks returns a page of remote tasks.
	FetchTasks(ctx context.Context, params FetchParams) (Page[Task], error)

	// CreateTask creates a task. Title is mirrored into Name.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask patches a task with the non-empty fields of in.
	UpdateTask(ctx context.Context, id ID, in TaskInput) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id ID) error

	// FetchProjects returns a page of projects.
	FetchProjects(ctx context.Context, params FetchParams) (Page[Project], error)

	// CreateProject creates a project.
	CreateProject(ctx context.Context, in ProjectInput) (Project, error)

	// UpdateProject patches a project with the non-empty fields of in.
	UpdateProject(ctx context.Context, id ID, in ProjectInput) (Project, error)

	// DeleteProject deletes a project.
	DeleteProject(ctx context.Context, id ID) error

	// CurrentUser returns the authenticated user's profile.
	CurrentUser(ctx context.Context) (User, error)

	// UpdateUser updates the user's profile record.
	UpdateUser(ctx context.Context, u User) (User, error)

	// FetchMembers returns a page of team members.
	FetchMembers(ctx context.Context, params FetchParams) (Page[Member], error)
}

// Normalize fills zero-valued paging and ordering with defaults.
func (p FetchParams) Normalize(limit int) FetchParams {
	if p.Limit <= 0 {
		p.Limit = limit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if len(p.OrderBy) == 0 {
		p.OrderBy = DefaultOrder
	}
	return p
}
