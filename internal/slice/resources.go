package slice

import (
	"context"

	"github.com/rs/zerolog"

	"taskflow/internal/service"
)

// Tasks is the remote task slice.
type Tasks = Resource[service.Task, service.TaskInput]

// NewTasks creates the task slice over svc.
func NewTasks(svc service.Service, logger zerolog.Logger) *Tasks {
	return NewResource("tasks", Ops[service.Task, service.TaskInput]{
		Fetch:  svc.FetchTasks,
		Create: svc.CreateTask,
		Update: svc.UpdateTask,
		Delete: svc.DeleteTask,
	}, func(t service.Task) service.ID { return t.ID }, service.DefaultLimit, logger)
}

// Members is the read-only team member slice.
type Members = Resource[service.Member, struct{}]

// NewMembers creates the team member slice over svc.
func NewMembers(svc service.Service, logger zerolog.Logger) *Members {
	return NewResource("members", Ops[service.Member, struct{}]{
		Fetch: func(ctx context.Context, params service.FetchParams) (service.Page[service.Member], error) {
			// Members are unordered on the remote side.
			params.OrderBy = nil
			return svc.FetchMembers(ctx, params)
		},
	}, func(m service.Member) service.ID { return m.ID }, service.MemberLimit, logger)
}

// ProjectState is a snapshot of the project slice.
type ProjectState struct {
	State[service.Project]
	Selected *service.Project `json:"selected" yaml:"selected"`
}

// Projects is the remote project slice with a selected project.
type Projects struct {
	*Resource[service.Project, service.ProjectInput]
	selected *service.Project // guarded by Resource.mu
}

// NewProjects creates the project slice over svc.
func NewProjects(svc service.Service, logger zerolog.Logger) *Projects {
	p := &Projects{
		Resource: NewResource("projects", Ops[service.Project, service.ProjectInput]{
			Fetch:  svc.FetchProjects,
			Create: svc.CreateProject,
			Update: svc.UpdateProject,
			Delete: svc.DeleteProject,
		}, func(p service.Project) service.ID { return p.ID }, service.DefaultLimit, logger),
	}
	p.afterUpdate = func(rec service.Project) {
		if p.selected != nil && p.selected.ID == rec.ID {
			sel := rec
			p.selected = &sel
		}
	}
	p.afterDelete = func(id service.ID) {
		if p.selected != nil && p.selected.ID == id {
			p.selected = nil
		}
	}
	return p
}

// Select marks the cached project with the given id as selected. An empty id
// clears the selection. It reports false, leaving the selection unchanged,
// when no cached project has the id.
func (p *Projects) Select(id service.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id == "" {
		p.selected = nil
		return true
	}
	for _, rec := range p.state.Items {
		if rec.ID == id {
			sel := rec
			p.selected = &sel
			return true
		}
	}
	return false
}

// ProjectState returns a copy of the items and the selection taken under one
// lock, so the selection always matches the cached record.
func (p *Projects) ProjectState() ProjectState {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := ProjectState{State: p.snapshot()}
	if p.selected != nil {
		sel := *p.selected
		st.Selected = &sel
	}
	return st
}
