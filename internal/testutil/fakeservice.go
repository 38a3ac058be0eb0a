// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"

	"taskflow/internal/service"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for testing.
// Fetches return records newest first.
type FakeService struct {
	mu       sync.RWMutex
	nextID   int
	tasks    []service.Task
	projects []service.Project
	members  []service.Member
	user     service.User

	// Last fetch parameters seen, for assertions.
	LastTaskParams    service.FetchParams
	LastProjectParams service.FetchParams
	LastMemberParams  service.FetchParams

	// Error injection for testing
	FetchTasksErr    error
	CreateTaskErr    error
	UpdateTaskErr    error
	DeleteTaskErr    error
	FetchProjectsErr error
	CreateProjectErr error
	UpdateProjectErr error
	DeleteProjectErr error
	CurrentUserErr   error
	UpdateUserErr    error
	FetchMembersErr  error
}

// NewFakeService creates an empty FakeService whose current user is "Test User".
func NewFakeService() *FakeService {
	return &FakeService{
		user: service.User{ID: "100", Name: "Test User", Email: "test@example.com"},
	}
}

func (f *FakeService) newID() service.ID {
	f.nextID++
	return service.ID(strconv.Itoa(f.nextID))
}

func (f *FakeService) stamp() string {
	return "2024-01-01T00:00:" + twoDigits(f.nextID) + "Z"
}

func twoDigits(n int) string {
	n %= 60
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// AddTask seeds a remote task and returns it.
func (f *FakeService) AddTask(title, status, priority string) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:       f.newID(),
		Name:     title,
		Title:    title,
		Status:   status,
		Priority: priority,
	}
	t.CreatedOn = f.stamp()
	t.ModifiedOn = t.CreatedOn
	f.tasks = append(f.tasks, t)
	return t
}

// AddProject seeds a project and returns it.
func (f *FakeService) AddProject(name, status string) service.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := service.Project{ID: f.newID(), Name: name, Status: status}
	p.CreatedOn = f.stamp()
	p.ModifiedOn = p.CreatedOn
	f.projects = append(f.projects, p)
	return p
}

// AddMember seeds a team member and returns it.
func (f *FakeService) AddMember(name, role string) service.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := service.Member{ID: f.newID(), Name: name, Role: role}
	f.members = append(f.members, m)
	return m
}

// Tasks returns a copy of the stored tasks in insertion order.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.tasks)
}

// Projects returns a copy of the stored projects in insertion order.
func (f *FakeService) Projects() []service.Project {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.projects)
}

// FetchTasks implements service.Service.
func (f *FakeService) FetchTasks(ctx context.Context, params service.FetchParams) (service.Page[service.Task], error) {
	if f.FetchTasksErr != nil {
		return service.Page[service.Task]{}, f.FetchTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastTaskParams = params

	var matched []service.Task
	for _, t := range newestFirst(f.tasks) {
		if matchTask(t, params.Filters) {
			matched = append(matched, t)
		}
	}
	return service.Page[service.Task]{Items: window(matched, params), Total: len(matched)}, nil
}

func matchTask(t service.Task, conds []service.Condition) bool {
	for _, c := range conds {
		var v string
		switch c.Field {
		case "status":
			v = t.Status
		case "priority":
			v = t.Priority
		case "assignee":
			v = t.Assignee
		default:
			return false
		}
		if v != c.Value {
			return false
		}
	}
	return true
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	in = in.WithCreateDefaults()
	t := service.Task{
		ID:          f.newID(),
		Name:        in.Title,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Assignee:    in.Assignee,
	}
	t.CreatedOn = f.stamp()
	t.ModifiedOn = t.CreatedOn
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id service.ID, in service.TaskInput) (service.Task, error) {
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.IndexFunc(f.tasks, func(t service.Task) bool { return t.ID == id })
	if i < 0 {
		return service.Task{}, ErrNotFound
	}
	t := &f.tasks[i]
	if in.Title != "" {
		t.Title = in.Title
		t.Name = in.Title
	}
	if in.Description != "" {
		t.Description = in.Description
	}
	if in.Status != "" {
		t.Status = in.Status
	}
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	if in.DueDate != "" {
		t.DueDate = in.DueDate
	}
	if in.Assignee != "" {
		t.Assignee = in.Assignee
	}
	f.nextID++
	t.ModifiedOn = f.stamp()
	return *t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id service.ID) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.IndexFunc(f.tasks, func(t service.Task) bool { return t.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	f.tasks = slices.Delete(f.tasks, i, i+1)
	return nil
}

// FetchProjects implements service.Service.
func (f *FakeService) FetchProjects(ctx context.Context, params service.FetchParams) (service.Page[service.Project], error) {
	if f.FetchProjectsErr != nil {
		return service.Page[service.Project]{}, f.FetchProjectsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastProjectParams = params

	var matched []service.Project
	for _, p := range newestFirst(f.projects) {
		ok := true
		for _, c := range params.Filters {
			if c.Field != "status" || p.Status != c.Value {
				ok = false
			}
		}
		if ok {
			matched = append(matched, p)
		}
	}
	return service.Page[service.Project]{Items: window(matched, params), Total: len(matched)}, nil
}

// CreateProject implements service.Service.
func (f *FakeService) CreateProject(ctx context.Context, in service.ProjectInput) (service.Project, error) {
	if f.CreateProjectErr != nil {
		return service.Project{}, f.CreateProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	in = in.WithCreateDefaults()
	p := service.Project{
		ID:          f.newID(),
		Name:        in.Name,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      in.Status,
	}
	p.CreatedOn = f.stamp()
	p.ModifiedOn = p.CreatedOn
	f.projects = append(f.projects, p)
	return p, nil
}

// UpdateProject implements service.Service.
func (f *FakeService) UpdateProject(ctx context.Context, id service.ID, in service.ProjectInput) (service.Project, error) {
	if f.UpdateProjectErr != nil {
		return service.Project{}, f.UpdateProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.IndexFunc(f.projects, func(p service.Project) bool { return p.ID == id })
	if i < 0 {
		return service.Project{}, ErrNotFound
	}
	p := &f.projects[i]
	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.StartDate != "" {
		p.StartDate = in.StartDate
	}
	if in.EndDate != "" {
		p.EndDate = in.EndDate
	}
	if in.Status != "" {
		p.Status = in.Status
	}
	return *p, nil
}

// DeleteProject implements service.Service.
func (f *FakeService) DeleteProject(ctx context.Context, id service.ID) error {
	if f.DeleteProjectErr != nil {
		return f.DeleteProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.IndexFunc(f.projects, func(p service.Project) bool { return p.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	f.projects = slices.Delete(f.projects, i, i+1)
	return nil
}

// CurrentUser implements service.Service.
func (f *FakeService) CurrentUser(ctx context.Context) (service.User, error) {
	if f.CurrentUserErr != nil {
		return service.User{}, f.CurrentUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.user, nil
}

// UpdateUser implements service.Service. Only non-empty fields are applied.
func (f *FakeService) UpdateUser(ctx context.Context, u service.User) (service.User, error) {
	if f.UpdateUserErr != nil {
		return service.User{}, f.UpdateUserErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID != "" && u.ID != f.user.ID {
		return service.User{}, ErrNotFound
	}
	f.user = f.user.Merge(u)
	return f.user, nil
}

// FetchMembers implements service.Service.
func (f *FakeService) FetchMembers(ctx context.Context, params service.FetchParams) (service.Page[service.Member], error) {
	if f.FetchMembersErr != nil {
		return service.Page[service.Member]{}, f.FetchMembersErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastMemberParams = params
	members := slices.Clone(f.members)
	return service.Page[service.Member]{Items: window(members, params), Total: len(members)}, nil
}

func newestFirst[T any](items []T) []T {
	out := slices.Clone(items)
	slices.Reverse(out)
	return out
}

func window[T any](items []T, params service.FetchParams) []T {
	start := max(params.Offset, 0)
	if start >= len(items) {
		return nil
	}
	end := len(items)
	if params.Limit > 0 && start+params.Limit < end {
		end = start + params.Limit
	}
	return items[start:end]
}
