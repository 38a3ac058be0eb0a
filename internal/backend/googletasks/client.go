// Package googletasks implements the service.Service interface using Google Tasks API.
//
// Remote tasks live in the user's default task list and projects map to task
// lists. Google Tasks has no priorities, assignees, profiles or team members.
package googletasks

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskflow/internal/config"
	"taskflow/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of records requested per API page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// TasksScope is the OAuth scope for Google Tasks.
	TasksScope = "https://www.googleapis.com/auth/tasks"

	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc    *tasks.Service
	logger zerolog.Logger
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, TasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source refreshes automatically
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithHTTPClient(ctx, httpClient, logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client.
// Extra options (e.g. option.WithEndpoint) are passed to the SDK.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, logger zerolog.Logger, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{
		svc:    svc,
		logger: logger.With().Str("backend", "googletasks").Logger(),
	}, nil
}

// FetchTasks returns a page of tasks from the default list, including
// completed ones. Only status filters are supported.
func (c *Client) FetchTasks(ctx context.Context, params service.FetchParams) (service.Page[service.Task], error) {
	params = params.Normalize(service.DefaultLimit)

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var all []service.Task
	err := c.svc.Tasks.List(DefaultListID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				all = append(all, fromTask(t))
			}
			return nil
		})
	if err != nil {
		return service.Page[service.Task]{}, wrapError(err)
	}

	matched, err := filter(all, params.Filters, func(t service.Task, field string) (string, bool) {
		if field == "status" {
			return t.Status, true
		}
		return "", false
	})
	if err != nil {
		return service.Page[service.Task]{}, err
	}
	sortByModified(matched, params.OrderBy, func(t service.Task) string { return t.ModifiedOn })

	c.logger.Debug().
		Int("total", len(matched)).
		Msg("fetched tasks")
	return service.Page[service.Task]{Items: window(matched, params), Total: len(matched)}, nil
}

// CreateTask creates a task in the default list.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	if in.Priority != "" || in.Assignee != "" {
		c.logger.Warn().Msg("priority and assignee are not stored by google tasks")
	}
	in = in.WithCreateDefaults()

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(DefaultListID, toTask(in)).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromTask(created), nil
}

// UpdateTask patches a task in the default list.
func (c *Client) UpdateTask(ctx context.Context, id service.ID, in service.TaskInput) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	patch := toTask(in)
	if in.Status != "" && in.Status != service.TaskCompleted {
		// Reopening requires clearing the completion time.
		patch.NullFields = append(patch.NullFields, "Completed")
	}
	updated, err := c.svc.Tasks.Patch(DefaultListID, string(id), patch).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromTask(updated), nil
}

// DeleteTask deletes a task from the default list.
func (c *Client) DeleteTask(ctx context.Context, id service.ID) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(DefaultListID, string(id)).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// FetchProjects returns a page of task lists.
func (c *Client) FetchProjects(ctx context.Context, params service.FetchParams) (service.Page[service.Project], error) {
	params = params.Normalize(service.DefaultLimit)

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var all []service.Project
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, l := range resp.Items {
			all = append(all, fromTaskList(l))
		}
		return nil
	})
	if err != nil {
		return service.Page[service.Project]{}, wrapError(err)
	}

	// Task lists carry no status.
	matched, err := filter(all, params.Filters, func(service.Project, string) (string, bool) { return "", false })
	if err != nil {
		return service.Page[service.Project]{}, err
	}
	sortByModified(matched, params.OrderBy, func(p service.Project) string { return p.ModifiedOn })
	return service.Page[service.Project]{Items: window(matched, params), Total: len(matched)}, nil
}

// CreateProject creates a task list.
func (c *Client) CreateProject(ctx context.Context, in service.ProjectInput) (service.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return service.Project{}, fmt.Errorf("project name required")
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	list, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: in.Name}).Context(ctx).Do()
	if err != nil {
		return service.Project{}, wrapError(err)
	}
	return fromTaskList(list), nil
}

// UpdateProject renames a task list. Other project fields are ignored.
func (c *Client) UpdateProject(ctx context.Context, id service.ID, in service.ProjectInput) (service.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	list, err := c.svc.Tasklists.Patch(string(id), &tasks.TaskList{Title: in.Name}).Context(ctx).Do()
	if err != nil {
		return service.Project{}, wrapError(err)
	}
	return fromTaskList(list), nil
}

// DeleteProject deletes a task list by ID.
func (c *Client) DeleteProject(ctx context.Context, id service.ID) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasklists.Delete(string(id)).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// CurrentUser is not supported by Google Tasks.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	return service.User{}, service.ErrUnsupported
}

// UpdateUser is not supported by Google Tasks.
func (c *Client) UpdateUser(ctx context.Context, u service.User) (service.User, error) {
	return service.User{}, service.ErrUnsupported
}

// FetchMembers is not supported by Google Tasks.
func (c *Client) FetchMembers(ctx context.Context, params service.FetchParams) (service.Page[service.Member], error) {
	return service.Page[service.Member]{}, service.ErrUnsupported
}

func fromTask(t *tasks.Task) service.Task {
	status := service.TaskTodo
	if t.Status == statusCompleted {
		status = service.TaskCompleted
	}
	return service.Task{
		ID:          service.ID(t.Id),
		Name:        t.Title,
		Title:       t.Title,
		Description: t.Notes,
		Status:      status,
		DueDate:     t.Due,
		CreatedOn:   t.Updated,
		ModifiedOn:  t.Updated,
	}
}

func toTask(in service.TaskInput) *tasks.Task {
	t := &tasks.Task{
		Title: in.Title,
		Notes: in.Description,
		Due:   in.DueDate,
	}
	switch in.Status {
	case "":
	case service.TaskCompleted:
		t.Status = statusCompleted
	default:
		t.Status = statusNeedsAction
	}
	return t
}

func fromTaskList(l *tasks.TaskList) service.Project {
	return service.Project{
		ID:         service.ID(l.Id),
		Name:       l.Title,
		CreatedOn:  l.Updated,
		ModifiedOn: l.Updated,
	}
}

func filter[T any](items []T, conds []service.Condition, field func(T, string) (string, bool)) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		ok := true
		for _, c := range conds {
			v, known := field(item, c.Field)
			if !known {
				return nil, fmt.Errorf("filter on %s: %w", c.Field, service.ErrUnsupported)
			}
			if v != c.Value {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// sortByModified orders by the update timestamp, newest first unless the
// first order asks for asc.
func sortByModified[T any](items []T, order []service.Order, stamp func(T) string) {
	desc := len(order) == 0 || !strings.EqualFold(order[0].Direction, "asc")
	slices.SortStableFunc(items, func(a, b T) int {
		if desc {
			return cmp.Compare(stamp(b), stamp(a))
		}
		return cmp.Compare(stamp(a), stamp(b))
	})
}

func window[T any](items []T, params service.FetchParams) []T {
	if params.Offset >= len(items) {
		return []T{}
	}
	end := min(params.Offset+params.Limit, len(items))
	return items[params.Offset:end]
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("token expired or revoked (run: taskflow login)")
	}

	// Check for not found
	if strings.Contains(errStr, "404") {
		return fmt.Errorf("not found")
	}

	return err
}
