// Package apper implements the service.Service interface over the Apper
// records API.
package apper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"taskflow/internal/config"
	"taskflow/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// CanvasHeader carries the canvas (project) id on every request.
	CanvasHeader = "X-Apper-Canvas"
)

// Tables in the Apper database.
const (
	TableTasks    = "task3"
	TableProjects = "project"
	TableUsers    = "User"
	TableMembers  = "User1"
)

var (
	taskFields = []string{
		"Id", "Name", "title", "description", "status", "priority",
		"due_date", "assignee", "CreatedOn", "ModifiedOn",
	}
	projectFields = []string{
		"Id", "Name", "description", "start_date", "end_date",
		"status", "CreatedOn", "ModifiedOn",
	}
	memberFields = []string{"Id", "Name", "email", "role", "avatar"}
)

// Client implements service.Service against the Apper records API.
type Client struct {
	baseURL  string
	canvasID string
	http     *http.Client
	logger   zerolog.Logger
}

// New creates a client authenticated with the configured API key.
func New(ctx context.Context, s config.ApperSettings, logger zerolog.Logger) (*Client, error) {
	if s.CanvasID == "" {
		return nil, errors.New("apper canvas id not configured (set APPER_PROJECT_ID)")
	}
	if s.APIKey == "" {
		return nil, errors.New("apper api key not configured (set APPER_PUBLIC_KEY)")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: s.APIKey,
		TokenType:   "Bearer",
	})
	return NewWithHTTPClient(s.BaseURL, s.CanvasID, oauth2.NewClient(ctx, ts), logger), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL, canvasID string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		canvasID: canvasID,
		http:     httpClient,
		logger:   logger.With().Str("backend", "apper").Logger(),
	}
}

type pagingInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type queryRequest struct {
	Fields     []string            `json:"fields"`
	Filter     []service.Condition `json:"filter,omitempty"`
	PagingInfo pagingInfo          `json:"pagingInfo"`
	OrderBy    []service.Order     `json:"orderBy,omitempty"`
}

type queryResponse[T any] struct {
	Data       []T `json:"data"`
	TotalCount int `json:"totalCount"`
}

type recordRequest[T any] struct {
	Record T `json:"record"`
}

type recordResponse[T any] struct {
	Data T `json:"data"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// taskRecord is the task payload sent to the remote; Name mirrors the title.
type taskRecord struct {
	service.TaskInput
	Name string `json:"Name,omitempty"`
}

func newTaskRecord(in service.TaskInput) taskRecord {
	return taskRecord{TaskInput: in, Name: in.Title}
}

// FetchTasks returns a page of tasks.
func (c *Client) FetchTasks(ctx context.Context, params service.FetchParams) (service.Page[service.Task], error) {
	return fetch[service.Task](ctx, c, TableTasks, taskFields, params.Normalize(service.DefaultLimit))
}

// CreateTask creates a task with status and priority defaults.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	var resp recordResponse[service.Task]
	err := c.do(ctx, http.MethodPost, c.recordsURL(TableTasks, ""), recordRequest[taskRecord]{newTaskRecord(in.WithCreateDefaults())}, &resp)
	if err != nil {
		return service.Task{}, err
	}
	c.logger.Debug().
		Str("task_id", string(resp.Data.ID)).
		Msg("created task")
	return resp.Data, nil
}

// UpdateTask patches a task.
func (c *Client) UpdateTask(ctx context.Context, id service.ID, in service.TaskInput) (service.Task, error) {
	var resp recordResponse[service.Task]
	err := c.do(ctx, http.MethodPut, c.recordsURL(TableTasks, id), recordRequest[taskRecord]{newTaskRecord(in)}, &resp)
	if err != nil {
		return service.Task{}, err
	}
	return resp.Data, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id service.ID) error {
	return c.do(ctx, http.MethodDelete, c.recordsURL(TableTasks, id), nil, nil)
}

// FetchProjects returns a page of projects.
func (c *Client) FetchProjects(ctx context.Context, params service.FetchParams) (service.Page[service.Project], error) {
	return fetch[service.Project](ctx, c, TableProjects, projectFields, params.Normalize(service.DefaultLimit))
}

// CreateProject creates a project, defaulting its status to Not Started.
func (c *Client) CreateProject(ctx context.Context, in service.ProjectInput) (service.Project, error) {
	var resp recordResponse[service.Project]
	err := c.do(ctx, http.MethodPost, c.recordsURL(TableProjects, ""), recordRequest[service.ProjectInput]{in.WithCreateDefaults()}, &resp)
	if err != nil {
		return service.Project{}, err
	}
	return resp.Data, nil
}

// UpdateProject patches a project.
func (c *Client) UpdateProject(ctx context.Context, id service.ID, in service.ProjectInput) (service.Project, error) {
	var resp recordResponse[service.Project]
	err := c.do(ctx, http.MethodPut, c.recordsURL(TableProjects, id), recordRequest[service.ProjectInput]{in}, &resp)
	if err != nil {
		return service.Project{}, err
	}
	return resp.Data, nil
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id service.ID) error {
	return c.do(ctx, http.MethodDelete, c.recordsURL(TableProjects, id), nil, nil)
}

// CurrentUser returns the profile the API key belongs to.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	var resp recordResponse[service.User]
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/auth/me", nil, &resp); err != nil {
		return service.User{}, err
	}
	return resp.Data, nil
}

// UpdateUser updates the user record with the same id.
func (c *Client) UpdateUser(ctx context.Context, u service.User) (service.User, error) {
	if u.ID == "" {
		return service.User{}, errors.New("user id required")
	}
	var resp recordResponse[service.User]
	if err := c.do(ctx, http.MethodPut, c.recordsURL(TableUsers, u.ID), recordRequest[service.User]{u}, &resp); err != nil {
		return service.User{}, err
	}
	return resp.Data, nil
}

// FetchMembers returns a page of team members.
func (c *Client) FetchMembers(ctx context.Context, params service.FetchParams) (service.Page[service.Member], error) {
	params = params.Normalize(service.MemberLimit)
	params.OrderBy = nil
	return fetch[service.Member](ctx, c, TableMembers, memberFields, params)
}

func fetch[T any](ctx context.Context, c *Client, table string, fields []string, params service.FetchParams) (service.Page[T], error) {
	req := queryRequest{
		Fields:     fields,
		Filter:     params.Filters,
		PagingInfo: pagingInfo{Limit: params.Limit, Offset: params.Offset},
		OrderBy:    params.OrderBy,
	}

	var resp queryResponse[T]
	if err := c.do(ctx, http.MethodPost, c.recordsURL(table, "")+"/query", req, &resp); err != nil {
		return service.Page[T]{}, err
	}
	if resp.Data == nil {
		resp.Data = []T{}
	}
	c.logger.Debug().
		Str("table", table).
		Int("count", len(resp.Data)).
		Int("total", resp.TotalCount).
		Msg("fetched records")
	return service.Page[T]{Items: resp.Data, Total: resp.TotalCount}, nil
}

func (c *Client) recordsURL(table string, id service.ID) string {
	u := c.baseURL + "/tables/" + url.PathEscape(table) + "/records"
	if id != "" {
		u += "/" + url.PathEscape(string(id))
	}
	return u
}

// do sends body as JSON and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return err
	}
	req.Header.Set(CanvasHeader, c.canvasID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("url", endpoint).
			Msg("request failed")
		return wrapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp.StatusCode, data)
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("url", endpoint).
			Int("status", resp.StatusCode).
			Msg("request rejected")
		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError builds an error from a non-2xx response, preferring the
// server's message.
func statusError(status int, body []byte) error {
	var e errorResponse
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return errors.New(e.Message)
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.New("token expired or revoked")
	case http.StatusNotFound:
		return errors.New("not found")
	}
	return errors.New(strings.ToLower(http.StatusText(status)))
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "context deadline exceeded") {
		return errors.New("request timed out")
	}
	return err
}
