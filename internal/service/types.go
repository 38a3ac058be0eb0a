// Package service defines the backend-agnostic interface for remote records.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Remote task statuses.
const (
	TaskTodo       = "Todo"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

// Remote task priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Project statuses.
const (
	ProjectNotStarted = "Not Started"
	ProjectInProgress = "In Progress"
	ProjectCompleted  = "Completed"
)

// ID identifies a remote record. Backends may encode it as a JSON number or
// string; it is always held as a string.
type ID string

// UnmarshalJSON accepts both numeric and string ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid record id %s", data)
	}
	*id = ID(n.String())
	return nil
}

// Task is a remote task record.
type Task struct {
	ID          ID     `json:"Id" yaml:"id"`
	Name        string `json:"Name,omitempty" yaml:"name,omitempty"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	Priority    string `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Assignee    string `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	CreatedOn   string `json:"CreatedOn,omitempty" yaml:"created_on,omitempty"`
	ModifiedOn  string `json:"ModifiedOn,omitempty" yaml:"modified_on,omitempty"`
}

// TaskInput holds the writable task fields. Empty fields are not sent.
type TaskInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
}

// WithCreateDefaults fills the status and priority of a new task.
func (in TaskInput) WithCreateDefaults() TaskInput {
	if in.Status == "" {
		in.Status = TaskTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	return in
}

// Project is a remote project record.
type Project struct {
	ID          ID     `json:"Id" yaml:"id"`
	Name        string `json:"Name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedOn   string `json:"CreatedOn,omitempty" yaml:"created_on,omitempty"`
	ModifiedOn  string `json:"ModifiedOn,omitempty" yaml:"modified_on,omitempty"`
}

// ProjectInput holds the writable project fields. Empty fields are not sent.
type ProjectInput struct {
	Name        string `json:"Name,omitempty"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Status      string `json:"status,omitempty"`
}

// WithCreateDefaults fills the status of a new project.
func (in ProjectInput) WithCreateDefaults() ProjectInput {
	if in.Status == "" {
		in.Status = ProjectNotStarted
	}
	return in
}

// User is the signed-in user's profile, cached locally as the session blob.
type User struct {
	ID        ID     `json:"Id" yaml:"id"`
	Name      string `json:"Name,omitempty" yaml:"name,omitempty"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	FirstName string `json:"firstName,omitempty" yaml:"first_name,omitempty"`
	LastName  string `json:"lastName,omitempty" yaml:"last_name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty" yaml:"avatar_url,omitempty"`
}

// Merge overlays the non-empty fields of v on u.
func (u User) Merge(v User) User {
	if v.ID != "" {
		u.ID = v.ID
	}
	if v.Name != "" {
		u.Name = v.Name
	}
	if v.Email != "" {
		u.Email = v.Email
	}
	if v.FirstName != "" {
		u.FirstName = v.FirstName
	}
	if v.LastName != "" {
		u.LastName = v.LastName
	}
	if v.AvatarURL != "" {
		u.AvatarURL = v.AvatarURL
	}
	return u
}

// Member is a team member record.
type Member struct {
	ID     ID     `json:"Id" yaml:"id"`
	Name   string `json:"Name" yaml:"name"`
	Email  string `json:"email,omitempty" yaml:"email,omitempty"`
	Role   string `json:"role,omitempty" yaml:"role,omitempty"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Condition is an equality filter on a record field.
type Condition struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Order sorts fetched records. Direction is "asc" or "desc".
type Order struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// FetchParams selects a page of records.
type FetchParams struct {
	Filters []Condition
	Limit   int
	Offset  int
	OrderBy []Order
}

// Page is one page of fetched records plus the total matching count.
type Page[T any] struct {
	Items []T
	Total int
}
