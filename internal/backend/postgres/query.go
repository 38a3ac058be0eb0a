package postgres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"taskflow/internal/service"
)

const (
	taskColumns    = `id, name, title, description, status, priority, due_date, assignee, created_on, modified_on`
	projectColumns = `id, name, description, start_date, end_date, status, created_on, modified_on`
	userColumns    = `id, name, email, first_name, last_name, avatar_url`
	memberColumns  = `id, name, email, role, avatar`
)

// table describes a selectable table. fields maps remote field names to
// columns; only mapped fields may be filtered or ordered on.
type table struct {
	name    string
	columns string
	fields  map[string]string
}

var (
	taskTable = table{
		name:    "tasks",
		columns: taskColumns,
		fields: map[string]string{
			"Id":         "id",
			"Name":       "name",
			"title":      "title",
			"status":     "status",
			"priority":   "priority",
			"due_date":   "due_date",
			"assignee":   "assignee",
			"CreatedOn":  "created_on",
			"ModifiedOn": "modified_on",
		},
	}
	projectTable = table{
		name:    "projects",
		columns: projectColumns,
		fields: map[string]string{
			"Id":         "id",
			"Name":       "name",
			"status":     "status",
			"start_date": "start_date",
			"end_date":   "end_date",
			"CreatedOn":  "created_on",
			"ModifiedOn": "modified_on",
		},
	}
	memberTable = table{
		name:    "team_members",
		columns: memberColumns,
		fields: map[string]string{
			"Id":    "id",
			"Name":  "name",
			"email": "email",
			"role":  "role",
		},
	}
)

type query struct {
	count     string
	selectSQL string
	args      []any
}

// buildQuery renders the count and page queries for params. The page query
// takes limit and offset as the two parameters after args.
func buildQuery(t table, params service.FetchParams) (query, error) {
	var (
		where []string
		args  []any
	)
	for _, c := range params.Filters {
		col, ok := t.fields[c.Field]
		if !ok {
			return query{}, fmt.Errorf("unknown filter field: %s", c.Field)
		}
		args = append(args, c.Value)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	var orders []string
	for _, o := range params.OrderBy {
		col, ok := t.fields[o.Field]
		if !ok {
			return query{}, fmt.Errorf("unknown order field: %s", o.Field)
		}
		dir := "ASC"
		switch strings.ToLower(o.Direction) {
		case "", "asc":
		case "desc":
			dir = "DESC"
		default:
			return query{}, fmt.Errorf("invalid order direction: %s", o.Direction)
		}
		orders = append(orders, col+" "+dir)
	}
	// Stable paging across equal sort keys.
	orders = append(orders, "id DESC")

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	return query{
		count: "SELECT count(*) FROM " + t.name + whereSQL,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
			t.columns, t.name, whereSQL, strings.Join(orders, ", "), len(args)+1, len(args)+2),
		args: args,
	}, nil
}

// rowID converts a record id to the bigint key. Non-numeric ids match no row.
func rowID(id service.ID) int64 {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return -1
	}
	return n
}

func formatID(n int64) service.ID {
	return service.ID(strconv.FormatInt(n, 10))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func scanTask(row pgx.Row) (service.Task, error) {
	var (
		t                   service.Task
		id                  int64
		createdOn, modified time.Time
	)
	err := row.Scan(
		&id,
		&t.Name,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.Assignee,
		&createdOn,
		&modified,
	)
	if err != nil {
		return service.Task{}, err
	}
	t.ID = formatID(id)
	t.CreatedOn = formatTime(createdOn)
	t.ModifiedOn = formatTime(modified)
	return t, nil
}

func scanProject(row pgx.Row) (service.Project, error) {
	var (
		p                   service.Project
		id                  int64
		createdOn, modified time.Time
	)
	err := row.Scan(
		&id,
		&p.Name,
		&p.Description,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&createdOn,
		&modified,
	)
	if err != nil {
		return service.Project{}, err
	}
	p.ID = formatID(id)
	p.CreatedOn = formatTime(createdOn)
	p.ModifiedOn = formatTime(modified)
	return p, nil
}

func scanUser(row pgx.Row) (service.User, error) {
	var (
		u  service.User
		id int64
	)
	err := row.Scan(&id, &u.Name, &u.Email, &u.FirstName, &u.LastName, &u.AvatarURL)
	if err != nil {
		return service.User{}, err
	}
	u.ID = formatID(id)
	return u, nil
}

func scanMember(row pgx.Row) (service.Member, error) {
	var (
		m  service.Member
		id int64
	)
	err := row.Scan(&id, &m.Name, &m.Email, &m.Role, &m.Avatar)
	if err != nil {
		return service.Member{}, err
	}
	m.ID = formatID(id)
	return m, nil
}
