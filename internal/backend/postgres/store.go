// Package postgres implements the service.Service interface on a PostgreSQL
// database through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskflow/internal/config"
	"taskflow/internal/service"
)

// APITimeout bounds every query.
const APITimeout = 5 * time.Second

// ErrNotFound is returned when no row matches an id.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'Todo',
	priority    TEXT NOT NULL DEFAULT 'Medium',
	due_date    TEXT NOT NULL DEFAULT '',
	assignee    TEXT NOT NULL DEFAULT '',
	created_on  TIMESTAMPTZ NOT NULL DEFAULT now(),
	modified_on TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS projects (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL DEFAULT '',
	end_date    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'Not Started',
	created_on  TIMESTAMPTZ NOT NULL DEFAULT now(),
	modified_on TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS team_members (
	id     BIGSERIAL PRIMARY KEY,
	name   TEXT NOT NULL,
	email  TEXT NOT NULL DEFAULT '',
	role   TEXT NOT NULL DEFAULT '',
	avatar TEXT NOT NULL DEFAULT ''
);
`

// Store implements service.Service on PostgreSQL.
type Store struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

// Connect opens a pool, pings the server and applies the schema.
func Connect(ctx context.Context, s config.PostgresSettings, logger zerolog.Logger) (*Store, error) {
	if s.URL == "" {
		return nil, errors.New("postgres url not configured (set POSTGRES_URL)")
	}

	poolCfg, err := pgxpool.ParseConfig(s.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if s.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = s.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	pingTimeout := s.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = APITimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := New(pool, logger)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	store.logger.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Uint16("port", poolCfg.ConnConfig.Port).
		Msg("connected to postgres")
	return store, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, logger zerolog.Logger) *Store {
	return &Store{
		logger: logger.With().Str("backend", "postgres").Logger(),
		pgPool: pool,
	}
}

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pgPool.Exec(ctx, schema); err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to apply schema")
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() {
	s.pgPool.Close()
	s.logger.Info().Msg("disconnected from postgres")
}

// FetchTasks implements service.Service.
func (s *Store) FetchTasks(ctx context.Context, params service.FetchParams) (service.Page[service.Task], error) {
	return fetch(ctx, s, taskTable, params.Normalize(service.DefaultLimit), scanTask)
}

// CreateTask implements service.Service.
func (s *Store) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	in = in.WithCreateDefaults()

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	const insertTaskQuery = `
INSERT INTO tasks (name, title, description, status, priority, due_date, assignee)
VALUES ($1, $1, $2, $3, $4, $5, $6)
RETURNING ` + taskColumns
	t, err := scanTask(s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		in.Title,
		in.Description,
		in.Status,
		in.Priority,
		in.DueDate,
		in.Assignee,
	))
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return service.Task{}, wrapError(err)
	}
	s.logger.Debug().
		Str("task_id", string(t.ID)).
		Msg("created task")
	return t, nil
}

// UpdateTask implements service.Service. Empty fields keep their value.
func (s *Store) UpdateTask(ctx context.Context, id service.ID, in service.TaskInput) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	const updateTaskQuery = `
UPDATE tasks
SET name        = COALESCE(NULLIF($2, ''), name),
    title       = COALESCE(NULLIF($2, ''), title),
    description = COALESCE(NULLIF($3, ''), description),
    status      = COALESCE(NULLIF($4, ''), status),
    priority    = COALESCE(NULLIF($5, ''), priority),
    due_date    = COALESCE(NULLIF($6, ''), due_date),
    assignee    = COALESCE(NULLIF($7, ''), assignee),
    modified_on = now()
WHERE id = $1
RETURNING ` + taskColumns
	t, err := scanTask(s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		rowID(id),
		in.Title,
		in.Description,
		in.Status,
		in.Priority,
		in.DueDate,
		in.Assignee,
	))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", string(id)).
			Msg("failed to update task")
		return service.Task{}, wrapError(err)
	}
	return t, nil
}

// DeleteTask implements service.Service.
func (s *Store) DeleteTask(ctx context.Context, id service.ID) error {
	return s.deleteByID(ctx, "tasks", id)
}

// FetchProjects implements service.Service.
func (s *Store) FetchProjects(ctx context.Context, params service.FetchParams) (service.Page[service.Project], error) {
	return fetch(ctx, s, projectTable, params.Normalize(service.DefaultLimit), scanProject)
}

// CreateProject implements service.Service.
func (s *Store) CreateProject(ctx context.Context, in service.ProjectInput) (service.Project, error) {
	in = in.WithCreateDefaults()

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	const insertProjectQuery = `
INSERT INTO projects (name, description, start_date, end_date, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + projectColumns
	p, err := scanProject(s.pgPool.QueryRow(
		ctx,
		insertProjectQuery,
		in.Name,
		in.Description,
		in.StartDate,
		in.EndDate,
		in.Status,
	))
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert project")
		return service.Project{}, wrapError(err)
	}
	return p, nil
}

// UpdateProject implements service.Service. Empty fields keep their value.
func (s *Store) UpdateProject(ctx context.Context, id service.ID, in service.ProjectInput) (service.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	const updateProjectQuery = `
UPDATE projects
SET name        = COALESCE(NULLIF($2, ''), name),
    description = COALESCE(NULLIF($3, ''), description),
    start_date  = COALESCE(NULLIF($4, ''), start_date),
    end_date    = COALESCE(NULLIF($5, ''), end_date),
    status      = COALESCE(NULLIF($6, ''), status),
    modified_on = now()
WHERE id = $1
RETURNING ` + projectColumns
	p, err := scanProject(s.pgPool.QueryRow(
		ctx,
		updateProjectQuery,
		rowID(id),
		in.Name,
		in.Description,
		in.StartDate,
		in.EndDate,
		in.Status,
	))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", string(id)).
			Msg("failed to update project")
		return service.Project{}, wrapError(err)
	}
	return p, nil
}

// DeleteProject implements service.Service.
func (s *Store) DeleteProject(ctx context.Context, id service.ID) error {
	return s.deleteByID(ctx, "projects", id)
}

// CurrentUser returns the oldest user row.
func (s *Store) CurrentUser(ctx context.Context) (service.User, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	const selectUserQuery = `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT 1`
	u, err := scanUser(s.pgPool.QueryRow(ctx, selectUserQuery))
	if err != nil {
		return service.User{}, wrapError(err)
	}
	return u, nil
}

// UpdateUser implements service.Service. Empty fields keep their value.
func (s *Store) UpdateUser(ctx context.Context, u service.User) (service.User, error) {
	if u.ID == "" {
		return service.User{}, errors.New("user id required")
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	const updateUserQuery = `
UPDATE users
SET name       = COALESCE(NULLIF($2, ''), name),
    email      = COALESCE(NULLIF($3, ''), email),
    first_name = COALESCE(NULLIF($4, ''), first_name),
    last_name  = COALESCE(NULLIF($5, ''), last_name),
    avatar_url = COALESCE(NULLIF($6, ''), avatar_url)
WHERE id = $1
RETURNING ` + userColumns
	updated, err := scanUser(s.pgPool.QueryRow(
		ctx,
		updateUserQuery,
		rowID(u.ID),
		u.Name,
		u.Email,
		u.FirstName,
		u.LastName,
		u.AvatarURL,
	))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", string(u.ID)).
			Msg("failed to update user")
		return service.User{}, wrapError(err)
	}
	return updated, nil
}

// FetchMembers implements service.Service.
func (s *Store) FetchMembers(ctx context.Context, params service.FetchParams) (service.Page[service.Member], error) {
	params = params.Normalize(service.MemberLimit)
	params.OrderBy = []service.Order{{Field: "Id", Direction: "asc"}}
	return fetch(ctx, s, memberTable, params, scanMember)
}

func (s *Store) deleteByID(ctx context.Context, table string, id service.ID) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	tag, err := s.pgPool.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", rowID(id))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("table", table).
			Str("id", string(id)).
			Msg("failed to delete record")
		return wrapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func fetch[T any](ctx context.Context, s *Store, tbl table, params service.FetchParams, scan func(pgx.Row) (T, error)) (service.Page[T], error) {
	q, err := buildQuery(tbl, params)
	if err != nil {
		return service.Page[T]{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var total int
	if err := s.pgPool.QueryRow(ctx, q.count, q.args...).Scan(&total); err != nil {
		s.logger.Error().
			Err(err).
			Str("table", tbl.name).
			Msg("failed to count records")
		return service.Page[T]{}, wrapError(err)
	}

	rows, err := s.pgPool.Query(ctx, q.selectSQL, append(q.args, params.Limit, params.Offset)...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("table", tbl.name).
			Msg("failed to select records")
		return service.Page[T]{}, wrapError(err)
	}
	defer rows.Close()

	items := make([]T, 0, params.Limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return service.Page[T]{}, wrapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return service.Page[T]{}, wrapError(err)
	}

	s.logger.Debug().
		Str("table", tbl.name).
		Int("count", len(items)).
		Int("total", total).
		Msg("selected records")
	return service.Page[T]{Items: items, Total: total}, nil
}

func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return errors.New("request timed out")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.InvalidTextRepresentation:
			// A non-numeric id never matches a row.
			return ErrNotFound
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("record already exists (%s)", pgErr.ConstraintName)
		case pgerrcode.UndefinedTable:
			return fmt.Errorf("schema not initialized: %s", pgErr.Message)
		}
	}
	return err
}
