package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/repository"
)

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation of TodoRepository.
func NewTodoRepository(pool *pgxpool.Pool) repository.TodoRepository {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) Create(ctx context.Context, name string, deadline *time.Time) (*domain.Todo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrEmptyContent
	}

	const query = `
	INSERT INTO todos (name, status, deadline)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
	`

	todo := &domain.Todo{
		Name:     strings.TrimSpace(name),
		Status:   domain.TodoStatusPending,
		Deadline: deadline,
	}

	var due interface{}
	if deadline != nil {
		due = *deadline
	}

	if err := r.pool.QueryRow(ctx, query, todo.Name, todo.Status, due).
		Scan(&todo.ID, &todo.CreatedAt); err != nil {
		return nil, err
	}

	return todo, nil
}

func (r *todoRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	const query = `
	SELECT id, name, status, deadline, created_at
	FROM todos
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTodo(row)
}

func (r *todoRepository) SetStatus(ctx context.Context, id int64, status string) error {
	const query = `UPDATE todos SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) SetDeadline(ctx context.Context, id int64, deadline time.Time) error {
	const query = `UPDATE todos SET deadline = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, deadline)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM todos WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) List(ctx context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	query := `
	SELECT id, name, status, deadline, created_at
	FROM todos
	WHERE ($1 = '' OR status = $1)
	`

	switch filter.Order {
	case repository.TodoOrderDeadlineAsc:
		query += " ORDER BY deadline ASC NULLS LAST, created_at ASC"
	default:
		query += " ORDER BY created_at DESC"
	}
	query += " LIMIT $2"

	status := ""
	if filter.Mode == domain.TodoListPending {
		status = domain.TodoStatusPending
	}

	rows, err := r.pool.Query(ctx, query, status, clampLimit(filter.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

func (r *todoRepository) ListDueOn(ctx context.Context, day time.Time) ([]domain.Todo, error) {
	const query = `
	SELECT id, name, status, deadline, created_at
	FROM todos
	WHERE deadline IS NOT NULL
	  AND deadline >= $1
	  AND deadline < $2
	ORDER BY deadline ASC
	`

	next := day.AddDate(0, 0, 1)
	rows, err := r.pool.Query(ctx, query, day, next)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

func scanTodo(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Todo, error) {
	var todo domain.Todo
	var deadline *time.Time

	if err := row.Scan(
		&todo.ID,
		&todo.Name,
		&todo.Status,
		&deadline,
		&todo.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}

	todo.Deadline = deadline
	return &todo, nil
}
