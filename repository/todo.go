package repository

import (
	"context"
	"time"

	"github.com/remindly/bot/domain"
)

// TodoOrder selects the ordering of todo list queries. The formatter
// never sorts, so callers pick the order their view needs here.
type TodoOrder string

const (
	// TodoOrderDeadlineAsc sorts soonest deadline first, todos without
	// a deadline last.
	TodoOrderDeadlineAsc TodoOrder = "deadline_asc_nulls_last"
	// TodoOrderCreatedDesc sorts newest first.
	TodoOrderCreatedDesc TodoOrder = "created_desc"
)

type TodoFilter struct {
	Mode  domain.TodoListMode
	Order TodoOrder
	Limit int
}

type TodoRepository interface {
	// Create persists a new pending todo. The name must be non-empty.
	Create(ctx context.Context, name string, deadline *time.Time) (*domain.Todo, error)
	GetByID(ctx context.Context, id int64) (*domain.Todo, error)
	// SetStatus updates the status of an existing todo. Status
	// transition legality is the caller's concern.
	SetStatus(ctx context.Context, id int64, status string) error
	// SetDeadline replaces the deadline. The caller must already have
	// validated that the deadline is in the future and the todo is not
	// completed.
	SetDeadline(ctx context.Context, id int64, deadline time.Time) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter TodoFilter) ([]domain.Todo, error)
	// ListDueOn returns todos whose deadline falls on the given day.
	// day must be midnight in the configured timezone.
	ListDueOn(ctx context.Context, day time.Time) ([]domain.Todo, error)
}
