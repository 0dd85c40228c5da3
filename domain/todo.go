package domain

import "time"

// Todo status values. Transitions are one-way: pending -> completed.
const (
	TodoStatusPending   = "pending"
	TodoStatusCompleted = "completed"
)

// Todo represents a user-owned todo item.
type Todo struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (t *Todo) IsCompleted() bool {
	return t != nil && t.Status == TodoStatusCompleted
}

// TodoListMode selects which todos a list view shows.
type TodoListMode string

const (
	TodoListAll     TodoListMode = "all"
	TodoListPending TodoListMode = "pending"
)
