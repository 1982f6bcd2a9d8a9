package ports

import (
	"context"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

// TaskRepository persists tasks. Every method is scoped by owner: a task
// owned by someone else is reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	List(ctx context.Context, userID int64) ([]domain.Task, error)
	Get(ctx context.Context, userID, id int64) (*domain.Task, error)
	// Create assigns ID, CreatedAt and UpdatedAt on t.
	Create(ctx context.Context, t *domain.Task) error
	// Update overwrites the mutable fields of the task matching t.ID and t.UserID.
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, userID, id int64) error
}

// TodoRepository persists todos with the same ownership rule as tasks.
type TodoRepository interface {
	List(ctx context.Context, userID int64) ([]domain.Todo, error)
	Get(ctx context.Context, userID, id int64) (*domain.Todo, error)
	Create(ctx context.Context, t *domain.Todo) error
	Update(ctx context.Context, t *domain.Todo) error
	Delete(ctx context.Context, userID, id int64) error
}
