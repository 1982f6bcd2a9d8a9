package ports

import (
	"context"
	"time"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

// CreateTaskInput carries all data needed to create a task.
// Empty Priority and Status fall back to MEDIUM and TODO.
type CreateTaskInput struct {
	UserID      int64
	Title       string
	Description string
	Priority    domain.Priority
	Status      domain.TaskStatus
	Category    string
	DueDate     *time.Time
}

type TaskService interface {
	List(ctx context.Context, userID int64) ([]domain.Task, error)
	Get(ctx context.Context, userID, id int64) (*domain.Task, error)
	Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, userID, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

type TodoService interface {
	List(ctx context.Context, userID int64) ([]domain.Todo, error)
	Get(ctx context.Context, userID, id int64) (*domain.Todo, error)
	Create(ctx context.Context, userID int64, task string) (*domain.Todo, error)
	Update(ctx context.Context, userID, id int64, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, userID, id int64) error
}
