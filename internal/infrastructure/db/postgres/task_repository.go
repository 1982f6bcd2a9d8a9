package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

const taskColumns = `id, title, description, priority, status, category, due_date, user_id, created_at, updated_at`

type TaskRepository struct {
	conn *sqlx.DB
}

func (r *TaskRepository) List(ctx context.Context, userID int64) ([]domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id ASC`

	out := make([]domain.Task, 0)
	if err := r.conn.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) Get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	var t domain.Task
	if err := r.conn.GetContext(ctx, &t, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// Create inserts the task and writes the generated id back into t.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `
		INSERT INTO tasks(title, description, priority, status, category, due_date, user_id, created_at, updated_at)
		VALUES (:title, :description, :priority, :status, :category, :due_date, :user_id, :created_at, :updated_at)
		RETURNING id;
	`

	rows, err := r.conn.NamedQueryContext(ctx, q, t)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("task violates a column constraint")
		}
		return fmt.Errorf("insert task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return errors.New("insert task: no id returned")
	}
	return rows.Scan(&t.ID)
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `
		UPDATE tasks
		SET title = :title, description = :description, priority = :priority, status = :status,
		    category = :category, due_date = :due_date, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id;
	`

	res, err := r.conn.NamedExecContext(ctx, q, t)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("task violates a column constraint")
		}
		return fmt.Errorf("update task: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
