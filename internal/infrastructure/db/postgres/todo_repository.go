package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

type TodoRepository struct {
	conn *sqlx.DB
}

func (r *TodoRepository) List(ctx context.Context, userID int64) ([]domain.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `SELECT id, task, completed, user_id, created_at FROM todos WHERE user_id = $1 ORDER BY id ASC`

	out := make([]domain.Todo, 0)
	if err := r.conn.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return out, nil
}

func (r *TodoRepository) Get(ctx context.Context, userID, id int64) (*domain.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `SELECT id, task, completed, user_id, created_at FROM todos WHERE id = $1 AND user_id = $2`

	var t domain.Todo
	if err := r.conn.GetContext(ctx, &t, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return &t, nil
}

func (r *TodoRepository) Create(ctx context.Context, t *domain.Todo) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `
		INSERT INTO todos(task, completed, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	if err := r.conn.QueryRowxContext(ctx, q, t.Task, t.Completed, t.UserID, t.CreatedAt).Scan(&t.ID); err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("todo violates a column constraint")
		}
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) Update(ctx context.Context, t *domain.Todo) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `UPDATE todos SET task = $1, completed = $2 WHERE id = $3 AND user_id = $4`

	res, err := r.conn.ExecContext(ctx, q, t.Task, t.Completed, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.conn.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}
