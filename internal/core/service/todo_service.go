package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/taskboard/internal/api/metrics"
	"github.com/sirpyerre/taskboard/internal/core/domain"
	"github.com/sirpyerre/taskboard/internal/core/ports"
)

type TodoService struct {
	repo   ports.TodoRepository
	logger zerolog.Logger
}

func NewTodoService(repo ports.TodoRepository, logger zerolog.Logger) *TodoService {
	return &TodoService{repo: repo, logger: logger}
}

func (s *TodoService) List(ctx context.Context, userID int64) ([]domain.Todo, error) {
	todos, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, userID, id int64) (*domain.Todo, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, nil
}

func (s *TodoService) Create(ctx context.Context, userID int64, task string) (*domain.Todo, error) {
	todo := &domain.Todo{
		Task:      strings.TrimSpace(task),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to create todo")
		return nil, fmt.Errorf("create todo: %w", err)
	}

	metrics.MutationsTotal.WithLabelValues("todo", "create").Inc()
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, userID, id int64, patch domain.TodoPatch) (*domain.Todo, error) {
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}

	updated := patch.Apply(*current)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}

	metrics.MutationsTotal.WithLabelValues("todo", "update").Inc()
	return &updated, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	metrics.MutationsTotal.WithLabelValues("todo", "delete").Inc()
	return nil
}
