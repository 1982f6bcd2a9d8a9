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

type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// List returns the caller's tasks in display order.
func (s *TaskService) List(ctx context.Context, userID int64) ([]domain.Task, error) {
	tasks, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	domain.SortTasks(tasks)
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Create validates the input and persists a new task owned by in.UserID.
func (s *TaskService) Create(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	now := time.Now().UTC()
	task := &domain.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: domain.OptionalString(in.Description),
		Priority:    in.Priority,
		Status:      in.Status,
		Category:    domain.OptionalString(in.Category),
		UserID:      in.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	if in.DueDate != nil {
		d := in.DueDate.UTC()
		task.DueDate = &d
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error().Err(err).Int64("user_id", in.UserID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	metrics.MutationsTotal.WithLabelValues("task", "create").Inc()
	s.logger.Info().Int64("task_id", task.ID).Int64("user_id", in.UserID).Msg("task created")
	return task, nil
}

// Update applies a partial update. Fields absent from patch keep their value.
func (s *TaskService) Update(ctx context.Context, userID, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	if patch.Empty() {
		return current, nil
	}

	updated := patch.Apply(*current)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}

	metrics.MutationsTotal.WithLabelValues("task", "update").Inc()
	s.logger.Info().Int64("task_id", id).Int64("user_id", userID).Msg("task updated")
	return &updated, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	metrics.MutationsTotal.WithLabelValues("task", "delete").Inc()
	s.logger.Info().Int64("task_id", id).Int64("user_id", userID).Msg("task deleted")
	return nil
}
