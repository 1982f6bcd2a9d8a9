package handler

import (
	"strings"
	"time"

	"github.com/sirpyerre/taskboard/internal/core/domain"
	"github.com/sirpyerre/taskboard/internal/core/ports"
)

const dateOnly = "2006-01-02"

// --- Request → Service input ---

func toCreateTaskInput(req createTaskRequest, userID int64) (ports.CreateTaskInput, error) {
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return ports.CreateTaskInput{}, err
	}
	return ports.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		Status:      domain.TaskStatus(req.Status),
		Category:    req.Category,
		DueDate:     due,
	}, nil
}

func toTaskPatch(req updateTaskRequest) (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		patch.Status = &s
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		if due == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = due
		}
	}
	return patch, nil
}

func toTodoPatch(req updateTodoRequest) domain.TodoPatch {
	return domain.TodoPatch{Task: req.Task, Completed: req.Completed}
}

// parseDueDate returns nil for an empty value.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, dateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.Invalid("dueDate must be an RFC 3339 timestamp or YYYY-MM-DD date")
}
