package taskclient

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Category    *string    `json:"category"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      int64      `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask is the body of a create call. Empty fields take server defaults.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
	Category    string `json:"category,omitempty"`
	// DueDate is RFC 3339 or YYYY-MM-DD.
	DueDate string `json:"dueDate,omitempty"`
}

// TaskUpdate is a partial update; nil fields are not sent. An empty string
// clears description, category or dueDate.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	Category    *string `json:"category,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

func taskPath(id int64) string { return "tasks/" + strconv.FormatInt(id, 10) }

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, request{method: http.MethodGet, path: "tasks"}, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (*Task, error) {
	var t Task
	if err := c.do(ctx, request{method: http.MethodGet, path: taskPath(id)}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) CreateTask(ctx context.Context, in NewTask) (*Task, error) {
	var t Task
	if err := c.do(ctx, request{method: http.MethodPost, path: "tasks", body: in}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, in TaskUpdate) (*Task, error) {
	var t Task
	if err := c.do(ctx, request{method: http.MethodPut, path: taskPath(id), body: in}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: taskPath(id)}, nil)
}
