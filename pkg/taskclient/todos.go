package taskclient

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

type Todo struct {
	ID        int64     `json:"id"`
	Task      string    `json:"task"`
	Completed bool      `json:"completed"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type TodoUpdate struct {
	Task      *string `json:"task,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func todoPath(id int64) string { return "todos/" + strconv.FormatInt(id, 10) }

func (c *Client) ListTodos(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	if err := c.do(ctx, request{method: http.MethodGet, path: "todos"}, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *Client) CreateTodo(ctx context.Context, task string) (*Todo, error) {
	var t Todo
	body := struct {
		Task string `json:"task"`
	}{Task: task}
	if err := c.do(ctx, request{method: http.MethodPost, path: "todos", body: body}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id int64, in TodoUpdate) (*Todo, error) {
	var t Todo
	if err := c.do(ctx, request{method: http.MethodPut, path: todoPath(id), body: in}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: todoPath(id)}, nil)
}
