package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTodoLen  = 255
	WelcomeTodo = "Hello, add your first todo!"
)

var ErrTodoNotFound = errors.New("todo not found")

// Todo is the simplified checklist item. Same ownership rule as Task.
type Todo struct {
	ID        int64     `json:"id"        bson:"_id"        db:"id"`
	Task      string    `json:"task"      bson:"task"       db:"task"`
	Completed bool      `json:"completed" bson:"completed"  db:"completed"`
	UserID    int64     `json:"userId"    bson:"user_id"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at" db:"created_at"`
}

// TodoPatch carries a partial update. Nil fields are left unchanged.
type TodoPatch struct {
	Task      *string
	Completed *bool
}

func (p TodoPatch) Apply(t Todo) Todo {
	if p.Task != nil {
		t.Task = strings.TrimSpace(*p.Task)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

func (t Todo) Validate() error {
	n := utf8.RuneCountInString(t.Task)
	if n == 0 {
		return Invalid("task is required")
	}
	if n > MaxTodoLen {
		return Invalid("task must be at most %d characters", MaxTodoLen)
	}
	return nil
}
