package domain

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Priority ranks a task. Ordering follows Rank, not the string value.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusOnHold     TaskStatus = "ON_HOLD"
	StatusCompleted  TaskStatus = "COMPLETED"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
	MaxCategoryLen    = 50
)

var ErrTaskNotFound = errors.New("task not found")

// Rank returns 1 (LOW) .. 3 (HIGH), or 0 for an unknown priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusOnHold, StatusCompleted:
		return true
	default:
		return false
	}
}

// Task is owned by exactly one user; every query is scoped by UserID.
type Task struct {
	ID          int64      `json:"id"                  bson:"_id"                   db:"id"`
	Title       string     `json:"title"               bson:"title"                 db:"title"`
	Description *string    `json:"description"         bson:"description,omitempty" db:"description"`
	Priority    Priority   `json:"priority"            bson:"priority"              db:"priority"`
	Status      TaskStatus `json:"status"              bson:"status"                db:"status"`
	Category    *string    `json:"category"            bson:"category,omitempty"    db:"category"`
	DueDate     *time.Time `json:"dueDate"             bson:"due_date,omitempty"    db:"due_date"`
	UserID      int64      `json:"userId"              bson:"user_id"               db:"user_id"`
	CreatedAt   time.Time  `json:"createdAt"           bson:"created_at"            db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt"           bson:"updated_at"            db:"updated_at"`
}

// TaskPatch carries a partial update. Nil fields are left unchanged.
// An empty Description or Category clears the field; ClearDueDate drops the due date.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *TaskStatus
	Category     *string
	DueDate      *time.Time
	ClearDueDate bool
}

// Empty reports whether the patch would change nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.Category == nil && p.DueDate == nil && !p.ClearDueDate
}

// Apply returns a copy of t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = OptionalString(*p.Description)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = OptionalString(*p.Category)
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := p.DueDate.UTC()
		t.DueDate = &d
	}
	return t
}

// Validate enforces the field limits shared by create and update.
func (t Task) Validate() error {
	n := utf8.RuneCountInString(t.Title)
	if n == 0 {
		return Invalid("title is required")
	}
	if n > MaxTitleLen {
		return Invalid("title must be at most %d characters", MaxTitleLen)
	}
	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxDescriptionLen {
		return Invalid("description must be at most %d characters", MaxDescriptionLen)
	}
	if t.Category != nil && utf8.RuneCountInString(*t.Category) > MaxCategoryLen {
		return Invalid("category must be at most %d characters", MaxCategoryLen)
	}
	if !t.Priority.Valid() {
		return Invalid("priority must be one of: LOW MEDIUM HIGH")
	}
	if !t.Status.Valid() {
		return Invalid("status must be one of: TODO IN_PROGRESS ON_HOLD COMPLETED")
	}
	return nil
}

// SortTasks orders by due date ascending (undated last), then priority
// descending, then id ascending so repeated listings are identical.
func SortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, compareTasks)
}

func compareTasks(a, b Task) int {
	switch {
	case a.DueDate == nil && b.DueDate != nil:
		return 1
	case a.DueDate != nil && b.DueDate == nil:
		return -1
	case a.DueDate != nil && b.DueDate != nil:
		if c := a.DueDate.Compare(*b.DueDate); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// OptionalString trims s and returns nil when nothing is left.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
