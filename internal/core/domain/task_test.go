package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func validTask() Task {
	return Task{Title: "write report", Priority: PriorityMedium, Status: StatusTodo}
}

func TestTask_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Task)
		wantErr bool
	}{
		{"valid", func(*Task) {}, false},
		{"empty title", func(t *Task) { t.Title = "" }, true},
		{"title at limit", func(t *Task) { t.Title = strings.Repeat("a", MaxTitleLen) }, false},
		{"title too long", func(t *Task) { t.Title = strings.Repeat("a", MaxTitleLen+1) }, true},
		{"multibyte title at limit", func(t *Task) { t.Title = strings.Repeat("é", MaxTitleLen) }, false},
		{"description too long", func(t *Task) { t.Description = ptr(strings.Repeat("d", MaxDescriptionLen+1)) }, true},
		{"category too long", func(t *Task) { t.Category = ptr(strings.Repeat("c", MaxCategoryLen+1)) }, true},
		{"bad priority", func(t *Task) { t.Priority = "URGENT" }, true},
		{"bad status", func(t *Task) { t.Status = "DONE" }, true},
	}

	for _, tc := range cases {
		task := validTask()
		tc.mutate(&task)
		err := task.Validate()
		if tc.wantErr && !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestTaskPatch_Apply_LeavesUnspecifiedFields(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orig := Task{
		ID:          7,
		Title:       "original",
		Description: ptr("keep me"),
		Priority:    PriorityHigh,
		Status:      StatusTodo,
		Category:    ptr("work"),
		DueDate:     &due,
		UserID:      1,
	}

	got := TaskPatch{Status: ptr(StatusCompleted)}.Apply(orig)

	if got.Status != StatusCompleted {
		t.Fatalf("status not applied: %s", got.Status)
	}
	if got.Title != "original" || *got.Description != "keep me" || *got.Category != "work" {
		t.Fatalf("unspecified fields changed: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date changed: %v", got.DueDate)
	}
	if orig.Status != StatusTodo {
		t.Fatalf("Apply mutated its input")
	}
}

func TestTaskPatch_Apply_Clears(t *testing.T) {
	due := time.Now()
	orig := Task{Title: "x", Description: ptr("d"), Category: ptr("c"), DueDate: &due}

	got := TaskPatch{Description: ptr(""), Category: ptr("  "), ClearDueDate: true}.Apply(orig)

	if got.Description != nil || got.Category != nil || got.DueDate != nil {
		t.Fatalf("expected optional fields cleared, got %+v", got)
	}
}

func TestTaskPatch_Empty(t *testing.T) {
	if !(TaskPatch{}).Empty() {
		t.Fatal("zero patch must be empty")
	}
	if (TaskPatch{ClearDueDate: true}).Empty() {
		t.Fatal("clearing the due date is a change")
	}
}

func TestSortTasks(t *testing.T) {
	d1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tasks := []Task{
		{ID: 1, Priority: PriorityLow},
		{ID: 2, Priority: PriorityHigh, DueDate: &d2},
		{ID: 3, Priority: PriorityLow, DueDate: &d1},
		{ID: 4, Priority: PriorityHigh, DueDate: &d1},
		{ID: 5, Priority: PriorityHigh},
		{ID: 6, Priority: PriorityHigh},
	}

	SortTasks(tasks)

	want := []int64{4, 3, 2, 5, 6, 1}
	for i, id := range want {
		if tasks[i].ID != id {
			got := make([]int64, len(tasks))
			for j := range tasks {
				got[j] = tasks[j].ID
			}
			t.Fatalf("order mismatch: want %v, got %v", want, got)
		}
	}
}

func TestTodo_ValidateAndApply(t *testing.T) {
	todo := Todo{Task: "buy milk"}
	if err := todo.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := TodoPatch{Completed: ptr(true)}.Apply(todo)
	if !done.Completed || done.Task != "buy milk" {
		t.Fatalf("unexpected patch result: %+v", done)
	}

	empty := TodoPatch{Task: ptr("   ")}.Apply(todo)
	if !errors.Is(empty.Validate(), ErrValidation) {
		t.Fatal("blank task must fail validation")
	}
}
