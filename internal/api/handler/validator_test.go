package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&createTaskRequest{Title: "", DueDate: "2030-01-01"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "title is required") {
		t.Fatalf("expected json field name in message, got %q", err.Error())
	}
}

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()
	long := strings.Repeat("x", domain.MaxTitleLen+1)
	bad := "URGENT"

	tests := []struct {
		name string
		req  any
		want string
	}{
		{"max", &createTaskRequest{Title: long}, "title must be at most 100 characters"},
		{"oneof", &updateTaskRequest{Priority: &bad}, "priority must be one of: LOW MEDIUM HIGH"},
		{"min", &registerRequest{Username: "ab", Password: "secret1"}, "username must be at least 3 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want message containing %q", err, tt.want)
			}
		})
	}
}

func TestValidator_AcceptsValidRequest(t *testing.T) {
	done := true
	if err := NewValidator().Validate(&updateTodoRequest{Completed: &done}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
