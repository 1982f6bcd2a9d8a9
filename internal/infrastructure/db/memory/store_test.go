package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

func TestUserRepository_UniqueUsername(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()

	alice, err := users.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if alice.ID != 1 {
		t.Fatalf("expected id 1, got %d", alice.ID)
	}
	if _, err := users.Create(ctx, &domain.User{Username: "alice"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	byName, err := users.FindByUsername(ctx, "alice")
	if err != nil || byName.ID != alice.ID {
		t.Fatalf("FindByUsername: %+v, %v", byName, err)
	}
	if _, err := users.FindByID(ctx, 42); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTaskRepository_OwnerScoped(t *testing.T) {
	tasks := NewStore().Tasks()
	ctx := context.Background()

	mine := &domain.Task{Title: "mine", UserID: 1}
	theirs := &domain.Task{Title: "theirs", UserID: 2}
	if err := tasks.Create(ctx, mine); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tasks.Create(ctx, theirs); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := tasks.List(ctx, 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Fatalf("expected only own task, got %+v", list)
	}

	if _, err := tasks.Get(ctx, 1, theirs.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	hijack := *theirs
	hijack.UserID = 1
	if err := tasks.Update(ctx, &hijack); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on cross-owner update, got %v", err)
	}
	if err := tasks.Delete(ctx, 1, theirs.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on cross-owner delete, got %v", err)
	}
}

func TestTodoRepository_ListOrderedByID(t *testing.T) {
	todos := NewStore().Todos()
	ctx := context.Background()

	for _, task := range []string{"a", "b", "c"} {
		if err := todos.Create(ctx, &domain.Todo{Task: task, UserID: 7}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := todos.Delete(ctx, 7, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list, err := todos.List(ctx, 7)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 || list[0].Task != "a" || list[1].Task != "c" {
		t.Fatalf("unexpected todos %+v", list)
	}
}
