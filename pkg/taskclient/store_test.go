package taskclient

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"

	"github.com/sirpyerre/taskboard/pkg/querycache"
)

// interceptor runs before each matching request reaches the API so tests can
// observe the cache while a mutation is in flight.
type interceptor struct {
	next   http.Handler
	method string
	path   string

	mu     sync.Mutex
	before func()
}

func (i *interceptor) setBefore(fn func()) {
	i.mu.Lock()
	i.before = fn
	i.mu.Unlock()
}

func (i *interceptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i.mu.Lock()
	before := i.before
	i.mu.Unlock()
	if before != nil && r.Method == i.method && r.URL.Path == i.path {
		before()
	}
	i.next.ServeHTTP(w, r)
}

func registered(t *testing.T, h http.Handler) *Client {
	t.Helper()
	c := newClient(t, h)
	if _, err := c.Register(context.Background(), "alice", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return c
}

func TestTaskStore_OptimisticAddReconciles(t *testing.T) {
	ctx := context.Background()
	hook := &interceptor{next: newAPI(t), method: http.MethodPost, path: "/api/tasks"}
	c := registered(t, hook)

	var states []querycache.State
	store := NewTaskStore(c, func(err error) { t.Errorf("unexpected rollback: %v", err) })
	store.OnState = func(s querycache.State) { states = append(states, s) }

	if tasks, err := store.List(ctx); err != nil || len(tasks) != 0 {
		t.Fatalf("List: %v, %v", tasks, err)
	}

	observed := make(chan []Task, 1)
	hook.setBefore(func() {
		cur, _ := store.Cached()
		observed <- cur
	})

	created, err := store.Add(ctx, NewTask{Title: "Write report", Priority: "HIGH", DueDate: "2030-01-02"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	seen := <-observed
	if len(seen) != 1 || !IsProvisional(seen[0].ID) || seen[0].Title != "Write report" {
		t.Fatalf("expected a provisional record during the request, got %+v", seen)
	}
	if seen[0].Status != "TODO" || seen[0].DueDate == nil {
		t.Fatalf("expected defaults and parsed due date on the provisional record, got %+v", seen[0])
	}
	if !slices.Equal(states, []querycache.State{querycache.Mutating, querycache.Committed, querycache.Settled}) {
		t.Fatalf("unexpected transitions %v", states)
	}

	tasks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List after add: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID || IsProvisional(tasks[0].ID) {
		t.Fatalf("expected server record %d after refetch, got %+v", created.ID, tasks)
	}
}

func TestTaskStore_FailedAddRestoresState(t *testing.T) {
	ctx := context.Background()
	c := registered(t, newAPI(t))

	var notified error
	store := NewTaskStore(c, func(err error) { notified = err })

	if _, err := store.List(ctx); err != nil {
		t.Fatalf("List: %v", err)
	}

	// An empty title is rejected by the server.
	_, err := store.Add(ctx, NewTask{Title: ""})
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400, got %v", err)
	}
	if !errors.Is(notified, err) {
		t.Fatalf("expected the error notifier to receive %v, got %v", err, notified)
	}
	if tasks, ok := store.Cached(); !ok || len(tasks) != 0 {
		t.Fatalf("expected the pre-mutation empty list, got %+v (ok=%v)", tasks, ok)
	}
}

func TestTaskStore_FailedAddWithEmptyCacheLeavesNoEntry(t *testing.T) {
	c := registered(t, newAPI(t))
	store := NewTaskStore(c, nil)

	if _, err := store.Add(context.Background(), NewTask{}); err == nil {
		t.Fatalf("expected the add to fail")
	}
	if _, ok := store.Cached(); ok {
		t.Fatalf("expected no cache entry after rollback")
	}
}

func TestTaskStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	c := registered(t, newAPI(t))
	store := NewTaskStore(c, nil)

	created, err := store.Add(ctx, NewTask{Title: "Draft"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	status := "IN_PROGRESS"
	if _, err := store.Update(ctx, created.ID, TaskUpdate{Status: &status}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	tasks, err := store.List(ctx)
	if err != nil || len(tasks) != 1 || tasks[0].Status != status {
		t.Fatalf("expected updated status, got %+v, %v", tasks, err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if tasks, _ := store.List(ctx); len(tasks) != 0 {
		t.Fatalf("expected no tasks after delete, got %+v", tasks)
	}
}

func TestTodoStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := registered(t, newAPI(t))
	store := NewTodoStore(c, nil)

	todos, err := store.List(ctx)
	if err != nil || len(todos) != 1 {
		t.Fatalf("expected the welcome todo, got %+v, %v", todos, err)
	}
	welcome := todos[0]

	if _, err := store.Toggle(ctx, welcome.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	todos, _ = store.List(ctx)
	if !todos[0].Completed {
		t.Fatalf("expected todo to be completed after toggle")
	}

	added, err := store.Add(ctx, "buy milk")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Delete(ctx, welcome.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	todos, _ = store.List(ctx)
	if len(todos) != 1 || todos[0].ID != added.ID || todos[0].Task != "buy milk" {
		t.Fatalf("unexpected todos %+v", todos)
	}

	again, _ := store.List(ctx)
	if !slices.Equal(todos, again) {
		t.Fatalf("listing twice without mutations must be identical")
	}
}

func TestStores_ClearedOnLogout(t *testing.T) {
	ctx := context.Background()
	c := registered(t, newAPI(t))
	tasks := NewTaskStore(c, nil)
	todos := NewTodoStore(c, nil)

	if _, err := tasks.Add(ctx, NewTask{Title: "private"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := tasks.List(ctx); err != nil {
		t.Fatalf("List tasks: %v", err)
	}
	if _, err := todos.List(ctx); err != nil {
		t.Fatalf("List todos: %v", err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, ok := tasks.Cached(); ok {
		t.Fatalf("expected cached tasks to be dropped on logout")
	}
	if _, ok := todos.Cached(); ok {
		t.Fatalf("expected cached todos to be dropped on logout")
	}
	if _, err := tasks.List(ctx); !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected a refetch that fails with 401, got %v", err)
	}
}
