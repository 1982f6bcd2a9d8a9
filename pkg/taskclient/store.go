package taskclient

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/atomic"

	"github.com/sirpyerre/taskboard/pkg/querycache"
)

const (
	tasksKey = "tasks"
	todosKey = "todos"
)

// provisionalIDs hands out negative ids for records that exist only in the
// cache until the server assigns a real one.
type provisionalIDs struct {
	n *atomic.Int64
}

func newProvisionalIDs() provisionalIDs { return provisionalIDs{n: atomic.NewInt64(0)} }

func (p provisionalIDs) next() int64 { return p.n.Dec() }

// IsProvisional reports whether id was synthesized locally.
func IsProvisional(id int64) bool { return id < 0 }

// ErrorNotifier receives errors from rolled back mutations.
type ErrorNotifier func(error)

// TaskStore is the cached, optimistic view of the caller's tasks.
type TaskStore struct {
	client  *Client
	cache   *querycache.Cache[[]Task]
	ids     provisionalIDs
	notify  ErrorNotifier
	now     func() time.Time
	OnState func(querycache.State)
}

// NewTaskStore returns a store bound to c. Its cache is dropped on c.Logout.
func NewTaskStore(c *Client, notify ErrorNotifier) *TaskStore {
	s := &TaskStore{
		client: c,
		cache:  querycache.New[[]Task](),
		ids:    newProvisionalIDs(),
		notify: notify,
		now:    time.Now,
	}
	c.OnLogout(s.Clear)
	return s
}

// Clear forgets the cached tasks and aborts any in-flight fetch.
func (s *TaskStore) Clear() {
	s.cache.Remove(tasksKey)
}

// List returns the cached tasks, fetching them when absent or invalidated.
func (s *TaskStore) List(ctx context.Context) ([]Task, error) {
	return s.cache.Get(ctx, tasksKey, s.client.ListTasks)
}

// Cached returns the current cache contents without a network call.
func (s *TaskStore) Cached() ([]Task, bool) {
	return s.cache.Peek(tasksKey)
}

// Add shows a provisional task immediately and creates it on the server.
func (s *TaskStore) Add(ctx context.Context, in NewTask) (*Task, error) {
	m := &querycache.Mutation[[]Task, NewTask, *Task]{
		Cache: s.cache,
		Key:   tasksKey,
		Optimistic: func(cur []Task, _ bool, in NewTask) []Task {
			return append(slices.Clone(cur), s.provisionalTask(in))
		},
		Run:     s.client.CreateTask,
		OnError: s.notify,
		OnState: s.OnState,
	}
	return m.Execute(ctx, in)
}

type taskEdit struct {
	id     int64
	update TaskUpdate
}

func (s *TaskStore) Update(ctx context.Context, id int64, in TaskUpdate) (*Task, error) {
	m := &querycache.Mutation[[]Task, taskEdit, *Task]{
		Cache: s.cache,
		Key:   tasksKey,
		Optimistic: func(cur []Task, _ bool, e taskEdit) []Task {
			out := slices.Clone(cur)
			for i := range out {
				if out[i].ID == e.id {
					out[i] = mergeTask(out[i], e.update)
				}
			}
			return out
		},
		Run: func(ctx context.Context, e taskEdit) (*Task, error) {
			return s.client.UpdateTask(ctx, e.id, e.update)
		},
		OnError: s.notify,
		OnState: s.OnState,
	}
	return m.Execute(ctx, taskEdit{id: id, update: in})
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	m := &querycache.Mutation[[]Task, int64, struct{}]{
		Cache: s.cache,
		Key:   tasksKey,
		Optimistic: func(cur []Task, _ bool, id int64) []Task {
			return slices.DeleteFunc(slices.Clone(cur), func(t Task) bool { return t.ID == id })
		},
		Run: func(ctx context.Context, id int64) (struct{}, error) {
			return struct{}{}, s.client.DeleteTask(ctx, id)
		},
		OnError: s.notify,
		OnState: s.OnState,
	}
	_, err := m.Execute(ctx, id)
	return err
}

func (s *TaskStore) provisionalTask(in NewTask) Task {
	now := s.now().UTC()
	t := Task{
		ID:          s.ids.next(),
		Title:       strings.TrimSpace(in.Title),
		Description: optional(in.Description),
		Priority:    in.Priority,
		Status:      in.Status,
		Category:    optional(in.Category),
		DueDate:     parseDate(in.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = "MEDIUM"
	}
	if t.Status == "" {
		t.Status = "TODO"
	}
	return t
}

func mergeTask(t Task, u TaskUpdate) Task {
	if u.Title != nil {
		t.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		t.Description = optional(*u.Description)
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Category != nil {
		t.Category = optional(*u.Category)
	}
	if u.DueDate != nil {
		t.DueDate = parseDate(*u.DueDate)
	}
	return t
}

// TodoStore is the cached, optimistic view of the caller's todos.
type TodoStore struct {
	client  *Client
	cache   *querycache.Cache[[]Todo]
	ids     provisionalIDs
	notify  ErrorNotifier
	now     func() time.Time
	OnState func(querycache.State)
}

func NewTodoStore(c *Client, notify ErrorNotifier) *TodoStore {
	s := &TodoStore{
		client: c,
		cache:  querycache.New[[]Todo](),
		ids:    newProvisionalIDs(),
		notify: notify,
		now:    time.Now,
	}
	c.OnLogout(s.Clear)
	return s
}

func (s *TodoStore) Clear() {
	s.cache.Remove(todosKey)
}

func (s *TodoStore) List(ctx context.Context) ([]Todo, error) {
	return s.cache.Get(ctx, todosKey, s.client.ListTodos)
}

func (s *TodoStore) Cached() ([]Todo, bool) {
	return s.cache.Peek(todosKey)
}

func (s *TodoStore) Add(ctx context.Context, task string) (*Todo, error) {
	m := &querycache.Mutation[[]Todo, string, *Todo]{
		Cache: s.cache,
		Key:   todosKey,
		Optimistic: func(cur []Todo, _ bool, task string) []Todo {
			return append(slices.Clone(cur), Todo{
				ID:        s.ids.next(),
				Task:      strings.TrimSpace(task),
				CreatedAt: s.now().UTC(),
			})
		},
		Run:     s.client.CreateTodo,
		OnError: s.notify,
		OnState: s.OnState,
	}
	return m.Execute(ctx, task)
}

type todoEdit struct {
	id     int64
	update TodoUpdate
}

func (s *TodoStore) Update(ctx context.Context, id int64, in TodoUpdate) (*Todo, error) {
	m := &querycache.Mutation[[]Todo, todoEdit, *Todo]{
		Cache: s.cache,
		Key:   todosKey,
		Optimistic: func(cur []Todo, _ bool, e todoEdit) []Todo {
			out := slices.Clone(cur)
			for i := range out {
				if out[i].ID != e.id {
					continue
				}
				if e.update.Task != nil {
					out[i].Task = strings.TrimSpace(*e.update.Task)
				}
				if e.update.Completed != nil {
					out[i].Completed = *e.update.Completed
				}
			}
			return out
		},
		Run: func(ctx context.Context, e todoEdit) (*Todo, error) {
			return s.client.UpdateTodo(ctx, e.id, e.update)
		},
		OnError: s.notify,
		OnState: s.OnState,
	}
	return m.Execute(ctx, todoEdit{id: id, update: in})
}

// Toggle flips the completed flag of a cached todo.
func (s *TodoStore) Toggle(ctx context.Context, id int64) (*Todo, error) {
	completed := false
	if todos, ok := s.Cached(); ok {
		for _, t := range todos {
			if t.ID == id {
				completed = !t.Completed
				break
			}
		}
	}
	return s.Update(ctx, id, TodoUpdate{Completed: &completed})
}

func (s *TodoStore) Delete(ctx context.Context, id int64) error {
	m := &querycache.Mutation[[]Todo, int64, struct{}]{
		Cache: s.cache,
		Key:   todosKey,
		Optimistic: func(cur []Todo, _ bool, id int64) []Todo {
			return slices.DeleteFunc(slices.Clone(cur), func(t Todo) bool { return t.ID == id })
		},
		Run: func(ctx context.Context, id int64) (struct{}, error) {
			return struct{}{}, s.client.DeleteTodo(ctx, id)
		},
		OnError: s.notify,
		OnState: s.OnState,
	}
	_, err := m.Execute(ctx, id)
	return err
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// parseDate mirrors the server: RFC 3339 or a plain date. Anything else is
// shown without a due date until the server answers.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
