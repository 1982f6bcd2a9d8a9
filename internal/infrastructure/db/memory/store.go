// Package memory is an in-process store used for local development and tests.
// Data lives only as long as the process.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

// Store keeps users, tasks and todos in maps guarded by a single RWMutex.
type Store struct {
	mu sync.RWMutex

	users      map[int64]domain.User
	usernames  map[string]int64
	tasks      map[int64]domain.Task
	todos      map[int64]domain.Todo
	nextUserID int64
	nextTaskID int64
	nextTodoID int64
}

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]domain.User),
		usernames: make(map[string]int64),
		tasks:     make(map[int64]domain.Task),
		todos:     make(map[int64]domain.Todo),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s: s} }
func (s *Store) Todos() *TodoRepository { return &TodoRepository{s: s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.usernames[user.Username]; taken {
		return nil, domain.ErrUserExists
	}
	r.s.nextUserID++
	u := *user
	u.ID = r.s.nextUserID
	r.s.users[u.ID] = u
	r.s.usernames[u.Username] = u.ID
	return &u, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usernames[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := r.s.users[id]
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type TaskRepository struct{ s *Store }

func (r *TaskRepository) List(_ context.Context, userID int64) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Task, 0)
	for _, t := range r.s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Task) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *TaskRepository) Get(_ context.Context, userID, id int64) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTaskID++
	t.ID = r.s.nextTaskID
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) Update(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return domain.ErrTaskNotFound
	}
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.tasks[id]
	if !ok || cur.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

type TodoRepository struct{ s *Store }

func (r *TodoRepository) List(_ context.Context, userID int64) ([]domain.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Todo, 0)
	for _, t := range r.s.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Todo) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *TodoRepository) Get(_ context.Context, userID, id int64) (*domain.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.todos[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	return &t, nil
}

func (r *TodoRepository) Create(_ context.Context, t *domain.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTodoID++
	t.ID = r.s.nextTodoID
	r.s.todos[t.ID] = *t
	return nil
}

func (r *TodoRepository) Update(_ context.Context, t *domain.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.todos[t.ID]
	if !ok || cur.UserID != t.UserID {
		return domain.ErrTodoNotFound
	}
	r.s.todos[t.ID] = *t
	return nil
}

func (r *TodoRepository) Delete(_ context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.todos[id]
	if !ok || cur.UserID != userID {
		return domain.ErrTodoNotFound
	}
	delete(r.s.todos, id)
	return nil
}
