package service

import (
	"context"
	"sync"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

type stubTaskRepo struct {
	mu      sync.Mutex
	tasks   map[int64]domain.Task
	nextID  int64
	creates int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[int64]domain.Task)}
}

func (r *stubTaskRepo) List(_ context.Context, userID int64) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubTaskRepo) Get(_ context.Context, userID, id int64) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.creates++
	task.ID = r.nextID
	r.tasks[task.ID] = *task
	return nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.tasks[task.ID]
	if !ok || cur.UserID != task.UserID {
		return domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.tasks[id]
	if !ok || cur.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

type stubTodoRepo struct {
	mu        sync.Mutex
	todos     map[int64]domain.Todo
	nextID    int64
	createErr error
}

func newStubTodoRepo() *stubTodoRepo {
	return &stubTodoRepo{todos: make(map[int64]domain.Todo)}
}

func (r *stubTodoRepo) List(_ context.Context, userID int64) ([]domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Todo
	for id := int64(1); id <= r.nextID; id++ {
		if t, ok := r.todos[id]; ok && t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubTodoRepo) Get(_ context.Context, userID, id int64) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	return &t, nil
}

func (r *stubTodoRepo) Create(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	todo.ID = r.nextID
	r.todos[todo.ID] = *todo
	return nil
}

func (r *stubTodoRepo) Update(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.todos[todo.ID]
	if !ok || cur.UserID != todo.UserID {
		return domain.ErrTodoNotFound
	}
	r.todos[todo.ID] = *todo
	return nil
}

func (r *stubTodoRepo) Delete(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.todos[id]
	if !ok || cur.UserID != userID {
		return domain.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}
