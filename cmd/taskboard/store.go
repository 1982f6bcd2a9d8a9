package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/taskboard/internal/core/ports"
	"github.com/sirpyerre/taskboard/internal/infrastructure/db/memory"
	mongostore "github.com/sirpyerre/taskboard/internal/infrastructure/db/mongo"
	"github.com/sirpyerre/taskboard/internal/infrastructure/db/postgres"
	"github.com/sirpyerre/taskboard/internal/pkg/config"
)

// store bundles the repositories of the configured backend.
type store struct {
	name    string
	users   ports.UserRepository
	tasks   ports.TaskRepository
	todos   ports.TodoRepository
	pinger  ports.Pinger
	migrate func(context.Context) error
	close   func(context.Context) error
}

func openStore(ctx context.Context, cfg config.StoreConfig, log zerolog.Logger) (*store, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		s := memory.NewStore()
		return &store{
			name:    "memory",
			users:   s.Users(),
			tasks:   s.Tasks(),
			todos:   s.Todos(),
			pinger:  s,
			migrate: func(context.Context) error { return nil },
			close:   func(context.Context) error { return nil },
		}, nil

	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		return &store{
			name:    "postgres",
			users:   db.Users(),
			tasks:   db.Tasks(),
			todos:   db.Todos(),
			pinger:  db,
			migrate: db.Migrate,
			close:   func(context.Context) error { return db.Close() },
		}, nil

	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.MongoURI, Database: cfg.MongoDB})
		if err != nil {
			return nil, err
		}
		return &store{
			name:    "mongodb",
			users:   mongostore.NewUserRepository(db),
			tasks:   mongostore.NewTaskRepository(db),
			todos:   mongostore.NewTodoRepository(db),
			pinger:  mongostore.NewPinger(client),
			migrate: func(ctx context.Context) error { return mongostore.EnsureIndexes(ctx, db) },
			close:   client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
