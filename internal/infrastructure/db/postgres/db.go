package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

//go:embed migrations/*.up.sql
var migrations embed.FS

// DB wraps the sqlx handle shared by the user, task and todo repositories.
type DB struct {
	log  zerolog.Logger
	conn *sqlx.DB
}

func Connect(ctx context.Context, dsn string, log zerolog.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	conn, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	return &DB{log: log, conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Migrate applies every embedded migration in file name order. The scripts
// are idempotent so running them on an existing schema is a no-op.
func (db *DB) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		db.log.Debug().Str("migration", name).Msg("applying migration")
		if _, err := db.conn.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}

	db.log.Info().Int("count", len(names)).Msg("migrations applied")
	return nil
}

func (db *DB) Users() *UserRepository { return &UserRepository{conn: db.conn} }
func (db *DB) Tasks() *TaskRepository { return &TaskRepository{conn: db.conn} }
func (db *DB) Todos() *TodoRepository { return &TodoRepository{conn: db.conn} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
