package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirpyerre/taskboard/internal/api"
	"github.com/sirpyerre/taskboard/internal/api/cookie"
	"github.com/sirpyerre/taskboard/internal/core/ports"
	"github.com/sirpyerre/taskboard/internal/core/service"
	redisstore "github.com/sirpyerre/taskboard/internal/infrastructure/db/redis"
	"github.com/sirpyerre/taskboard/internal/pkg/config"
	"github.com/sirpyerre/taskboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "taskboard",
	})

	st, err := openStore(ctx, cfg.Store, logger.Component("store"))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()

	if cfg.Store.AutoMigrate {
		if err := st.migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", st.name, err)
		}
	}

	readiness := map[string]ports.Pinger{st.name: st.pinger}
	clock := time.Now
	authOpts := []service.AuthOption{service.WithWelcomeTodo(st.todos), service.WithClock(clock)}

	if cfg.Redis.Addr != "" {
		revocations, err := redisstore.Open(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer revocations.Close()

		authOpts = append(authOpts, service.WithRevoker(revocations))
		readiness["redis"] = revocations
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logout will not revoke sessions server-side")
	}

	router := api.NewRouter(api.Deps{
		Auth:       service.NewAuthService(st.users, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, logger.Component("auth"), authOpts...),
		CSRF:       service.NewCSRFService(cfg.Auth.CSRFSecret),
		Tasks:      service.NewTaskService(st.tasks, logger.Component("tasks")),
		Todos:      service.NewTodoService(st.todos, logger.Component("todos")),
		Cookies:    cookie.New(cfg.Auth.CookieSecret, cfg.IsProduction(), cookie.WithClock(clock)),
		Readiness:  readiness,
		CORSOrigin: cfg.Auth.CORSOrigin,
		Log:        logger.Component("http"),
		Metrics:    true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", st.name).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
