package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/sirpyerre/taskboard/internal/api/cookie"
	"github.com/sirpyerre/taskboard/internal/api/handler"
	"github.com/sirpyerre/taskboard/internal/api/middleware"
	"github.com/sirpyerre/taskboard/internal/core/ports"

	_ "github.com/sirpyerre/taskboard/docs"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Auth       ports.AuthService
	CSRF       ports.CSRFService
	Tasks      ports.TaskService
	Todos      ports.TodoService
	Cookies    *cookie.Jar
	Readiness  map[string]ports.Pinger
	CORSOrigin string
	Log        zerolog.Logger
	// Metrics mounts echoprometheus and /metrics. Tests leave it off, or set
	// MetricsRegistry, so building several routers does not register
	// collectors twice.
	Metrics bool
	// MetricsRegistry replaces the default prometheus registry for request
	// metrics and the /metrics endpoint.
	MetricsRegistry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{d.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, cookie.CSRFHeader},
		AllowCredentials: true,
	}))
	e.Use(middleware.Tracing(middleware.WithStatusResolver(responseStatus)))
	if d.Metrics {
		mwConfig := echoprometheus.MiddlewareConfig{
			Subsystem:          "taskboard",
			StatusCodeResolver: responseStatus,
		}
		var handlerConfig echoprometheus.HandlerConfig
		if d.MetricsRegistry != nil {
			mwConfig.Registerer = d.MetricsRegistry
			handlerConfig.Gatherer = d.MetricsRegistry
		}
		e.Use(echoprometheus.NewMiddlewareWithConfig(mwConfig))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(handlerConfig))
	}

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler(d.Readiness)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authGate := middleware.Auth(d.Auth, d.Cookies)
	csrfGate := middleware.CSRF(d.CSRF, d.Cookies)

	api := e.Group("/api")

	// --- Auth routes: check/register/login are public and CSRF-exempt ---
	authHandler := handler.NewAuthHandler(d.Auth, d.CSRF, d.Cookies, d.Log)
	auth := api.Group("/auth")
	auth.GET("/check", authHandler.Check)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, authGate, csrfGate)

	// --- Protected resources ---
	taskHandler := handler.NewTaskHandler(d.Tasks)
	tasks := api.Group("/tasks", authGate, csrfGate)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	todoHandler := handler.NewTodoHandler(d.Todos)
	todos := api.Group("/todos", authGate, csrfGate)
	todos.GET("", todoHandler.List)
	todos.POST("", todoHandler.Create)
	todos.GET("/:id", todoHandler.Get)
	todos.PUT("/:id", todoHandler.Update)
	todos.DELETE("/:id", todoHandler.Delete)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
