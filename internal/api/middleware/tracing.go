package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskboard"

// StatusResolver returns the HTTP status a request will end with. err is what
// the downstream handler returned, before the error handler has rendered it.
type StatusResolver func(c echo.Context, err error) int

type tracingConfig struct {
	tracerName string
	status     StatusResolver
}

type TracingOption func(*tracingConfig)

// WithStatusResolver lets the router report the status its error handler
// will map err to instead of the status echo has committed so far.
func WithStatusResolver(fn StatusResolver) TracingOption {
	return func(cfg *tracingConfig) { cfg.status = fn }
}

func WithTracerName(name string) TracingOption {
	return func(cfg *tracingConfig) { cfg.tracerName = name }
}

// Tracing starts a server span per request on the global tracer provider and
// hands the span context to downstream handlers through the request context.
// Without a configured provider the spans are no-ops.
func Tracing(opts ...TracingOption) echo.MiddlewareFunc {
	cfg := tracingConfig{tracerName: tracerName, status: defaultStatus}
	for _, opt := range opts {
		opt(&cfg)
	}
	tracer := otel.Tracer(cfg.tracerName)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}

			ctx, span := tracer.Start(req.Context(), fmt.Sprintf("%s %s", req.Method, route),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", req.Method),
					attribute.String("http.route", route),
				),
			)
			defer span.End()

			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				span.RecordError(err)
			}

			if s := SessionFrom(c); s != nil {
				span.SetAttributes(attribute.Int64("taskboard.user_id", s.UserID))
			}
			status := cfg.status(c, err)
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			return err
		}
	}
}

// defaultStatus knows only echo's own errors; anything else is a 500.
func defaultStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
