package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/taskboard/internal/api/cookie"
	"github.com/sirpyerre/taskboard/internal/api/metrics"
	"github.com/sirpyerre/taskboard/internal/core/domain"
	"github.com/sirpyerre/taskboard/internal/core/ports"
)

// SessionKey is the echo context key holding the verified *domain.Session.
const SessionKey = "session"

// Auth verifies the session cookie and injects the resolved session into
// the context. Requests without a valid session stop here with
// domain.ErrUnauthenticated.
func Auth(verifier ports.SessionVerifier, jar *cookie.Jar) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := jar.Session(c)
			if err != nil {
				metrics.SessionVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthenticated
			}

			session, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(SessionKey, session)
			return next(c)
		}
	}
}

// SessionFrom returns the session stored by Auth, or nil when Auth did not run.
func SessionFrom(c echo.Context) *domain.Session {
	s, _ := c.Get(SessionKey).(*domain.Session)
	return s
}
