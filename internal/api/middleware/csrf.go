package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/taskboard/internal/api/cookie"
	"github.com/sirpyerre/taskboard/internal/api/metrics"
	"github.com/sirpyerre/taskboard/internal/core/domain"
	"github.com/sirpyerre/taskboard/internal/core/ports"
)

// CSRF enforces the double-submit check on state-changing methods. It must
// run after Auth: the token is only valid for the session it was minted for.
func CSRF(csrf ports.CSRFService, jar *cookie.Jar) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isStateChanging(c.Request().Method) {
				return next(c)
			}

			header := c.Request().Header.Get(cookie.CSRFHeader)
			if header == "" {
				return reject(c, "missing_header")
			}

			fromCookie, err := jar.CSRF(c)
			switch {
			case errors.Is(err, cookie.ErrMissing):
				return reject(c, "missing_cookie")
			case err != nil:
				return reject(c, "bad_cookie_signature")
			}

			if subtle.ConstantTimeCompare([]byte(header), []byte(fromCookie)) != 1 {
				return reject(c, "mismatch")
			}

			if err := csrf.Verify(SessionFrom(c), header); err != nil {
				return reject(c, "bad_token")
			}
			return next(c)
		}
	}
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func reject(c echo.Context, reason string) error {
	metrics.CSRFRejectionsTotal.WithLabelValues(reason).Inc()
	c.Logger().Debugf("csrf rejected: %s", reason)
	return domain.ErrCSRFValidation
}
