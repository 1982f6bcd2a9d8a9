package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid username or password"},
		{fmt.Errorf("%w: token expired", domain.ErrUnauthenticated), http.StatusUnauthorized, "authentication required"},
		{domain.ErrCSRFValidation, http.StatusForbidden, "CSRF validation failed"},
		{domain.Invalid("title is required"), http.StatusBadRequest, "title is required"},
		{domain.ErrUserExists, http.StatusBadRequest, "username already taken"},
		{fmt.Errorf("get task 3: %w", domain.ErrTaskNotFound), http.StatusNotFound, "task not found"},
		{fmt.Errorf("delete todo 3: %w", domain.ErrTodoNotFound), http.StatusNotFound, "todo not found"},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{errors.New("connection reset by peer"), http.StatusInternalServerError, "internal server error"},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		h(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body.Error != tc.msg {
			t.Fatalf("%v: expected message %q, got %q", tc.err, tc.msg, body.Error)
		}
	}
}

func TestResponseStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: no cookie", domain.ErrUnauthenticated), http.StatusUnauthorized},
		{domain.ErrCSRFValidation, http.StatusForbidden},
		{domain.Invalid("title is required"), http.StatusBadRequest},
		{fmt.Errorf("get task 3: %w", domain.ErrTaskNotFound), http.StatusNotFound},
		{echo.NewHTTPError(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if got := responseStatus(c, tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestResponseStatus_CommittedResponseWins(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusAccepted)

	if got := responseStatus(c, domain.ErrTaskNotFound); got != http.StatusAccepted {
		t.Fatalf("expected the committed status, got %d", got)
	}
}
