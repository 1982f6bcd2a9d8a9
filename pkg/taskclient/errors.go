package taskclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCSRFTokenMissing is returned before any network call when a protected
// mutation is attempted without a cached CSRF token. Call Check or Login first.
var ErrCSRFTokenMissing = errors.New("taskclient: csrf token missing")

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("taskclient: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("taskclient: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
