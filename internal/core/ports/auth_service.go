package ports

import (
	"context"
	"time"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

// AuthResult is returned by Register and Login. Token is the signed session
// token the transport layer places in the session cookie.
type AuthResult struct {
	User      *domain.User
	Session   *domain.Session
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Logout(ctx context.Context, session *domain.Session) error
	CurrentUser(ctx context.Context, id int64) (*domain.User, error)
	SessionVerifier
}

// SessionVerifier resolves a session token into the subject it was issued for.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Session, error)
}

// CSRFService mints and checks double-submit tokens bound to a session.
type CSRFService interface {
	Issue(session *domain.Session) (string, error)
	Verify(session *domain.Session, token string) error
}
