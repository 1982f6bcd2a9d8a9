package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/taskboard/internal/api/metrics"
	"github.com/sirpyerre/taskboard/internal/core/domain"
	"github.com/sirpyerre/taskboard/internal/core/ports"
)

const (
	DefaultSessionTTL = 24 * time.Hour

	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

// dummyHash is compared against when the username does not exist so that
// unknown users cost the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("taskboard-constant-effort"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: dummy hash: %v", err))
	}
	return h
})

// AuthService implements registration, login and session token handling.
type AuthService struct {
	users    ports.UserRepository
	todos    ports.TodoRepository
	revoker  ports.SessionRevoker
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// AuthOption configures optional AuthService collaborators.
type AuthOption func(*AuthService)

// WithRevoker enables server-side logout through a revocation list.
func WithRevoker(r ports.SessionRevoker) AuthOption {
	return func(s *AuthService) { s.revoker = r }
}

// WithWelcomeTodo seeds a first todo for every newly registered user.
func WithWelcomeTodo(todos ports.TodoRepository) AuthOption {
	return func(s *AuthService) { s.todos = todos }
}

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(users ports.UserRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger, opts ...AuthOption) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultSessionTTL
	}
	s := &AuthService{
		users:    users,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid_input").Inc()
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "user_exists").Inc()
			return nil, err
		}
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	s.seedWelcomeTodo(ctx, user)

	result, err := s.issue(user)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return result, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return result, nil
}

// Verify checks signature, algorithm, expiry and revocation of a session
// token. Every failure is reported as domain.ErrUnauthenticated.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Session, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		metrics.SessionVerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || claims.ID == "" {
		metrics.SessionVerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: malformed claims", domain.ErrUnauthenticated)
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("jti", claims.ID).Msg("revocation check failed, accepting token")
		} else if revoked {
			metrics.SessionVerificationsTotal.WithLabelValues("revoked").Inc()
			return nil, fmt.Errorf("%w: session revoked", domain.ErrUnauthenticated)
		}
	}

	session := &domain.Session{
		UserID:    userID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}

	metrics.SessionVerificationsTotal.WithLabelValues("ok").Inc()
	return session, nil
}

// Logout revokes the session until its natural expiry. Without a revoker it
// is a no-op and the session ends when the client drops the cookie.
func (s *AuthService) Logout(ctx context.Context, session *domain.Session) error {
	if s.revoker == nil || session == nil {
		return nil
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, session.TokenID, ttl); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Int64("user_id", session.UserID).Msg("session revoked")
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &ports.AuthResult{
		User: user,
		Session: &domain.Session{
			UserID:    user.ID,
			TokenID:   claims.ID,
			IssuedAt:  claims.IssuedAt.Time,
			ExpiresAt: claims.ExpiresAt.Time,
		},
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// seedWelcomeTodo is best effort: a failure is logged, registration proceeds.
func (s *AuthService) seedWelcomeTodo(ctx context.Context, user *domain.User) {
	if s.todos == nil {
		return
	}
	todo := &domain.Todo{
		Task:      domain.WelcomeTodo,
		UserID:    user.ID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to seed welcome todo")
	}
}

func validateCredentials(username, password string) error {
	n := utf8.RuneCountInString(username)
	switch {
	case n < minUsernameLen:
		return domain.Invalid("username must be at least %d characters", minUsernameLen)
	case n > maxUsernameLen:
		return domain.Invalid("username must be at most %d characters", maxUsernameLen)
	case len(password) < minPasswordLen:
		return domain.Invalid("password must be at least %d characters", minPasswordLen)
	case len(password) > maxPasswordLen:
		return domain.Invalid("password must be at most %d bytes", maxPasswordLen)
	}
	return nil
}
