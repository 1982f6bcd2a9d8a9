package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.Username] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func (r *stubRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if r.revoked == nil {
		r.revoked = make(map[string]time.Duration)
	}
	r.revoked[tokenID] = ttl
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[tokenID]
	return ok, nil
}

func newTestAuthService(repo *stubUserRepo, opts ...AuthOption) *AuthService {
	return NewAuthService(repo, "secret", time.Hour, zerolog.Nop(), opts...)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	todos := newStubTodoRepo()
	svc := newTestAuthService(repo, WithWelcomeTodo(todos))

	res, err := svc.Register(context.Background(), "  alice ", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", res.User.Username)
	}
	if res.Token == "" || res.Session.TokenID == "" {
		t.Fatalf("expected session token and jti")
	}

	stored := repo.users["alice"]
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	seeded, _ := todos.List(context.Background(), res.User.ID)
	if len(seeded) != 1 || seeded[0].Task != domain.WelcomeTodo {
		t.Fatalf("expected welcome todo, got %+v", seeded)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "pass123"},
		{"short username", "ab", "pass123"},
		{"long username", strings.Repeat("a", 51), "pass123"},
		{"short password", "alice", "12345"},
		{"long password", "alice", strings.Repeat("p", 73)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.username, tc.password)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pass123"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "other123"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_SeedFailureDoesNotFail(t *testing.T) {
	todos := newStubTodoRepo()
	todos.createErr = errors.New("boom")
	svc := newTestAuthService(newStubUserRepo(), WithWelcomeTodo(todos))

	if _, err := svc.Register(context.Background(), "alice", "pass123"); err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := svc.Login(ctx, "alice", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.ID != reg.User.ID {
		t.Fatalf("expected user %d, got %d", reg.User.ID, res.User.ID)
	}
	if res.Session.TokenID == reg.Session.TokenID {
		t.Fatalf("expected a fresh jti per session")
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestAuthService_VerifyRoundTrip(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	session, err := svc.Verify(ctx, res.Token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if session.UserID != res.User.ID {
		t.Fatalf("expected subject %d, got %d", res.User.ID, session.UserID)
	}
	if session.TokenID != res.Session.TokenID {
		t.Fatalf("expected jti %q, got %q", res.Session.TokenID, session.TokenID)
	}
}

func TestAuthService_VerifyExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := newTestAuthService(newStubUserRepo(), WithClock(clock))
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, err := svc.Verify(ctx, res.Token); err != nil {
		t.Fatalf("expected token to be valid before expiry, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := svc.Verify(ctx, res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after expiry, got %v", err)
	}
}

func TestAuthService_VerifyRejectsForgedTokens(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	ctx := context.Background()

	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ID:        "jti-1",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	wrongKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other"))
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExp := claims
	noExp.ExpiresAt = nil
	missingExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, noExp).SignedString([]byte("secret"))

	badSub := claims
	badSub.Subject = "alice"
	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, badSub).SignedString([]byte("secret"))

	for name, token := range map[string]string{
		"garbage":     "not-a-jwt",
		"wrong key":   wrongKey,
		"wrong alg":   wrongAlg,
		"none alg":    noneAlg,
		"missing exp": missingExp,
		"bad subject": badSubject,
	} {
		if _, err := svc.Verify(ctx, token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestAuthService_LogoutRevokes(t *testing.T) {
	revoker := &stubRevoker{}
	svc := newTestAuthService(newStubUserRepo(), WithRevoker(revoker))
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	session, err := svc.Verify(ctx, res.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := svc.Logout(ctx, session); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	ttl, ok := revoker.revoked[session.TokenID]
	if !ok {
		t.Fatalf("expected jti to be revoked")
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected revocation ttl %s", ttl)
	}

	if _, err := svc.Verify(ctx, res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestAuthService_VerifyFailsOpenWhenRevokerDown(t *testing.T) {
	revoker := &stubRevoker{err: errors.New("connection refused")}
	svc := newTestAuthService(newStubUserRepo(), WithRevoker(revoker))
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Verify(ctx, res.Token); err != nil {
		t.Fatalf("expected token to be accepted when revocation list is unavailable, got %v", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	u, err := svc.CurrentUser(ctx, res.User.ID)
	if err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("unexpected user %+v", u)
	}
	if _, err := svc.CurrentUser(ctx, 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
