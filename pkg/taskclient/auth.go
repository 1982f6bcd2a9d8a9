package taskclient

import (
	"context"
	"net/http"
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthStatus is the answer of /auth/check.
type AuthStatus struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	CSRFToken       string `json:"csrfToken,omitempty"`
	User            *User  `json:"user,omitempty"`
}

type authResponse struct {
	Message   string `json:"message"`
	CSRFToken string `json:"csrfToken"`
	User      *User  `json:"user"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Check asks the server whether the jar holds a valid session. An
// unauthenticated answer drops any cached CSRF token.
func (c *Client) Check(ctx context.Context) (*AuthStatus, error) {
	var status AuthStatus
	if err := c.do(ctx, request{method: http.MethodGet, path: "auth/check", public: true}, &status); err != nil {
		return nil, err
	}
	if !status.IsAuthenticated {
		c.setCSRFToken("")
	}
	return &status, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (*User, error) {
	return c.authenticate(ctx, "auth/register", username, password)
}

func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	return c.authenticate(ctx, "auth/login", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (*User, error) {
	var res authResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   path,
		body:   credentials{Username: username, Password: password},
		public: true,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.User, nil
}

// Logout asks the server to end the session. The local session cookie and
// CSRF token are cleared even when that call fails, including when no token
// was cached.
func (c *Client) Logout(ctx context.Context) error {
	defer c.clearSession()
	return c.do(ctx, request{method: http.MethodPost, path: "auth/logout"}, nil)
}
