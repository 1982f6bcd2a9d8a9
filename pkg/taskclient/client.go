// Package taskclient is a Go client for the taskboard API.
//
// A Client holds the session cookie in a cookie jar and caches the CSRF token
// from any response that carries one. TaskStore and TodoStore layer an
// optimistic query cache on top.
package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	csrfHeader = "csrf-token"

	sessionCookie    = "token"
	csrfCookie       = "csrf-token"
	secureCSRFCookie = "__Host-csrf-token"

	defaultTimeout = 15 * time.Second
)

// Client talks to one taskboard API. It is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client

	mu        sync.Mutex
	csrfToken string
	onLogout  []func()
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. A cookie jar is
// installed when hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("taskclient: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("taskclient: base url %q must be absolute", baseURL)
	}

	c := &Client{base: base, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("taskclient: cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// CSRFToken returns the cached token, or "" when none is held.
func (c *Client) CSRFToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csrfToken
}

// HasSession reports whether the jar currently holds a session cookie.
func (c *Client) HasSession() bool {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == sessionCookie && ck.Value != "" {
			return true
		}
	}
	return false
}

// OnLogout registers fn to run after every Logout, successful or not.
// Stores use it to drop the previous user's data.
func (c *Client) OnLogout(fn func()) {
	c.mu.Lock()
	c.onLogout = append(c.onLogout, fn)
	c.mu.Unlock()
}

func (c *Client) setCSRFToken(token string) {
	c.mu.Lock()
	c.csrfToken = token
	c.mu.Unlock()
}

// clearSession drops the local session cookie and CSRF state whatever the
// server said.
func (c *Client) clearSession() {
	root := *c.base
	root.Path = "/"
	expired := make([]*http.Cookie, 0, 3)
	for _, name := range []string{sessionCookie, csrfCookie, secureCSRFCookie} {
		expired = append(expired, &http.Cookie{Name: name, Path: "/", MaxAge: -1})
	}
	c.http.Jar.SetCookies(&root, expired)

	c.mu.Lock()
	c.csrfToken = ""
	hooks := slices.Clone(c.onLogout)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

type request struct {
	method string
	path   string
	body   any
	// public requests neither need nor send the CSRF header.
	public bool
}

func (r request) mutating() bool {
	switch r.method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// do sends r and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	token := c.CSRFToken()
	if r.mutating() && !r.public && token == "" {
		return ErrCSRFTokenMissing
	}

	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("taskclient: encode %s %s: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.base.JoinPath(r.path).String(), body)
	if err != nil {
		return fmt.Errorf("taskclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.mutating() && !r.public {
		req.Header.Set(csrfHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("taskclient: %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("taskclient: read %s %s: %w", r.method, r.path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.apiError(resp.StatusCode, raw)
	}

	c.captureCSRF(raw)

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("taskclient: decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

// captureCSRF caches the token from any object body that carries one.
func (c *Client) captureCSRF(raw []byte) {
	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.CSRFToken != "" {
		c.setCSRFToken(payload.CSRFToken)
	}
}

func (c *Client) apiError(status int, raw []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &payload)
	if status == http.StatusUnauthorized {
		// The session is gone server side; a stale token is useless.
		c.setCSRFToken("")
	}
	return &APIError{Status: status, Message: payload.Error}
}
