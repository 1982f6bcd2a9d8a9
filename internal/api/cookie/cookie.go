// Package cookie sets and reads the session and CSRF cookies.
//
// The CSRF cookie value is "<token>.<sig>" where sig is an HMAC of the token
// under the cookie secret, so a cookie planted by a sibling subdomain is
// rejected even when it carries a well-formed token.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	SessionName    = "token"
	CSRFName       = "csrf-token"
	SecureCSRFName = "__Host-csrf-token"
	CSRFHeader     = "csrf-token"
)

var (
	ErrMissing      = errors.New("cookie not present")
	ErrBadSignature = errors.New("cookie signature mismatch")
)

// Jar writes cookies with attributes derived from the deployment mode.
type Jar struct {
	secret []byte
	secure bool
	now    func() time.Time
}

type Option func(*Jar)

// WithClock sets the time source for Max-Age. Share it with the session
// issuer so cookie lifetime and token expiry agree.
func WithClock(now func() time.Time) Option {
	return func(j *Jar) { j.now = now }
}

// New returns a Jar. secure marks cookies Secure and switches the CSRF cookie
// to its __Host- prefixed name.
func New(secret string, secure bool, opts ...Option) *Jar {
	j := &Jar{secret: []byte(secret), secure: secure, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Jar) CSRFCookieName() string {
	if j.secure {
		return SecureCSRFName
	}
	return CSRFName
}

func (j *Jar) SetSession(c echo.Context, token string, expires time.Time) {
	c.SetCookie(j.build(SessionName, token, expires))
}

func (j *Jar) ClearSession(c echo.Context) {
	c.SetCookie(j.expired(SessionName))
}

// Session returns the raw session token, or ErrMissing.
func (j *Jar) Session(c echo.Context) (string, error) {
	ck, err := c.Cookie(SessionName)
	if err != nil || ck.Value == "" {
		return "", ErrMissing
	}
	return ck.Value, nil
}

// SetCSRF stores token in the signed CSRF cookie. The cookie lives as long as
// the session it is bound to.
func (j *Jar) SetCSRF(c echo.Context, token string, expires time.Time) {
	c.SetCookie(j.build(j.CSRFCookieName(), token+"."+j.sign(token), expires))
}

func (j *Jar) ClearCSRF(c echo.Context) {
	c.SetCookie(j.expired(j.CSRFCookieName()))
}

// CSRF returns the token carried by the CSRF cookie after checking its
// signature.
func (j *Jar) CSRF(c echo.Context) (string, error) {
	ck, err := c.Cookie(j.CSRFCookieName())
	if err != nil || ck.Value == "" {
		return "", ErrMissing
	}

	token, sig, ok := strings.Cut(ck.Value, ".")
	if !ok || token == "" {
		return "", ErrBadSignature
	}
	if !hmac.Equal([]byte(sig), []byte(j.sign(token))) {
		return "", ErrBadSignature
	}
	return token, nil
}

func (j *Jar) sign(value string) string {
	h := hmac.New(sha256.New, j.secret)
	h.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (j *Jar) build(name, value string, expires time.Time) *http.Cookie {
	maxAge := int(expires.Sub(j.now()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (j *Jar) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
