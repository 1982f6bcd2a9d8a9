package cookie

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestJar_CSRFRoundTrip(t *testing.T) {
	jar := New("cookie-secret", false)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	jar.SetCSRF(c, "abc123", time.Now().Add(time.Hour))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CSRFName {
		t.Fatalf("expected one %s cookie, got %+v", CSRFName, cookies)
	}
	if !cookies[0].HttpOnly || cookies[0].SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes: %+v", cookies[0])
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(cookies[0])
	c, _ = newContext(req)

	token, err := jar.CSRF(c)
	if err != nil {
		t.Fatalf("CSRF returned error: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("expected token abc123, got %q", token)
	}
}

func TestJar_CSRFTampered(t *testing.T) {
	jar := New("cookie-secret", false)
	other := New("another-secret", false)

	cases := map[string]string{
		"no signature":    "abc123",
		"wrong signature": "abc123.AAAA",
		"foreign secret":  "abc123." + other.sign("abc123"),
		"swapped token":   "evil." + jar.sign("abc123"),
	}
	for name, value := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: CSRFName, Value: value})
		c, _ := newContext(req)
		if _, err := jar.CSRF(c); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("%s: expected ErrBadSignature, got %v", name, err)
		}
	}

	c, _ := newContext(httptest.NewRequest(http.MethodPost, "/", nil))
	if _, err := jar.CSRF(c); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestJar_SecureMode(t *testing.T) {
	jar := New("cookie-secret", true)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	jar.SetSession(c, "jwt", time.Now().Add(time.Hour))
	jar.SetCSRF(c, "abc", time.Now().Add(time.Hour))

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected two cookies, got %d", len(cookies))
	}
	if cookies[0].Name != SessionName || !cookies[0].Secure {
		t.Fatalf("expected secure session cookie, got %+v", cookies[0])
	}
	if cookies[1].Name != SecureCSRFName || !cookies[1].Secure {
		t.Fatalf("expected secure %s cookie, got %+v", SecureCSRFName, cookies[1])
	}
}

func TestJar_Clear(t *testing.T) {
	jar := New("cookie-secret", false)

	c, rec := newContext(httptest.NewRequest(http.MethodPost, "/", nil))
	jar.ClearSession(c)
	jar.ClearCSRF(c)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge >= 0 || ck.Value != "" {
			t.Fatalf("expected %s to be expired, got %+v", ck.Name, ck)
		}
	}
}

func TestJar_MaxAgeFollowsClock(t *testing.T) {
	now := time.Date(2035, 3, 1, 12, 0, 0, 0, time.UTC)
	jar := New("cookie-secret", false, WithClock(func() time.Time { return now }))

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	jar.SetSession(c, "session-token", now.Add(time.Hour))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != 3600 {
		t.Fatalf("expected Max-Age 3600 from the injected clock, got %+v", cookies)
	}

	c, rec = newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	jar.SetCSRF(c, "abc123", now.Add(-time.Minute))
	if ck := rec.Result().Cookies()[0]; ck.MaxAge >= 0 {
		t.Fatalf("expected an already expired cookie, got Max-Age %d", ck.MaxAge)
	}
}
