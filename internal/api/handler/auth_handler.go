package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/taskboard/internal/api/cookie"
	"github.com/sirpyerre/taskboard/internal/api/metrics"
	"github.com/sirpyerre/taskboard/internal/core/domain"
	"github.com/sirpyerre/taskboard/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	csrf        ports.CSRFService
	jar         *cookie.Jar
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, csrf ports.CSRFService, jar *cookie.Jar, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, csrf: csrf, jar: jar, log: log}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type authResponse struct {
	Message   string        `json:"message"`
	CSRFToken string        `json:"csrfToken"`
	User      *userResponse `json:"user"`
}

type checkResponse struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	CSRFToken       string        `json:"csrfToken,omitempty"`
	User            *userResponse `json:"user,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Check reports whether the caller holds a valid session. It always answers
// 200; an authenticated caller also receives a CSRF token.
//
// @Summary      Check the current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  checkResponse
// @Router       /auth/check [get]
func (h *AuthHandler) Check(c echo.Context) error {
	anonymous := checkResponse{IsAuthenticated: false}

	token, err := h.jar.Session(c)
	if err != nil {
		return c.JSON(http.StatusOK, anonymous)
	}

	ctx := c.Request().Context()
	session, err := h.authService.Verify(ctx, token)
	if err != nil {
		return c.JSON(http.StatusOK, anonymous)
	}

	user, err := h.authService.CurrentUser(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			h.log.Error().Err(err).Int64("user_id", session.UserID).Msg("auth check: load user")
		}
		return c.JSON(http.StatusOK, anonymous)
	}

	csrfToken, err := h.reuseOrIssueCSRF(c, session)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, checkResponse{
		IsAuthenticated: true,
		CSRFToken:       csrfToken,
		User:            toUserResponse(user),
	})
}

// Register creates a new user account and starts a session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return h.startSession(c, res, "register", "Registered successfully")
}

// Login authenticates a user and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return h.startSession(c, res, "login", "Logged in successfully")
}

// Logout ends the session and clears both cookies.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Param        csrf-token  header    string  true  "CSRF token"
// @Success      200         {object}  messageResponse
// @Failure      401         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), session); err != nil {
		h.log.Warn().Err(err).Int64("user_id", session.UserID).Msg("logout: revocation failed, clearing cookies anyway")
	}

	h.jar.ClearSession(c)
	h.jar.ClearCSRF(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) startSession(c echo.Context, res *ports.AuthResult, trigger, message string) error {
	h.jar.SetSession(c, res.Token, res.ExpiresAt)

	csrfToken, err := h.issueCSRF(c, res.Session, trigger)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{
		Message:   message,
		CSRFToken: csrfToken,
		User:      toUserResponse(res.User),
	})
}

// reuseOrIssueCSRF keeps the token already held in the cookie while it still
// verifies for this session, so other open tabs keep working.
func (h *AuthHandler) reuseOrIssueCSRF(c echo.Context, session *domain.Session) (string, error) {
	if existing, err := h.jar.CSRF(c); err == nil {
		if h.csrf.Verify(session, existing) == nil {
			return existing, nil
		}
	}
	return h.issueCSRF(c, session, "check")
}

func (h *AuthHandler) issueCSRF(c echo.Context, session *domain.Session, trigger string) (string, error) {
	token, err := h.csrf.Issue(session)
	if err != nil {
		return "", err
	}
	expires := session.ExpiresAt
	if expires.IsZero() {
		expires = time.Now().Add(24 * time.Hour)
	}
	h.jar.SetCSRF(c, token, expires)
	metrics.CSRFTokensIssuedTotal.WithLabelValues(trigger).Inc()
	return token, nil
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{ID: u.ID, Username: u.Username}
}
