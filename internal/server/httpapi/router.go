// Package httpapi exposes the auth core's operations over a thin JSON
// surface. It owns only the failure-to-response mapping; calendar pages,
// templates and the rest of the application routing live elsewhere.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/opencal/authcore/internal/common"
	"github.com/opencal/authcore/internal/logging"
	"github.com/opencal/authcore/internal/server/models"
	"github.com/opencal/authcore/internal/server/services"
)

// authCookieName is the HTTPONLY cookie carrying the session token.
const authCookieName = "Authorization"

// User-facing messages carried on the login redirect. Which one is chosen is
// the only place the failure taxonomy becomes visible to a person.
const (
	msgBadCredentials  = "Please check your credentials"
	msgTokenIncorrect  = "Your token is incorrect. Please log in again"
	msgTokenExpired    = "Your token has expired. Please log in again"
	msgLoginRequired   = "Please log in to enter this page"
	msgNoResetToken    = "You did not supply a verification token"
	msgResetMailSent   = "Email for resetting password was sent"
	msgResetSuccess    = "Success reset password"
	msgPasswordChanged = "Password changed. Please log in again"
)

// Router wires HTTP endpoints to the auth service.
type Router struct {
	mux    *http.ServeMux
	logger logging.Logger
	auth   *services.AuthService
}

// NewRouter assembles routes with dependencies.
func NewRouter(logger logging.Logger, authSvc *services.AuthService) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		logger: logger,
		auth:   authSvc,
	}
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (rt *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	rt.mux.ServeHTTP(w, req)
}

func (rt *Router) register() {
	rt.mux.HandleFunc("POST /login", rt.handleLogin)
	rt.mux.HandleFunc("GET /me", rt.handleMe)
	rt.mux.HandleFunc("POST /forgot-password", rt.handleForgotPassword)
	rt.mux.HandleFunc("GET /reset-password", rt.handleResetPasswordForm)
	rt.mux.HandleFunc("POST /reset-password", rt.handleResetPassword)
	rt.mux.HandleFunc("POST /change-password", rt.handleChangePassword)
	rt.mux.HandleFunc("GET /healthz", rt.handleHealth)
}

// sessionToken extracts the token from the Authorization cookie or, failing
// that, from a bearer Authorization header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(authCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// redirectToLogin drops the session cookie and sends the caller to the login
// page with the original path and a human-readable message.
func (rt *Router) redirectToLogin(w http.ResponseWriter, r *http.Request, msg string) {
	http.SetCookie(w, &http.Cookie{Name: authCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	q := url.Values{"next": {r.URL.Path}, "message": {msg}}
	http.Redirect(w, r, "/login?"+q.Encode(), http.StatusFound)
}

// unauthorized maps a classified validation failure to its login-redirect
// message.
func (rt *Router) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	msg := msgTokenIncorrect
	if errors.Is(err, common.ErrTokenExpired) {
		msg = msgTokenExpired
	}
	rt.redirectToLogin(w, r, msg)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := rt.auth.Authenticate(r.Context(), models.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		rt.logger.Error(r.Context(), "login failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := rt.auth.IssueSession(user)
	if err != nil {
		rt.logger.Error(r.Context(), "session issue failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: authCookieName, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (rt *Router) handleMe(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		rt.redirectToLogin(w, r, msgLoginRequired)
		return
	}

	current, err := rt.auth.ValidateSession(r.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrorInternal) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		rt.unauthorized(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, current)
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (rt *Router) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := rt.auth.RequestReset(r.Context(), req.Username, req.Email); err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		rt.logger.Error(r.Context(), "reset request failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"message": msgResetMailSent})
}

func (rt *Router) handleResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("token") == "" {
		rt.redirectToLogin(w, r, msgNoResetToken)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type resetPasswordRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (rt *Router) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		rt.redirectToLogin(w, r, msgNoResetToken)
		return
	}

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := rt.auth.RedeemReset(r.Context(), token, req.Username, req.Password, req.ConfirmPassword)
	switch {
	case err == nil:
		http.Redirect(w, r, "/login?"+url.Values{"message": {msgResetSuccess}}.Encode(), http.StatusFound)
	case errors.Is(err, common.ErrValidationRejected):
		writeError(w, http.StatusBadRequest, msgBadCredentials)
	case errors.Is(err, common.ErrorInternal):
		rt.logger.Error(r.Context(), "reset redeem failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		rt.unauthorized(w, r, err)
	}
}

type changePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (rt *Router) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		rt.redirectToLogin(w, r, msgLoginRequired)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := rt.auth.ChangePasswordWithToken(r.Context(), token, req.Password, req.ConfirmPassword)
	switch {
	case err == nil:
		// The presented token is fingerprinted with the old hash and is
		// stale from here on, so the session cookie goes too.
		http.SetCookie(w, &http.Cookie{Name: authCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]string{"message": msgPasswordChanged})
	case errors.Is(err, common.ErrValidationRejected):
		writeError(w, http.StatusBadRequest, msgBadCredentials)
	case errors.Is(err, common.ErrorInternal):
		rt.logger.Error(r.Context(), "password change failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		rt.unauthorized(w, r, err)
	}
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
