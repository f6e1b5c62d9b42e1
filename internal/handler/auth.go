package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/service"
)

// AuthHandler serves register, login, logout and the session check.
//
// The session token travels only in the "token" cookie:
//   - HttpOnly: page scripts cannot read it
//   - SameSite=Strict: never sent on cross-site requests
//   - Secure: set when the server is configured for HTTPS
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
	logger       *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, cookieSecure: cookieSecure, logger: logger}
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type loginResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

type checkResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Error    string `json:"error,omitempty"`
}

// HandleRegister creates an account and logs it in.
//
// HTTP: POST /api/register {"email","username","password"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, token, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, registerResponse{
		Message: "User registered successfully",
		UserID:  userID,
	})
}

// HandleLogin opens a new session.
//
// HTTP: POST /api/login {"email","password"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", User: user})
}

// HandleLogout ends the session named by the cookie and clears it.
//
// HTTP: POST /api/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, message{Message: "Logged out successfully"})
}

// HandleCheck reports whether the cookie names a live session.
//
// HTTP: GET /api/auth/check
func (h *AuthHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	if !h.auth.CheckAuth(r.Context(), auth.TokenFromRequest(r)) {
		writeJSON(w, http.StatusUnauthorized, checkResponse{LoggedIn: false, Error: "Not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{LoggedIn: true})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
