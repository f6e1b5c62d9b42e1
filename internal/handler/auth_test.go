package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/handler"
)

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_RegisterLoginLogoutFlow(t *testing.T) {
	e := newEnv(t)
	h := handler.NewAuthHandler(e.authSvc, true, e.logger)

	// register
	rr := httptest.NewRecorder()
	h.HandleRegister(rr, jsonRequest(t, http.MethodPost, "/api/register", map[string]string{
		"email": "flow@example.com", "username": "flow", "password": "password1",
	}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeBody(t, rr)
	assert.Equal(t, "User registered successfully", body["message"])
	assert.NotEmpty(t, body["user_id"])

	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)

	// check with the register cookie
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(cookie)
	h.HandleCheck(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"loggedIn":true}`, rr.Body.String())

	// login
	rr = httptest.NewRecorder()
	h.HandleLogin(rr, jsonRequest(t, http.MethodPost, "/api/login", map[string]string{
		"email": "flow@example.com", "password": "password1",
	}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body = decodeBody(t, rr)
	assert.Equal(t, "Login successful", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "flow@example.com", user["email"])
	assert.NotContains(t, user, "password", "hash must never be serialised")
	loginCookie := sessionCookie(rr)
	require.NotNil(t, loginCookie)

	// logout
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(loginCookie)
	h.HandleLogout(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	cleared := sessionCookie(rr)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	// the logged-out token is no longer valid
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(loginCookie)
	h.HandleCheck(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"loggedIn":false,"error":"Not authenticated"}`, rr.Body.String())
}

func TestAuthHandler_RegisterErrors(t *testing.T) {
	e := newEnv(t)
	h := handler.NewAuthHandler(e.authSvc, false, e.logger)
	e.registerUser(t, "taken@example.com")

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"malformed json", `{"email":`, http.StatusBadRequest},
		{"empty body", "", http.StatusBadRequest},
		{"missing password", map[string]string{"email": "a@b.c", "username": "a"}, http.StatusBadRequest},
		{"duplicate email", map[string]string{"email": "taken@example.com", "username": "x", "password": "y"}, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.HandleRegister(rr, jsonRequest(t, http.MethodPost, "/api/register", tc.body))

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.NotEmpty(t, decodeBody(t, rr)["error"])
			assert.Nil(t, sessionCookie(rr))
		})
	}
}

func TestAuthHandler_LoginErrors(t *testing.T) {
	e := newEnv(t)
	h := handler.NewAuthHandler(e.authSvc, false, e.logger)
	e.registerUser(t, "known@example.com")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantError  string
	}{
		{"unknown email", map[string]string{"email": "who@example.com", "password": "x"}, http.StatusNotFound, "User not found"},
		{"wrong password", map[string]string{"email": "known@example.com", "password": "x"}, http.StatusBadRequest, "Invalid password"},
		{"missing fields", map[string]string{}, http.StatusBadRequest, "Email and password are required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.HandleLogin(rr, jsonRequest(t, http.MethodPost, "/api/login", tc.body))

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantError, decodeBody(t, rr)["error"])
		})
	}
}

func TestAuthHandler_LogoutWithoutSession(t *testing.T) {
	e := newEnv(t)
	h := handler.NewAuthHandler(e.authSvc, false, e.logger)

	rr := httptest.NewRecorder()
	h.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/api/logout", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "forged"})
	h.HandleLogout(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, rr.Body.String())
}
