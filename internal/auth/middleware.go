package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
)

// CookieName is the session cookie set on register and login.
const CookieName = "token"

// Authenticator resolves a session token to the user it was issued to.
// service.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// contextKey is private so no other package can read or shadow the value.
type contextKey string

const userKey contextKey = "user"

// errNoSession is returned by userFromRequest when the cookie is absent.
var errNoSession = apperror.Unauthorized("Authentication required")

// RequireAuth resolves the session cookie to a user and stores it in the
// request context.
//
// HOW FAILURES ARE REPORTED:
// Only an ErrUnauthorized from the Authenticator means "log in again", and
// it is answered with 401 {"error": "Authentication required"}. Anything
// else (the session store is down, the user lookup failed) is a server
// fault. It goes through apperror.HTTPStatus like any handler error, so a
// Redis outage shows up as a 500 instead of silently logging every client
// out.
//
//	r.Group(func(r chi.Router) {
//	    r.Use(auth.RequireAuth(authService, logger))
//	    r.Post("/daily_food", foodHandler.HandleLog)
//	})
func RequireAuth(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := userFromRequest(r, authn)
			if err != nil {
				writeAuthError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when the cookie is valid and lets the
// request through anonymously when there is no session. Server faults are
// still reported, since answering as anonymous would hide the caller's
// private data without saying why.
func OptionalAuth(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := userFromRequest(r, authn)
			switch {
			case err == nil:
				r = r.WithContext(WithUser(r.Context(), user))
			case !errors.Is(err, apperror.ErrUnauthorized):
				writeAuthError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError writes the same {"error": "..."} body the handler layer
// uses. Every 401 carries one fixed message so clients cannot tell an
// unknown token from a missing cookie.
func writeAuthError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperror.HTTPStatus(err)
	message := "Authentication required"
	if status != http.StatusUnauthorized {
		message = apperror.ClientMessage(err)
		logger.Error("authenticating request", slog.Int("status", status), slog.String("error", err.Error()))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WithUser returns a copy of ctx carrying user. Handler tests use it to
// skip the middleware.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or (nil, false) for an
// anonymous request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// TokenFromRequest returns the session cookie value, or "" when absent.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func userFromRequest(r *http.Request, authn Authenticator) (*model.User, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, errNoSession
	}
	user, err := authn.Authenticate(r.Context(), token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNoSession
	}
	return user, nil
}
