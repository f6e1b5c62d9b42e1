package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/service"
)

type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleUpdate overwrites a profile. The user id comes from the body.
//
// HTTP: PUT /api/user
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.users.UpdateProfile(r.Context(), in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "User updated successfully"})
}

// HandleMe returns the logged-in user's profile.
//
// HTTP: GET /api/user (RequireAuth)
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result{Result: user})
}

// HandleMetrics runs the calorie calculator on the caller's profile.
//
// HTTP: GET /api/user/metrics?gender=male (RequireAuth)
func (h *UserHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	metrics, err := h.users.Metrics(r.Context(), user.ID, r.URL.Query().Get("gender"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Result: metrics})
}

// currentUser reads the user RequireAuth stored. It writes a 401 and
// returns false if the route was mounted without the middleware.
func currentUser(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, logger, apperror.Unauthorized("Authentication required"))
		return nil, false
	}
	return user, true
}
