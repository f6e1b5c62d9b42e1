package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/model"
	sqliteRepo "github.com/sakif/nutrition-tracker/internal/repository/sqlite"
	"github.com/sakif/nutrition-tracker/internal/service"
)

// env wires real services over an in-memory database.
type env struct {
	db       *sqliteRepo.DB
	sessions *auth.MemoryStore
	authSvc  *service.AuthService
	users    *service.UserService
	food     *service.FoodService
	plans    *service.MealPlanService
	logger   *slog.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewMemoryStore()
	food := service.NewFoodService(db, logger)

	return &env{
		db:       db,
		sessions: sessions,
		authSvc:  service.NewAuthService(db, sessions, auth.NewPasswordServiceForTest(bcrypt.MinCost), logger),
		users:    service.NewUserService(db, logger),
		food:     food,
		plans:    service.NewMealPlanService(db, food, logger),
		logger:   logger,
	}
}

// registerUser creates an account and returns it with its session token.
func (e *env) registerUser(t *testing.T, email string) (*model.User, string) {
	t.Helper()
	id, token, err := e.authSvc.Register(context.Background(), service.RegisterInput{
		Email: email, Username: "tester", Password: "password1",
	})
	require.NoError(t, err)
	user, err := e.users.Get(context.Background(), id)
	require.NoError(t, err)
	return user, token
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser attaches user the way RequireAuth would.
func asUser(req *http.Request, user *model.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

// withURLParam sets a chi route parameter without going through a router.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}
