package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

// AuthService owns the session lifecycle:
//
//	absent ──register/login──▶ valid (bound to one email) ──logout──▶ absent
//
// There is no expiry and no refresh. Tokens are opaque; the session store
// is the only source of truth for whether one is valid.
type AuthService struct {
	users     repository.UserRepository
	sessions  auth.Store
	passwords *auth.PasswordService
	logger    *slog.Logger
}

var _ auth.Authenticator = (*AuthService)(nil)

func NewAuthService(
	users repository.UserRepository,
	sessions auth.Store,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
		logger:    logger,
	}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user and opens a session for them.
//
// The email pre-check gives a clean error before paying for bcrypt; the
// UNIQUE constraint still decides races between concurrent registrations.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (userID, token string, err error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" {
		return "", "", apperror.ValidationFailed("", "Email, username and password are required")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", "", apperror.Conflict("Email already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return "", "", fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", "", apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
		}
		return "", "", apperror.Internal("Failed to hash password", err)
	}

	// The session is opened first. If the session store is down, nothing
	// has been written yet and the client can simply retry. If the insert
	// fails, the token was never handed out and is dropped again.
	token, err = s.openSession(ctx, email)
	if err != nil {
		return "", "", err
	}

	user := &model.User{Email: email, Username: username, Password: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		s.discardSession(ctx, token)
		return "", "", fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return user.ID, token, nil
}

// Login verifies the password and opens a new session. Sessions opened
// earlier for the same user stay valid.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*model.User, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, "", apperror.ValidationFailed("", "Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.Password, in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, "", apperror.ValidationFailed("password", "Invalid password")
		}
		return nil, "", apperror.Internal("Failed to verify password", err)
	}

	token, err := s.openSession(ctx, email)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return user, token, nil
}

// Logout ends the session. An empty or unknown token is a client error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperror.ValidationFailed("token", "Invalid token")
	}

	deleted, err := s.sessions.Delete(ctx, token)
	if err != nil {
		return apperror.Internal("Failed to end session", err)
	}
	if !deleted {
		return apperror.ValidationFailed("token", "Invalid token")
	}
	return nil
}

// CheckAuth reports whether token is a live session. It does not check that
// the bound user still exists.
func (s *AuthService) CheckAuth(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	_, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		s.logger.Error("session lookup failed", slog.String("error", err.Error()))
		return false
	}
	return ok
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.Unauthorized("Authentication required")
	}

	email, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, apperror.Internal("Failed to read session", err)
	}
	if !ok {
		return nil, apperror.Unauthorized("Invalid or expired session")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Session user no longer exists")
		}
		return nil, fmt.Errorf("service/auth: resolving session: %w", err)
	}
	return user, nil
}

// discardSession removes a token that was never returned to a client. A
// failure only leaves an unreachable random token behind, so it is logged
// and otherwise ignored.
func (s *AuthService) discardSession(ctx context.Context, token string) {
	if _, err := s.sessions.Delete(ctx, token); err != nil {
		s.logger.Warn("dropping unused session", slog.String("error", err.Error()))
	}
}

func (s *AuthService) openSession(ctx context.Context, email string) (string, error) {
	token := auth.NewToken()
	if err := s.sessions.Put(ctx, token, email); err != nil {
		return "", apperror.Internal("Failed to create session", err)
	}
	return token, nil
}
