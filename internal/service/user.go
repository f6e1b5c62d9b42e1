package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/nutrition"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// UpdateProfileInput is the PUT /api/user body. Metric fields are optional;
// a nil field clears the stored value.
type UpdateProfileInput struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Username      string   `json:"username"`
	CurrentWeight *float64 `json:"current_weight"`
	GoalWeight    *float64 `json:"goal_weight"`
	Height        *float64 `json:"height"`
	Age           *int     `json:"age"`
	ActivityLevel *string  `json:"activity_level"`
	Gender        *string  `json:"gender"`
}

func (in UpdateProfileInput) validate() error {
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Username) == "" {
		return apperror.ValidationFailed("", "id, email and username are required")
	}
	for field, v := range map[string]*float64{
		"current_weight": in.CurrentWeight,
		"goal_weight":    in.GoalWeight,
		"height":         in.Height,
	} {
		if v != nil && *v <= 0 {
			return apperror.ValidationFailed(field, field+" must be positive")
		}
	}
	if in.Age != nil && *in.Age <= 0 {
		return apperror.ValidationFailed("age", "age must be positive")
	}
	return nil
}

// UpdateProfile overwrites the user's profile. An unknown id is NotFound,
// never a silent no-op.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	user := &model.User{
		ID:            strings.TrimSpace(in.ID),
		Email:         normalizeEmail(in.Email),
		Username:      strings.TrimSpace(in.Username),
		CurrentWeight: in.CurrentWeight,
		GoalWeight:    in.GoalWeight,
		Height:        in.Height,
		Age:           in.Age,
		ActivityLevel: trimmed(in.ActivityLevel),
		Gender:        trimmed(in.Gender),
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("service/user: updating %s: %w", user.ID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))
	return nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/user: fetching %s: %w", id, err)
	}
	return user, nil
}

// Metrics runs the calorie calculator on the stored profile. A non-empty
// genderOverride replaces the stored gender for this calculation only.
func (s *UserService) Metrics(ctx context.Context, id, genderOverride string) (nutrition.Result, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nutrition.Result{}, err
	}

	gender := user.Gender
	if g := strings.TrimSpace(genderOverride); g != "" {
		gender = &g
	}

	return nutrition.Calculate(nutrition.Input{
		CurrentWeight: user.CurrentWeight,
		GoalWeight:    user.GoalWeight,
		Height:        user.Height,
		Age:           user.Age,
		ActivityLevel: user.ActivityLevel,
		Gender:        gender,
	}), nil
}

// trimmed returns nil for a nil or blank string.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
