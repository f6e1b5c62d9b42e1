// Package repository declares the storage interfaces the service layer
// depends on. internal/repository/sqlite provides the implementation; tests
// substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/nutrition-tracker/internal/model"
)

type UserRepository interface {
	// CreateUser assigns user.ID and timestamps. Returns apperror.ErrConflict
	// when the email is already registered.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUser overwrites the profile fields. Returns apperror.ErrNotFound
	// when no row has user.ID.
	UpdateUser(ctx context.Context, user *model.User) error
}

type FoodRepository interface {
	// LogFood writes the food item, its meal and the join row atomically.
	LogFood(ctx context.Context, item *model.DailyFoodItem, meal *model.Meal) error
	ListFood(ctx context.Context) ([]model.DailyFoodItem, error)
	ListFoodForUser(ctx context.Context, userID, date string) ([]model.DailyFoodItem, error)
	ListMealFood(ctx context.Context, mealID int64) ([]model.DailyFoodItem, error)
}

type MealPlanRepository interface {
	CreateMealPlan(ctx context.Context, plan *model.MealPlan) error
	GetMealPlan(ctx context.Context, id int64) (*model.MealPlan, error)
	// ListMealPlans returns public plans plus the private plans of userID
	// (which may be empty for anonymous callers).
	ListMealPlans(ctx context.Context, userID string) ([]model.MealPlan, error)
	// AddFoodToPlan writes food item, meal, meal↔food join and plan item in
	// one transaction.
	AddFoodToPlan(ctx context.Context, item *model.DailyFoodItem, meal *model.Meal, planItem *model.MealPlanItem) error
	AddMealToPlan(ctx context.Context, planItem *model.MealPlanItem) error
	// ListPlanFood returns the food rows of a plan in source order.
	ListPlanFood(ctx context.Context, planID int64) ([]model.PlanFoodRow, error)
}
