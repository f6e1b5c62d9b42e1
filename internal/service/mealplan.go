// Package service holds the use cases behind the HTTP API.
//
//	Handler (HTTP) → Service (rules, validation) → Repository (SQL)
//
// Services take repository interfaces, never *sqlite.DB, so tests run them
// against in-memory fakes. They return apperror values; mapping those to
// status codes is the handler's job.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

const MaxMealPlanNameLength = 100

type MealPlanService struct {
	plans  repository.MealPlanRepository
	logger *slog.Logger
	food   *FoodService
}

func NewMealPlanService(plans repository.MealPlanRepository, food *FoodService, logger *slog.Logger) *MealPlanService {
	return &MealPlanService{plans: plans, food: food, logger: logger}
}

// Aggregate returns the plan as day → meal type → food items.
//
// Every day of the week is present and every bucket is a non-nil slice.
// Within a bucket, items keep the order the join returned them in. A plan
// with no food rows (including an id that does not exist) is NotFound.
func (s *MealPlanService) Aggregate(ctx context.Context, rawID string) (model.WeekPlan, error) {
	planID, err := parseID("meal plan id", rawID)
	if err != nil {
		return nil, err
	}

	rows, err := s.plans.ListPlanFood(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("service/mealplan: loading plan %d: %w", planID, err)
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("meal plan", rawID)
	}

	week := model.NewWeekPlan()
	for _, row := range rows {
		day, ok := model.ParseDay(row.Day)
		if !ok {
			s.logger.Warn("skipping meal plan row with unknown day",
				slog.Int64("planID", planID),
				slog.Int64("foodID", row.ID),
				slog.String("day", row.Day),
			)
			continue
		}

		bucket := week[day]
		if !bucket.Add(row.MealType, row.DailyFoodItem) {
			s.logger.Warn("skipping meal plan row with unknown meal type",
				slog.Int64("planID", planID),
				slog.Int64("foodID", row.ID),
				slog.String("mealType", string(row.MealType)),
			)
			continue
		}
		week[day] = bucket
	}

	return week, nil
}

type CreateMealPlanInput struct {
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
}

// Create makes a new plan owned by userID. Names need not be unique.
func (s *MealPlanService) Create(ctx context.Context, userID string, in CreateMealPlanInput) (*model.MealPlan, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if len(name) > MaxMealPlanNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or fewer", MaxMealPlanNameLength))
	}

	plan := &model.MealPlan{UserID: userID, Name: name, IsPrivate: in.IsPrivate}
	if err := s.plans.CreateMealPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("service/mealplan: creating %q: %w", name, err)
	}

	s.logger.Info("meal plan created",
		slog.String("userID", userID),
		slog.Int64("planID", plan.ID),
	)
	return plan, nil
}

// List returns public plans plus userID's private ones. userID may be empty.
func (s *MealPlanService) List(ctx context.Context, userID string) ([]model.MealPlan, error) {
	plans, err := s.plans.ListMealPlans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/mealplan: listing: %w", err)
	}
	return plans, nil
}

type AddFoodToPlanInput struct {
	Day string `json:"day"`
	FoodInput
}

// AddFood records a new food item and schedules it on day of the plan.
// Only the plan's owner may add to it.
func (s *MealPlanService) AddFood(ctx context.Context, userID, rawPlanID string, in AddFoodToPlanInput) (*model.MealPlanItem, error) {
	plan, day, err := s.ownedPlan(ctx, userID, rawPlanID, in.Day)
	if err != nil {
		return nil, err
	}

	item, meal, err := in.FoodInput.toModel(userID, s.food.now())
	if err != nil {
		return nil, err
	}

	planItem := &model.MealPlanItem{MealPlanID: plan.ID, Day: day}
	if err := s.plans.AddFoodToPlan(ctx, item, meal, planItem); err != nil {
		return nil, fmt.Errorf("service/mealplan: adding food to plan %d: %w", plan.ID, err)
	}

	s.logger.Info("food added to meal plan",
		slog.Int64("planID", plan.ID),
		slog.Int64("foodID", item.ID),
		slog.String("day", string(day)),
	)
	return planItem, nil
}

type AddMealToPlanInput struct {
	MealID int64  `json:"meal_id"`
	Day    string `json:"day"`
}

// AddMeal schedules an existing meal on day of the plan.
func (s *MealPlanService) AddMeal(ctx context.Context, userID, rawPlanID string, in AddMealToPlanInput) (*model.MealPlanItem, error) {
	plan, day, err := s.ownedPlan(ctx, userID, rawPlanID, in.Day)
	if err != nil {
		return nil, err
	}
	if in.MealID <= 0 {
		return nil, apperror.ValidationFailed("meal_id", "meal_id is required")
	}

	planItem := &model.MealPlanItem{MealPlanID: plan.ID, MealID: in.MealID, Day: day}
	if err := s.plans.AddMealToPlan(ctx, planItem); err != nil {
		return nil, fmt.Errorf("service/mealplan: adding meal %d to plan %d: %w", in.MealID, plan.ID, err)
	}
	return planItem, nil
}

// ownedPlan parses the plan id and day, loads the plan and checks that
// userID owns it.
func (s *MealPlanService) ownedPlan(ctx context.Context, userID, rawPlanID, rawDay string) (*model.MealPlan, model.Day, error) {
	planID, err := parseID("meal plan id", rawPlanID)
	if err != nil {
		return nil, "", err
	}
	day, ok := model.ParseDay(rawDay)
	if !ok {
		return nil, "", apperror.ValidationFailed("day", "day must be a day of the week")
	}

	plan, err := s.plans.GetMealPlan(ctx, planID)
	if err != nil {
		return nil, "", fmt.Errorf("service/mealplan: loading plan %d: %w", planID, err)
	}
	if plan.UserID != userID {
		return nil, "", apperror.Forbidden("You do not own this meal plan")
	}
	return plan, day, nil
}
