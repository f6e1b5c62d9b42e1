package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

const dateLayout = "2006-01-02"

type FoodService struct {
	food   repository.FoodRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewFoodService(food repository.FoodRepository, logger *slog.Logger) *FoodService {
	return &FoodService{food: food, logger: logger, now: time.Now}
}

// FoodInput describes one food entry as the client sends it. Date defaults
// to today.
type FoodInput struct {
	MealType  string  `json:"meal_type"`
	Name      string  `json:"name"`
	Calories  float64 `json:"calories"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Protein   float64 `json:"protein"`
	Sodium    float64 `json:"sodium"`
	Sugar     float64 `json:"sugar"`
	FoodID    string  `json:"food_id"`
	Date      string  `json:"date"`
	SavedMeal bool    `json:"saved_meal"`
}

// toModel validates in and builds the rows LogFood/AddFoodToPlan write.
func (in FoodInput) toModel(userID string, now time.Time) (*model.DailyFoodItem, *model.Meal, error) {
	mt, ok := model.ParseMealType(in.MealType)
	if !ok {
		return nil, nil, apperror.ValidationFailed("meal_type",
			"meal_type must be one of breakfast, lunch, dinner, snack")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, apperror.ValidationFailed("name", "name is required")
	}

	nutrients := []struct {
		field string
		v     float64
	}{
		{"calories", in.Calories},
		{"carbs", in.Carbs},
		{"fat", in.Fat},
		{"protein", in.Protein},
		{"sodium", in.Sodium},
		{"sugar", in.Sugar},
	}
	for _, n := range nutrients {
		if n.v < 0 {
			return nil, nil, apperror.ValidationFailed(n.field, n.field+" must not be negative")
		}
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = now.Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, nil, apperror.ValidationFailed("date", "date must be YYYY-MM-DD")
	}

	item := &model.DailyFoodItem{
		UserID:   userID,
		MealType: mt,
		Name:     name,
		Calories: in.Calories,
		Carbs:    in.Carbs,
		Fat:      in.Fat,
		Protein:  in.Protein,
		Sodium:   in.Sodium,
		Sugar:    in.Sugar,
		FoodID:   strings.TrimSpace(in.FoodID),
	}
	meal := &model.Meal{Date: date, SavedMeal: in.SavedMeal}
	return item, meal, nil
}

// Log records a food item for userID together with its meal.
func (s *FoodService) Log(ctx context.Context, userID string, in FoodInput) (*model.DailyFoodItem, error) {
	item, meal, err := in.toModel(userID, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.food.LogFood(ctx, item, meal); err != nil {
		return nil, fmt.Errorf("service/food: logging %q: %w", item.Name, err)
	}

	s.logger.Info("food logged",
		slog.String("userID", userID),
		slog.Int64("foodID", item.ID),
		slog.Int64("mealID", meal.ID),
	)
	return item, nil
}

// ListAll returns every logged item across all users. An empty log is
// NotFound.
func (s *FoodService) ListAll(ctx context.Context) ([]model.DailyFoodItem, error) {
	items, err := s.food.ListFood(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/food: listing: %w", err)
	}
	if len(items) == 0 {
		return nil, apperror.NotFoundMsg("No food items found")
	}
	return items, nil
}

// ListForUser returns userID's items for date (default today). An empty
// day is an empty list.
func (s *FoodService) ListForUser(ctx context.Context, userID, date string) ([]model.DailyFoodItem, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, apperror.ValidationFailed("date", "date must be YYYY-MM-DD")
	}

	items, err := s.food.ListFoodForUser(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("service/food: listing for %s on %s: %w", userID, date, err)
	}
	return items, nil
}

// MealItems returns the food items of one meal.
func (s *FoodService) MealItems(ctx context.Context, rawMealID string) ([]model.DailyFoodItem, error) {
	mealID, err := parseID("meal id", rawMealID)
	if err != nil {
		return nil, err
	}

	items, err := s.food.ListMealFood(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("service/food: listing meal %d: %w", mealID, err)
	}
	if len(items) == 0 {
		return nil, apperror.NotFound("meal", rawMealID)
	}
	return items, nil
}

// parseID accepts positive base-10 integers only.
func parseID(what, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", fmt.Sprintf("invalid %s %q", what, raw))
	}
	return id, nil
}
