package model

import (
	"strings"
	"time"
)

// MealType is the bucket a logged food item belongs to.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists every bucket in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// ParseMealType normalises s (case and surrounding space) and reports
// whether it names one of the four buckets.
func ParseMealType(s string) (MealType, bool) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	switch mt {
	case Breakfast, Lunch, Dinner, Snack:
		return mt, true
	}
	return "", false
}

// DailyFoodItem is one logged food entry. Rows are immutable once written.
//
// FoodID is the external food database id the entry was picked from; it is
// empty for hand-entered food.
type DailyFoodItem struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	MealType  MealType  `json:"meal_type"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	Protein   float64   `json:"protein"`
	Sodium    float64   `json:"sodium"`
	Sugar     float64   `json:"sugar"`
	FoodID    string    `json:"food_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Meal groups food items eaten on a date. SavedMeal marks meals the user
// kept for reuse.
type Meal struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"` // YYYY-MM-DD
	SavedMeal bool   `json:"saved_meal"`
}
