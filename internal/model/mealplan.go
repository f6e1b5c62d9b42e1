package model

import (
	"strings"
	"time"
)

// Day is a lowercase day-of-week name used as a meal-plan bucket.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Days lists the week in order, starting on Monday.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay accepts any casing ("Wednesday", "WEDNESDAY") and returns the
// canonical lowercase day.
func ParseDay(s string) (Day, bool) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Days {
		if d == known {
			return d, true
		}
	}
	return "", false
}

// MealPlan is a named, optionally private collection of meals spread over
// the week.
type MealPlan struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
}

// MealPlanItem places one meal on one day of a plan.
type MealPlanItem struct {
	ID         int64 `json:"id"`
	MealPlanID int64 `json:"meal_plan_id"`
	MealID     int64 `json:"meal_id"`
	Day        Day   `json:"day_of_week"`
}

// PlanFoodRow is one denormalised row of the plan join: a food item plus
// the day its meal is scheduled on.
type PlanFoodRow struct {
	DailyFoodItem
	Day string
}

// DayPlan holds a day's food items per meal type. The slices are never nil
// so every bucket serialises as a JSON array.
type DayPlan struct {
	Breakfast []DailyFoodItem `json:"breakfast"`
	Lunch     []DailyFoodItem `json:"lunch"`
	Dinner    []DailyFoodItem `json:"dinner"`
	Snack     []DailyFoodItem `json:"snack"`
}

// NewDayPlan returns a DayPlan with four empty buckets.
func NewDayPlan() DayPlan {
	return DayPlan{
		Breakfast: []DailyFoodItem{},
		Lunch:     []DailyFoodItem{},
		Dinner:    []DailyFoodItem{},
		Snack:     []DailyFoodItem{},
	}
}

// Add appends item to the bucket for mt. It returns false for an unknown
// meal type and leaves the plan unchanged.
func (d *DayPlan) Add(mt MealType, item DailyFoodItem) bool {
	switch mt {
	case Breakfast:
		d.Breakfast = append(d.Breakfast, item)
	case Lunch:
		d.Lunch = append(d.Lunch, item)
	case Dinner:
		d.Dinner = append(d.Dinner, item)
	case Snack:
		d.Snack = append(d.Snack, item)
	default:
		return false
	}
	return true
}

// Items returns the bucket for mt.
func (d DayPlan) Items(mt MealType) []DailyFoodItem {
	switch mt {
	case Breakfast:
		return d.Breakfast
	case Lunch:
		return d.Lunch
	case Dinner:
		return d.Dinner
	case Snack:
		return d.Snack
	}
	return nil
}

// WeekPlan is the aggregated view of a meal plan: day → meal type → items.
type WeekPlan map[Day]DayPlan

// NewWeekPlan returns a WeekPlan with all seven days and empty buckets.
func NewWeekPlan() WeekPlan {
	w := make(WeekPlan, len(Days))
	for _, d := range Days {
		w[d] = NewDayPlan()
	}
	return w
}
