// Package nutrition estimates calorie needs from a user's body metrics.
//
// Everything here is a pure function. Weights and height are used in
// whatever unit the caller stores them in; the formulas below are the
// Mifflin–St Jeor equations, which expect kilograms and centimetres.
package nutrition

import "strings"

const (
	// DailyDeficit is subtracted from TDEE to get the daily intake target.
	// It is applied whether the goal weight is below or above the current one.
	DailyDeficit = 500.0

	// KcalPerKg is the energy content of one kilogram of body fat.
	KcalPerKg = 7700.0

	sedentaryMultiplier = 1.2
)

var activityMultipliers = map[string]float64{
	"sedentary":   sedentaryMultiplier,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very active": 1.9,
}

// BMR returns the basal metabolic rate. gender "male" (any case) adds 5;
// every other value subtracts 161.
func BMR(weight, height, age float64, gender string) float64 {
	base := 10*weight + 6.25*height - 5*age
	if strings.EqualFold(strings.TrimSpace(gender), "male") {
		return base + 5
	}
	return base - 161
}

// ActivityMultiplier maps an activity level to its TDEE factor.
// Matching ignores case and treats "very_active" like "very active".
// Unknown levels fall back to sedentary.
func ActivityMultiplier(level string) float64 {
	key := strings.ToLower(strings.TrimSpace(level))
	key = strings.ReplaceAll(key, "_", " ")
	if m, ok := activityMultipliers[key]; ok {
		return m
	}
	return sedentaryMultiplier
}

// TDEE is total daily energy expenditure.
func TDEE(bmr float64, activityLevel string) float64 {
	return bmr * ActivityMultiplier(activityLevel)
}

func DailyIntake(tdee float64) float64 {
	return tdee - DailyDeficit
}

// DaysToGoal is negative when the goal weight is above the current weight.
func DaysToGoal(currentWeight, goalWeight float64) float64 {
	return (currentWeight - goalWeight) * KcalPerKg / DailyDeficit
}

// Input is a user's profile as stored: any field may be unset.
type Input struct {
	CurrentWeight *float64
	GoalWeight    *float64
	Height        *float64
	Age           *int
	ActivityLevel *string
	Gender        *string
}

// Result holds all four metrics or none of them.
type Result struct {
	BMR         *float64 `json:"bmr"`
	TDEE        *float64 `json:"tdee"`
	DailyIntake *float64 `json:"dailyIntake"`
	DaysToGoal  *float64 `json:"daysToGoal"`
}

// Calculate returns an all-nil Result unless current weight, goal weight,
// height, age and gender are all set. A missing activity level counts as
// sedentary.
func Calculate(in Input) Result {
	if in.CurrentWeight == nil || in.GoalWeight == nil || in.Height == nil ||
		in.Age == nil || in.Gender == nil || strings.TrimSpace(*in.Gender) == "" {
		return Result{}
	}

	level := ""
	if in.ActivityLevel != nil {
		level = *in.ActivityLevel
	}

	bmr := BMR(*in.CurrentWeight, *in.Height, float64(*in.Age), *in.Gender)
	tdee := TDEE(bmr, level)
	intake := DailyIntake(tdee)
	days := DaysToGoal(*in.CurrentWeight, *in.GoalWeight)

	return Result{BMR: &bmr, TDEE: &tdee, DailyIntake: &intake, DaysToGoal: &days}
}
