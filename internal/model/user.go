// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account together with the body metrics the
// calorie calculator works from.
//
// Every metric is optional. nil serialises as JSON null and is stored as
// SQL NULL.
//
// Password holds the bcrypt hash and is never serialised.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Password      string    `json:"-"`
	CurrentWeight *float64  `json:"current_weight"`
	GoalWeight    *float64  `json:"goal_weight"`
	Height        *float64  `json:"height"`
	Age           *int      `json:"age"`
	ActivityLevel *string   `json:"activity_level"`
	Gender        *string   `json:"gender"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
