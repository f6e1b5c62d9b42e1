package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

var _ repository.FoodRepository = (*DB)(nil)

// foodColumns is qualified with the df alias so the same list works in the
// plain listing and in the meal/plan joins.
const foodColumns = `df.id, df.user_id, df.meal_type, df.name, df.calories, df.carbs,
	df.fat, df.protein, df.sodium, df.sugar, df.food_id, df.created_at`

// LogFood stores a food item together with the meal it belongs to.
//
// Three INSERTs (daily_food, meals, meal_items) run in one transaction: if
// the join row fails, the food row is rolled back with it instead of being
// left dangling.
func (db *DB) LogFood(ctx context.Context, item *model.DailyFoodItem, meal *model.Meal) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertFood(ctx, tx, item); err != nil {
			return err
		}
		if err := insertMeal(ctx, tx, meal); err != nil {
			return err
		}
		return linkMealFood(ctx, tx, meal.ID, item.ID)
	})
}

// ListFood returns every logged food item, oldest first.
func (db *DB) ListFood(ctx context.Context) ([]model.DailyFoodItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM daily_food df ORDER BY df.id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing daily food: %w", err)
	}
	return collectFood(rows)
}

// ListFoodForUser returns a user's food items whose meal is dated date.
func (db *DB) ListFoodForUser(ctx context.Context, userID, date string) ([]model.DailyFoodItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+foodColumns+`
		 FROM daily_food df
		 JOIN meal_items mi ON mi.food_id = df.id
		 JOIN meals m       ON m.id = mi.meal_id
		 WHERE df.user_id = ? AND m.date = ?
		 ORDER BY df.id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing daily food for user %s: %w", userID, err)
	}
	return collectFood(rows)
}

// ListMealFood returns the food items joined to one meal.
func (db *DB) ListMealFood(ctx context.Context, mealID int64) ([]model.DailyFoodItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+foodColumns+`
		 FROM daily_food df
		 JOIN meal_items mi ON mi.food_id = df.id
		 WHERE mi.meal_id = ?
		 ORDER BY df.id`,
		mealID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing food for meal %d: %w", mealID, err)
	}
	return collectFood(rows)
}

func insertFood(ctx context.Context, tx *sql.Tx, item *model.DailyFoodItem) error {
	item.CreatedAt = time.Now()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO daily_food (user_id, meal_type, name, calories, carbs, fat,
			protein, sodium, sugar, food_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID,
		string(item.MealType),
		item.Name,
		item.Calories,
		item.Carbs,
		item.Fat,
		item.Protein,
		item.Sodium,
		item.Sugar,
		item.FoodID,
		item.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", item.UserID)
		}
		return fmt.Errorf("sqlite: inserting food %q: %w", item.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading food id: %w", err)
	}
	item.ID = id
	return nil
}

func insertMeal(ctx context.Context, tx *sql.Tx, meal *model.Meal) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO meals (date, saved_meal) VALUES (?, ?)`,
		meal.Date, meal.SavedMeal,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting meal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading meal id: %w", err)
	}
	meal.ID = id
	return nil
}

func linkMealFood(ctx context.Context, tx *sql.Tx, mealID, foodID int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO meal_items (meal_id, food_id) VALUES (?, ?)`,
		mealID, foodID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: linking food %d to meal %d: %w", foodID, mealID, err)
	}
	return nil
}

// collectFood drains rows into a slice and closes them.
func collectFood(rows *sql.Rows) ([]model.DailyFoodItem, error) {
	defer rows.Close()

	items := []model.DailyFoodItem{}
	for rows.Next() {
		item, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning food row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating food rows: %w", err)
	}
	return items, nil
}

func scanFood(s rowScanner, extra ...any) (*model.DailyFoodItem, error) {
	var (
		item     model.DailyFoodItem
		mealType string
	)
	dest := []any{
		&item.ID,
		&item.UserID,
		&mealType,
		&item.Name,
		&item.Calories,
		&item.Carbs,
		&item.Fat,
		&item.Protein,
		&item.Sodium,
		&item.Sugar,
		&item.FoodID,
		&item.CreatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	item.MealType = model.MealType(mealType)
	return &item, nil
}
