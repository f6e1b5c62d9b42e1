package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

var _ repository.MealPlanRepository = (*DB)(nil)

// CreateMealPlan inserts a plan owned by plan.UserID.
func (db *DB) CreateMealPlan(ctx context.Context, plan *model.MealPlan) error {
	plan.CreatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO meal_plans (user_id, name, is_private, created_at) VALUES (?, ?, ?, ?)`,
		plan.UserID, plan.Name, plan.IsPrivate, plan.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", plan.UserID)
		}
		return fmt.Errorf("sqlite: inserting meal plan %q: %w", plan.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading meal plan id: %w", err)
	}
	plan.ID = id
	return nil
}

// GetMealPlan returns apperror.ErrNotFound for an unknown id.
func (db *DB) GetMealPlan(ctx context.Context, id int64) (*model.MealPlan, error) {
	var p model.MealPlan
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, is_private, created_at FROM meal_plans WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.IsPrivate, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("meal plan", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting meal plan %d: %w", id, err)
	}
	return &p, nil
}

// ListMealPlans returns public plans and userID's private ones, newest first.
func (db *DB) ListMealPlans(ctx context.Context, userID string) ([]model.MealPlan, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, is_private, created_at
		 FROM meal_plans
		 WHERE is_private = 0 OR user_id = ?
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing meal plans: %w", err)
	}
	defer rows.Close()

	plans := []model.MealPlan{}
	for rows.Next() {
		var p model.MealPlan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.IsPrivate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning meal plan row: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating meal plans: %w", err)
	}
	return plans, nil
}

// AddFoodToPlan records a food item and schedules it on a plan day.
//
// Four INSERTs share one transaction: daily_food, meals, meal_items and
// meal_plan_items. Either the item shows up in the plan, or nothing was
// written at all.
func (db *DB) AddFoodToPlan(ctx context.Context, item *model.DailyFoodItem, meal *model.Meal, planItem *model.MealPlanItem) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertFood(ctx, tx, item); err != nil {
			return err
		}
		if err := insertMeal(ctx, tx, meal); err != nil {
			return err
		}
		if err := linkMealFood(ctx, tx, meal.ID, item.ID); err != nil {
			return err
		}
		planItem.MealID = meal.ID
		return insertPlanItem(ctx, tx, planItem)
	})
}

// AddMealToPlan schedules an existing meal. A missing plan or meal surfaces
// as apperror.ErrNotFound via the foreign-key check.
func (db *DB) AddMealToPlan(ctx context.Context, planItem *model.MealPlanItem) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return insertPlanItem(ctx, tx, planItem)
	})
}

// ListPlanFood runs the aggregator's join:
//
//	daily_food → meal_items → meals → meal_plan_items
//
// Rows come back in plan-item order, then food order, which is the order
// the items were added to the plan.
func (db *DB) ListPlanFood(ctx context.Context, planID int64) ([]model.PlanFoodRow, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+foodColumns+`, mpi.day_of_week
		 FROM daily_food df
		 JOIN meal_items mi       ON mi.food_id = df.id
		 JOIN meals m             ON m.id = mi.meal_id
		 JOIN meal_plan_items mpi ON mpi.meal_id = m.id
		 WHERE mpi.meal_plan_id = ?
		 ORDER BY mpi.id, df.id`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing food for meal plan %d: %w", planID, err)
	}
	defer rows.Close()

	var out []model.PlanFoodRow
	for rows.Next() {
		var day string
		item, err := scanFood(rows, &day)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning meal plan row: %w", err)
		}
		out = append(out, model.PlanFoodRow{DailyFoodItem: *item, Day: day})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating meal plan rows: %w", err)
	}
	return out, nil
}

func insertPlanItem(ctx context.Context, tx *sql.Tx, planItem *model.MealPlanItem) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO meal_plan_items (meal_plan_id, meal_id, day_of_week) VALUES (?, ?, ?)`,
		planItem.MealPlanID, planItem.MealID, string(planItem.Day),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFoundMsg(fmt.Sprintf("meal plan %d or meal %d does not exist",
				planItem.MealPlanID, planItem.MealID))
		}
		return fmt.Errorf("sqlite: inserting meal plan item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading meal plan item id: %w", err)
	}
	planItem.ID = id
	return nil
}
