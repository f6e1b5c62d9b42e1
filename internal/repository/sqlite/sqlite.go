// Package sqlite implements the repository interfaces on top of SQLite,
// using the pure Go modernc.org/sqlite driver (registered as "sqlite").
//
// Every query in this package is parameterised with ? placeholders.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces (UserRepository, FoodRepository, MealPlanRepository).
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, applies connection pragmas and runs the
// schema migrations.
//
// dbPath examples:
//   - "data/nutrition.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	// PRAGMAs executed with conn.Exec only affect the connection that ran
	// them. For file databases the pool opens more connections later, so
	// foreign_keys is also requested in the DSN, which modernc applies to
	// every new connection.
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=foreign_keys(1)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" gets its OWN empty database. Pinning the
	// pool to one connection keeps every query on the same schema.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The meal tables rely on
	// them for referential integrity, so they must be on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// withTx runs fn inside a transaction: BEGIN, then COMMIT if fn returns nil,
// ROLLBACK otherwise (including when fn panics).
//
// SCOPED TRANSACTIONS:
// Logging a food item is three INSERTs (daily_food, meals, meal_items) and
// adding it to a plan is four. They must land together or not at all, so
// each write method hands its statements to withTx:
//
//	return db.withTx(ctx, func(tx *sql.Tx) error {
//	    if err := insertFood(ctx, tx, item); err != nil {
//	        return err // rolled back
//	    }
//	    return insertMeal(ctx, tx, meal)
//	})
//
// The named return err lets the deferred function see fn's error and
// decide between ROLLBACK and leaving the COMMIT in place.
//
// Inside fn, use ONLY tx. Touching db.conn needs a second connection, which
// deadlocks when the pool is pinned to one (the ":memory:" case).
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// constraintCode returns the extended SQLite result code of err when it is
// a driver error, or 0.
func constraintCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func isForeignKeyViolation(err error) bool {
	return constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

// migrate creates the schema.
//
// CREATE TABLE IF NOT EXISTS makes this idempotent, so it runs on every start.
// The CHECK constraints enforce the meal-type and day-of-week vocabularies
// at write time; the aggregator can then trust what it reads.
func (db *DB) migrate() error {
	steps := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id             TEXT PRIMARY KEY,
				email          TEXT NOT NULL UNIQUE,
				username       TEXT NOT NULL,
				password       TEXT NOT NULL,
				current_weight REAL,
				goal_weight    REAL,
				height         REAL,
				age            INTEGER,
				activity_level TEXT,
				created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		{"daily_food", `
			CREATE TABLE IF NOT EXISTS daily_food (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				meal_type  TEXT NOT NULL CHECK (meal_type IN ('breakfast','lunch','dinner','snack')),
				name       TEXT NOT NULL,
				calories   REAL NOT NULL DEFAULT 0,
				carbs      REAL NOT NULL DEFAULT 0,
				fat        REAL NOT NULL DEFAULT 0,
				protein    REAL NOT NULL DEFAULT 0,
				sodium     REAL NOT NULL DEFAULT 0,
				sugar      REAL NOT NULL DEFAULT 0,
				food_id    TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_daily_food_user_id ON daily_food(user_id);`},
		{"meals", `
			CREATE TABLE IF NOT EXISTS meals (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				date       TEXT NOT NULL,
				saved_meal INTEGER NOT NULL DEFAULT 0
			);`},
		{"meal_items", `
			CREATE TABLE IF NOT EXISTS meal_items (
				meal_id INTEGER NOT NULL REFERENCES meals(id) ON DELETE CASCADE,
				food_id INTEGER NOT NULL REFERENCES daily_food(id) ON DELETE CASCADE,
				PRIMARY KEY (meal_id, food_id)
			);
			CREATE INDEX IF NOT EXISTS idx_meal_items_food_id ON meal_items(food_id);`},
		{"meal_plans", `
			CREATE TABLE IF NOT EXISTS meal_plans (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				name       TEXT NOT NULL,
				is_private INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		{"meal_plan_items", `
			CREATE TABLE IF NOT EXISTS meal_plan_items (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				meal_plan_id INTEGER NOT NULL REFERENCES meal_plans(id) ON DELETE CASCADE,
				meal_id      INTEGER NOT NULL REFERENCES meals(id) ON DELETE CASCADE,
				day_of_week  TEXT NOT NULL CHECK (day_of_week IN
					('monday','tuesday','wednesday','thursday','friday','saturday','sunday'))
			);
			CREATE INDEX IF NOT EXISTS idx_meal_plan_items_plan ON meal_plan_items(meal_plan_id);`},
	}

	for _, step := range steps {
		if _, err := db.conn.Exec(step.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", step.name, err)
		}
	}

	// gender arrived after the first release; add it to older databases.
	if err := db.addColumnIfNotExists("users", "gender", "TEXT"); err != nil {
		return fmt.Errorf("adding gender to users: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// ALTER TABLE has no IF NOT EXISTS, so the column list is checked first.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
