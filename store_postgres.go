package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgStore implements store on PostgreSQL via a pgx pool.
type pgStore struct {
	db *pgxpool.Pool
}

// newPGStore creates a connection pool. We use a pool (not a single conn)
// because Neon closes idle connections after ~5 minutes.
func newPGStore(ctx context.Context, url string) (*pgStore, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &pgStore{db: pool}, nil
}

func (s *pgStore) close() { s.db.Close() }

/* ─── Query helpers ──────────────────────────────────────────────────── */

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// No rows maps to errNotFound; other query and scan errors are logged for
// debugging (e.g. struct/column mismatches).
func queryOne[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) (T, error) {
	var zero T
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, errNotFound
	}
	if err != nil {
		log.Printf("[queryOne] Scan error: %v", err)
		return zero, mapPGError(err)
	}
	return result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// mapPGError turns a unique violation into errDuplicate.
func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errDuplicate
	}
	return err
}

// execAffecting runs a statement that must touch at least one row.
func (s *pgStore) execAffecting(ctx context.Context, sql string, args pgx.NamedArgs) error {
	result, err := s.db.Exec(ctx, sql, args)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

/* ─── Users ──────────────────────────────────────────────────────────── */

func (s *pgStore) createUser(ctx context.Context, u user, name string) (user, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return user{}, err
	}
	defer tx.Rollback(ctx)

	created, err := queryOne[user](ctx, tx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (@username, @email, @password, @authToken)
		 RETURNING *`,
		pgx.NamedArgs{"username": u.Username, "email": u.Email, "password": u.Password, "authToken": u.AuthToken})
	if err != nil {
		return user{}, err
	}
	if _, err := queryOne[profile](ctx, tx, insertProfileSQL,
		profileArgs(newProfile(created.ID, name, created.Email))); err != nil {
		return user{}, fmt.Errorf("create profile: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return user{}, err
	}
	return created, nil
}

func (s *pgStore) userByUsername(ctx context.Context, username string) (user, error) {
	return queryOne[user](ctx, s.db,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
}

func (s *pgStore) userIDByToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errNotFound
	}
	return userID, err
}

/* ─── Profiles ───────────────────────────────────────────────────────── */

// profileColumns lists every writable profile column; the insert and update
// statements and their named args are both derived from it.
var profileColumns = []string{
	"name", "email", "unit_system", "age", "gender", "weight", "height", "target_weight",
	"goal_type", "pace_preference", "body_type", "job_type", "daily_sitting_hours",
	"training_type", "training_frequency", "health_conditions", "diet_history",
	"sleep_duration", "adherence_probability",
	"tdee", "daily_calorie_target", "protein_target_g", "carbs_target_g", "fat_target_g",
	"theme", "start_date", "setup_complete",
	"is_pro", "subscription_tier", "subscription_status", "stripe_customer_id",
	"stripe_subscription_id", "current_period_end", "daily_scan_limit",
	"scans_remaining_today", "scans_reset_date", "lifetime_logs",
}

var insertProfileSQL = func() string {
	params := make([]string, len(profileColumns))
	for i, col := range profileColumns {
		params[i] = "@" + col
	}
	return fmt.Sprintf(`INSERT INTO profiles (user_id, %s)
		 VALUES (@user_id, %s)
		 RETURNING *`, strings.Join(profileColumns, ", "), strings.Join(params, ", "))
}()

var updateProfileSQL = func() string {
	sets := make([]string, len(profileColumns))
	for i, col := range profileColumns {
		sets[i] = col + " = @" + col
	}
	return fmt.Sprintf(`UPDATE profiles SET %s, updated_at = NOW()
		 WHERE user_id = @user_id
		 RETURNING *`, strings.Join(sets, ", "))
}()

// profileArgs converts named string types to plain strings so the simple
// protocol encodes them as text.
func profileArgs(p profile) pgx.NamedArgs {
	conditions := p.HealthConditions
	if conditions == nil {
		conditions = []string{}
	}
	return pgx.NamedArgs{
		"user_id":                p.UserID,
		"name":                   p.Name,
		"email":                  p.Email,
		"unit_system":            string(p.UnitSystem),
		"age":                    p.Age,
		"gender":                 string(p.Gender),
		"weight":                 p.Weight,
		"height":                 p.Height,
		"target_weight":          p.TargetWeight,
		"goal_type":              string(p.GoalType),
		"pace_preference":        string(p.PacePreference),
		"body_type":              string(p.BodyType),
		"job_type":               string(p.JobType),
		"daily_sitting_hours":    p.DailySittingHours,
		"training_type":          string(p.TrainingType),
		"training_frequency":     p.TrainingFrequency,
		"health_conditions":      conditions,
		"diet_history":           string(p.DietHistory),
		"sleep_duration":         string(p.SleepDuration),
		"adherence_probability":  string(p.Adherence),
		"tdee":                   p.TDEE,
		"daily_calorie_target":   p.DailyCalorieTarget,
		"protein_target_g":       p.ProteinTargetG,
		"carbs_target_g":         p.CarbsTargetG,
		"fat_target_g":           p.FatTargetG,
		"theme":                  p.Theme,
		"start_date":             p.StartDate,
		"setup_complete":         p.SetupComplete,
		"is_pro":                 p.IsPro,
		"subscription_tier":      p.SubscriptionTier,
		"subscription_status":    p.SubscriptionStatus,
		"stripe_customer_id":     p.StripeCustomerID,
		"stripe_subscription_id": p.StripeSubscriptionID,
		"current_period_end":     p.CurrentPeriodEnd,
		"daily_scan_limit":       p.DailyScanLimit,
		"scans_remaining_today":  p.ScansRemainingToday,
		"scans_reset_date":       p.ScansResetDate,
		"lifetime_logs":          p.LifetimeLogs,
	}
}

func (s *pgStore) getProfile(ctx context.Context, userID int) (profile, error) {
	return queryOne[profile](ctx, s.db,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

// updateProfile locks the row with SELECT ... FOR UPDATE so a concurrent
// update waits for this one to commit and then sees its result.
func (s *pgStore) updateProfile(ctx context.Context, userID int, fn func(*profile) error) (profile, error) {
	var saved profile
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		p, err := queryOne[profile](ctx, tx,
			"SELECT * FROM profiles WHERE user_id = @userID FOR UPDATE",
			pgx.NamedArgs{"userID": userID})
		if err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
		saved, err = queryOne[profile](ctx, tx, updateProfileSQL, profileArgs(p))
		return err
	})
	if err != nil {
		return profile{}, err
	}
	return saved, nil
}

func (s *pgStore) profileByStripeCustomer(ctx context.Context, customerID string) (profile, error) {
	return queryOne[profile](ctx, s.db,
		"SELECT * FROM profiles WHERE stripe_customer_id = @customerID",
		pgx.NamedArgs{"customerID": customerID})
}

/* ─── Food entries ───────────────────────────────────────────────────── */

func (s *pgStore) listFoodEntries(ctx context.Context, userID int, start, end string) ([]foodEntry, error) {
	entries, err := queryMany[foodEntry](ctx, s.db,
		`SELECT * FROM food_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date, created_at`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if entries == nil {
		entries = []foodEntry{}
	}
	return entries, err
}

func (s *pgStore) createFoodEntry(ctx context.Context, e foodEntry) (foodEntry, error) {
	return queryOne[foodEntry](ctx, s.db,
		`INSERT INTO food_entries
			(user_id, date, meal_type, name, calories, protein, carbs, fat, confidence, details, portion_multiplier)
		 VALUES
			(@userID, @date, @mealType, @name, @calories, @protein, @carbs, @fat, @confidence, @details, @portionMultiplier)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":            e.UserID,
			"date":              e.Date.String(),
			"mealType":          e.MealType,
			"name":              e.Name,
			"calories":          e.Calories,
			"protein":           e.Protein,
			"carbs":             e.Carbs,
			"fat":               e.Fat,
			"confidence":        e.Confidence,
			"details":           e.Details,
			"portionMultiplier": e.PortionMultiplier,
		})
}

// updateFoodEntry uses COALESCE so omitted fields keep their current values.
func (s *pgStore) updateFoodEntry(ctx context.Context, userID, id int, patch foodEntryPatch) (foodEntry, error) {
	return queryOne[foodEntry](ctx, s.db,
		`UPDATE food_entries SET
			date       = COALESCE(@date, date),
			meal_type  = COALESCE(@mealType, meal_type),
			name       = COALESCE(@name, name),
			calories   = COALESCE(@calories, calories),
			protein    = COALESCE(@protein, protein),
			carbs      = COALESCE(@carbs, carbs),
			fat        = COALESCE(@fat, fat),
			updated_at = NOW()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id":       id,
			"userID":   userID,
			"date":     patch.Date,
			"mealType": patch.MealType,
			"name":     patch.Name,
			"calories": patch.Calories,
			"protein":  patch.Protein,
			"carbs":    patch.Carbs,
			"fat":      patch.Fat,
		})
}

func (s *pgStore) deleteFoodEntry(ctx context.Context, userID, id int) error {
	return s.execAffecting(ctx,
		"DELETE FROM food_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

/* ─── Exercise entries ───────────────────────────────────────────────── */

func (s *pgStore) listExerciseEntries(ctx context.Context, userID int, start, end string) ([]exerciseEntry, error) {
	entries, err := queryMany[exerciseEntry](ctx, s.db,
		`SELECT * FROM exercise_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date, created_at`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if entries == nil {
		entries = []exerciseEntry{}
	}
	return entries, err
}

func (s *pgStore) createExerciseEntry(ctx context.Context, e exerciseEntry) (exerciseEntry, error) {
	return queryOne[exerciseEntry](ctx, s.db,
		`INSERT INTO exercise_entries (user_id, date, name, calories_burned, duration, type)
		 VALUES (@userID, @date, @name, @caloriesBurned, @duration, @type)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":         e.UserID,
			"date":           e.Date.String(),
			"name":           e.Name,
			"caloriesBurned": e.CaloriesBurned,
			"duration":       e.Duration,
			"type":           e.Type,
		})
}

func (s *pgStore) deleteExerciseEntry(ctx context.Context, userID, id int) error {
	return s.execAffecting(ctx,
		"DELETE FROM exercise_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

/* ─── Weight log ─────────────────────────────────────────────────────── */

func (s *pgStore) listWeightEntries(ctx context.Context, userID int, start, end string) ([]weightEntry, error) {
	entries, err := queryMany[weightEntry](ctx, s.db,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if entries == nil {
		entries = []weightEntry{}
	}
	return entries, err
}

// upsertWeightEntry relies on the UNIQUE(user_id, date) constraint: posting
// the same date updates in place.
func (s *pgStore) upsertWeightEntry(ctx context.Context, e weightEntry) (weightEntry, error) {
	return queryOne[weightEntry](ctx, s.db,
		`INSERT INTO weight_log (user_id, date, weight)
		 VALUES (@userID, @date, @weight)
		 ON CONFLICT (user_id, date) DO UPDATE SET weight = EXCLUDED.weight
		 RETURNING *`,
		pgx.NamedArgs{"userID": e.UserID, "date": e.Date.String(), "weight": e.Weight})
}

func (s *pgStore) deleteWeightEntry(ctx context.Context, userID, id int) error {
	return s.execAffecting(ctx,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

func (s *pgStore) latestWeightDate(ctx context.Context, userID int) (string, error) {
	return s.dateAggregate(ctx,
		`SELECT TO_CHAR(MAX(date), 'YYYY-MM-DD') FROM weight_log WHERE user_id = @userID`,
		userID)
}

func (s *pgStore) earliestLogDate(ctx context.Context, userID int) (string, error) {
	return s.dateAggregate(ctx,
		`SELECT TO_CHAR(MIN(date), 'YYYY-MM-DD') FROM (
			SELECT date FROM food_entries WHERE user_id = @userID
			UNION ALL
			SELECT date FROM exercise_entries WHERE user_id = @userID
		 ) AS logged`,
		userID)
}

// dateAggregate runs a MIN/MAX date query. The aggregate is NULL when no rows
// match, so it scans into *string.
func (s *pgStore) dateAggregate(ctx context.Context, sql string, userID int) (string, error) {
	var date *string
	if err := s.db.QueryRow(ctx, sql, pgx.NamedArgs{"userID": userID}).Scan(&date); err != nil {
		return "", err
	}
	if date == nil {
		return "", nil
	}
	return *date, nil
}
