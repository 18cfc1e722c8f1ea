package main

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/calgemini-api/internal/metabolic"
)

const dateLayout = "2006-01-02"

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

// Value stores the date as "YYYY-MM-DD" text. The local sqlite store keeps
// dates as text so range filters compare lexically.
func (d DateOnly) Value() (driver.Value, error) {
	return d.Time.Format(dateLayout), nil
}

// Scan accepts the shapes the sqlite driver hands back.
func (d *DateOnly) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	}
	return fmt.Errorf("DateOnly: cannot scan %T", src)
}

func (d *DateOnly) parse(s string) error {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// GormDataType keeps gorm from guessing a struct column type.
func (DateOnly) GormDataType() string { return "text" }

func (d DateOnly) String() string { return d.Time.Format(dateLayout) }

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id" gorm:"primaryKey"`
	Username  string     `json:"username" db:"username" gorm:"uniqueIndex"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token" gorm:"uniqueIndex"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

func (user) TableName() string { return "users" }

// themeConfig is the UI palette. Stored as a JSON document.
type themeConfig struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Style      string `json:"style"`
}

// Value encodes the theme for the jsonb column.
func (t themeConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

var defaultTheme = themeConfig{
	Primary:    "#10b981",
	Secondary:  "#0f172a",
	Accent:     "#f59e0b",
	Background: "#f8fafc",
	Style:      "minimalism",
}

// profile maps to the profiles table: one row per user. Biometric and
// lifestyle fields feed metabolic.CalculateTargets; the computed targets are
// persisted alongside them and refreshed on every write.
type profile struct {
	UserID int    `json:"user_id" db:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Name   string `json:"name"    db:"name"`
	Email  string `json:"email"   db:"email"`

	UnitSystem        metabolic.UnitSystem    `json:"unit_system"           db:"unit_system"`
	Age               float64                 `json:"age"                   db:"age"`
	Gender            metabolic.Gender        `json:"gender"                db:"gender"`
	Weight            float64                 `json:"weight"                db:"weight"`
	Height            float64                 `json:"height"                db:"height"`
	TargetWeight      float64                 `json:"target_weight"         db:"target_weight"`
	GoalType          metabolic.GoalType      `json:"goal_type"             db:"goal_type"`
	PacePreference    metabolic.Pace          `json:"pace_preference"       db:"pace_preference"`
	BodyType          metabolic.BodyType      `json:"body_type"             db:"body_type"`
	JobType           metabolic.JobType       `json:"job_type"              db:"job_type"`
	DailySittingHours float64                 `json:"daily_sitting_hours"   db:"daily_sitting_hours"`
	TrainingType      metabolic.TrainingType  `json:"training_type"         db:"training_type"`
	TrainingFrequency float64                 `json:"training_frequency"    db:"training_frequency"`
	HealthConditions  []string                `json:"health_conditions"     db:"health_conditions" gorm:"serializer:json;type:text"`
	DietHistory       metabolic.DietHistory   `json:"diet_history"          db:"diet_history"`
	SleepDuration     metabolic.SleepDuration `json:"sleep_duration"        db:"sleep_duration"`
	Adherence         metabolic.Adherence     `json:"adherence_probability" db:"adherence_probability"`

	// Computed by metabolic.CalculateTargets.
	TDEE               int `json:"tdee"                 db:"tdee"`
	DailyCalorieTarget int `json:"daily_calorie_target" db:"daily_calorie_target"`
	ProteinTargetG     int `json:"protein_target_g"     db:"protein_target_g"`
	CarbsTargetG       int `json:"carbs_target_g"       db:"carbs_target_g"`
	FatTargetG         int `json:"fat_target_g"         db:"fat_target_g"`

	Theme         themeConfig `json:"theme"          db:"theme" gorm:"serializer:json;type:text"`
	StartDate     string      `json:"start_date"     db:"start_date"`
	SetupComplete bool        `json:"setup_complete" db:"setup_complete"`

	// Subscription state, written by the billing webhook.
	IsPro                bool       `json:"is_pro"                 db:"is_pro"`
	SubscriptionTier     string     `json:"subscription_tier"      db:"subscription_tier"`
	SubscriptionStatus   string     `json:"subscription_status"    db:"subscription_status"`
	StripeCustomerID     *string    `json:"-"                      db:"stripe_customer_id"`
	StripeSubscriptionID *string    `json:"-"                      db:"stripe_subscription_id"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end"     db:"current_period_end"`
	DailyScanLimit       int        `json:"daily_scan_limit"       db:"daily_scan_limit"`
	ScansRemainingToday  int        `json:"scans_remaining_today"  db:"scans_remaining_today"`
	ScansResetDate       string     `json:"-"                      db:"scans_reset_date"`
	LifetimeLogs         int        `json:"lifetime_logs"          db:"lifetime_logs"`

	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

func (profile) TableName() string { return "profiles" }

// newProfile is the row created alongside a new user.
func newProfile(userID int, name, email string) profile {
	return profile{
		UserID:              userID,
		Name:                name,
		Email:               email,
		UnitSystem:          metabolic.Metric,
		HealthConditions:    []string{},
		Theme:               defaultTheme,
		SubscriptionTier:    "free",
		SubscriptionStatus:  "none",
		DailyScanLimit:      freeScanLimit,
		ScansRemainingToday: freeScanLimit,
	}
}

// foodEntry maps to food_entries. Calories and macros are stored already
// scaled by PortionMultiplier.
type foodEntry struct {
	ID                int        `json:"id"                 db:"id" gorm:"primaryKey"`
	UserID            int        `json:"user_id"            db:"user_id" gorm:"index"`
	Date              DateOnly   `json:"date"               db:"date" gorm:"index"`
	MealType          string     `json:"meal_type"          db:"meal_type"`
	Name              string     `json:"name"               db:"name"`
	Calories          int        `json:"calories"           db:"calories"`
	Protein           float64    `json:"protein"            db:"protein"`
	Carbs             float64    `json:"carbs"              db:"carbs"`
	Fat               float64    `json:"fat"                db:"fat"`
	Confidence        string     `json:"confidence"         db:"confidence"`
	Details           string     `json:"details"            db:"details"`
	PortionMultiplier float64    `json:"portion_multiplier" db:"portion_multiplier"`
	CreatedAt         *time.Time `json:"created_at"         db:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"         db:"updated_at"`
}

func (foodEntry) TableName() string { return "food_entries" }

// exerciseEntry maps to exercise_entries. CaloriesBurned is positive; it is
// subtracted from food calories in summaries.
type exerciseEntry struct {
	ID             int        `json:"id"              db:"id" gorm:"primaryKey"`
	UserID         int        `json:"user_id"         db:"user_id" gorm:"index"`
	Date           DateOnly   `json:"date"            db:"date" gorm:"index"`
	Name           string     `json:"name"            db:"name"`
	CaloriesBurned int        `json:"calories_burned" db:"calories_burned"`
	Duration       int        `json:"duration"        db:"duration"`
	Type           string     `json:"type"            db:"type"`
	CreatedAt      *time.Time `json:"created_at"      db:"created_at"`
}

func (exerciseEntry) TableName() string { return "exercise_entries" }

// weightEntry maps to weight_log. Weight is in the profile's unit system.
// One entry per (user, date).
type weightEntry struct {
	ID        int        `json:"id"         db:"id" gorm:"primaryKey"`
	UserID    int        `json:"user_id"    db:"user_id" gorm:"uniqueIndex:idx_weight_user_date"`
	Date      DateOnly   `json:"date"       db:"date" gorm:"uniqueIndex:idx_weight_user_date"`
	Weight    float64    `json:"weight"     db:"weight"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

func (weightEntry) TableName() string { return "weight_log" }

/* ─── Responses ──────────────────────────────────────────────────────── */

// profileResponse is returned by every profile read/write: the stored
// profile plus the forecast derived from it. Timeline is null for
// maintenance goals.
type profileResponse struct {
	Profile  profile             `json:"profile"`
	Timeline *metabolic.Timeline `json:"timeline"`
}

// daySummary is one day's totals, the shape of GET /api/log/daily and each
// element of the history response.
type daySummary struct {
	Date          string  `json:"date"`
	CalorieTarget int     `json:"calorie_target"`
	Calories      int     `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbs         float64 `json:"carbs"`
	Fat           float64 `json:"fat"`
	Burned        int     `json:"burned"`
	NetCalories   int     `json:"net_calories"`
	CaloriesLeft  int     `json:"calories_left"`
	IsLocked      bool    `json:"is_locked"`
}

// dailyLog is the response for GET /api/log/daily.
type dailyLog struct {
	daySummary
	MacroTargets metabolic.Macros `json:"macro_targets"`
	Food         []foodEntry      `json:"food"`
	Exercise     []exerciseEntry  `json:"exercise"`
}

// progressStats summarizes a history range. Averages are over tracked days.
type progressStats struct {
	DaysTracked       int `json:"days_tracked"`
	DaysOnBudget      int `json:"days_on_budget"`
	AvgCalories       int `json:"avg_calories"`
	AvgBurned         int `json:"avg_burned"`
	AvgNetCalories    int `json:"avg_net_calories"`
	TotalCaloriesLeft int `json:"total_calories_left"`
}

// historyResponse is the response for GET /api/log/history.
type historyResponse struct {
	Days  []daySummary  `json:"days"`
	Stats progressStats `json:"stats"`
}

/* ─── Requests ───────────────────────────────────────────────────────── */

// profileRequest is the request body for PUT and PATCH /api/profile.
// All fields are pointers. PUT requires the biometric core; PATCH only
// touches the fields the client sent.
type profileRequest struct {
	Name              *string                  `json:"name"`
	UnitSystem        *metabolic.UnitSystem    `json:"unit_system"`
	Age               *float64                 `json:"age"`
	Gender            *metabolic.Gender        `json:"gender"`
	Weight            *float64                 `json:"weight"`
	Height            *float64                 `json:"height"`
	TargetWeight      *float64                 `json:"target_weight"`
	GoalType          *metabolic.GoalType      `json:"goal_type"`
	PacePreference    *metabolic.Pace          `json:"pace_preference"`
	BodyType          *metabolic.BodyType      `json:"body_type"`
	JobType           *metabolic.JobType       `json:"job_type"`
	DailySittingHours *float64                 `json:"daily_sitting_hours"`
	TrainingType      *metabolic.TrainingType  `json:"training_type"`
	TrainingFrequency *float64                 `json:"training_frequency"`
	HealthConditions  []string                 `json:"health_conditions"`
	DietHistory       *metabolic.DietHistory   `json:"diet_history"`
	SleepDuration     *metabolic.SleepDuration `json:"sleep_duration"`
	Adherence         *metabolic.Adherence     `json:"adherence_probability"`
}

// createFoodEntryRequest is the request body for POST /api/log/food.
// Calories and macros are per single portion; the handler scales them.
type createFoodEntryRequest struct {
	Date              string   `json:"date"`
	MealType          string   `json:"meal_type"`
	Name              string   `json:"name"`
	Calories          float64  `json:"calories"`
	Protein           float64  `json:"protein"`
	Carbs             float64  `json:"carbs"`
	Fat               float64  `json:"fat"`
	Confidence        string   `json:"confidence"`
	Details           string   `json:"details"`
	PortionMultiplier *float64 `json:"portion_multiplier"`
}

// foodEntryPatch is the request body for PUT /api/log/food/:id. Omitted
// fields keep their current value.
type foodEntryPatch struct {
	Date     *string  `json:"date"`
	MealType *string  `json:"meal_type"`
	Name     *string  `json:"name"`
	Calories *int     `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

// createExerciseEntryRequest is the request body for POST /api/log/exercise.
type createExerciseEntryRequest struct {
	Date           string `json:"date"`
	Name           string `json:"name"`
	CaloriesBurned int    `json:"calories_burned"`
	Duration       int    `json:"duration"`
	Type           string `json:"type"`
}
