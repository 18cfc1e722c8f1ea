package main

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// validMealTypes is the set of allowed food entry meal types.
// Reject unknown values with 400 rather than storing something the client
// cannot group.
var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// maxPortionMultiplier bounds portion scaling on a single entry.
const maxPortionMultiplier = 20

// getDailyLog returns a day's entries and totals against the current target.
// GET /api/log/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailyLog(c *gin.Context) {
	date := c.DefaultQuery("date", h.today())
	if _, ok := parseDate(date); !ok {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	food, err := h.store.listFoodEntries(c, p.UserID, date, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch food entries")
		return
	}
	exercise, err := h.store.listExerciseEntries(c, p.UserID, date, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch exercise entries")
		return
	}

	c.JSON(http.StatusOK, dailyLog{
		daySummary:   summarizeDay(date, p.DailyCalorieTarget, food, exercise),
		MacroTargets: p.macroTargets(),
		Food:         food,
		Exercise:     exercise,
	})
}

// getHistory returns one summary per logged day in [start, end] plus stats.
// GET /api/log/history?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getHistory(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	food, err := h.store.listFoodEntries(c, p.UserID, start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch food entries")
		return
	}
	exercise, err := h.store.listExerciseEntries(c, p.UserID, start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch exercise entries")
		return
	}

	c.JSON(http.StatusOK, summarizeHistory(p.DailyCalorieTarget, food, exercise))
}

// getEarliestLogDate returns the earliest date the user has a food or exercise entry.
// GET /api/log/earliest-date. Used by the client to compute the "All Time" range start.
// Returns { "date": "YYYY-MM-DD" } or { "date": null } if no entries exist.
func (h *Handler) getEarliestLogDate(c *gin.Context) {
	date, err := h.store.earliestLogDate(c, c.GetInt("user_id"))
	if err != nil {
		log.Printf("[getEarliestLogDate] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch earliest date")
		return
	}
	if date == "" {
		c.JSON(http.StatusOK, gin.H{"date": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date})
}

/* ─── Food entries ───────────────────────────────────────────────────── */

// createFoodEntry stores an entry, scaling the per-portion values by
// portion_multiplier (default 1).
// POST /api/log/food. Defaults date to today if omitted.
func (h *Handler) createFoodEntry(c *gin.Context) {
	var body createFoodEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	body.MealType = strings.ToLower(body.MealType)
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if !validMealTypes[body.MealType] {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: breakfast, lunch, dinner, snack")
		return
	}
	if body.Calories < 0 || body.Protein < 0 || body.Carbs < 0 || body.Fat < 0 {
		apiError(c, http.StatusBadRequest, "calories and macros must not be negative")
		return
	}
	multiplier := 1.0
	if body.PortionMultiplier != nil {
		multiplier = *body.PortionMultiplier
	}
	if multiplier <= 0 || multiplier > maxPortionMultiplier {
		apiError(c, http.StatusBadRequest, "portion_multiplier must be greater than 0 and at most 20")
		return
	}
	if body.Confidence == "" {
		body.Confidence = "high"
	}
	if !validConfidence[body.Confidence] {
		apiError(c, http.StatusBadRequest, "confidence must be one of: high, medium, low")
		return
	}
	if body.Date == "" {
		body.Date = h.today()
	}
	date, ok := parseDate(body.Date)
	if !ok {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := h.store.createFoodEntry(c, foodEntry{
		UserID:            c.GetInt("user_id"),
		Date:              date,
		MealType:          body.MealType,
		Name:              body.Name,
		Calories:          int(math.Round(body.Calories * multiplier)),
		Protein:           round1(body.Protein * multiplier),
		Carbs:             round1(body.Carbs * multiplier),
		Fat:               round1(body.Fat * multiplier),
		Confidence:        body.Confidence,
		Details:           body.Details,
		PortionMultiplier: multiplier,
	})
	if err != nil {
		log.Printf("[createFoodEntry] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to create food entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// updateFoodEntry partially updates an existing entry.
// PUT /api/log/food/:id. Omitted fields keep their current values.
func (h *Handler) updateFoodEntry(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var body foodEntryPatch
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, ok := parseDate(*body.Date); !ok {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	if body.MealType != nil {
		mt := strings.ToLower(*body.MealType)
		if !validMealTypes[mt] {
			apiError(c, http.StatusBadRequest, "meal_type must be one of: breakfast, lunch, dinner, snack")
			return
		}
		body.MealType = &mt
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		apiError(c, http.StatusBadRequest, "name must not be empty")
		return
	}
	if (body.Calories != nil && *body.Calories < 0) || (body.Protein != nil && *body.Protein < 0) ||
		(body.Carbs != nil && *body.Carbs < 0) || (body.Fat != nil && *body.Fat < 0) {
		apiError(c, http.StatusBadRequest, "calories and macros must not be negative")
		return
	}

	entry, err := h.store.updateFoodEntry(c, c.GetInt("user_id"), id, body)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "food entry not found")
		return
	}
	if err != nil {
		log.Printf("[updateFoodEntry] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to update food entry")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// deleteFoodEntry removes an entry by ID.
// DELETE /api/log/food/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteFoodEntry(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	err := h.store.deleteFoodEntry(c, c.GetInt("user_id"), id)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "food entry not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete food entry")
		return
	}
	c.Status(http.StatusNoContent)
}

/* ─── Exercise entries ───────────────────────────────────────────────── */

// createExerciseEntry stores a workout; its calories count against intake.
// POST /api/log/exercise. Defaults date to today and type to cardio.
func (h *Handler) createExerciseEntry(c *gin.Context) {
	var body createExerciseEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if body.CaloriesBurned < 0 || body.Duration < 0 {
		apiError(c, http.StatusBadRequest, "calories_burned and duration must not be negative")
		return
	}
	if body.Type == "" {
		body.Type = defaultExerciseType
	}
	if !validExerciseTypes[body.Type] {
		apiError(c, http.StatusBadRequest, "type must be one of: cardio, strength, other")
		return
	}
	if body.Date == "" {
		body.Date = h.today()
	}
	date, ok := parseDate(body.Date)
	if !ok {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := h.store.createExerciseEntry(c, exerciseEntry{
		UserID:         c.GetInt("user_id"),
		Date:           date,
		Name:           body.Name,
		CaloriesBurned: body.CaloriesBurned,
		Duration:       body.Duration,
		Type:           body.Type,
	})
	if err != nil {
		log.Printf("[createExerciseEntry] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to create exercise entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// deleteExerciseEntry removes a workout by ID.
// DELETE /api/log/exercise/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteExerciseEntry(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	err := h.store.deleteExerciseEntry(c, c.GetInt("user_id"), id)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "exercise entry not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete exercise entry")
		return
	}
	c.Status(http.StatusNoContent)
}
