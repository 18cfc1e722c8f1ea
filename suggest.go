package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// nutritionEstimate is the structured nutrition data returned by the model.
// Calories and macros are totals for the whole described portion.
type nutritionEstimate struct {
	Name               string   `json:"name"`
	Calories           float64  `json:"calories"`
	Protein            float64  `json:"protein"`
	Carbs              float64  `json:"carbs"`
	Fat                float64  `json:"fat"`
	Confidence         string   `json:"confidence"`
	Details            string   `json:"details"`
	IsAmbiguous        bool     `json:"is_ambiguous"`
	ClarifyingQuestion string   `json:"clarifying_question,omitempty"`
	Suggestions        []string `json:"suggestions"`
}

// exerciseEstimate is the model's read of an activity description.
type exerciseEstimate struct {
	Name           string  `json:"name"`
	CaloriesBurned float64 `json:"calories_burned"`
	Duration       float64 `json:"duration"`
	Type           string  `json:"type"`
}

var validConfidence = map[string]bool{"high": true, "medium": true, "low": true}

var validExerciseTypes = map[string]bool{"cardio": true, "strength": true, "other": true}

/* ─── Prompt constants ───────────────────────────────────────────────── */

const nutritionSystemPrompt = `You are a world-class nutritional AI. Estimate calories AND macros (protein, carbs, fat in grams) for food.

Return ONLY a JSON object with:
- "name" (string, cleaned up title case)
- "calories" (number, total for the full portion)
- "protein", "carbs", "fat" (numbers, grams, totals for the full portion)
- "confidence" (one of: high, medium, low)
- "details" (string, one sentence on how the estimate was made)
- "is_ambiguous" (boolean)
- "clarifying_question" (string, only when is_ambiguous is true)
- "suggestions" (array of strings: healthier swaps or common add-ons)

RULES:
1. Estimate based on standard portions unless specified.
2. If the user adds items ("plus a side of fries"), return the NEW TOTAL as one entry.
3. If the description is vague (a sandwich without ingredients, cake without size), set is_ambiguous to true and ask a sharp clarifying_question. Do not guess the volume.
4. If the input is not food at all, return {"name": ""}.`

const imagePrompt = "Analyze this image. Estimate calories and macros. If it's a barcode, extract the data. Return JSON."

const refinePromptTemplate = `The user previously logged "%s". Now they say: "%s". Update the total estimate.`

const exerciseSystemPromptTemplate = `You are a fitness calorie-burn estimator. The user weighs %.0f kg.

Parse the exercise description and return a JSON object with:
- "name" (string, cleaned up title case)
- "calories_burned" (number, estimated total)
- "duration" (number, minutes)
- "type" (one of: cardio, strength, other)

Always provide your best estimate. Return only valid JSON, no explanation.`

// Fallbacks when the model leaves exercise fields out.
const (
	defaultExerciseCalories = 100
	defaultExerciseDuration = 30
	defaultExerciseType     = "cardio"
	// defaultWeightKG stands in for a profile with no weight yet.
	defaultWeightKG = 70
)

// maxImageBytes bounds the decoded upload.
const maxImageBytes = 8 << 20

/* ─── Helpers ────────────────────────────────────────────────────────── */

// inferenceFailed maps a client error onto a response: 503 when inference is
// not configured, 500 otherwise.
func inferenceFailed(c *gin.Context, tag string, err error) {
	log.Printf("[%s] inference error: %v", tag, err)
	if errors.Is(err, errInferenceDisabled) {
		apiError(c, http.StatusServiceUnavailable, "inference not configured")
		return
	}
	apiError(c, http.StatusInternalServerError, "inference request failed")
}

// normalize clamps the model's output into a shape the client can render.
func (n *nutritionEstimate) normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Calories = math.Max(0, math.Round(n.Calories))
	n.Protein = math.Max(0, n.Protein)
	n.Carbs = math.Max(0, n.Carbs)
	n.Fat = math.Max(0, n.Fat)
	if !validConfidence[n.Confidence] {
		n.Confidence = "low"
	}
	if n.Suggestions == nil {
		n.Suggestions = []string{}
	}
	if !n.IsAmbiguous {
		n.ClarifyingQuestion = ""
	}
}

// splitImage accepts either a data URL or bare base64 plus a mime type and
// returns the mime type and base64 payload.
func splitImage(image, mimeType string) (string, string, error) {
	if rest, ok := strings.CutPrefix(image, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found {
			return "", "", errors.New("malformed data URL")
		}
		mimeType = strings.TrimSuffix(header, ";base64")
		image = data
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", "", errors.New("mime_type must be an image type")
	}
	decoded, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return "", "", errors.New("image must be base64")
	}
	if len(decoded) == 0 || len(decoded) > maxImageBytes {
		return "", "", fmt.Errorf("image must be between 1 byte and %d MB", maxImageBytes>>20)
	}
	return mimeType, image, nil
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// runNutritionScan is shared by the three nutrition endpoints. It enforces
// the daily scan quota, calls the model, and charges one scan on a usable
// result. The quota is checked again when charging, since other scans may
// have finished while the model was running.
func (h *Handler) runNutritionScan(c *gin.Context, tag string, messages []chatMessage) {
	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	today := h.today()
	refreshScans(&p, today)
	if p.ScansRemainingToday <= 0 {
		apiError(c, http.StatusTooManyRequests, "daily scan limit reached")
		return
	}

	var est nutritionEstimate
	if err := h.ai.completeJSON(c.Request.Context(), messages, &est); err != nil {
		inferenceFailed(c, tag, err)
		return
	}
	est.normalize()
	if est.Name == "" {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	_, err := h.updateProfile(c, p.UserID, func(cur *profile) error {
		if !consumeScan(cur, today) {
			return errScanLimit
		}
		return nil
	})
	if errors.Is(err, errScanLimit) {
		apiError(c, http.StatusTooManyRequests, "daily scan limit reached")
		return
	}
	if err != nil {
		// The estimate is still useful; the quota just wasn't charged.
		log.Printf("[%s] failed to record scan: %v", tag, err)
	}

	c.JSON(http.StatusOK, est)
}

// estimateNutrition handles POST /api/inference/nutrition.
// Body: { "description": "2 eggs and toast" }.
func (h *Handler) estimateNutrition(c *gin.Context) {
	var body struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	h.runNutritionScan(c, "estimateNutrition", []chatMessage{
		textMessage("system", nutritionSystemPrompt),
		textMessage("user", fmt.Sprintf("Estimate macros for: %q", body.Description)),
	})
}

// estimateNutritionFromImage handles POST /api/inference/nutrition/image.
// Body: { "image": "<data URL or base64>", "mime_type": "image/jpeg" }.
func (h *Handler) estimateNutritionFromImage(c *gin.Context) {
	var body struct {
		Image    string `json:"image"`
		MimeType string `json:"mime_type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Image == "" {
		apiError(c, http.StatusBadRequest, "image is required")
		return
	}
	mimeType, data, err := splitImage(body.Image, body.MimeType)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	h.runNutritionScan(c, "estimateNutritionFromImage", []chatMessage{
		textMessage("system", nutritionSystemPrompt),
		imageMessage(imagePrompt, mimeType, data),
	})
}

// refineNutrition handles POST /api/inference/nutrition/refine: the user
// answers a clarifying question or adds to a previous estimate.
// Body: { "current": "a sandwich", "refinement": "turkey and cheese on rye" }.
func (h *Handler) refineNutrition(c *gin.Context) {
	var body struct {
		Current    string `json:"current"`
		Refinement string `json:"refinement"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Current) == "" || strings.TrimSpace(body.Refinement) == "" {
		apiError(c, http.StatusBadRequest, "current and refinement are required")
		return
	}

	h.runNutritionScan(c, "refineNutrition", []chatMessage{
		textMessage("system", nutritionSystemPrompt),
		textMessage("user", fmt.Sprintf(refinePromptTemplate, body.Current, body.Refinement)),
	})
}

// estimateExercise handles POST /api/inference/exercise. The estimate is
// scaled to the caller's body weight. Exercise estimates do not use scans.
// Body: { "description": "45 min spin class" }.
func (h *Handler) estimateExercise(c *gin.Context) {
	var body struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	weightKG := p.toMetabolic().WeightKG()
	if weightKG <= 0 {
		weightKG = defaultWeightKG
	}

	var est exerciseEstimate
	err := h.ai.completeJSON(c.Request.Context(), []chatMessage{
		textMessage("system", fmt.Sprintf(exerciseSystemPromptTemplate, weightKG)),
		textMessage("user", body.Description),
	}, &est)
	if err != nil {
		inferenceFailed(c, "estimateExercise", err)
		return
	}

	est.fillDefaults(body.Description)
	c.JSON(http.StatusOK, est)
}

func (e *exerciseEstimate) fillDefaults(description string) {
	if strings.TrimSpace(e.Name) == "" {
		e.Name = strings.TrimSpace(description)
	}
	if e.CaloriesBurned <= 0 {
		e.CaloriesBurned = defaultExerciseCalories
	}
	if e.Duration <= 0 {
		e.Duration = defaultExerciseDuration
	}
	if !validExerciseTypes[e.Type] {
		e.Type = defaultExerciseType
	}
	e.CaloriesBurned = math.Round(e.CaloriesBurned)
	e.Duration = math.Round(e.Duration)
}
