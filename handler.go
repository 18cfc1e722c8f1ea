package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler holds shared dependencies for all route handlers. speaker and
// billing are nil when their feature is not configured.
type Handler struct {
	store   store
	ai      *inferenceClient
	speaker speaker
	billing billingService
	hub     *profileHub
	// appOrigin is where checkout and portal sessions send the user back to.
	appOrigin string
	// now is time.Now outside tests.
	now func() time.Time
}

func newHandler(s store, ai *inferenceClient) *Handler {
	return &Handler{
		store:     s,
		ai:        ai,
		hub:       newProfileHub(),
		appOrigin: "http://localhost:5173",
		now:       time.Now,
	}
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// today returns the server-local date as YYYY-MM-DD.
func (h *Handler) today() string {
	return h.now().Format(dateLayout)
}

// parseDate validates a YYYY-MM-DD value. An invalid value would otherwise
// silently return no rows.
func parseDate(s string) (DateOnly, bool) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return DateOnly{}, false
	}
	return DateOnly{t}, true
}

// paramID reads the :id path param, writing a 400 when it is not a number.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// dateRange reads and validates the required start/end query params.
func dateRange(c *gin.Context) (string, string, bool) {
	start, end := c.Query("start"), c.Query("end")
	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return "", "", false
	}
	if _, ok := parseDate(start); !ok {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return "", "", false
	}
	if _, ok := parseDate(end); !ok {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return "", "", false
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return "", "", false
	}
	return start, end, true
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	router.POST("/api/login", h.login)
	router.POST("/api/signup", h.signup)
	router.POST("/api/billing/webhook", h.billingWebhook)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())

	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.PATCH("/profile", h.patchProfile)
	api.GET("/profile/timeline", h.getTimeline)
	api.GET("/profile/export", h.exportProfile)
	api.GET("/profile/subscribe", h.subscribeProfile)
	api.PUT("/profile/theme", h.putTheme)

	api.GET("/log/daily", h.getDailyLog)
	api.GET("/log/history", h.getHistory)
	api.GET("/log/earliest-date", h.getEarliestLogDate)
	api.POST("/log/food", h.createFoodEntry)
	api.PUT("/log/food/:id", h.updateFoodEntry)
	api.DELETE("/log/food/:id", h.deleteFoodEntry)
	api.POST("/log/exercise", h.createExerciseEntry)
	api.DELETE("/log/exercise/:id", h.deleteExerciseEntry)

	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)

	api.POST("/inference/nutrition", h.estimateNutrition)
	api.POST("/inference/nutrition/image", h.estimateNutritionFromImage)
	api.POST("/inference/nutrition/refine", h.refineNutrition)
	api.POST("/inference/exercise", h.estimateExercise)
	api.POST("/inference/theme", h.suggestTheme)
	api.POST("/inference/meal-plan", h.generateMealPlan)
	api.POST("/coach/chat", h.coachChat)
	api.POST("/coach/speak", h.coachSpeak)

	api.POST("/billing/checkout", h.createCheckout)
	api.POST("/billing/portal", h.createPortal)
}
