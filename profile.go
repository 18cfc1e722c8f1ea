package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// updateProfile applies fn to the stored profile, recomputes targets and
// pushes the result to the user's live subscribers. fn sees the row as it is
// inside the write transaction, never a copy read earlier in the request.
// All profile writes go through here.
func (h *Handler) updateProfile(ctx context.Context, userID int, fn func(*profile) error) (profile, error) {
	saved, err := h.store.updateProfile(ctx, userID, func(p *profile) error {
		if err := fn(p); err != nil {
			return err
		}
		p.recomputeTargets()
		return nil
	})
	if err != nil {
		return profile{}, err
	}
	h.hub.publish(saved.UserID, saved.response())
	return saved, nil
}

// profileWriteFailed writes the error response for a failed updateProfile.
func profileWriteFailed(c *gin.Context, tag string, err error, message string) {
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	log.Printf("[%s] save error: %v", tag, err)
	apiError(c, http.StatusInternalServerError, message)
}

// loadProfile fetches the caller's profile, writing the error response on
// failure.
func (h *Handler) loadProfile(c *gin.Context) (profile, bool) {
	p, err := h.store.getProfile(c, c.GetInt("user_id"))
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "profile not found")
		return profile{}, false
	}
	if err != nil {
		log.Printf("[loadProfile] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return profile{}, false
	}
	return p, true
}

// getProfile returns the profile with its current timeline.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p.response())
}

// putProfile completes onboarding: the biometric core is required, targets
// are computed, start_date is set on first completion and today's weight is
// recorded as the first weight log entry.
// PUT /api/profile.
func (h *Handler) putProfile(c *gin.Context) {
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := requireBiometrics(body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateProfileRequest(body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	today := h.today()
	saved, err := h.updateProfile(c, c.GetInt("user_id"), func(p *profile) error {
		applyProfileRequest(p, body)
		if p.StartDate == "" {
			p.StartDate = today
		}
		p.SetupComplete = true
		return nil
	})
	if err != nil {
		profileWriteFailed(c, "putProfile", err, "failed to save profile")
		return
	}

	date, _ := parseDate(today)
	if _, err := h.store.upsertWeightEntry(c, weightEntry{UserID: saved.UserID, Date: date, Weight: saved.Weight}); err != nil {
		log.Printf("[putProfile] initial weight entry error: %v", err)
	}

	c.JSON(http.StatusOK, saved.response())
}

// patchProfile updates only the provided fields, then recomputes targets.
// PATCH /api/profile. Pointer fields distinguish "not provided" from zero.
func (h *Handler) patchProfile(c *gin.Context) {
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateProfileRequest(body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.updateProfile(c, c.GetInt("user_id"), func(p *profile) error {
		applyProfileRequest(p, body)
		return nil
	})
	if err != nil {
		profileWriteFailed(c, "patchProfile", err, "failed to save profile")
		return
	}

	c.JSON(http.StatusOK, saved.response())
}

// getTimeline returns only the forecast. {"timeline": null} for maintenance.
// GET /api/profile/timeline.
func (h *Handler) getTimeline(c *gin.Context) {
	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeline": p.timeline()})
}

// exportProfile returns everything stored for the user as one document.
// GET /api/profile/export.
func (h *Handler) exportProfile(c *gin.Context) {
	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	userID := p.UserID

	food, err := h.store.listFoodEntries(c, userID, allTimeStart, allTimeEnd)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch food entries")
		return
	}
	exercise, err := h.store.listExerciseEntries(c, userID, allTimeStart, allTimeEnd)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch exercise entries")
		return
	}
	weights, err := h.store.listWeightEntries(c, userID, allTimeStart, allTimeEnd)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="calgemini-export.json"`)
	c.JSON(http.StatusOK, gin.H{
		"exported_at": h.now().UTC(),
		"profile":     p,
		"timeline":    p.timeline(),
		"food":        food,
		"exercise":    exercise,
		"weight_log":  weights,
	})
}

// putTheme stores a palette chosen in the theme customizer.
// PUT /api/profile/theme. Body: themeConfig; hex values are normalized.
func (h *Handler) putTheme(c *gin.Context) {
	var body themeConfig
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	theme, err := normalizeTheme(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.updateProfile(c, c.GetInt("user_id"), func(p *profile) error {
		p.Theme = theme
		return nil
	})
	if err != nil {
		profileWriteFailed(c, "putTheme", err, "failed to save theme")
		return
	}

	c.JSON(http.StatusOK, saved.Theme)
}
