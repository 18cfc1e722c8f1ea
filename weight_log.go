package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// getWeightLog returns weight entries for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	entries, err := h.store.listWeightEntries(c, c.GetInt("user_id"), start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// upsertWeightEntry creates or updates the weight entry for the given date.
// POST /api/weight-log. Body: { "date": "YYYY-MM-DD", "weight": 82.5 } in the
// profile's units. When the entry is the newest one, it becomes the profile's
// current weight and targets are recomputed; the response then carries the
// updated profile as well.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date   string  `json:"date"`
		Weight float64 `json:"weight"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
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
	if body.Weight <= 0 || body.Weight > 9999.9 {
		apiError(c, http.StatusBadRequest, "weight must be between 0 and 9999.9")
		return
	}

	latest, err := h.store.latestWeightDate(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}

	entry, err := h.store.upsertWeightEntry(c, weightEntry{UserID: userID, Date: date, Weight: body.Weight})
	if err != nil {
		log.Printf("[upsertWeightEntry] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	// Back-filled entries leave the current weight alone.
	if body.Date < latest {
		c.JSON(http.StatusCreated, gin.H{"entry": entry})
		return
	}

	saved, err := h.updateProfile(c, userID, func(p *profile) error {
		p.Weight = body.Weight
		return nil
	})
	if err != nil {
		profileWriteFailed(c, "upsertWeightEntry", err, "failed to update profile weight")
		return
	}

	resp := saved.response()
	c.JSON(http.StatusCreated, gin.H{"entry": entry, "profile": resp.Profile, "timeline": resp.Timeline})
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	err := h.store.deleteWeightEntry(c, c.GetInt("user_id"), id)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	c.Status(http.StatusNoContent)
}
