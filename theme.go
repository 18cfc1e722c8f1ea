package main

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// uiStyles maps each UI style to the intensity hint given to the model. It is
// also the set of accepted style values.
var uiStyles = map[string]string{
	"minimalism":      "Low intensity, muted colors, extreme whitespace.",
	"bold_modern":     "High saturation, high contrast, geometric.",
	"vintage_retro":   "Warm nostalgic tones, film-grain feel.",
	"organic_natural": "Soft earthy tones, nature-inspired.",
	"neon":            "Ultra-high intensity neon glow, deep blacks.",
	"pastel":          "Very low intensity soft hues, airy.",
	"cartoon":         "Vivid playful intensity, bold outlines.",
}

const themePromptTemplate = `Design a high-quality, professional UI color theme. Inspiration: %q. Style: %q.
Aura Intensity: %s
Ensure colors are distinct and accessible.
Return a JSON object with 4 hex codes: "primary", "secondary" (action), "accent" (highlights), "background" (backdrop).`

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// normalizeHex prefixes a missing '#'.
func normalizeHex(color string) string {
	color = strings.TrimSpace(color)
	if strings.HasPrefix(color, "#") {
		return color
	}
	return "#" + color
}

// normalizeTheme normalizes every color and rejects anything that is not a
// hex color or a known style.
func normalizeTheme(t themeConfig) (themeConfig, error) {
	if _, ok := uiStyles[t.Style]; !ok {
		return themeConfig{}, errors.New("invalid style")
	}
	colors := []struct {
		name string
		val  *string
	}{
		{"primary", &t.Primary},
		{"secondary", &t.Secondary},
		{"accent", &t.Accent},
		{"background", &t.Background},
	}
	for _, col := range colors {
		*col.val = normalizeHex(*col.val)
		if !hexColor.MatchString(*col.val) {
			return themeConfig{}, fmt.Errorf("%s must be a hex color", col.name)
		}
	}
	return t, nil
}

// suggestTheme asks the model for a palette. The result is not saved; the
// client previews it and stores it with PUT /api/profile/theme.
// POST /api/inference/theme. Body: { "inspiration": "sunset orange", "style": "neon" }.
func (h *Handler) suggestTheme(c *gin.Context) {
	var body struct {
		Inspiration string `json:"inspiration"`
		Style       string `json:"style"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	intensity, ok := uiStyles[body.Style]
	if !ok {
		apiError(c, http.StatusBadRequest, "invalid style")
		return
	}
	if strings.TrimSpace(body.Inspiration) == "" {
		apiError(c, http.StatusBadRequest, "inspiration is required")
		return
	}

	var colors themeConfig
	err := h.ai.completeJSON(c.Request.Context(), []chatMessage{
		textMessage("user", fmt.Sprintf(themePromptTemplate, body.Inspiration, body.Style, intensity)),
	}, &colors)
	if err != nil {
		inferenceFailed(c, "suggestTheme", err)
		return
	}

	colors.Style = body.Style
	theme, err := normalizeTheme(colors)
	if err != nil {
		inferenceFailed(c, "suggestTheme", err)
		return
	}

	c.JSON(http.StatusOK, theme)
}
