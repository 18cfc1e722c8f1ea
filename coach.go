package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// mealPlanFailed is returned in place of an empty model reply.
const mealPlanFailed = "Synthesis failed."

// Macro fallbacks for a profile that has not been through onboarding.
const (
	fallbackProteinG = 150
	fallbackCarbsG   = 200
	fallbackFatG     = 70
)

const mealPlanPromptTemplate = `YOU ARE A CLINICAL METABOLIC SPECIALIST.
Generate a bespoke 72-HOUR METABOLIC PROTOCOL for %s.

CORE BIO-MARKERS:
- Objective: %s (Strategy: %s)
- Metrics: %.1fkg -> Target: %.1fkg
- Daily Budget: %d kcal
- Target Macros: P %dg, C %dg, F %dg
- Biological Variables: %s
- Somatotype: %s | Activity: %gx/week

REQUIRED OUTPUT:
1. A structured Day 1, Day 2, Day 3 plan.
2. For EACH DAY, explain the 'BIOLOGICAL RATIONALE' for the macros given the %s body type.
3. Include a 'Timeline Forecast' based on their adherence probability (%s days/week).
4. Use professional clinical markdown. Avoid generic advice.`

const coachInstructionTemplate = `You are the CalGemini Metabolic OS.
Client: %s | Goal: %s | Status: %d/%d kcal.
Somatotype: %s.
Provide data-driven coaching with clinical precision.
If the user explicitly asks you to "stop", "be quiet", or "shut up", confirm you are stopping. Keep that confirmation brief.`

// maxChatTurns bounds the history a client may replay.
const maxChatTurns = 40

// chatTurn is one prior message in a coaching conversation.
type chatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// orDefault substitutes fallback for a zero macro target.
func orDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// mealPlanPrompt renders the profile into the meal plan request. Weights
// are given in kilograms whatever the profile's unit system.
func mealPlanPrompt(p profile) string {
	mp := p.toMetabolic()
	conditions := strings.Join(p.HealthConditions, ", ")
	if conditions == "" {
		conditions = "Standard Baseline"
	}
	return fmt.Sprintf(mealPlanPromptTemplate,
		p.Name,
		p.GoalType, p.PacePreference,
		mp.WeightKG(), mp.TargetWeightKG(),
		p.DailyCalorieTarget,
		orDefault(p.ProteinTargetG, fallbackProteinG),
		orDefault(p.CarbsTargetG, fallbackCarbsG),
		orDefault(p.FatTargetG, fallbackFatG),
		conditions,
		p.BodyType, p.TrainingFrequency,
		p.BodyType,
		p.Adherence,
	)
}

// generateMealPlan returns a three-day markdown plan built from the
// profile's targets.
// POST /api/inference/meal-plan. Returns { "plan": "..." }.
func (h *Handler) generateMealPlan(c *gin.Context) {
	p, ok := h.loadProfile(c)
	if !ok {
		return
	}

	plan, err := h.ai.complete(c.Request.Context(), []chatMessage{
		textMessage("user", mealPlanPrompt(p)),
	}, false)
	if err != nil {
		inferenceFailed(c, "generateMealPlan", err)
		return
	}
	if strings.TrimSpace(plan) == "" {
		plan = mealPlanFailed
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// coachChat answers the latest user turn with the profile and today's
// intake as context. The client keeps the conversation and replays it.
// POST /api/coach/chat. Body: { "messages": [{ "role": "user"|"model", "text": "..." }] }.
// Returns { "reply": "..." }.
func (h *Handler) coachChat(c *gin.Context) {
	var body struct {
		Messages []chatTurn `json:"messages"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Messages) == 0 {
		apiError(c, http.StatusBadRequest, "messages are required")
		return
	}
	if len(body.Messages) > maxChatTurns {
		body.Messages = body.Messages[len(body.Messages)-maxChatTurns:]
	}
	if last := body.Messages[len(body.Messages)-1]; last.Role != "user" || strings.TrimSpace(last.Text) == "" {
		apiError(c, http.StatusBadRequest, "last message must be a non-empty user turn")
		return
	}

	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	today := h.today()
	food, err := h.store.listFoodEntries(c, p.UserID, today, today)
	if err != nil {
		log.Printf("[coachChat] failed to fetch today's entries: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch today's log")
		return
	}
	eaten := summarizeDay(today, p.DailyCalorieTarget, food, nil).Calories

	messages := []chatMessage{textMessage("system", fmt.Sprintf(coachInstructionTemplate,
		p.Name, p.GoalType, eaten, p.DailyCalorieTarget, p.BodyType))}
	for _, turn := range body.Messages {
		switch turn.Role {
		case "user":
			messages = append(messages, textMessage("user", turn.Text))
		case "model":
			messages = append(messages, textMessage("assistant", turn.Text))
		default:
			apiError(c, http.StatusBadRequest, "role must be user or model")
			return
		}
	}

	reply, err := h.ai.complete(c.Request.Context(), messages, false)
	if err != nil {
		inferenceFailed(c, "coachChat", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
