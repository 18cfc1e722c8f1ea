package metabolic

import (
	"fmt"
	"math"
	"strings"
)

const (
	// parityThreshold is the smallest daily calorie delta worth projecting.
	parityThreshold = 10
	// clinicalThreshold flags deficits or surpluses beyond safe magnitude.
	clinicalThreshold = 1000

	ParityWarning   = "Metabolic parity detected. Adjust targets to see arrival prediction."
	ClinicalWarning = "Clinical Alert: Calorie delta exceeds metabolic safety threshold."
)

// Timeline is a time-to-goal forecast in weeks. When Parity is set the
// calorie delta was too small to model and only Warning is populated.
type Timeline struct {
	Parity    bool     `json:"parity,omitempty"`
	Best      *int     `json:"best,omitempty"`
	Realistic *int     `json:"realistic,omitempty"`
	Analysis  string   `json:"analysis,omitempty"`
	Factors   []string `json:"factors,omitempty"`
	Warning   string   `json:"warning,omitempty"`
}

// ProjectTimeline forecasts how many weeks reaching the target weight takes
// at the profile's current targets. p must already carry TDEE and
// DailyCalorieTarget. Returns nil for a nil profile or a maintenance goal.
func ProjectTimeline(p *Profile) *Timeline {
	if p == nil || p.GoalType == GoalMaintenance {
		return nil
	}

	calorieDiff := float64(p.DailyCalorieTarget - p.TDEE)
	if math.Abs(calorieDiff) < parityThreshold {
		return &Timeline{Parity: true, Warning: ParityWarning}
	}

	weightDiff := math.Abs(p.WeightKG() - p.TargetWeightKG())
	totalKcal := weightDiff * KcalPerKG

	effectiveDailyChange := math.Abs(calorieDiff) * adherenceMultiplier(p.Adherence)
	daysRequired := totalKcal / math.Max(1, effectiveDailyChange)

	multiplier, factors := resistance(*p)
	best := ceilInt(daysRequired / 7)
	realistic := ceilInt(daysRequired * multiplier / 7)

	t := &Timeline{
		Best:      &best,
		Realistic: &realistic,
		Factors:   factors,
	}
	if len(factors) > 0 {
		t.Analysis = fmt.Sprintf("Metabolic resistance detected: %s. Prediction adjusted for biological variance.",
			strings.Join(factors, ", "))
	} else {
		t.Analysis = fmt.Sprintf("Biological path is clear. Arrival estimated in approx. %d weeks based on current strategy.", realistic)
	}
	if math.Abs(calorieDiff) > clinicalThreshold {
		t.Warning = ClinicalWarning
	}
	return t
}
