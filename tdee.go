package main

import (
	"errors"
	"fmt"
	"strings"

	"lg/calgemini-api/internal/metabolic"
)

// toMetabolic projects the stored profile onto the calculation input.
func (p profile) toMetabolic() metabolic.Profile {
	return metabolic.Profile{
		UnitSystem:         p.UnitSystem,
		Weight:             p.Weight,
		Height:             p.Height,
		Age:                p.Age,
		TargetWeight:       p.TargetWeight,
		Gender:             p.Gender,
		JobType:            p.JobType,
		DailySittingHours:  p.DailySittingHours,
		TrainingType:       p.TrainingType,
		TrainingFrequency:  p.TrainingFrequency,
		BodyType:           p.BodyType,
		HealthConditions:   p.HealthConditions,
		DietHistory:        p.DietHistory,
		SleepDuration:      p.SleepDuration,
		GoalType:           p.GoalType,
		Pace:               p.PacePreference,
		Adherence:          p.Adherence,
		TDEE:               p.TDEE,
		DailyCalorieTarget: p.DailyCalorieTarget,
		DailyMacroTargets:  p.macroTargets(),
	}
}

func (p profile) macroTargets() metabolic.Macros {
	return metabolic.Macros{Protein: p.ProteinTargetG, Carbs: p.CarbsTargetG, Fat: p.FatTargetG}
}

// recomputeTargets refreshes the stored targets from the biometric fields.
// Every profile write goes through it so targets never go stale.
func (p *profile) recomputeTargets() {
	t := metabolic.CalculateTargets(p.toMetabolic())
	p.TDEE = t.TDEE
	p.DailyCalorieTarget = t.DailyCalorieTarget
	p.ProteinTargetG = t.DailyMacroTargets.Protein
	p.CarbsTargetG = t.DailyMacroTargets.Carbs
	p.FatTargetG = t.DailyMacroTargets.Fat
}

// timeline projects time-to-goal from the stored targets. Nil for maintenance.
func (p profile) timeline() *metabolic.Timeline {
	mp := p.toMetabolic()
	return metabolic.ProjectTimeline(&mp)
}

func (p profile) response() profileResponse {
	if p.HealthConditions == nil {
		p.HealthConditions = []string{}
	}
	return profileResponse{Profile: p, Timeline: p.timeline()}
}

/* ─── Request validation ─────────────────────────────────────────────── */

// maxConditions bounds the free-form health condition list.
const maxConditions = 20

// errMissingBiometrics is returned for a PUT that lacks the fields the
// calculation cannot do without.
var errMissingBiometrics = errors.New("age, gender, weight, height, target_weight and goal_type are required")

func requireBiometrics(req profileRequest) error {
	if req.Age == nil || req.Gender == nil || req.Weight == nil ||
		req.Height == nil || req.TargetWeight == nil || req.GoalType == nil {
		return errMissingBiometrics
	}
	return nil
}

// checkRange rejects values outside (min, max]. A nil value passes.
func checkRange(name string, v *float64, min, max float64) error {
	if v != nil && (*v <= min || *v > max) {
		return fmt.Errorf("%s must be between %g and %g", name, min, max)
	}
	return nil
}

// checkInclusive rejects values outside [min, max]. A nil value passes.
func checkInclusive(name string, v *float64, min, max float64) error {
	if v != nil && (*v < min || *v > max) {
		return fmt.Errorf("%s must be between %g and %g", name, min, max)
	}
	return nil
}

// checkEnum rejects a provided value the calculation does not declare.
func checkEnum(name string, provided bool, valid bool) error {
	if provided && !valid {
		return fmt.Errorf("invalid %s", name)
	}
	return nil
}

// validateProfileRequest checks every provided field. Unknown enum values
// are rejected here even though the calculation would tolerate them.
func validateProfileRequest(req profileRequest) error {
	checks := []error{
		checkRange("age", req.Age, 0, 120),
		checkRange("weight", req.Weight, 0, 9999.9),
		checkRange("height", req.Height, 0, 300),
		checkRange("target_weight", req.TargetWeight, 0, 9999.9),
		checkInclusive("daily_sitting_hours", req.DailySittingHours, 0, 24),
		checkInclusive("training_frequency", req.TrainingFrequency, 0, 14),
		checkEnum("unit_system", req.UnitSystem != nil, req.UnitSystem != nil && req.UnitSystem.Valid()),
		checkEnum("gender", req.Gender != nil, req.Gender != nil && req.Gender.Valid()),
		checkEnum("goal_type", req.GoalType != nil, req.GoalType != nil && req.GoalType.Valid()),
		checkEnum("pace_preference", req.PacePreference != nil, req.PacePreference != nil && req.PacePreference.Valid()),
		checkEnum("body_type", req.BodyType != nil, req.BodyType != nil && req.BodyType.Valid()),
		checkEnum("job_type", req.JobType != nil, req.JobType != nil && req.JobType.Valid()),
		checkEnum("training_type", req.TrainingType != nil, req.TrainingType != nil && req.TrainingType.Valid()),
		checkEnum("diet_history", req.DietHistory != nil, req.DietHistory != nil && req.DietHistory.Valid()),
		checkEnum("sleep_duration", req.SleepDuration != nil, req.SleepDuration != nil && req.SleepDuration.Valid()),
		checkEnum("adherence_probability", req.Adherence != nil, req.Adherence != nil && req.Adherence.Valid()),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if len(req.HealthConditions) > maxConditions {
		return fmt.Errorf("at most %d health_conditions", maxConditions)
	}
	for _, cond := range req.HealthConditions {
		if strings.TrimSpace(cond) == "" {
			return errors.New("health_conditions must not contain blank tags")
		}
	}
	return nil
}

// applyProfileRequest copies every provided field onto p. Call
// validateProfileRequest first.
func applyProfileRequest(p *profile, req profileRequest) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.UnitSystem != nil {
		// Stored weights follow the unit system unless new ones are sent.
		if req.Weight == nil {
			p.Weight = metabolic.ConvertWeight(p.Weight, p.UnitSystem, *req.UnitSystem)
		}
		if req.TargetWeight == nil {
			p.TargetWeight = metabolic.ConvertWeight(p.TargetWeight, p.UnitSystem, *req.UnitSystem)
		}
		p.UnitSystem = *req.UnitSystem
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Weight != nil {
		p.Weight = *req.Weight
	}
	if req.Height != nil {
		p.Height = *req.Height
	}
	if req.TargetWeight != nil {
		p.TargetWeight = *req.TargetWeight
	}
	if req.GoalType != nil {
		p.GoalType = *req.GoalType
	}
	if req.PacePreference != nil {
		p.PacePreference = *req.PacePreference
	}
	if req.BodyType != nil {
		p.BodyType = *req.BodyType
	}
	if req.JobType != nil {
		p.JobType = *req.JobType
	}
	if req.DailySittingHours != nil {
		p.DailySittingHours = *req.DailySittingHours
	}
	if req.TrainingType != nil {
		p.TrainingType = *req.TrainingType
	}
	if req.TrainingFrequency != nil {
		p.TrainingFrequency = *req.TrainingFrequency
	}
	if req.HealthConditions != nil {
		p.HealthConditions = req.HealthConditions
	}
	if req.DietHistory != nil {
		p.DietHistory = *req.DietHistory
	}
	if req.SleepDuration != nil {
		p.SleepDuration = *req.SleepDuration
	}
	if req.Adherence != nil {
		p.Adherence = *req.Adherence
	}
}
