// Package metabolic derives daily calorie and macro budgets from a user's
// biometric and lifestyle profile, and projects how long reaching the target
// weight will take. Everything here is a pure function of its input.
package metabolic

import "slices"

// UnitSystem governs how Profile.Weight and Profile.TargetWeight are read.
// Height is always centimeters.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

type JobType string

const (
	JobSedentary JobType = "sedentary"
	JobMixed     JobType = "mixed"
	JobPhysical  JobType = "physical"
)

type TrainingType string

const (
	TrainingResistance TrainingType = "resistance"
	TrainingCardio     TrainingType = "cardio"
	TrainingMixed      TrainingType = "mixed"
	TrainingNone       TrainingType = "none"
)

type BodyType string

const (
	Ectomorph   BodyType = "ectomorph"
	Mesomorph   BodyType = "mesomorph"
	Endomorph   BodyType = "endomorph"
	BodyNotSure BodyType = "not_sure"
)

type DietHistory string

const (
	DietYoYo       DietHistory = "yo_yo"
	DietFirstTime  DietHistory = "first_time"
	DietConsistent DietHistory = "consistent"
)

type SleepDuration string

const (
	SleepUnder5 SleepDuration = "<5"
	Sleep6To7   SleepDuration = "6-7"
	Sleep8Plus  SleepDuration = "8+"
)

type GoalType string

const (
	GoalFatLoss       GoalType = "fat_loss"
	GoalMuscleGain    GoalType = "muscle_gain"
	GoalRecomposition GoalType = "recomposition"
	GoalMaintenance   GoalType = "maintenance"
	GoalPerformance   GoalType = "performance"
)

// Pace is the user's chosen strategy. Stored profiles use "sustainable" for
// the gentlest tier; any value other than aggressive or moderate lands there.
type Pace string

const (
	PaceAggressive  Pace = "aggressive"
	PaceModerate    Pace = "moderate"
	PaceSustainable Pace = "sustainable"
)

// Adherence is the self-reported number of on-plan days per week.
type Adherence string

const (
	Adherence3To4 Adherence = "3-4"
	Adherence5To6 Adherence = "5-6"
	Adherence7    Adherence = "7"
)

// Health condition tags that change the calculation.
const (
	ConditionThyroid           = "Thyroid"
	ConditionPCOS              = "PCOS"
	ConditionInsulinResistance = "Insulin Resistance"
)

// Macros holds gram amounts.
type Macros struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

// Profile is the subset of a user profile the calculation reads. Zero values
// are valid everywhere: missing numbers count as 0 and missing enums take the
// fallback branch of each rule.
type Profile struct {
	UnitSystem        UnitSystem
	Weight            float64
	Height            float64
	Age               float64
	TargetWeight      float64
	Gender            Gender
	JobType           JobType
	DailySittingHours float64
	TrainingType      TrainingType
	TrainingFrequency float64
	BodyType          BodyType
	HealthConditions  []string
	DietHistory       DietHistory
	SleepDuration     SleepDuration
	GoalType          GoalType
	Pace              Pace
	Adherence         Adherence

	// Populated from CalculateTargets; ProjectTimeline reads them.
	TDEE               int
	DailyCalorieTarget int
	DailyMacroTargets  Macros
}

// HasCondition reports whether any of the given tags is present.
func (p Profile) HasCondition(tags ...string) bool {
	for _, t := range tags {
		if slices.Contains(p.HealthConditions, t) {
			return true
		}
	}
	return false
}

// WithTargets returns a copy of p carrying the computed targets.
func (p Profile) WithTargets(t Targets) Profile {
	p.TDEE = t.TDEE
	p.DailyCalorieTarget = t.DailyCalorieTarget
	p.DailyMacroTargets = t.DailyMacroTargets
	return p
}

// WeightKG returns the current weight in kilograms regardless of unit system.
func (p Profile) WeightKG() float64 {
	return toKG(p.UnitSystem, p.Weight)
}

func (p Profile) TargetWeightKG() float64 {
	return toKG(p.UnitSystem, p.TargetWeight)
}
