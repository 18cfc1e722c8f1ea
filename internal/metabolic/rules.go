package metabolic

/* ─── Activity multiplier ────────────────────────────────────────────── */

const baseActivityMultiplier = 1.2

// activityRule nudges the activity multiplier. Rules are applied in slice order.
type activityRule struct {
	name  string
	apply func(p Profile, multiplier float64) float64
}

// trainingIntensity is the multiplier bonus per weekly session.
var trainingIntensity = map[TrainingType]float64{
	TrainingResistance: 0.07,
	TrainingCardio:     0.05,
	TrainingMixed:      0.08,
}

var activityRules = []activityRule{
	{"job type", func(p Profile, m float64) float64 {
		switch p.JobType {
		case JobMixed:
			return m + 0.1
		case JobPhysical:
			return m + 0.25
		}
		return m
	}},
	{"sitting hours", func(p Profile, m float64) float64 {
		if p.DailySittingHours > 8 {
			return m - 0.05
		}
		return m
	}},
	{"training", func(p Profile, m float64) float64 {
		return m + p.TrainingFrequency*trainingIntensity[p.TrainingType]
	}},
}

func activityMultiplier(p Profile) float64 {
	m := baseActivityMultiplier
	for _, r := range activityRules {
		m = r.apply(p, m)
	}
	return m
}

/* ─── Expenditure scaling ────────────────────────────────────────────── */

// expenditureRule scales TDEE by factor when applies is true.
type expenditureRule struct {
	name    string
	factor  float64
	applies func(p Profile) bool
}

var expenditureRules = []expenditureRule{
	{"endomorph", 0.95, func(p Profile) bool { return p.BodyType == Endomorph }},
	{"ectomorph", 1.05, func(p Profile) bool { return p.BodyType == Ectomorph }},
	{"thyroid or pcos", 0.92, func(p Profile) bool { return p.HasCondition(ConditionThyroid, ConditionPCOS) }},
	{"yo-yo dieting", 0.96, func(p Profile) bool { return p.DietHistory == DietYoYo }},
	{"short sleep", 0.95, func(p Profile) bool { return p.SleepDuration == SleepUnder5 }},
}

func scaleExpenditure(p Profile, tdee float64) float64 {
	for _, r := range expenditureRules {
		if r.applies(p) {
			tdee *= r.factor
		}
	}
	return tdee
}

/* ─── Goal adjustment and macro split ────────────────────────────────── */

const (
	defaultProteinRatio = 0.30
	defaultFatRatio     = 0.25
)

// goalRule is one row of the goal table. The additive calorie adjustment
// depends on pace; recomposition and maintenance use the same value for all
// three tiers.
type goalRule struct {
	aggressive   float64
	moderate     float64
	gentle       float64
	proteinRatio float64
}

var goalRules = map[GoalType]goalRule{
	GoalFatLoss:       {aggressive: -800, moderate: -500, gentle: -300, proteinRatio: 0.35},
	GoalMuscleGain:    {aggressive: 400, moderate: 250, gentle: 150, proteinRatio: 0.28},
	GoalRecomposition: {aggressive: -100, moderate: -100, gentle: -100, proteinRatio: 0.40},
	GoalMaintenance:   {proteinRatio: 0.25},
}

// goalAdjustment returns the calorie adjustment and protein ratio for a goal.
// Goals without a row (performance, unset) keep the defaults. An unset pace
// counts as moderate.
func goalAdjustment(goal GoalType, pace Pace) (adjustment, proteinRatio float64) {
	row, ok := goalRules[goal]
	if !ok {
		return 0, defaultProteinRatio
	}
	switch pace {
	case PaceAggressive:
		return row.aggressive, row.proteinRatio
	case PaceModerate, "":
		return row.moderate, row.proteinRatio
	default:
		return row.gentle, row.proteinRatio
	}
}

// ratioRule raises the protein/fat ratios for specific conditions.
type ratioRule struct {
	name       string
	minProtein float64
	minFat     float64
	applies    func(p Profile) bool
}

var ratioRules = []ratioRule{
	{"insulin resistance", 0.35, 0.35, func(p Profile) bool {
		return p.HasCondition(ConditionPCOS, ConditionInsulinResistance)
	}},
}

func applyRatioFloors(p Profile, protein, fat float64) (float64, float64) {
	for _, r := range ratioRules {
		if r.applies(p) {
			protein = max(protein, r.minProtein)
			fat = max(fat, r.minFat)
		}
	}
	return protein, fat
}

/* ─── Timeline resistance ────────────────────────────────────────────── */

// resistanceRule adds to the time-to-goal multiplier. Weights stack
// additively with no cap.
type resistanceRule struct {
	tag     string
	weight  float64
	applies func(p Profile) bool
}

var resistanceRules = []resistanceRule{
	{"Thyroid modulation", 0.20, func(p Profile) bool { return p.HasCondition(ConditionThyroid) }},
	{"Insulin sensitivity", 0.15, func(p Profile) bool {
		return p.HasCondition(ConditionPCOS, ConditionInsulinResistance)
	}},
	{"Endomorph adaptation", 0.10, func(p Profile) bool { return p.BodyType == Endomorph }},
	{"Cortisol elevation", 0.15, func(p Profile) bool { return p.SleepDuration == SleepUnder5 }},
}

func resistance(p Profile) (multiplier float64, tags []string) {
	multiplier = 1.0
	for _, r := range resistanceRules {
		if r.applies(p) {
			multiplier += r.weight
			tags = append(tags, r.tag)
		}
	}
	return multiplier, tags
}

// adherenceMultiplier discounts the daily calorie change by how many days a
// week the user expects to stay on plan.
func adherenceMultiplier(a Adherence) float64 {
	switch a {
	case Adherence3To4:
		return 0.55
	case Adherence5To6:
		return 0.85
	}
	return 1.0
}
