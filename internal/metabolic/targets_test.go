package metabolic

import (
	"math"
	"testing"
)

// baseProfile is the reference profile: 80kg, 175cm, 30-year-old sedentary
// male with no training, moderate fat loss.
func baseProfile() Profile {
	return Profile{
		UnitSystem:        Metric,
		Weight:            80,
		Height:            175,
		Age:               30,
		TargetWeight:      70,
		Gender:            Male,
		JobType:           JobSedentary,
		TrainingType:      TrainingNone,
		TrainingFrequency: 0,
		BodyType:          Mesomorph,
		HealthConditions:  []string{},
		DietHistory:       DietConsistent,
		SleepDuration:     Sleep6To7,
		GoalType:          GoalFatLoss,
		Pace:              PaceModerate,
	}
}

func macroKcal(m Macros) int {
	return m.Protein*kcalPerGramProtein + m.Carbs*kcalPerGramCarbs + m.Fat*kcalPerGramFat
}

/* ─── Worked examples ────────────────────────────────────────────────── */

// bmr = 10*80 + 6.25*175 - 5*30 + 5 = 1748.75; tdee = 1748.75*1.2 = 2098.5.
func TestCalculateTargets_MaleFatLoss(t *testing.T) {
	got := CalculateTargets(baseProfile())
	want := Targets{
		TDEE:               2099,
		DailyCalorieTarget: 1599,
		DailyMacroTargets:  Macros{Protein: 140, Carbs: 160, Fat: 44},
	}
	if got != want {
		t.Errorf("CalculateTargets() = %+v, want %+v", got, want)
	}
	if diff := macroKcal(got.DailyMacroTargets) - got.DailyCalorieTarget; diff < -3 || diff > 3 {
		t.Errorf("macros sum to %d kcal, want within 3 of %d", macroKcal(got.DailyMacroTargets), got.DailyCalorieTarget)
	}
}

// Same profile as female: bmr = 1582.75, tdee ≈ 1899.3. 1399 is already above
// the 1200 floor so it stands.
func TestCalculateTargets_FemaleFatLoss(t *testing.T) {
	p := baseProfile()
	p.Gender = Female
	got := CalculateTargets(p)
	if got.TDEE != 1899 {
		t.Errorf("TDEE = %d, want 1899", got.TDEE)
	}
	if got.DailyCalorieTarget != 1399 {
		t.Errorf("DailyCalorieTarget = %d, want 1399", got.DailyCalorieTarget)
	}
}

// An aggressive deficit on a small female profile is clamped to 1200.
func TestCalculateTargets_FemaleFloor(t *testing.T) {
	p := baseProfile()
	p.Gender = Female
	p.Pace = PaceAggressive
	p.Weight = 55
	p.Height = 160
	got := CalculateTargets(p)
	if got.DailyCalorieTarget != 1200 {
		t.Fatalf("DailyCalorieTarget = %d, want floor 1200", got.DailyCalorieTarget)
	}
	want := Macros{Protein: 105, Carbs: 120, Fat: 33}
	if got.DailyMacroTargets != want {
		t.Errorf("DailyMacroTargets = %+v, want %+v", got.DailyMacroTargets, want)
	}
}

func TestCalculateTargets_MaleFloor(t *testing.T) {
	p := baseProfile()
	p.Pace = PaceAggressive
	p.Weight = 60
	p.Height = 165
	p.Age = 50
	got := CalculateTargets(p)
	if got.DailyCalorieTarget != 1500 {
		t.Errorf("DailyCalorieTarget = %d, want floor 1500", got.DailyCalorieTarget)
	}
}

// An empty profile flows zeros through the arithmetic: bmr = -161,
// tdee = -193.2, and the non-male floor takes over.
func TestCalculateTargets_EmptyProfile(t *testing.T) {
	got := CalculateTargets(Profile{})
	want := Targets{
		TDEE:               -193,
		DailyCalorieTarget: 1200,
		DailyMacroTargets:  Macros{Protein: 90, Carbs: 135, Fat: 33},
	}
	if got != want {
		t.Errorf("CalculateTargets(empty) = %+v, want %+v", got, want)
	}
}

// 100 lbs = 45.3592 kg; bmr = 453.592 + 1093.75 - 150 + 5 = 1402.342;
// tdee = 1682.8104.
func TestCalculateTargets_ImperialWeight(t *testing.T) {
	p := baseProfile()
	p.UnitSystem = Imperial
	p.Weight = 100
	p.GoalType = GoalMaintenance
	got := CalculateTargets(p)
	if got.TDEE != 1683 || got.DailyCalorieTarget != 1683 {
		t.Errorf("got tdee=%d target=%d, want 1683/1683", got.TDEE, got.DailyCalorieTarget)
	}
}

func TestCalculateTargets_Idempotent(t *testing.T) {
	p := baseProfile()
	p.HealthConditions = []string{ConditionPCOS, ConditionThyroid}
	p.BodyType = Endomorph
	first := CalculateTargets(p)
	second := CalculateTargets(p)
	if first != second {
		t.Errorf("repeated calls differ: %+v vs %+v", first, second)
	}
}

/* ─── Properties ─────────────────────────────────────────────────────── */

// TestCalculateTargets_MacrosMatchCalories sweeps goal/pace/condition
// combinations and checks the macro grams convert back to the calorie target
// within rounding, and that the floor is always honoured. Each gram value is
// rounded independently, so the worst case is 0.5*4 + 0.5*4 + 0.5*9 = 8.5 kcal.
func TestCalculateTargets_MacrosMatchCalories(t *testing.T) {
	goals := []GoalType{GoalFatLoss, GoalMuscleGain, GoalRecomposition, GoalMaintenance, GoalPerformance, ""}
	paces := []Pace{PaceAggressive, PaceModerate, PaceSustainable, ""}
	conditions := [][]string{nil, {ConditionPCOS}, {ConditionInsulinResistance}, {ConditionThyroid}}
	genders := []Gender{Male, Female, Other}

	for _, g := range goals {
		for _, pace := range paces {
			for _, cond := range conditions {
				for _, gender := range genders {
					p := baseProfile()
					p.GoalType, p.Pace, p.HealthConditions, p.Gender = g, pace, cond, gender
					got := CalculateTargets(p)

					if diff := macroKcal(got.DailyMacroTargets) - got.DailyCalorieTarget; diff < -8 || diff > 8 {
						t.Errorf("%s/%s/%v/%s: macros sum to %d kcal, target %d",
							g, pace, cond, gender, macroKcal(got.DailyMacroTargets), got.DailyCalorieTarget)
					}
					if got.DailyCalorieTarget < calorieFloor(gender) {
						t.Errorf("%s/%s/%v/%s: target %d below floor", g, pace, cond, gender, got.DailyCalorieTarget)
					}
				}
			}
		}
	}
}

/* ─── Rule tables ────────────────────────────────────────────────────── */

func TestActivityMultiplier(t *testing.T) {
	cases := []struct {
		name string
		mut  func(p *Profile)
		want float64
	}{
		{"sedentary baseline", func(p *Profile) {}, 1.2},
		{"mixed job", func(p *Profile) { p.JobType = JobMixed }, 1.3},
		{"physical job", func(p *Profile) { p.JobType = JobPhysical }, 1.45},
		{"sitting over 8h", func(p *Profile) { p.DailySittingHours = 9 }, 1.15},
		{"sitting exactly 8h", func(p *Profile) { p.DailySittingHours = 8 }, 1.2},
		{"resistance 3x", func(p *Profile) { p.TrainingType, p.TrainingFrequency = TrainingResistance, 3 }, 1.41},
		{"cardio 4x", func(p *Profile) { p.TrainingType, p.TrainingFrequency = TrainingCardio, 4 }, 1.4},
		{"mixed training 2x", func(p *Profile) { p.TrainingType, p.TrainingFrequency = TrainingMixed, 2 }, 1.36},
		{"no training 5x", func(p *Profile) { p.TrainingType, p.TrainingFrequency = TrainingNone, 5 }, 1.2},
		{"physical, sitting, resistance", func(p *Profile) {
			p.JobType, p.DailySittingHours = JobPhysical, 10
			p.TrainingType, p.TrainingFrequency = TrainingResistance, 4
		}, 1.68},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseProfile()
			tc.mut(&p)
			if got := activityMultiplier(p); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("activityMultiplier() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScaleExpenditure(t *testing.T) {
	cases := []struct {
		name string
		mut  func(p *Profile)
		want float64
	}{
		{"no adjustments", func(p *Profile) {}, 1},
		{"endomorph", func(p *Profile) { p.BodyType = Endomorph }, 0.95},
		{"ectomorph", func(p *Profile) { p.BodyType = Ectomorph }, 1.05},
		{"not sure", func(p *Profile) { p.BodyType = BodyNotSure }, 1},
		{"thyroid", func(p *Profile) { p.HealthConditions = []string{ConditionThyroid} }, 0.92},
		{"pcos", func(p *Profile) { p.HealthConditions = []string{ConditionPCOS} }, 0.92},
		{"thyroid and pcos apply once", func(p *Profile) {
			p.HealthConditions = []string{ConditionThyroid, ConditionPCOS}
		}, 0.92},
		{"insulin resistance alone", func(p *Profile) { p.HealthConditions = []string{ConditionInsulinResistance} }, 1},
		{"yo-yo", func(p *Profile) { p.DietHistory = DietYoYo }, 0.96},
		{"short sleep", func(p *Profile) { p.SleepDuration = SleepUnder5 }, 0.95},
		{"everything", func(p *Profile) {
			p.BodyType = Endomorph
			p.HealthConditions = []string{ConditionThyroid}
			p.DietHistory = DietYoYo
			p.SleepDuration = SleepUnder5
		}, 0.95 * 0.92 * 0.96 * 0.95},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseProfile()
			tc.mut(&p)
			if got := scaleExpenditure(p, 1000); math.Abs(got-1000*tc.want) > 1e-9 {
				t.Errorf("scaleExpenditure(1000) = %v, want %v", got, 1000*tc.want)
			}
		})
	}
}

func TestGoalAdjustment(t *testing.T) {
	cases := []struct {
		goal    GoalType
		pace    Pace
		adjust  float64
		protein float64
	}{
		{GoalFatLoss, PaceAggressive, -800, 0.35},
		{GoalFatLoss, PaceModerate, -500, 0.35},
		{GoalFatLoss, PaceSustainable, -300, 0.35},
		{GoalFatLoss, "conservative", -300, 0.35},
		{GoalFatLoss, "", -500, 0.35},
		{GoalMuscleGain, PaceAggressive, 400, 0.28},
		{GoalMuscleGain, PaceModerate, 250, 0.28},
		{GoalMuscleGain, PaceSustainable, 150, 0.28},
		{GoalRecomposition, PaceAggressive, -100, 0.40},
		{GoalRecomposition, PaceSustainable, -100, 0.40},
		{GoalMaintenance, PaceAggressive, 0, 0.25},
		{GoalPerformance, PaceAggressive, 0, 0.30},
		{"", PaceModerate, 0, 0.30},
	}
	for _, tc := range cases {
		t.Run(string(tc.goal)+"/"+string(tc.pace), func(t *testing.T) {
			adjust, protein := goalAdjustment(tc.goal, tc.pace)
			if adjust != tc.adjust || protein != tc.protein {
				t.Errorf("goalAdjustment() = (%v, %v), want (%v, %v)", adjust, protein, tc.adjust, tc.protein)
			}
		})
	}
}

func TestApplyRatioFloors(t *testing.T) {
	cases := []struct {
		name        string
		conditions  []string
		protein     float64
		wantProtein float64
		wantFat     float64
	}{
		{"none", nil, 0.28, 0.28, 0.25},
		{"pcos raises both", []string{ConditionPCOS}, 0.28, 0.35, 0.35},
		{"insulin resistance raises both", []string{ConditionInsulinResistance}, 0.25, 0.35, 0.35},
		{"higher protein kept", []string{ConditionPCOS}, 0.40, 0.40, 0.35},
		{"thyroid does not apply", []string{ConditionThyroid}, 0.30, 0.30, 0.25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Profile{HealthConditions: tc.conditions}
			protein, fat := applyRatioFloors(p, tc.protein, defaultFatRatio)
			if protein != tc.wantProtein || fat != tc.wantFat {
				t.Errorf("applyRatioFloors() = (%v, %v), want (%v, %v)", protein, fat, tc.wantProtein, tc.wantFat)
			}
			if protein+fat >= 1 {
				t.Errorf("protein+fat = %v, carbs ratio would not be positive", protein+fat)
			}
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{2098.5, 2099},
		{1598.5, 1599},
		{139.9125, 140},
		{-193.2, -193},
		{-0.5, 0},
		{-1.5, -1},
	}
	for _, tc := range cases {
		if got := roundHalfUp(tc.in); got != tc.want {
			t.Errorf("roundHalfUp(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
