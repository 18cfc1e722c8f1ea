package metabolic

import (
	"slices"
	"strings"
	"testing"
)

// timelineProfile returns the reference profile with its targets applied:
// tdee 2099, target 1599 (a 500 kcal deficit), 10kg to lose.
// 10kg * 7700 = 77000 kcal; 77000 / 500 = 154 days = 22 weeks.
func timelineProfile() Profile {
	p := baseProfile()
	return p.WithTargets(CalculateTargets(p))
}

func TestProjectTimeline_NilProfile(t *testing.T) {
	if got := ProjectTimeline(nil); got != nil {
		t.Errorf("ProjectTimeline(nil) = %+v, want nil", got)
	}
}

func TestProjectTimeline_Maintenance(t *testing.T) {
	p := timelineProfile()
	p.GoalType = GoalMaintenance
	p.HealthConditions = []string{ConditionThyroid}
	p.DailyCalorieTarget = p.TDEE - 700
	if got := ProjectTimeline(&p); got != nil {
		t.Errorf("ProjectTimeline(maintenance) = %+v, want nil", got)
	}
}

func TestProjectTimeline_Parity(t *testing.T) {
	for _, delta := range []int{0, 9, -9} {
		p := timelineProfile()
		p.DailyCalorieTarget = p.TDEE + delta
		got := ProjectTimeline(&p)
		if got == nil {
			t.Fatalf("delta %d: got nil, want parity result", delta)
		}
		if !got.Parity || got.Warning != ParityWarning {
			t.Errorf("delta %d: got %+v, want parity warning", delta, got)
		}
		if got.Realistic != nil || got.Best != nil {
			t.Errorf("delta %d: parity result carries a projection: %+v", delta, got)
		}
	}
}

func TestProjectTimeline_ClearPath(t *testing.T) {
	p := timelineProfile()
	got := ProjectTimeline(&p)
	if got == nil || got.Best == nil || got.Realistic == nil {
		t.Fatalf("ProjectTimeline() = %+v, want full projection", got)
	}
	if *got.Best != 22 || *got.Realistic != 22 {
		t.Errorf("best/realistic = %d/%d, want 22/22", *got.Best, *got.Realistic)
	}
	if !strings.Contains(got.Analysis, "approx. 22 weeks") {
		t.Errorf("analysis = %q, want clear-path text with 22 weeks", got.Analysis)
	}
	if got.Warning != "" {
		t.Errorf("warning = %q, want none", got.Warning)
	}
	if got.Parity {
		t.Error("parity set on a full projection")
	}
}

func TestProjectTimeline_Scenarios(t *testing.T) {
	cases := []struct {
		name      string
		mut       func(p *Profile)
		best      int
		realistic int
		factors   []string
	}{
		{"adherence 3-4", func(p *Profile) { p.Adherence = Adherence3To4 }, 40, 40, nil},
		{"adherence 5-6", func(p *Profile) { p.Adherence = Adherence5To6 }, 26, 26, nil},
		{"adherence 7", func(p *Profile) { p.Adherence = Adherence7 }, 22, 22, nil},
		// 154 * 1.2 / 7 = 26.4
		{"thyroid", func(p *Profile) { p.HealthConditions = []string{ConditionThyroid} }, 22, 27, []string{"Thyroid modulation"}},
		// 154 * 1.15 / 7 = 25.3
		{"insulin resistance", func(p *Profile) {
			p.HealthConditions = []string{ConditionInsulinResistance}
		}, 22, 26, []string{"Insulin sensitivity"}},
		{"pcos and insulin resistance count once", func(p *Profile) {
			p.HealthConditions = []string{ConditionPCOS, ConditionInsulinResistance}
		}, 22, 26, []string{"Insulin sensitivity"}},
		// 154 * 1.1 / 7 = 24.2
		{"endomorph", func(p *Profile) { p.BodyType = Endomorph }, 22, 25, []string{"Endomorph adaptation"}},
		{"short sleep", func(p *Profile) { p.SleepDuration = SleepUnder5 }, 22, 26, []string{"Cortisol elevation"}},
		// 1.0 + 0.2 + 0.15 + 0.1 + 0.15 = 1.6; 154 * 1.6 / 7 = 35.2
		{"all factors stack", func(p *Profile) {
			p.HealthConditions = []string{ConditionThyroid, ConditionPCOS}
			p.BodyType = Endomorph
			p.SleepDuration = SleepUnder5
		}, 22, 36, []string{"Thyroid modulation", "Insulin sensitivity", "Endomorph adaptation", "Cortisol elevation"}},
		{"no weight to lose", func(p *Profile) { p.TargetWeight = p.Weight }, 0, 0, nil},
		// 22 lbs = 9.979024 kg -> 153.68 days
		{"imperial weights", func(p *Profile) {
			p.UnitSystem, p.Weight, p.TargetWeight = Imperial, 176, 154
		}, 22, 22, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := timelineProfile()
			tc.mut(&p)
			// Targets are pinned so only the timeline inputs vary.
			p.TDEE, p.DailyCalorieTarget = 2099, 1599

			got := ProjectTimeline(&p)
			if got == nil || got.Best == nil || got.Realistic == nil {
				t.Fatalf("ProjectTimeline() = %+v, want full projection", got)
			}
			if *got.Best != tc.best || *got.Realistic != tc.realistic {
				t.Errorf("best/realistic = %d/%d, want %d/%d", *got.Best, *got.Realistic, tc.best, tc.realistic)
			}
			if !slices.Equal(got.Factors, tc.factors) {
				t.Errorf("factors = %v, want %v", got.Factors, tc.factors)
			}
			if len(tc.factors) > 0 && !strings.HasPrefix(got.Analysis, "Metabolic resistance detected: "+strings.Join(tc.factors, ", ")) {
				t.Errorf("analysis = %q, want resistance text", got.Analysis)
			}
		})
	}
}

func TestProjectTimeline_ClinicalWarning(t *testing.T) {
	cases := []struct {
		delta int
		warn  bool
	}{
		{-1000, false},
		{-1001, true},
		{1200, true},
		{400, false},
	}
	for _, tc := range cases {
		p := timelineProfile()
		p.DailyCalorieTarget = p.TDEE + tc.delta
		got := ProjectTimeline(&p)
		if got == nil {
			t.Fatalf("delta %d: got nil", tc.delta)
		}
		if (got.Warning == ClinicalWarning) != tc.warn {
			t.Errorf("delta %d: warning = %q, want clinical=%v", tc.delta, got.Warning, tc.warn)
		}
	}
}

// Adding any resistance factor never shortens the realistic estimate.
func TestProjectTimeline_ResistanceMonotonic(t *testing.T) {
	additions := []func(p *Profile){
		func(p *Profile) { p.HealthConditions = append(p.HealthConditions, ConditionThyroid) },
		func(p *Profile) { p.HealthConditions = append(p.HealthConditions, ConditionPCOS) },
		func(p *Profile) { p.BodyType = Endomorph },
		func(p *Profile) { p.SleepDuration = SleepUnder5 },
	}
	for _, adherence := range []Adherence{Adherence3To4, Adherence5To6, Adherence7} {
		p := timelineProfile()
		p.Adherence = adherence
		prev := *ProjectTimeline(&p).Realistic
		for i, add := range additions {
			add(&p)
			got := *ProjectTimeline(&p).Realistic
			if got < prev {
				t.Errorf("adherence %s, step %d: realistic dropped from %d to %d", adherence, i, prev, got)
			}
			prev = got
		}
	}
}
