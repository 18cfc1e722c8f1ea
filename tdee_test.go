package main

import (
	"errors"
	"testing"

	"lg/calgemini-api/internal/metabolic"
)

func ptr[T any](v T) *T { return &v }

// referenceProfile is an 80kg, 175cm, 30-year-old sedentary male on a
// moderate fat-loss plan toward 70kg.
func referenceProfile() profile {
	p := newProfile(1, "Lyle", "lyle@example.com")
	p.Age = 30
	p.Gender = metabolic.Male
	p.Weight = 80
	p.Height = 175
	p.TargetWeight = 70
	p.GoalType = metabolic.GoalFatLoss
	p.PacePreference = metabolic.PaceModerate
	p.BodyType = metabolic.Mesomorph
	p.JobType = metabolic.JobSedentary
	p.TrainingType = metabolic.TrainingNone
	p.DietHistory = metabolic.DietConsistent
	p.SleepDuration = metabolic.Sleep6To7
	return p
}

func TestRecomputeTargets(t *testing.T) {
	p := referenceProfile()
	p.recomputeTargets()

	if p.TDEE != 2099 || p.DailyCalorieTarget != 1599 {
		t.Errorf("tdee/target = %d/%d, want 2099/1599", p.TDEE, p.DailyCalorieTarget)
	}
	want := metabolic.Macros{Protein: 140, Carbs: 160, Fat: 44}
	if got := p.macroTargets(); got != want {
		t.Errorf("macroTargets() = %+v, want %+v", got, want)
	}
}

// Stale stored targets never leak into the next computation.
func TestRecomputeTargets_OverwritesStale(t *testing.T) {
	p := referenceProfile()
	p.TDEE, p.DailyCalorieTarget, p.ProteinTargetG = 9999, 9999, 999
	p.recomputeTargets()
	if p.TDEE != 2099 || p.DailyCalorieTarget != 1599 || p.ProteinTargetG != 140 {
		t.Errorf("got tdee=%d target=%d protein=%d, want 2099/1599/140", p.TDEE, p.DailyCalorieTarget, p.ProteinTargetG)
	}
}

func TestRecomputeTargets_Imperial(t *testing.T) {
	p := referenceProfile()
	p.UnitSystem = metabolic.Imperial
	p.Weight = 100
	p.GoalType = metabolic.GoalMaintenance
	p.recomputeTargets()
	if p.TDEE != 1683 || p.DailyCalorieTarget != 1683 {
		t.Errorf("tdee/target = %d/%d, want 1683/1683", p.TDEE, p.DailyCalorieTarget)
	}
}

func TestProfileResponse(t *testing.T) {
	t.Run("fat loss carries a timeline", func(t *testing.T) {
		p := referenceProfile()
		p.recomputeTargets()
		resp := p.response()
		if resp.Timeline == nil || resp.Timeline.Best == nil || resp.Timeline.Realistic == nil {
			t.Fatalf("timeline = %+v, want full projection", resp.Timeline)
		}
		if *resp.Timeline.Realistic < *resp.Timeline.Best {
			t.Errorf("realistic %d < best %d", *resp.Timeline.Realistic, *resp.Timeline.Best)
		}
	})

	t.Run("maintenance has no timeline", func(t *testing.T) {
		p := referenceProfile()
		p.GoalType = metabolic.GoalMaintenance
		p.recomputeTargets()
		if resp := p.response(); resp.Timeline != nil {
			t.Errorf("timeline = %+v, want nil", resp.Timeline)
		}
	})

	t.Run("nil conditions become empty", func(t *testing.T) {
		p := referenceProfile()
		p.HealthConditions = nil
		if resp := p.response(); resp.Profile.HealthConditions == nil {
			t.Error("HealthConditions is nil, want empty slice")
		}
	})
}

func TestRequireBiometrics(t *testing.T) {
	full := profileRequest{
		Age: ptr(30.0), Gender: ptr(metabolic.Male), Weight: ptr(80.0),
		Height: ptr(175.0), TargetWeight: ptr(70.0), GoalType: ptr(metabolic.GoalFatLoss),
	}
	if err := requireBiometrics(full); err != nil {
		t.Fatalf("requireBiometrics(full) = %v", err)
	}
	partial := full
	partial.Height = nil
	if err := requireBiometrics(partial); !errors.Is(err, errMissingBiometrics) {
		t.Errorf("requireBiometrics(no height) = %v, want errMissingBiometrics", err)
	}
}

func TestValidateProfileRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     profileRequest
		wantErr string
	}{
		{"empty patch", profileRequest{}, ""},
		{"valid fields", profileRequest{Age: ptr(45.0), DailySittingHours: ptr(0.0), TrainingFrequency: ptr(14.0)}, ""},
		{"zero age", profileRequest{Age: ptr(0.0)}, "age must be between 0 and 120"},
		{"age too high", profileRequest{Age: ptr(121.0)}, "age must be between 0 and 120"},
		{"negative weight", profileRequest{Weight: ptr(-1.0)}, "weight must be between 0 and 9999.9"},
		{"height too high", profileRequest{Height: ptr(301.0)}, "height must be between 0 and 300"},
		{"sitting over a day", profileRequest{DailySittingHours: ptr(25.0)}, "daily_sitting_hours must be between 0 and 24"},
		{"training too often", profileRequest{TrainingFrequency: ptr(15.0)}, "training_frequency must be between 0 and 14"},
		{"unknown gender", profileRequest{Gender: ptr(metabolic.Gender("x"))}, "invalid gender"},
		{"unknown pace", profileRequest{PacePreference: ptr(metabolic.Pace("gradual"))}, "invalid pace_preference"},
		{"unknown units", profileRequest{UnitSystem: ptr(metabolic.UnitSystem("stones"))}, "invalid unit_system"},
		{"unknown adherence", profileRequest{Adherence: ptr(metabolic.Adherence("1-2"))}, "invalid adherence_probability"},
		{"custom condition", profileRequest{HealthConditions: []string{"Thyroid", "Celiac"}}, ""},
		{"blank condition", profileRequest{HealthConditions: []string{"PCOS", " "}}, "health_conditions must not contain blank tags"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateProfileRequest(tc.req)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tc.wantErr {
				t.Errorf("error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateProfileRequest_TooManyConditions(t *testing.T) {
	conds := make([]string, maxConditions+1)
	for i := range conds {
		conds[i] = "tag"
	}
	if err := validateProfileRequest(profileRequest{HealthConditions: conds}); err == nil {
		t.Error("expected error for too many health_conditions")
	}
}

func TestApplyProfileRequest(t *testing.T) {
	p := referenceProfile()
	applyProfileRequest(&p, profileRequest{
		Name:             ptr("  Lyle G  "),
		Weight:           ptr(78.5),
		PacePreference:   ptr(metabolic.PaceAggressive),
		HealthConditions: []string{metabolic.ConditionThyroid},
	})

	if p.Name != "Lyle G" {
		t.Errorf("Name = %q, want trimmed", p.Name)
	}
	if p.Weight != 78.5 || p.PacePreference != metabolic.PaceAggressive {
		t.Errorf("weight/pace = %v/%q, want 78.5/aggressive", p.Weight, p.PacePreference)
	}
	if len(p.HealthConditions) != 1 || p.HealthConditions[0] != metabolic.ConditionThyroid {
		t.Errorf("HealthConditions = %v", p.HealthConditions)
	}
	// Untouched fields keep their values.
	if p.Height != 175 || p.GoalType != metabolic.GoalFatLoss {
		t.Errorf("height/goal changed: %v/%q", p.Height, p.GoalType)
	}
}
