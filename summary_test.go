package main

import (
	"testing"
	"time"
)

func day(s string) DateOnly {
	t, _ := time.Parse(dateLayout, s)
	return DateOnly{t}
}

func TestSummarizeDay(t *testing.T) {
	tests := []struct {
		name     string
		target   int
		food     []foodEntry
		exercise []exerciseEntry
		want     daySummary
	}{
		{
			name:   "empty day",
			target: 2000,
			want:   daySummary{Date: "2026-10-18", CalorieTarget: 2000, CaloriesLeft: 2000, IsLocked: true},
		},
		{
			name:   "exercise offsets intake",
			target: 1800,
			food: []foodEntry{
				{Calories: 1500, Protein: 80.2, Carbs: 150, Fat: 50},
				{Calories: 600, Protein: 30.1, Carbs: 60, Fat: 20.04},
			},
			exercise: []exerciseEntry{{CaloriesBurned: 400}},
			want: daySummary{
				Date: "2026-10-18", CalorieTarget: 1800,
				Calories: 2100, Protein: 110.3, Carbs: 210, Fat: 70,
				Burned: 400, NetCalories: 1700, CaloriesLeft: 100, IsLocked: true,
			},
		},
		{
			name:   "exactly on target stays locked",
			target: 1500,
			food:   []foodEntry{{Calories: 1500}},
			want:   daySummary{Date: "2026-10-18", CalorieTarget: 1500, Calories: 1500, NetCalories: 1500, IsLocked: true},
		},
		{
			name:   "over budget",
			target: 1500,
			food:   []foodEntry{{Calories: 1501}},
			want:   daySummary{Date: "2026-10-18", CalorieTarget: 1500, Calories: 1501, NetCalories: 1501, CaloriesLeft: -1},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := summarizeDay("2026-10-18", tc.target, tc.food, tc.exercise)
			if got != tc.want {
				t.Errorf("summarizeDay() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSummarizeHistory(t *testing.T) {
	food := []foodEntry{
		{Date: day("2026-10-03"), Calories: 1900},
		{Date: day("2026-10-01"), Calories: 1000},
		{Date: day("2026-10-01"), Calories: 500},
	}
	exercise := []exerciseEntry{
		{Date: day("2026-10-02"), CaloriesBurned: 300},
		{Date: day("2026-10-03"), CaloriesBurned: 101},
	}

	got := summarizeHistory(1600, food, exercise)

	if len(got.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(got.Days))
	}
	for i, want := range []string{"2026-10-01", "2026-10-02", "2026-10-03"} {
		if got.Days[i].Date != want {
			t.Errorf("day %d = %s, want %s", i, got.Days[i].Date, want)
		}
	}
	// Nets: 1500, -300, 1799. Left: 100, 1900, -199.
	want := progressStats{
		DaysTracked:       3,
		DaysOnBudget:      2,
		AvgCalories:       1133, // 3400/3
		AvgBurned:         134,  // 401/3
		AvgNetCalories:    1000, // 2999/3 = 999.67
		TotalCaloriesLeft: 1801,
	}
	if got.Stats != want {
		t.Errorf("stats = %+v, want %+v", got.Stats, want)
	}
}

func TestSummarizeHistory_Empty(t *testing.T) {
	got := summarizeHistory(2000, nil, nil)
	if got.Days == nil || len(got.Days) != 0 {
		t.Errorf("days = %#v, want empty non-nil slice", got.Days)
	}
	if got.Stats != (progressStats{}) {
		t.Errorf("stats = %+v, want zero", got.Stats)
	}
}
