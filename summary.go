package main

import (
	"math"
	"sort"
)

// round1 rounds grams to one decimal for display.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// summarizeDay totals one day's entries against the calorie target. Exercise
// calories are stored positive and subtract from intake: net = food - burned,
// left = target - net. The day is locked (on budget) while left >= 0.
func summarizeDay(date string, target int, food []foodEntry, exercise []exerciseEntry) daySummary {
	s := daySummary{Date: date, CalorieTarget: target}
	var protein, carbs, fat float64
	for _, f := range food {
		s.Calories += f.Calories
		protein += f.Protein
		carbs += f.Carbs
		fat += f.Fat
	}
	for _, e := range exercise {
		s.Burned += e.CaloriesBurned
	}
	s.Protein, s.Carbs, s.Fat = round1(protein), round1(carbs), round1(fat)
	s.NetCalories = s.Calories - s.Burned
	s.CaloriesLeft = target - s.NetCalories
	s.IsLocked = s.CaloriesLeft >= 0
	return s
}

// summarizeHistory groups entries by date and returns one summary per day
// that has any entry, oldest first, plus range stats. Averages are over the
// tracked days only and round half away from zero.
func summarizeHistory(target int, food []foodEntry, exercise []exerciseEntry) historyResponse {
	foodByDay := map[string][]foodEntry{}
	for _, f := range food {
		d := f.Date.String()
		foodByDay[d] = append(foodByDay[d], f)
	}
	exerciseByDay := map[string][]exerciseEntry{}
	for _, e := range exercise {
		d := e.Date.String()
		exerciseByDay[d] = append(exerciseByDay[d], e)
	}

	dates := make([]string, 0, len(foodByDay)+len(exerciseByDay))
	for d := range foodByDay {
		dates = append(dates, d)
	}
	for d := range exerciseByDay {
		if _, dup := foodByDay[d]; !dup {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	resp := historyResponse{Days: make([]daySummary, 0, len(dates))}
	var totalCalories, totalBurned, totalNet int
	for _, d := range dates {
		day := summarizeDay(d, target, foodByDay[d], exerciseByDay[d])
		resp.Days = append(resp.Days, day)
		totalCalories += day.Calories
		totalBurned += day.Burned
		totalNet += day.NetCalories
		resp.Stats.TotalCaloriesLeft += day.CaloriesLeft
		if day.IsLocked {
			resp.Stats.DaysOnBudget++
		}
	}

	if n := len(resp.Days); n > 0 {
		resp.Stats.DaysTracked = n
		resp.Stats.AvgCalories = int(math.Round(float64(totalCalories) / float64(n)))
		resp.Stats.AvgBurned = int(math.Round(float64(totalBurned) / float64(n)))
		resp.Stats.AvgNetCalories = int(math.Round(float64(totalNet) / float64(n)))
	}
	return resp
}
