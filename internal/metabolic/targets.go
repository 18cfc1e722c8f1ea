package metabolic

// Calorie floors by gender. The floor always wins over the goal adjustment.
const (
	maleCalorieFloor  = 1500
	otherCalorieFloor = 1200
)

// Targets is the output of CalculateTargets.
type Targets struct {
	TDEE               int    `json:"tdee"`
	DailyCalorieTarget int    `json:"daily_calorie_target"`
	DailyMacroTargets  Macros `json:"daily_macro_targets"`
}

// CalculateTargets estimates TDEE (Mifflin-St Jeor BMR times an activity
// multiplier, then scaled by body type, conditions, diet history and sleep),
// applies the goal adjustment and splits the resulting calorie budget into
// macros. It never fails: an empty profile still yields the calorie floor.
func CalculateTargets(p Profile) Targets {
	bmr := 10*p.WeightKG() + 6.25*p.Height - 5*p.Age
	if p.Gender == Male {
		bmr += 5
	} else {
		bmr -= 161
	}

	tdee := bmr * activityMultiplier(p)
	tdee = scaleExpenditure(p, tdee)

	adjustment, proteinRatio := goalAdjustment(p.GoalType, p.Pace)
	proteinRatio, fatRatio := applyRatioFloors(p, proteinRatio, defaultFatRatio)

	calories := max(roundHalfUp(tdee+adjustment), calorieFloor(p.Gender))
	carbsRatio := 1 - proteinRatio - fatRatio

	return Targets{
		TDEE:               roundHalfUp(tdee),
		DailyCalorieTarget: calories,
		DailyMacroTargets: Macros{
			Protein: roundHalfUp(float64(calories) * proteinRatio / kcalPerGramProtein),
			Carbs:   roundHalfUp(float64(calories) * carbsRatio / kcalPerGramCarbs),
			Fat:     roundHalfUp(float64(calories) * fatRatio / kcalPerGramFat),
		},
	}
}

func calorieFloor(g Gender) int {
	if g == Male {
		return maleCalorieFloor
	}
	return otherCalorieFloor
}
