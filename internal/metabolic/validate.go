package metabolic

// Valid reports whether the value is one of the declared constants. The
// calculation tolerates unknown values, but callers accepting user input
// should reject them.
func (u UnitSystem) Valid() bool { return u == Metric || u == Imperial }

func (g Gender) Valid() bool { return g == Male || g == Female || g == Other }

func (j JobType) Valid() bool {
	switch j {
	case JobSedentary, JobMixed, JobPhysical:
		return true
	}
	return false
}

func (t TrainingType) Valid() bool {
	switch t {
	case TrainingResistance, TrainingCardio, TrainingMixed, TrainingNone:
		return true
	}
	return false
}

func (b BodyType) Valid() bool {
	switch b {
	case Ectomorph, Mesomorph, Endomorph, BodyNotSure:
		return true
	}
	return false
}

func (d DietHistory) Valid() bool {
	switch d {
	case DietYoYo, DietFirstTime, DietConsistent:
		return true
	}
	return false
}

func (s SleepDuration) Valid() bool {
	switch s {
	case SleepUnder5, Sleep6To7, Sleep8Plus:
		return true
	}
	return false
}

func (g GoalType) Valid() bool {
	switch g {
	case GoalFatLoss, GoalMuscleGain, GoalRecomposition, GoalMaintenance, GoalPerformance:
		return true
	}
	return false
}

func (p Pace) Valid() bool {
	switch p {
	case PaceAggressive, PaceModerate, PaceSustainable:
		return true
	}
	return false
}

func (a Adherence) Valid() bool {
	switch a {
	case Adherence3To4, Adherence5To6, Adherence7:
		return true
	}
	return false
}
