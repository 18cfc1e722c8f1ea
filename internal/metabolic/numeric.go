package metabolic

import "math"

const (
	lbsToKG = 0.453592

	// KcalPerKG is the energy equivalent of one kilogram of body mass change.
	KcalPerKG = 7700

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

func toKG(units UnitSystem, w float64) float64 {
	if units == Imperial {
		return w * lbsToKG
	}
	return w
}

// ConvertWeight re-expresses w, given in from units, in to units, rounded to
// one decimal. Anything but Imperial reads as metric.
func ConvertWeight(w float64, from, to UnitSystem) float64 {
	if (from == Imperial) == (to == Imperial) {
		return w
	}
	out := toKG(from, w)
	if to == Imperial {
		out = w / lbsToKG
	}
	return math.Round(out*10) / 10
}

// roundHalfUp rounds .5 toward +Inf so negative intermediate values (an empty
// profile yields a negative BMR) round the same way on every call site.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func ceilInt(x float64) int {
	return int(math.Ceil(x))
}
