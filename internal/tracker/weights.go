package tracker

import v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"

// DefaultWeight applies to actions missing from the weight table.
const DefaultWeight = 1

var weights = map[string]int{
	v1.ActionClick:        1,
	v1.ActionScroll25:     1,
	v1.ActionScroll50:     2,
	v1.ActionScroll75:     3,
	v1.ActionScroll100:    4,
	v1.ActionFormFocus:    2,
	v1.ActionFeatureUsage: 3,
	v1.ActionConversion:   5,
	v1.ActionPageView:     1,
}

// WeightFor returns the engagement weight of an action.
func WeightFor(action string) int {
	if w, ok := weights[action]; ok {
		return w
	}
	return DefaultWeight
}

// eventWeight resolves the weight for a recorded event. Conversions always
// carry the conversion weight whatever their action name.
func eventWeight(kind v1.Kind, action string) int {
	if kind == v1.KindConversion {
		return weights[v1.ActionConversion]
	}
	return WeightFor(action)
}
