package aggregation

import "github.com/shopspring/decimal"

// Performance action names recorded by the collector.
const (
	ActionLCP  = "performance_lcp"
	ActionFID  = "performance_fid"
	ActionCLS  = "performance_cls"
	ActionFCP  = "performance_fcp"
	ActionTTFB = "performance_ttfb"
)

type threshold struct {
	poor, poorPenalty           decimal.Decimal
	needsWork, needsWorkPenalty decimal.Decimal
}

func newThreshold(poor string, poorPenalty int64, needsWork string, needsWorkPenalty int64) threshold {
	return threshold{
		poor:             decimal.RequireFromString(poor),
		poorPenalty:      decimal.NewFromInt(poorPenalty),
		needsWork:        decimal.RequireFromString(needsWork),
		needsWorkPenalty: decimal.NewFromInt(needsWorkPenalty),
	}
}

// penalty returns the deduction for a mean sample. Boundaries are exclusive.
func (t threshold) penalty(m decimal.Decimal) decimal.Decimal {
	switch {
	case m.GreaterThan(t.poor):
		return t.poorPenalty
	case m.GreaterThan(t.needsWork):
		return t.needsWorkPenalty
	default:
		return decimal.Zero
	}
}

var scoredVitals = map[string]threshold{
	ActionLCP: newThreshold("4000", 30, "2500", 15),
	ActionFID: newThreshold("300", 25, "100", 10),
	ActionCLS: newThreshold("0.25", 20, "0.1", 10),
}

// PerformanceScore scores mean Core Web Vitals samples on a 0-100 scale.
// events counts performance events in the window; with none the score is 0,
// meaning "no data". Otherwise scoring starts at 100 and metrics without
// samples cost nothing.
func PerformanceScore(events int, vitals map[string]*mean) int {
	if events == 0 {
		return 0
	}
	score := decimal.NewFromInt(100)
	for action, th := range scoredVitals {
		m, ok := vitals[action]
		if !ok || m.Empty() {
			continue
		}
		score = score.Sub(th.penalty(m.Value()))
	}
	if score.IsNegative() {
		return 0
	}
	return int(score.IntPart())
}
