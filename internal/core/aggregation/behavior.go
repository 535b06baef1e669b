package aggregation

import (
	"strings"

	"github.com/shopspring/decimal"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
)

// Insight types reported in a behavior profile.
const (
	InsightHighEngagement      = "high_engagement"
	InsightThoroughExploration = "thorough_exploration"
	InsightMobileNative        = "mobile_native"
	InsightAccessibility       = "accessibility_conscious"
)

// Behavior score components and insight thresholds.
const (
	pageTarget               = 5
	pageMaxScore             = 40
	timeTargetMs             = 60000
	timeMaxScore             = 30
	interactionMaxScore      = 30
	highEngagementMs         = 30000
	thoroughExplorationPages = 4
)

// Insight is one qualitative observation about a visit.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// BehaviorProfile summarizes how one visitor explored the site.
// Score is normalized to 0-100, unlike the session's cumulative engagement score.
type BehaviorProfile struct {
	PagesVisited    int       `json:"pagesVisited"`
	AvgTimePerPage  float64   `json:"avgTimePerPage"`
	Interactions    int       `json:"interactions"`
	EngagementScore int       `json:"engagementScore"`
	Insights        []Insight `json:"insights"`
}

// Behavior profiles a single session from its state and its own events.
// Events from other sessions are ignored.
func Behavior(s v1.Session, events []v1.Event) BehaviorProfile {
	pages := map[string]struct{}{}
	swiped := false
	for i := range events {
		e := &events[i]
		if e.SessionID != s.SessionID {
			continue
		}
		if e.Action == v1.ActionPageView {
			if page, ok := e.MetaString(v1.MetaPage); ok {
				pages[page] = struct{}{}
			}
		}
		if e.Kind == v1.KindInteraction && strings.Contains(strings.ToLower(e.Action), "swipe") {
			swiped = true
		}
	}

	var spent int64
	for page, d := range s.PageDwell {
		pages[page] = struct{}{}
		spent += d.TotalMs
	}
	if s.CurrentPage != "" {
		pages[s.CurrentPage] = struct{}{}
	}

	visited := len(pages)
	divisor := decimal.NewFromInt(int64(max(visited, 1)))
	avgTime := decimal.NewFromInt(spent).Div(divisor)
	interactionRate := decimal.NewFromInt(int64(s.InteractionCount)).Div(divisor)

	score := capped(decimal.NewFromInt(int64(visited)).Div(decimal.NewFromInt(pageTarget)), pageMaxScore).
		Add(capped(avgTime.Div(decimal.NewFromInt(timeTargetMs)), timeMaxScore)).
		Add(capped(interactionRate, interactionMaxScore))

	profile := BehaviorProfile{
		PagesVisited:    visited,
		AvgTimePerPage:  toFloat(avgTime, 2),
		Interactions:    s.InteractionCount,
		EngagementScore: int(score.Round(0).IntPart()),
		Insights:        []Insight{},
	}

	if avgTime.GreaterThan(decimal.NewFromInt(highEngagementMs)) {
		profile.Insights = append(profile.Insights, Insight{
			Type:    InsightHighEngagement,
			Message: "Visitor spends more than 30 seconds per page on average",
		})
	}
	if visited >= thoroughExplorationPages {
		profile.Insights = append(profile.Insights, Insight{
			Type:    InsightThoroughExploration,
			Message: "Visitor is exploring most of the portfolio",
		})
	}
	if s.DeviceInfo.DeviceType == v1.DeviceMobile && swiped {
		profile.Insights = append(profile.Insights, Insight{
			Type:    InsightMobileNative,
			Message: "Visitor navigates with mobile gestures",
		})
	}
	if s.Preferences[v1.PrefAnimationSpeed] == "reduced" {
		profile.Insights = append(profile.Insights, Insight{
			Type:    InsightAccessibility,
			Message: "Visitor prefers reduced motion",
		})
	}
	return profile
}

// capped scales ratio to limit and clamps it there.
func capped(ratio decimal.Decimal, limit int64) decimal.Decimal {
	l := decimal.NewFromInt(limit)
	return decimal.Min(ratio.Mul(l), l)
}
