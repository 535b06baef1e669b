// Package aggregation derives analytics snapshots from session event logs.
package aggregation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
)

const scrollActionPrefix = "scroll_"

// Compute summarizes events and sessions captured within window of now.
// A window <= 0 covers all time. Inputs are never mutated, and the result
// depends only on the arguments.
func Compute(events []v1.Event, sessions []v1.Session, window time.Duration, now time.Time) Snapshot {
	from := cutoff(window, now)

	snap := Snapshot{
		TopPages:     []PageStat{},
		TopFeatures:  []FeatureStat{},
		TopReferrers: []ReferrerStat{},
		Devices:      map[v1.DeviceType]int{},
		EventsByKind: map[v1.Kind]int{},
	}

	users := map[string]struct{}{}
	var duration, engagement mean
	bounced := 0
	referrers := map[string]*tally{}
	dwell := map[string]v1.PageDwell{}

	for i := range sessions {
		s := &sessions[i]
		if s.StartTime < from {
			continue
		}
		snap.TotalSessions++
		if s.UserID != "" {
			users[s.UserID] = struct{}{}
		}
		duration.Add(decimal.NewFromInt(s.TimeOnSite))
		engagement.Add(decimal.NewFromInt(int64(s.EngagementScore)))
		if s.BounceRate == 1 {
			bounced++
		}
		if !s.Ended() {
			snap.ActiveSessions++
		}

		device := s.DeviceInfo.DeviceType
		if device == "" {
			device = "unknown"
		}
		snap.Devices[device]++

		ref := s.Referrer
		if ref == "" {
			ref = DirectReferrer
		}
		bump(referrers, ref)

		for page, d := range s.PageDwell {
			acc := dwell[page]
			acc.Visits += d.Visits
			acc.TotalMs += d.TotalMs
			dwell[page] = acc
		}
	}

	snap.TotalUsers = len(users)
	if snap.TotalUsers == 0 {
		snap.TotalUsers = snap.TotalSessions
	}
	snap.AverageSessionDuration = duration.Rounded(2)
	snap.AverageEngagementScore = engagement.Rounded(2)
	snap.BounceRate = percent(bounced, snap.TotalSessions)

	pages := map[string]*tally{}
	features := map[string]*tally{}
	vitals := map[string]*mean{}
	maxScroll := map[string]decimal.Decimal{}
	conversions := 0
	perfEvents := 0

	recentCutoff := now.Add(-RealtimeWindow * time.Minute).UnixMilli()
	activity := newActivity(now)

	for i := range events {
		e := &events[i]
		if e.Timestamp < from {
			continue
		}
		snap.EventsByKind[e.Kind]++
		if e.Timestamp >= recentCutoff {
			snap.RecentEvents++
		}
		activity.add(e.Time())

		if e.Action == v1.ActionPageView {
			snap.TotalPageViews++
			page, ok := e.MetaString(v1.MetaPage)
			if !ok {
				page = UnknownPage
			}
			bump(pages, page)
		}

		if e.Kind == v1.KindConversion {
			conversions++
		}

		if e.Category == "feature" {
			name, ok := e.MetaString(v1.MetaFeature)
			if !ok {
				name = e.Action
			}
			t := bump(features, name)
			t.sum.AddFloat(featureValue(e))
		}

		if e.Kind == v1.KindPerformance || e.Category == "performance" {
			perfEvents++
			if e.Value != nil {
				m, ok := vitals[e.Action]
				if !ok {
					m = &mean{}
					vitals[e.Action] = m
				}
				m.AddFloat(*e.Value)
			}
		}

		if strings.HasPrefix(e.Action, scrollActionPrefix) {
			if depth, ok := ExtractDecimal(e.Metadata, v1.MetaScrollPercent); ok {
				if cur, seen := maxScroll[e.SessionID]; !seen || depth.GreaterThan(cur) {
					maxScroll[e.SessionID] = depth
				}
			}
		}
	}

	snap.ConversionRate = percent(conversions, snap.TotalSessions)

	for _, page := range rankKeys(pages, TopN) {
		stat := PageStat{Page: page, Views: pages[page].count}
		if d := dwell[page]; d.Visits > 0 {
			stat.AvgTime = toFloat(decimal.NewFromInt(d.TotalMs).Div(decimal.NewFromInt(int64(d.Visits))), 2)
		}
		snap.TopPages = append(snap.TopPages, stat)
	}

	for _, name := range rankKeys(features, TopN) {
		t := features[name]
		snap.TopFeatures = append(snap.TopFeatures, FeatureStat{
			Feature:    name,
			Usage:      t.count,
			Engagement: toFloat(t.sum.sum, 2),
		})
	}

	for _, ref := range rankKeys(referrers, TopN) {
		snap.TopReferrers = append(snap.TopReferrers, ReferrerStat{Referrer: ref, Sessions: referrers[ref].count})
	}

	var scroll mean
	for _, depth := range maxScroll {
		scroll.Add(depth)
	}
	snap.AverageScrollDepth = scroll.Rounded(2)

	snap.PerformanceScore = PerformanceScore(perfEvents, vitals)
	snap.WebVitals = WebVitals{
		LCP:  vitalMean(vitals, ActionLCP, 2),
		FID:  vitalMean(vitals, ActionFID, 2),
		CLS:  vitalMean(vitals, ActionCLS, 4),
		FCP:  vitalMean(vitals, ActionFCP, 2),
		TTFB: vitalMean(vitals, ActionTTFB, 2),
	}
	snap.Activity = activity.buckets()

	return snap
}

// featureValue is the event value, or 1 when absent.
func featureValue(e *v1.Event) float64 {
	return e.ValueOr(1)
}

func vitalMean(vitals map[string]*mean, action string, places int32) float64 {
	m, ok := vitals[action]
	if !ok {
		return 0
	}
	return m.Rounded(places)
}

// activity counts events per minute over the real-time horizon.
type activity struct {
	first  time.Time
	counts []int
}

func newActivity(now time.Time) *activity {
	last := BucketFor(now, time.Minute)
	return &activity{
		first:  last.Add(-(RealtimeWindow - 1) * time.Minute),
		counts: make([]int, RealtimeWindow),
	}
}

func (a *activity) add(ts time.Time) {
	idx := int(BucketFor(ts, time.Minute).Sub(a.first) / time.Minute)
	if idx < 0 || idx >= len(a.counts) {
		return
	}
	a.counts[idx]++
}

func (a *activity) buckets() []ActivityBucket {
	out := make([]ActivityBucket, len(a.counts))
	for i, n := range a.counts {
		out[i] = ActivityBucket{
			Start:  a.first.Add(time.Duration(i) * time.Minute).UnixMilli(),
			Events: n,
		}
	}
	return out
}
