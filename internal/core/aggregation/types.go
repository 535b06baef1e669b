package aggregation

import v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"

// Ranking sizes and real-time horizon.
const (
	TopN           = 5
	RealtimeWindow = 5 // minutes
	DirectReferrer = "direct"
	UnknownPage    = "unknown"
)

// Snapshot is the derived summary of an event log over a time window.
// It is recomputed on every request and never persisted.
type Snapshot struct {
	TotalSessions          int     `json:"totalSessions"`
	TotalUsers             int     `json:"totalUsers"`
	TotalPageViews         int     `json:"totalPageViews"`
	AverageSessionDuration float64 `json:"averageSessionDuration"`
	AverageEngagementScore float64 `json:"averageEngagementScore"`
	ConversionRate         float64 `json:"conversionRate"`

	TopPages         []PageStat    `json:"topPages"`
	TopFeatures      []FeatureStat `json:"topFeatures"`
	PerformanceScore int           `json:"performanceScore"`

	// Audience and behavior breakdowns.
	BounceRate         float64               `json:"bounceRate"`
	AverageScrollDepth float64               `json:"averageScrollDepth"`
	Devices            map[v1.DeviceType]int `json:"devices"`
	TopReferrers       []ReferrerStat        `json:"topReferrers"`
	EventsByKind       map[v1.Kind]int       `json:"eventsByKind"`
	WebVitals          WebVitals             `json:"webVitals"`

	// Real-time tab.
	ActiveSessions int              `json:"activeSessions"`
	RecentEvents   int              `json:"recentEvents"`
	Activity       []ActivityBucket `json:"activity"`
}

// PageStat ranks a page by views. AvgTime is the mean closed dwell in ms.
type PageStat struct {
	Page    string  `json:"page"`
	Views   int     `json:"views"`
	AvgTime float64 `json:"avgTime"`
}

// FeatureStat ranks a feature by usage. Engagement sums event values,
// counting 1 for events without one.
type FeatureStat struct {
	Feature    string  `json:"feature"`
	Usage      int     `json:"usage"`
	Engagement float64 `json:"engagement"`
}

type ReferrerStat struct {
	Referrer string `json:"referrer"`
	Sessions int    `json:"sessions"`
}

// WebVitals holds mean samples per metric. Zero means no samples.
type WebVitals struct {
	LCP  float64 `json:"lcp"`
	FID  float64 `json:"fid"`
	CLS  float64 `json:"cls"`
	FCP  float64 `json:"fcp"`
	TTFB float64 `json:"ttfb"`
}

// ActivityBucket counts events captured within one minute.
type ActivityBucket struct {
	Start  int64 `json:"start"`
	Events int   `json:"events"`
}
