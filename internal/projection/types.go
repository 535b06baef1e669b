package projection

import (
	"time"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/core/aggregation"
)

// AnalyticsQueryRequest represents the query parameters of the dashboard endpoint.
type AnalyticsQueryRequest struct {
	Window string `form:"window"` // default: configured window; "all" for all time
}

// AnalyticsResponse wraps a snapshot with the window it covers.
type AnalyticsResponse struct {
	Window      string               `json:"window"`
	GeneratedAt time.Time            `json:"generated_at"`
	Analytics   aggregation.Snapshot `json:"analytics"`
}

// SessionResponse is the session summary for one visit.
type SessionResponse struct {
	Session  v1.Session                  `json:"session"`
	Ended    bool                        `json:"ended"`
	Behavior aggregation.BehaviorProfile `json:"behavior"`
}
