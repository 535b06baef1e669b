package projection

import (
	"errors"
	"fmt"
	"time"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/core/aggregation"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid analytics query")

// Reader is the read side of the session hub.
type Reader interface {
	SessionDetail(id string) (v1.Session, []v1.Event, error)
	Analytics(window time.Duration) aggregation.Snapshot
}

// Service implements the dashboard query layer over the session hub.
type Service struct {
	reader        Reader
	defaultWindow string
	nowFn         func() time.Time
}

// NewService creates a projection service. defaultWindow is used when a
// request names none.
func NewService(reader Reader, defaultWindow string) *Service {
	if reader == nil {
		panic("projection: reader must not be nil")
	}
	if defaultWindow == "" {
		defaultWindow = "24h"
	}
	return &Service{
		reader:        reader,
		defaultWindow: defaultWindow,
		nowFn:         time.Now,
	}
}

// QueryAnalytics resolves the window and computes the dashboard snapshot.
func (s *Service) QueryAnalytics(req AnalyticsQueryRequest) (AnalyticsResponse, error) {
	window := req.Window
	if window == "" {
		window = s.defaultWindow
	}

	w, err := aggregation.ParseWindow(window)
	if err != nil {
		return AnalyticsResponse{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	return AnalyticsResponse{
		Window:      w.Name,
		GeneratedAt: s.nowFn().UTC(),
		Analytics:   s.reader.Analytics(w.Size),
	}, nil
}

// QuerySession returns one session summary with its behavior profile.
func (s *Service) QuerySession(id string) (SessionResponse, error) {
	session, events, err := s.reader.SessionDetail(id)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{
		Session:  session,
		Ended:    session.Ended(),
		Behavior: aggregation.Behavior(session, events),
	}, nil
}
