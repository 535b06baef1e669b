package ingestion

import (
	"context"

	"github.com/gin-gonic/gin"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/beacon"
)

// Sessions is the write side of the session hub.
type Sessions interface {
	StartSession(ctx context.Context, req v1.StartSessionRequest) (v1.Session, error)
	Dispatch(id string, signals []v1.RawSignal) (beacon.BatchResult, error)
	Track(id string, req v1.TrackRequest) error
	EndSession(ctx context.Context, id string) (v1.Session, error)
}

type Service struct {
	sessions         Sessions
	maxBodySizeBytes int
}

func NewService(sessions Sessions, maxBodySizeKB int) *Service {
	if sessions == nil {
		panic("ingestion: sessions must not be nil")
	}
	if maxBodySizeKB <= 0 {
		maxBodySizeKB = 64 // beacons are small
	}
	return &Service{
		sessions:         sessions,
		maxBodySizeBytes: maxBodySizeKB * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/sessions", s.StartSessionHandler)
	r.POST("/v1/sessions/:session_id/signals", s.SignalsHandler)
	r.POST("/v1/sessions/:session_id/events", s.TrackHandler)
	r.POST("/v1/sessions/:session_id/end", s.EndSessionHandler)
}
