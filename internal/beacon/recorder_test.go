package beacon

import (
	"context"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
)

type countingRecorder struct {
	actions []string
}

func (r *countingRecorder) RecordEvent(_ v1.Kind, _, action string, _ *float64, _ map[string]any) {
	r.actions = append(r.actions, action)
}

func (r *countingRecorder) RecordError(string, map[string]any) {}
func (r *countingRecorder) RefreshDuration()                   {}
func (r *countingRecorder) UpdateViewport(int, int)            {}
func (r *countingRecorder) End(context.Context)                {}
