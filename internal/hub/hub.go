// Package hub keeps the registry of live sessions. Each session owns a
// tracker, the beacon environment its signals arrive through and the
// collector attached to it.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/beacon"
	"github.com/aevon-lab/folio-analytics/internal/collector"
	"github.com/aevon-lab/folio-analytics/internal/core/aggregation"
	"github.com/aevon-lab/folio-analytics/internal/core/storage"
	"github.com/aevon-lab/folio-analytics/internal/metrics"
	"github.com/aevon-lab/folio-analytics/internal/tracker"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrClosed          = errors.New("hub is closed")
)

const slotPrefix = "session:"

// SlotFor names the persistence slot of a session.
func SlotFor(sessionID string) string {
	return slotPrefix + sessionID
}

// Options configures a Hub.
type Options struct {
	// Store persists every session into its own slot. Nil keeps everything in memory.
	Store     storage.SnapshotStore
	Listeners []tracker.Listener

	// MaxSessions bounds live sessions; the least recently active one is
	// ended when the bound is hit. Zero means unbounded.
	MaxSessions int

	// IdleTimeout ends sessions without activity. Zero disables it.
	IdleTimeout time.Duration

	// EndTimeout bounds the final flush of evicted sessions.
	EndTimeout time.Duration

	ScrollInterval time.Duration
	Now            func() time.Time
	NewID          func() string
}

type entry struct {
	tracker   *tracker.Tracker
	env       *beacon.Environment
	collector *collector.Collector
}

// Hub is safe for concurrent use.
type Hub struct {
	opts Options
	live *expirable.LRU[string, *entry]

	mu      sync.RWMutex
	archive []*tracker.Tracker
	history storage.Document
	closed  bool

	snapshots singleflight.Group
	evictions sync.WaitGroup
}

// New creates an empty hub. Call LoadHistory before serving traffic.
func New(opts Options) *Hub {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.EndTimeout <= 0 {
		opts.EndTimeout = 10 * time.Second
	}

	h := &Hub{opts: opts}
	h.live = expirable.NewLRU[string, *entry](opts.MaxSessions, h.onEvict, opts.IdleTimeout)
	return h
}

// onEvict runs under the LRU lock for every entry leaving the live set,
// whether removed, purged, expired or pushed out by capacity.
func (h *Hub) onEvict(id string, e *entry) {
	metrics.ActiveSessions.Dec()

	h.mu.Lock()
	h.archive = append(h.archive, e.tracker)
	h.mu.Unlock()

	if e.tracker.Ended() {
		return
	}

	metrics.SessionsEnded.WithLabelValues("evicted").Inc()
	slog.Info("[Hub] Evicting session", "session_id", id)

	h.evictions.Add(1)
	go func() {
		defer h.evictions.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.opts.EndTimeout)
		defer cancel()
		e.tracker.End(ctx)
	}()
}

// LoadHistory seeds historical aggregation with every persisted slot.
func (h *Hub) LoadHistory(ctx context.Context) error {
	if h.opts.Store == nil {
		return nil
	}
	doc, err := storage.LoadAll(ctx, h.opts.Store)
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues("load").Inc()
		return fmt.Errorf("load history: %w", err)
	}

	h.mu.Lock()
	h.history = doc
	h.mu.Unlock()

	slog.Info("[Hub] History loaded",
		"sessions", len(doc.Sessions),
		"events", len(doc.Events),
	)
	return nil
}

// StartSession creates and starts a session for the given navigation context.
func (h *Hub) StartSession(ctx context.Context, req v1.StartSessionRequest) (v1.Session, error) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return v1.Session{}, ErrClosed
	}

	id := h.opts.NewID()
	tr := tracker.New(tracker.Options{
		Store:     h.opts.Store,
		Slot:      SlotFor(id),
		SessionID: id,
		Listeners: h.opts.Listeners,
		Now:       h.opts.Now,
		NewID:     h.opts.NewID,
	})

	env := beacon.NewEnvironment(req.Capabilities)
	col := collector.New(tr, collector.Options{
		Now:            h.opts.Now,
		ScrollInterval: h.opts.ScrollInterval,
	})
	attached := col.Attach(env)

	session, err := tr.Start(req.Navigation)
	if err != nil {
		return v1.Session{}, err
	}

	h.live.Add(id, &entry{tracker: tr, env: env, collector: col})
	metrics.ActiveSessions.Inc()

	slog.Debug("[Hub] Session registered",
		"session_id", id,
		"capabilities", len(attached),
	)
	return session, nil
}

// lookup returns a live entry and marks it active.
func (h *Hub) lookup(id string) (*entry, error) {
	e, ok := h.live.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	h.live.Add(id, e)
	return e, nil
}

// Dispatch feeds a beacon batch to the session's collector. A pagehide in
// the batch ends the session.
func (h *Hub) Dispatch(id string, signals []v1.RawSignal) (beacon.BatchResult, error) {
	e, err := h.lookup(id)
	if err != nil {
		return beacon.BatchResult{}, err
	}

	res := e.env.DispatchBatch(signals)

	if e.tracker.Ended() {
		metrics.SessionsEnded.WithLabelValues("pagehide").Inc()
		h.live.Remove(id)
	}
	return res, nil
}

// Track applies an explicit recording call from page code.
func (h *Hub) Track(id string, req v1.TrackRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	e, err := h.lookup(id)
	if err != nil {
		return err
	}

	tr := e.tracker
	switch req.Type {
	case v1.TrackEvent:
		tr.RecordEvent(req.Kind, req.Category, req.Action, req.Value, req.Metadata)
	case v1.TrackPageView:
		tr.RecordPageView(req.Page, req.Title)
	case v1.TrackFeature:
		tr.RecordFeatureUsage(req.Feature, req.Value, req.Metadata)
	case v1.TrackConversion:
		tr.RecordConversion(req.Conversion, req.Value)
	case v1.TrackError:
		tr.RecordError(req.Message, req.Metadata)
	case v1.TrackPreference:
		tr.RecordPreferenceChange(req.Preference, req.Setting)
	}
	return nil
}

// EndSession finalizes a live session and returns its final state.
func (h *Hub) EndSession(ctx context.Context, id string) (v1.Session, error) {
	e, ok := h.live.Peek(id)
	if !ok {
		return v1.Session{}, ErrSessionNotFound
	}

	e.tracker.End(ctx)
	metrics.SessionsEnded.WithLabelValues("client").Inc()
	h.live.Remove(id)

	s, _ := e.tracker.Session()
	return s, nil
}

// Session looks a session up among live, archived and historical sessions.
func (h *Hub) Session(id string) (v1.Session, error) {
	s, _, err := h.SessionDetail(id)
	return s, err
}

// SessionDetail returns a session together with its own event log.
func (h *Hub) SessionDetail(id string) (v1.Session, []v1.Event, error) {
	if e, ok := h.live.Peek(id); ok {
		if s, ok := e.tracker.Session(); ok {
			return s, e.tracker.Events(), nil
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.archive) - 1; i >= 0; i-- {
		if tr := h.archive[i]; tr.SessionID() == id {
			s, _ := tr.Session()
			return s, tr.Events(), nil
		}
	}
	for i := range h.history.Sessions {
		if h.history.Sessions[i].SessionID == id {
			var events []v1.Event
			for _, e := range h.history.Events {
				if e.SessionID == id {
					events = append(events, e)
				}
			}
			return h.history.Sessions[i].Clone(), events, nil
		}
	}
	return v1.Session{}, nil, ErrSessionNotFound
}

// Analytics summarizes history, archived and live sessions over window.
// Concurrent requests for the same window share one computation.
func (h *Hub) Analytics(window time.Duration) aggregation.Snapshot {
	v, _, _ := h.snapshots.Do(window.String(), func() (interface{}, error) {
		start := time.Now()
		doc := h.document()
		snap := aggregation.Compute(doc.Events, doc.Sessions, window, h.opts.Now())
		metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
		return snap, nil
	})
	return v.(aggregation.Snapshot)
}

// document merges every known session into one read-only document.
func (h *Hub) document() storage.Document {
	h.mu.RLock()
	doc := h.history
	archived := append([]*tracker.Tracker(nil), h.archive...)
	h.mu.RUnlock()

	for _, tr := range archived {
		doc = doc.Merge(tr.Export())
	}
	for _, e := range h.live.Values() {
		doc = doc.Merge(e.tracker.Export())
	}
	return doc
}

// trackers returns live and archived trackers.
func (h *Hub) trackers() []*tracker.Tracker {
	h.mu.RLock()
	out := append([]*tracker.Tracker(nil), h.archive...)
	h.mu.RUnlock()

	for _, e := range h.live.Values() {
		out = append(out, e.tracker)
	}
	return out
}

// FlushAll persists every session that changed since its last write,
// including archived sessions whose final write failed.
func (h *Hub) FlushAll(ctx context.Context) (failed int) {
	for _, tr := range h.trackers() {
		if err := ctx.Err(); err != nil {
			return failed
		}
		if err := tr.Flush(ctx); err != nil {
			failed++
			slog.Warn("[Hub] Flush failed", "slot", tr.Slot(), "error", err)
		}
	}
	return failed
}

// RefreshAll recomputes duration and bounce state of live sessions.
func (h *Hub) RefreshAll() {
	for _, e := range h.live.Values() {
		e.tracker.RefreshDuration()
	}
}

// Live returns the number of live sessions.
func (h *Hub) Live() int {
	return h.live.Len()
}

// Prune forgets archived and historical sessions that started before
// retention ago, with their events. Persisted slots are left untouched.
func (h *Hub) Prune(retention time.Duration) int {
	if retention <= 0 {
		return 0
	}
	cutoff := h.opts.Now().Add(-retention).UnixMilli()

	h.mu.Lock()
	defer h.mu.Unlock()

	pruned := 0
	kept := h.archive[:0]
	for _, tr := range h.archive {
		s, ok := tr.Session()
		if ok && s.StartTime < cutoff {
			pruned++
			continue
		}
		kept = append(kept, tr)
	}
	for i := len(kept); i < len(h.archive); i++ {
		h.archive[i] = nil
	}
	h.archive = kept

	sessions := make([]v1.Session, 0, len(h.history.Sessions))
	for _, s := range h.history.Sessions {
		if s.StartTime < cutoff {
			pruned++
			continue
		}
		sessions = append(sessions, s)
	}
	events := make([]v1.Event, 0, len(h.history.Events))
	for _, e := range h.history.Events {
		if e.Timestamp >= cutoff {
			events = append(events, e)
		}
	}
	h.history = storage.Document{Events: events, Sessions: sessions}

	if pruned > 0 {
		slog.Info("[Hub] Pruned sessions", "count", pruned, "retention", retention.String())
	}
	return pruned
}

// Close ends every live session, persisting it, and waits for evicted
// sessions to finish their final write.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	for _, e := range h.live.Values() {
		if e.tracker.Ended() {
			continue
		}
		e.tracker.End(ctx)
		metrics.SessionsEnded.WithLabelValues("shutdown").Inc()
	}
	h.live.Purge()

	done := make(chan struct{})
	go func() {
		h.evictions.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("[Hub] Closed")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for evicted sessions: %w", ctx.Err())
	}
}
