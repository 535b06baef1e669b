// Package tracker holds the authoritative state of one visitor session:
// the Session descriptor, its in-order event log and the engagement score.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/core/aggregation"
	"github.com/aevon-lab/folio-analytics/internal/core/storage"
	"github.com/aevon-lab/folio-analytics/internal/metrics"
)

// ErrAlreadyStarted is returned by Start and Restore once the session exists.
var ErrAlreadyStarted = errors.New("session already started")

// DefaultSlot is used when Options.Slot is empty.
const DefaultSlot = "folio_analytics"

// CategorySession marks lifecycle events. They are logged but never counted or weighted.
const CategorySession = "session"

// Listener is notified after each event is appended to the log.
// Panics raised by a listener are recovered and discarded.
type Listener interface {
	EventRecorded(evt v1.Event)
}

// Options configures a Tracker. Zero values fall back to sane defaults.
type Options struct {
	// Store mirrors the session into Slot. Nil disables persistence.
	Store     storage.SnapshotStore
	Slot      string
	Listeners []Listener

	// SessionID is assigned by Start. Empty means generate one.
	SessionID string

	Now   func() time.Time
	NewID func() string
}

type pendingEvent struct {
	kind      v1.Kind
	category  string
	action    string
	value     *float64
	metadata  map[string]any
	timestamp int64
}

// Tracker is safe for concurrent use. All mutations are serialized by mu, so
// the event log order is exactly the order in which calls were accepted.
type Tracker struct {
	mu      sync.Mutex
	session *v1.Session
	events  []v1.Event
	pending []pendingEvent
	history storage.Document

	// generation is bumped under mu on every mutation.
	generation uint64

	persistMu       sync.Mutex
	savedGeneration uint64

	store     storage.SnapshotStore
	slot      string
	listeners []Listener
	sessionID string
	now       func() time.Time
	newID     func() string
}

// New creates a tracker whose session has not started yet.
func New(opts Options) *Tracker {
	t := &Tracker{
		store:     opts.Store,
		slot:      opts.Slot,
		listeners: opts.Listeners,
		sessionID: opts.SessionID,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if t.slot == "" {
		t.slot = DefaultSlot
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.newID == nil {
		t.newID = func() string { return uuid.NewString() }
	}
	return t
}

// Slot returns the persistence slot name.
func (t *Tracker) Slot() string {
	return t.slot
}

func (t *Tracker) nowMs() int64 {
	return t.now().UnixMilli()
}

// Start creates the session, captures the navigation context once and emits
// session_start. Events recorded earlier are replayed right after it.
func (t *Tracker) Start(nav v1.Navigation) (v1.Session, error) {
	now := t.nowMs()

	t.mu.Lock()
	if t.session != nil {
		t.mu.Unlock()
		return v1.Session{}, ErrAlreadyStarted
	}

	id := t.sessionID
	if id == "" {
		id = t.newID()
	}
	s := &v1.Session{
		SessionID:        id,
		UserID:           nav.UserID,
		StartTime:        now,
		ConversionEvents: []string{},
		DeviceInfo:       ClassifyDevice(nav),
		Referrer:         nav.Referrer,
		UTM:              ParseUTM(nav.URL),
		Location:         v1.Location{Timezone: nav.Timezone},
		Preferences:      initialPreferences(nav.Preferences),
	}
	s.Refresh(now)
	t.session = s

	recorded := make([]v1.Event, 0, len(t.pending)+1)
	recorded = append(recorded, t.appendLifecycleLocked(v1.ActionSessionStart, nil, map[string]any{
		"deviceType": string(s.DeviceInfo.DeviceType),
		"referrer":   s.Referrer,
	}, now))

	queued := len(t.pending)
	for _, p := range t.pending {
		recorded = append(recorded, t.applyLocked(p))
	}
	t.pending = nil

	snapshot := s.Clone()
	t.mu.Unlock()

	metrics.SessionsStarted.Inc()
	slog.Info("[Tracker] Session started",
		"session_id", snapshot.SessionID,
		"device", snapshot.DeviceInfo.DeviceType,
		"replayed", queued,
	)

	t.notify(recorded)
	return snapshot, nil
}

// RecordEvent appends an event stamped with the current time. Calls made
// before Start are queued and replayed once the session exists.
func (t *Tracker) RecordEvent(kind v1.Kind, category, action string, value *float64, metadata map[string]any) {
	p := pendingEvent{
		kind:      kind,
		category:  category,
		action:    action,
		value:     copyValue(value),
		metadata:  copyMetadata(metadata),
		timestamp: t.nowMs(),
	}

	t.mu.Lock()
	if t.session == nil {
		t.pending = append(t.pending, p)
		t.mu.Unlock()
		metrics.EventsQueued.Inc()
		return
	}
	evt := t.applyLocked(p)
	t.mu.Unlock()

	t.notify([]v1.Event{evt})
}

// RecordPageView records a page_view for page and starts its dwell clock.
func (t *Tracker) RecordPageView(page, title string) {
	t.RecordEvent(v1.KindPageView, "navigation", v1.ActionPageView, nil, map[string]any{
		v1.MetaPage:  page,
		v1.MetaTitle: title,
	})
}

// RecordFeatureUsage records one use of a named site feature.
func (t *Tracker) RecordFeatureUsage(feature string, value *float64, metadata map[string]any) {
	meta := copyMetadata(metadata)
	if meta == nil {
		meta = make(map[string]any, 1)
	}
	meta[v1.MetaFeature] = feature
	t.RecordEvent(v1.KindInteraction, "feature", v1.ActionFeatureUsage, value, meta)
}

// RecordConversion records a conversion named conversionType.
func (t *Tracker) RecordConversion(conversionType string, value *float64) {
	t.RecordEvent(v1.KindConversion, "conversion", conversionType, value, nil)
}

// RecordError records a client-side error.
func (t *Tracker) RecordError(message string, metadata map[string]any) {
	meta := copyMetadata(metadata)
	if meta == nil {
		meta = make(map[string]any, 1)
	}
	meta[v1.MetaMessage] = message
	t.RecordEvent(v1.KindError, "error", "error", nil, meta)
}

// RecordPreferenceChange records a display preference change. The event
// carries the previous setting when one was known.
func (t *Tracker) RecordPreferenceChange(preference, setting string) {
	t.RecordEvent(v1.KindEngagement, "preference", v1.ActionPreferenceChange, nil, map[string]any{
		v1.MetaPreference: preference,
		v1.MetaSetting:    normalizePreference(preference, setting),
	})
}

// RefreshDuration recomputes timeOnSite and bounceRate as of now.
func (t *Tracker) RefreshDuration() {
	now := t.nowMs()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return
	}
	t.session.Refresh(now)
	t.generation++
}

// UpdateViewport records a resize and reclassifies the device.
func (t *Tracker) UpdateViewport(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return
	}
	info := &t.session.DeviceInfo
	info.Viewport = v1.Dimensions{Width: width, Height: height}
	info.DeviceType = DeviceTypeFor(width, "")
	t.generation++
}

// End finalizes the session and persists it. Repeated calls are no-ops.
// Persistence failures are logged, never returned.
func (t *Tracker) End(ctx context.Context) {
	now := t.nowMs()

	t.mu.Lock()
	if t.session == nil || t.session.Ended() {
		t.mu.Unlock()
		return
	}
	s := t.session
	t.closeDwellLocked(now)
	s.EndTime = &now
	s.Refresh(now)
	evt := t.appendLifecycleLocked(v1.ActionSessionEnd, v1.Float(float64(s.TimeOnSite)), nil, now)
	sessionID, timeOnSite, events := s.SessionID, s.TimeOnSite, len(t.events)
	t.mu.Unlock()

	slog.Info("[Tracker] Session ended",
		"session_id", sessionID,
		"time_on_site_ms", timeOnSite,
		"events", events,
	)

	t.notify([]v1.Event{evt})

	if err := t.Flush(ctx); err != nil {
		slog.Warn("[Tracker] Final flush failed", "session_id", sessionID, "error", err)
	}
}

// Ended reports whether End has run.
func (t *Tracker) Ended() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session != nil && t.session.Ended()
}

// Flush writes the current session and event log to the slot, replacing the
// previous document. Writes are serialized; a snapshot older than the last
// successful write is skipped.
func (t *Tracker) Flush(ctx context.Context) error {
	if t.store == nil {
		return nil
	}

	t.mu.Lock()
	if t.session == nil {
		t.mu.Unlock()
		return nil
	}
	doc := t.documentLocked()
	gen := t.generation
	t.mu.Unlock()

	t.persistMu.Lock()
	defer t.persistMu.Unlock()

	if gen <= t.savedGeneration {
		return nil
	}

	if err := t.store.Save(ctx, t.slot, doc); err != nil {
		metrics.PersistenceFailures.WithLabelValues("save").Inc()
		return fmt.Errorf("save slot %q: %w", t.slot, err)
	}
	t.savedGeneration = gen

	slog.Debug("[Tracker] Flushed",
		"slot", t.slot,
		"events", len(doc.Events),
	)
	return nil
}

// Restore loads the slot's previously persisted document as history for
// Analytics. It must run before Start, otherwise it would read back this
// session's own writes. A missing or unreadable slot yields empty history.
func (t *Tracker) Restore(ctx context.Context) error {
	t.mu.Lock()
	started := t.session != nil
	t.mu.Unlock()
	if started {
		return ErrAlreadyStarted
	}
	if t.store == nil {
		return nil
	}

	doc, err := t.store.Load(ctx, t.slot)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		doc = storage.Document{}
	case err != nil:
		metrics.PersistenceFailures.WithLabelValues("load").Inc()
		slog.Warn("[Tracker] Failed to restore slot, starting without history",
			"slot", t.slot,
			"error", err,
		)
		doc = storage.Document{}
	}

	t.mu.Lock()
	t.history = doc
	t.mu.Unlock()

	if !doc.Empty() {
		slog.Info("[Tracker] Restored history",
			"slot", t.slot,
			"events", len(doc.Events),
			"sessions", len(doc.Sessions),
		)
	}
	return nil
}

// Session returns a copy of the current session. ok is false before Start.
func (t *Tracker) Session() (v1.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return v1.Session{}, false
	}
	return t.session.Clone(), true
}

// SessionID returns the session id, or "" before Start.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return ""
	}
	return t.session.SessionID
}

// Events returns a copy of the live event log.
func (t *Tracker) Events() []v1.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]v1.Event(nil), t.events...)
}

// Export returns the live document: the event log and the current session.
func (t *Tracker) Export() storage.Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return storage.Document{}
	}
	return t.documentLocked()
}

// Analytics computes a snapshot over restored history plus the live log.
func (t *Tracker) Analytics(window time.Duration) aggregation.Snapshot {
	t.mu.Lock()
	doc := t.history
	if t.session != nil {
		doc = doc.Merge(t.documentLocked())
	}
	t.mu.Unlock()

	return aggregation.Compute(doc.Events, doc.Sessions, window, t.now())
}

func (t *Tracker) documentLocked() storage.Document {
	return storage.Document{
		Events:   append([]v1.Event{}, t.events...),
		Sessions: []v1.Session{t.session.Clone()},
	}
}

func (t *Tracker) applyLocked(p pendingEvent) v1.Event {
	if p.kind == v1.KindEngagement && p.action == v1.ActionPreferenceChange && p.metadata != nil {
		t.applyPreferenceLocked(p.metadata)
	}
	evt := v1.Event{
		ID:        t.newID(),
		Kind:      p.kind,
		Category:  p.category,
		Action:    p.action,
		Value:     p.value,
		Timestamp: p.timestamp,
		SessionID: t.session.SessionID,
		Metadata:  p.metadata,
	}
	t.events = append(t.events, evt)

	s := t.session
	switch p.kind {
	case v1.KindInteraction:
		s.InteractionCount++
	case v1.KindPageView:
		s.PageViews++
		page, _ := evt.MetaString(v1.MetaPage)
		t.enterPageLocked(page, p.timestamp)
	case v1.KindConversion:
		s.ConversionEvents = append(s.ConversionEvents, p.action)
	}
	s.EngagementScore += eventWeight(p.kind, p.action)
	t.generation++

	metrics.EventsRecorded.WithLabelValues(string(p.kind)).Inc()
	return evt
}

func (t *Tracker) appendLifecycleLocked(action string, value *float64, metadata map[string]any, ts int64) v1.Event {
	evt := v1.Event{
		ID:        t.newID(),
		Kind:      v1.KindEngagement,
		Category:  CategorySession,
		Action:    action,
		Value:     value,
		Timestamp: ts,
		SessionID: t.session.SessionID,
		Metadata:  metadata,
	}
	t.events = append(t.events, evt)
	t.generation++
	return evt
}

// enterPageLocked closes the dwell of the current page and opens page.
func (t *Tracker) enterPageLocked(page string, ts int64) {
	t.closeDwellLocked(ts)
	if page == "" {
		return
	}
	t.session.CurrentPage = page
	t.session.PageEnteredAt = ts
}

func (t *Tracker) closeDwellLocked(ts int64) {
	s := t.session
	if s.CurrentPage == "" {
		return
	}
	dwell := ts - s.PageEnteredAt
	if dwell < 0 {
		dwell = 0
	}
	if s.PageDwell == nil {
		s.PageDwell = make(map[string]v1.PageDwell)
	}
	d := s.PageDwell[s.CurrentPage]
	d.Visits++
	d.TotalMs += dwell
	s.PageDwell[s.CurrentPage] = d
	s.CurrentPage = ""
	s.PageEnteredAt = 0
}

func (t *Tracker) notify(events []v1.Event) {
	for _, l := range t.listeners {
		for _, evt := range events {
			safeNotify(l, evt)
		}
	}
}

func safeNotify(l Listener, evt v1.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("[Tracker] Listener panicked", "event_id", evt.ID, "panic", r)
		}
	}()
	l.EventRecorded(evt)
}

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return v1.Float(*v)
}

// copyMetadata clones m, widening numbers to float64 so a stored document
// decodes back to the same values.
func copyMetadata(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = normalizeNumber(v)
	}
	return c
}

func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
