package collector

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/core/aggregation"
)

type recordedCall struct {
	kind     v1.Kind
	category string
	action   string
	value    *float64
	metadata map[string]any
}

type fakeRecorder struct {
	mu        sync.Mutex
	events    []recordedCall
	errors    []string
	refreshes int
	viewports []v1.Dimensions
	ended     int
}

func (r *fakeRecorder) RecordEvent(kind v1.Kind, category, action string, value *float64, metadata map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedCall{kind, category, action, value, metadata})
}

func (r *fakeRecorder) RecordError(message string, metadata map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
	r.events = append(r.events, recordedCall{v1.KindError, "error", "error", nil, metadata})
}

func (r *fakeRecorder) RefreshDuration() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes++
}

func (r *fakeRecorder) UpdateViewport(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewports = append(r.viewports, v1.Dimensions{Width: width, Height: height})
}

func (r *fakeRecorder) End(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *fakeRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.action
	}
	return out
}

type fakeEnv struct {
	supported map[Capability]bool
	handlers  map[Capability]func(Signal)
}

func newFakeEnv(caps ...Capability) *fakeEnv {
	env := &fakeEnv{supported: map[Capability]bool{}, handlers: map[Capability]func(Signal){}}
	for _, c := range caps {
		env.supported[c] = true
	}
	return env
}

func (e *fakeEnv) Supports(c Capability) bool { return e.supported[c] }

func (e *fakeEnv) Subscribe(c Capability, h func(Signal)) { e.handlers[c] = h }

func (e *fakeEnv) fire(sig Signal) bool {
	h, ok := e.handlers[sig.Capability()]
	if ok {
		h(sig)
	}
	return ok
}

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCollector(caps ...Capability) (*Collector, *fakeRecorder, *fakeEnv, *stepClock) {
	rec := &fakeRecorder{}
	clock := &stepClock{now: time.UnixMilli(1700000000000)}
	c := New(rec, Options{Now: clock.Now})
	env := newFakeEnv(caps...)
	c.Attach(env)
	return c, rec, env, clock
}

// scrollTo builds a sample whose depth is pct for a 1000px document viewed
// through a 100px viewport.
func scrollTo(pct float64) Scroll {
	return Scroll{ScrollTop: pct*10 - 100, ScrollHeight: 1000, ViewportHeight: 100}
}

func TestCollector_AttachSkipsUnsupported(t *testing.T) {
	c, rec, env, _ := newTestCollector(CapClick, CapScroll)

	require.Equal(t, []Capability{CapScroll, CapClick}, c.Attached())
	require.False(t, env.fire(LayoutShift{Value: 0.3}))
	require.False(t, env.fire(VisibilityChange{Hidden: true}))
	require.Empty(t, rec.events)
}

func TestCollector_AttachWithNothingSupported(t *testing.T) {
	c, _, _, _ := newTestCollector()
	require.Empty(t, c.Attached())
}

func TestCollector_ScrollMilestonesFireOnceUpward(t *testing.T) {
	_, rec, env, clock := newTestCollector(CapScroll)

	for _, pct := range []float64{30, 60, 10, 80} {
		env.fire(scrollTo(pct))
		clock.Advance(time.Second)
	}

	require.Equal(t, []string{v1.ActionScroll25, v1.ActionScroll50, v1.ActionScroll75}, rec.actions())
	require.Equal(t, 25.0, *rec.events[0].value)
	require.Equal(t, 30.0, rec.events[0].metadata[v1.MetaScrollPercent])
	require.Equal(t, 75.0, *rec.events[2].value)
	require.Equal(t, 80.0, rec.events[2].metadata[v1.MetaScrollPercent])
	for _, e := range rec.events {
		require.Equal(t, v1.KindEngagement, e.kind)
	}
}

func TestCollector_ScrollJumpEmitsEveryCrossedMilestone(t *testing.T) {
	_, rec, env, clock := newTestCollector(CapScroll)

	env.fire(scrollTo(100))
	clock.Advance(time.Second)
	env.fire(scrollTo(100))

	require.Equal(t, []string{v1.ActionScroll25, v1.ActionScroll50, v1.ActionScroll75, v1.ActionScroll100}, rec.actions())
}

func TestCollector_ScrollIsThrottled(t *testing.T) {
	_, rec, env, clock := newTestCollector(CapScroll)

	env.fire(scrollTo(30))
	clock.Advance(100 * time.Millisecond)
	env.fire(scrollTo(60))
	require.Equal(t, []string{v1.ActionScroll25}, rec.actions())

	clock.Advance(500 * time.Millisecond)
	env.fire(scrollTo(60))
	require.Equal(t, []string{v1.ActionScroll25, v1.ActionScroll50}, rec.actions())
}

func TestCollector_EmptyScrollSampleIgnored(t *testing.T) {
	_, rec, env, clock := newTestCollector(CapScroll)

	env.fire(Scroll{})
	require.Empty(t, rec.events)

	clock.Advance(time.Second)
	env.fire(scrollTo(30))
	require.Equal(t, []string{v1.ActionScroll25}, rec.actions())
}

func TestScrollDepth(t *testing.T) {
	tests := []struct {
		name string
		s    Scroll
		want int
	}{
		{name: "top of long page", s: Scroll{ScrollTop: 0, ScrollHeight: 4000, ViewportHeight: 800}, want: 20},
		{name: "bottom", s: Scroll{ScrollTop: 3200, ScrollHeight: 4000, ViewportHeight: 800}, want: 100},
		{name: "overscroll clamps", s: Scroll{ScrollTop: 3500, ScrollHeight: 4000, ViewportHeight: 800}, want: 100},
		{name: "negative clamps", s: Scroll{ScrollTop: -900, ScrollHeight: 4000, ViewportHeight: 800}, want: 0},
		{name: "rounds", s: Scroll{ScrollTop: 1, ScrollHeight: 3000, ViewportHeight: 1000}, want: 33},
		{name: "fits viewport", s: Scroll{ScrollTop: 0, ScrollHeight: 600, ViewportHeight: 800}, want: 100},
		{name: "no document height", s: Scroll{}, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ScrollDepth(tc.s))
		})
	}
}

func TestCollector_Click(t *testing.T) {
	_, rec, env, _ := newTestCollector(CapClick)

	long := strings.Repeat("é", 150)
	env.fire(Click{Tag: "A", ID: "cta", Class: "btn primary", Text: "  " + long + "  ", Href: "/contact", X: 120, Y: 48})
	env.fire(Click{Tag: "DIV", X: 1, Y: 2})

	require.Len(t, rec.events, 2)
	first := rec.events[0]
	require.Equal(t, v1.KindInteraction, first.kind)
	require.Equal(t, v1.ActionClick, first.action)
	require.Equal(t, 120.0, first.metadata[v1.MetaX])
	require.Equal(t, 48.0, first.metadata[v1.MetaY])

	element := first.metadata[v1.MetaElement].(map[string]any)
	require.Equal(t, "a", element["tag"])
	require.Equal(t, "cta", element["id"])
	require.Equal(t, "btn primary", element["class"])
	require.Equal(t, "/contact", element["href"])
	require.Equal(t, strings.Repeat("é", 100), element["text"])

	bare := rec.events[1].metadata[v1.MetaElement].(map[string]any)
	require.Equal(t, map[string]any{"tag": "div"}, bare)
}

func TestCollector_FormFocus(t *testing.T) {
	_, rec, env, _ := newTestCollector(CapFocus)

	env.fire(Focus{Tag: "INPUT", Name: "email"})
	env.fire(Focus{Tag: "textarea", ID: "message"})
	env.fire(Focus{Tag: "SELECT", Name: "budget", ID: "budget-select"})
	env.fire(Focus{Tag: "button", Name: "submit"})

	require.Equal(t, []string{v1.ActionFormFocus, v1.ActionFormFocus, v1.ActionFormFocus}, rec.actions())
	require.Equal(t, "email", rec.events[0].metadata[v1.MetaField])
	require.Equal(t, "message", rec.events[1].metadata[v1.MetaField])
	require.Equal(t, "budget", rec.events[2].metadata[v1.MetaField])
}

func TestCollector_Visibility(t *testing.T) {
	_, rec, env, _ := newTestCollector(CapVisibility)

	env.fire(VisibilityChange{Hidden: true})
	env.fire(VisibilityChange{Hidden: false})

	require.Equal(t, []string{"page_blur", "page_focus"}, rec.actions())
	require.Equal(t, 1, rec.refreshes)
}

func TestCollector_Performance(t *testing.T) {
	_, rec, env, _ := newTestCollector(CapLoad, CapLCP, CapFirstInput, CapLayoutShift)

	env.fire(NavigationTiming{FetchStart: 5, RequestStart: 20, ResponseStart: 200, DOMContentLoadedEventEnd: 905})
	env.fire(LargestContentfulPaint{StartTime: 2100})
	env.fire(FirstInput{StartTime: 3000, ProcessingStart: 3042})
	env.fire(LayoutShift{Value: 0.05})
	env.fire(LayoutShift{Value: 0.5, HadRecentInput: true})
	env.fire(LayoutShift{Value: 0.02})

	require.Equal(t, []string{
		aggregation.ActionFCP,
		aggregation.ActionTTFB,
		aggregation.ActionLCP,
		aggregation.ActionFID,
		aggregation.ActionCLS,
		aggregation.ActionCLS,
	}, rec.actions())

	values := make([]float64, len(rec.events))
	for i, e := range rec.events {
		require.Equal(t, v1.KindPerformance, e.kind)
		require.Equal(t, "performance", e.category)
		values[i] = *e.value
	}
	require.Equal(t, 900.0, values[0])
	require.Equal(t, 180.0, values[1])
	require.Equal(t, 2100.0, values[2])
	require.Equal(t, 42.0, values[3])
	require.Equal(t, 0.05, values[4])
	require.InDelta(t, 0.07, values[5], 1e-9)
}

func TestCollector_LoadWithoutTimingData(t *testing.T) {
	_, rec, env, _ := newTestCollector(CapLoad)
	env.fire(NavigationTiming{})
	require.Empty(t, rec.events)
}

func TestCollector_ResizePageHideAndError(t *testing.T) {
	_, rec, env, _ := newTestCollector(CapResize, CapPageHide, CapError)

	env.fire(Resize{Width: 800, Height: 600})
	env.fire(ScriptError{Message: "x is undefined", Source: "app.js", Line: 10, Column: 4})
	env.fire(PageHide{})

	require.Equal(t, []v1.Dimensions{{Width: 800, Height: 600}}, rec.viewports)
	require.Equal(t, []string{"x is undefined"}, rec.errors)
	require.Equal(t, "app.js", rec.events[0].metadata[v1.MetaSource])
	require.Equal(t, 10.0, rec.events[0].metadata["line"])
	require.Equal(t, 4.0, rec.events[0].metadata["column"])
	require.Equal(t, 1, rec.ended)
}
