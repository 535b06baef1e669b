// Package collector turns ambient browser signals into analytics events.
package collector

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/core/aggregation"
)

// DefaultScrollInterval caps scroll sampling at two samples per second.
const DefaultScrollInterval = 500 * time.Millisecond

const maxClickText = 100

var scrollMilestones = []struct {
	threshold int
	action    string
}{
	{25, v1.ActionScroll25},
	{50, v1.ActionScroll50},
	{75, v1.ActionScroll75},
	{100, v1.ActionScroll100},
}

// Environment abstracts the hosting page. Subscribe is only called for
// capabilities reported by Supports.
type Environment interface {
	Supports(c Capability) bool
	Subscribe(c Capability, handler func(Signal))
}

// Recorder receives the events derived from signals.
type Recorder interface {
	RecordEvent(kind v1.Kind, category, action string, value *float64, metadata map[string]any)
	RecordError(message string, metadata map[string]any)
	RefreshDuration()
	UpdateViewport(width, height int)
	End(ctx context.Context)
}

// Options tunes a Collector. Zero values fall back to defaults.
type Options struct {
	Now            func() time.Time
	ScrollInterval time.Duration
}

// Collector only writes into its Recorder; it never reads analytics state back.
type Collector struct {
	rec Recorder
	now func() time.Time

	mu            sync.Mutex
	scrollLimiter *rate.Limiter
	maxDepth      int
	nextMilestone int
	cls           float64
	attached      []Capability
}

// New creates a collector writing into rec.
func New(rec Recorder, opts Options) *Collector {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ScrollInterval <= 0 {
		opts.ScrollInterval = DefaultScrollInterval
	}
	return &Collector{
		rec:           rec,
		now:           opts.Now,
		scrollLimiter: rate.NewLimiter(rate.Every(opts.ScrollInterval), 1),
	}
}

// Attach subscribes to every capability env supports and returns them.
// Unsupported sources are skipped.
func (c *Collector) Attach(env Environment) []Capability {
	var attached []Capability
	for _, capability := range AllCapabilities {
		if !env.Supports(capability) {
			slog.Debug("[Collector] Capability unavailable, skipping", "capability", capability)
			continue
		}
		env.Subscribe(capability, c.Handle)
		attached = append(attached, capability)
	}

	c.mu.Lock()
	c.attached = attached
	c.mu.Unlock()
	return attached
}

// Attached returns the capabilities subscribed by the last Attach.
func (c *Collector) Attached() []Capability {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Capability(nil), c.attached...)
}

// Handle translates one signal into recorder calls.
func (c *Collector) Handle(sig Signal) {
	switch s := sig.(type) {
	case VisibilityChange:
		c.onVisibility(s)
	case Scroll:
		c.onScroll(s)
	case Click:
		c.onClick(s)
	case Focus:
		c.onFocus(s)
	case NavigationTiming:
		c.onLoad(s)
	case Resize:
		c.rec.UpdateViewport(s.Width, s.Height)
	case PageHide:
		c.rec.End(context.Background())
	case ScriptError:
		c.onError(s)
	case LargestContentfulPaint:
		c.recordPerformance(aggregation.ActionLCP, s.StartTime)
	case FirstInput:
		c.recordPerformance(aggregation.ActionFID, s.ProcessingStart-s.StartTime)
	case LayoutShift:
		c.onLayoutShift(s)
	default:
		slog.Debug("[Collector] Ignoring unknown signal", "type", sig)
	}
}

func (c *Collector) onVisibility(s VisibilityChange) {
	if s.Hidden {
		c.rec.RecordEvent(v1.KindEngagement, "engagement", "page_blur", nil, nil)
		c.rec.RefreshDuration()
		return
	}
	c.rec.RecordEvent(v1.KindEngagement, "engagement", "page_focus", nil, nil)
}

// onScroll keeps a high-water mark of scroll depth and emits each milestone
// the first time the mark crosses it.
func (c *Collector) onScroll(s Scroll) {
	if s.ScrollHeight <= 0 {
		return
	}
	c.mu.Lock()
	if !c.scrollLimiter.AllowN(c.now(), 1) {
		c.mu.Unlock()
		return
	}
	depth := ScrollDepth(s)
	if depth <= c.maxDepth {
		c.mu.Unlock()
		return
	}
	c.maxDepth = depth

	var crossed []int
	for c.nextMilestone < len(scrollMilestones) && depth >= scrollMilestones[c.nextMilestone].threshold {
		crossed = append(crossed, c.nextMilestone)
		c.nextMilestone++
	}
	c.mu.Unlock()

	for _, i := range crossed {
		m := scrollMilestones[i]
		c.rec.RecordEvent(v1.KindEngagement, "engagement", m.action, v1.Float(float64(m.threshold)), map[string]any{
			v1.MetaScrollPercent: float64(depth),
		})
	}
}

// ScrollDepth is the percentage of the document seen so far, 0 to 100.
// A document that fits the viewport counts as fully seen; a sample without
// a document height reports 0.
func ScrollDepth(s Scroll) int {
	if s.ScrollHeight <= 0 {
		return 0
	}
	if s.ScrollHeight <= s.ViewportHeight {
		return 100
	}
	depth := int(math.Round((s.ScrollTop + s.ViewportHeight) / s.ScrollHeight * 100))
	switch {
	case depth < 0:
		return 0
	case depth > 100:
		return 100
	}
	return depth
}

func (c *Collector) onClick(s Click) {
	element := map[string]any{"tag": strings.ToLower(s.Tag)}
	if s.ID != "" {
		element["id"] = s.ID
	}
	if s.Class != "" {
		element["class"] = s.Class
	}
	if text := truncate(strings.TrimSpace(s.Text), maxClickText); text != "" {
		element["text"] = text
	}
	if s.Href != "" {
		element["href"] = s.Href
	}

	c.rec.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, nil, map[string]any{
		v1.MetaElement: element,
		v1.MetaX:       s.X,
		v1.MetaY:       s.Y,
	})
}

func (c *Collector) onFocus(s Focus) {
	switch strings.ToLower(s.Tag) {
	case "input", "textarea", "select":
	default:
		return
	}
	field := s.Name
	if field == "" {
		field = s.ID
	}
	c.rec.RecordEvent(v1.KindInteraction, "interaction", v1.ActionFormFocus, nil, map[string]any{
		v1.MetaField: field,
	})
}

func (c *Collector) onLoad(s NavigationTiming) {
	if s.DOMContentLoadedEventEnd > 0 {
		c.recordPerformance(aggregation.ActionFCP, s.DOMContentLoadedEventEnd-s.FetchStart)
	}
	if s.ResponseStart > 0 {
		c.recordPerformance(aggregation.ActionTTFB, s.ResponseStart-s.RequestStart)
	}
}

func (c *Collector) onError(s ScriptError) {
	meta := map[string]any{}
	if s.Source != "" {
		meta[v1.MetaSource] = s.Source
		meta["line"] = float64(s.Line)
		meta["column"] = float64(s.Column)
	}
	c.rec.RecordError(s.Message, meta)
}

// onLayoutShift records the running cumulative layout shift. Shifts caused
// by recent user input do not count.
func (c *Collector) onLayoutShift(s LayoutShift) {
	if s.HadRecentInput {
		return
	}
	c.mu.Lock()
	c.cls += s.Value
	total := c.cls
	c.mu.Unlock()

	c.recordPerformance(aggregation.ActionCLS, total)
}

func (c *Collector) recordPerformance(action string, value float64) {
	if value < 0 {
		value = 0
	}
	c.rec.RecordEvent(v1.KindPerformance, "performance", action, v1.Float(value), nil)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
