// Package beacon is the server-side Environment: browser signals arrive in
// HTTP beacon batches and are dispatched to the subscribed collector.
package beacon

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/collector"
	"github.com/aevon-lab/folio-analytics/internal/metrics"
)

var (
	ErrUnknownSignal = errors.New("unknown signal type")
	ErrMalformed     = errors.New("malformed signal payload")
)

// Environment reports the capabilities announced by the page at session
// start and fans signals out to subscribers.
type Environment struct {
	mu       sync.RWMutex
	caps     map[collector.Capability]bool
	handlers map[collector.Capability][]func(collector.Signal)
}

// NewEnvironment builds an environment from the capability names the page
// announced. Unknown names are ignored.
func NewEnvironment(capabilities []string) *Environment {
	known := make(map[collector.Capability]bool, len(collector.AllCapabilities))
	for _, c := range collector.AllCapabilities {
		known[c] = true
	}

	env := &Environment{
		caps:     make(map[collector.Capability]bool, len(capabilities)),
		handlers: make(map[collector.Capability][]func(collector.Signal)),
	}
	for _, name := range capabilities {
		c := collector.Capability(name)
		if !known[c] {
			slog.Debug("[Beacon] Ignoring unknown capability", "capability", name)
			continue
		}
		env.caps[c] = true
	}
	return env
}

func (e *Environment) Supports(c collector.Capability) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.caps[c]
}

func (e *Environment) Subscribe(c collector.Capability, handler func(collector.Signal)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[c] = append(e.handlers[c], handler)
}

// Dispatch delivers sig to its subscribers. It reports false when nobody
// listens to the signal's capability.
func (e *Environment) Dispatch(sig collector.Signal) bool {
	e.mu.RLock()
	handlers := e.handlers[sig.Capability()]
	e.mu.RUnlock()

	if len(handlers) == 0 {
		return false
	}
	for _, h := range handlers {
		h(sig)
	}
	return true
}

// BatchResult summarizes a dispatched batch.
type BatchResult struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// DispatchBatch decodes and dispatches signals in order. Undecodable or
// unsubscribed signals are dropped and counted; they never fail the batch.
func (e *Environment) DispatchBatch(batch []v1.RawSignal) BatchResult {
	var res BatchResult
	for _, raw := range batch {
		sig, err := Decode(raw)
		if err != nil {
			res.Dropped++
			metrics.SignalsDropped.WithLabelValues("decode").Inc()
			slog.Debug("[Beacon] Dropping signal", "type", raw.Type, "error", err)
			continue
		}
		if !e.Dispatch(sig) {
			res.Dropped++
			metrics.SignalsDropped.WithLabelValues("unsupported").Inc()
			continue
		}
		res.Accepted++
	}
	return res
}

// Decode turns a raw beacon entry into a typed signal.
func Decode(raw v1.RawSignal) (collector.Signal, error) {
	switch collector.Capability(raw.Type) {
	case collector.CapVisibility:
		return decodeAs[collector.VisibilityChange](raw)
	case collector.CapScroll:
		return decodeAs[collector.Scroll](raw)
	case collector.CapClick:
		return decodeAs[collector.Click](raw)
	case collector.CapFocus:
		return decodeAs[collector.Focus](raw)
	case collector.CapLoad:
		return decodeAs[collector.NavigationTiming](raw)
	case collector.CapResize:
		return decodeAs[collector.Resize](raw)
	case collector.CapPageHide:
		return collector.PageHide{}, nil
	case collector.CapError:
		return decodeAs[collector.ScriptError](raw)
	case collector.CapLCP:
		return decodeAs[collector.LargestContentfulPaint](raw)
	case collector.CapFirstInput:
		return decodeAs[collector.FirstInput](raw)
	case collector.CapLayoutShift:
		return decodeAs[collector.LayoutShift](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSignal, raw.Type)
	}
}

func decodeAs[T collector.Signal](raw v1.RawSignal) (collector.Signal, error) {
	var sig T
	if len(raw.Data) == 0 {
		return sig, nil
	}
	if err := json.Unmarshal(raw.Data, &sig); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, raw.Type, err)
	}
	return sig, nil
}
