// Package sink forwards recorded events to an external metrics collector.
// Delivery is best effort: failures are counted and dropped, never surfaced
// to the code that recorded the event.
package sink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/metrics"
)

// Config for the HTTP forwarder. An empty Endpoint disables forwarding.
type Config struct {
	Endpoint         string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	QueueSize        int
}

// Payload is the tag sent for each event.
type Payload struct {
	Action   string   `json:"action"`
	Category string   `json:"category"`
	Label    string   `json:"label,omitempty"`
	Value    *float64 `json:"value,omitempty"`
}

// PayloadFor builds the forwarded tag. The label is the event's label
// metadata, falling back to its page.
func PayloadFor(evt v1.Event) Payload {
	label, ok := evt.MetaString(v1.MetaLabel)
	if !ok {
		label, _ = evt.MetaString(v1.MetaPage)
	}
	return Payload{
		Action:   evt.Action,
		Category: evt.Category,
		Label:    label,
		Value:    evt.Value,
	}
}

// Forwarder posts payloads from a bounded queue on a single goroutine, so
// recording never waits on the network.
type Forwarder struct {
	endpoint string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker[struct{}]

	mu     sync.RWMutex
	closed bool
	queue  chan Payload
	done   chan struct{}
}

// NewForwarder starts a forwarder. It returns nil when cfg.Endpoint is empty;
// a nil *Forwarder is a valid no-op listener.
func NewForwarder(cfg Config) *Forwarder {
	if cfg.Endpoint == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}

	f := &Forwarder{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		queue:    make(chan Payload, cfg.QueueSize),
		done:     make(chan struct{}),
	}
	f.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "metrics-sink",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("[Sink] Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	go f.run()
	return f
}

// EventRecorded enqueues evt for delivery. A full queue drops the event.
func (f *Forwarder) EventRecorded(evt v1.Event) {
	if f == nil {
		return
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	select {
	case f.queue <- PayloadFor(evt):
	default:
		metrics.SinkFailures.Inc()
	}
}

// Close stops accepting events and waits for queued ones to be attempted.
func (f *Forwarder) Close(ctx context.Context) error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.queue)
	}
	f.mu.Unlock()

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Forwarder) run() {
	defer close(f.done)
	for p := range f.queue {
		if err := f.deliver(p); err != nil {
			metrics.SinkFailures.Inc()
			slog.Debug("[Sink] Delivery failed", "action", p.Action, "error", err)
		}
	}
}

func (f *Forwarder) deliver(p Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()

	_, err = f.cb.Execute(func() (struct{}, error) {
		return struct{}{}, f.post(p)
	})
	return err
}

func (f *Forwarder) post(p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sink responded %d", resp.StatusCode)
	}
	return nil
}
