package v1

import (
	"fmt"
	"time"
)

// Kind classifies what an Event records.
type Kind string

const (
	KindPageView    Kind = "page_view"
	KindInteraction Kind = "interaction"
	KindEngagement  Kind = "engagement"
	KindPerformance Kind = "performance"
	KindError       Kind = "error"
	KindConversion  Kind = "conversion"
)

// Valid reports whether k is one of the known event kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPageView, KindInteraction, KindEngagement, KindPerformance, KindError, KindConversion:
		return true
	}
	return false
}

// Known metadata keys. Metadata stays an open map; these are the keys the
// collector writes and the aggregator reads.
const (
	MetaPage          = "page"
	MetaTitle         = "title"
	MetaFeature       = "feature"
	MetaElement       = "element"
	MetaScrollPercent = "scrollPercent"
	MetaField         = "field"
	MetaX             = "x"
	MetaY             = "y"
	MetaLabel         = "label"
	MetaMessage       = "message"
	MetaSource        = "source"
	MetaViewport      = "viewport"
	MetaPreference    = "preference"
	MetaSetting       = "value"
	MetaPreviousValue = "previousValue"
)

// Event is one immutable recorded occurrence.
// Once appended to a session log its fields are never mutated.
type Event struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Category string `json:"category"`
	Action   string `json:"action"`

	// Value is an optional numeric payload such as a duration in
	// milliseconds or a percentage.
	Value *float64 `json:"value,omitempty"`

	// Timestamp is the capture time in milliseconds since epoch.
	Timestamp int64  `json:"timestamp"`
	SessionID string `json:"sessionId"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// Float returns a pointer to f, for optional Event values.
func Float(f float64) *float64 {
	return &f
}

// Time returns the capture time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// ValueOr returns the event value, or def when the event carries none.
func (e Event) ValueOr(def float64) float64 {
	if e.Value == nil {
		return def
	}
	return *e.Value
}

// MetaString returns a string metadata entry. Non-string values are ignored.
func (e Event) MetaString(key string) (string, bool) {
	if e.Metadata == nil {
		return "", false
	}
	s, ok := e.Metadata[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Validate ensures the event has all required attributes.
// Used when reading documents back from a persisted slot.
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", e.Kind)
	}
	if e.Action == "" {
		return fmt.Errorf("action is required")
	}
	if e.SessionID == "" {
		return fmt.Errorf("sessionId is required")
	}
	if e.Timestamp <= 0 {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

// Action names with a fixed meaning. Other actions are free-form.
const (
	ActionPageView     = "page_view"
	ActionClick        = "click"
	ActionScroll25     = "scroll_25"
	ActionScroll50     = "scroll_50"
	ActionScroll75     = "scroll_75"
	ActionScroll100    = "scroll_100"
	ActionFormFocus    = "form_focus"
	ActionFeatureUsage = "feature_usage"
	ActionConversion   = "conversion"
	ActionSessionStart = "session_start"
	ActionSessionEnd   = "session_end"

	ActionPreferenceChange = "preference_change"
)
