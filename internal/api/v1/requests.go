package v1

import (
	"encoding/json"
	"fmt"
)

// Navigation is the browsing context a session starts from.
type Navigation struct {
	UserAgent    string     `json:"user_agent"`
	Referrer     string     `json:"referrer"`
	URL          string     `json:"url"`
	Screen       Dimensions `json:"screen"`
	Viewport     Dimensions `json:"viewport"`
	TouchSupport bool       `json:"touch_support"`

	// Timezone is the IANA zone reported by the browser.
	Timezone string `json:"timezone,omitempty"`
	// Preferences carries the display preferences detected on load, keyed
	// by preference name. Missing entries take their defaults.
	Preferences map[string]string `json:"preferences,omitempty"`

	// UserID is optional; set when the site knows who the visitor is.
	UserID string `json:"user_id,omitempty"`
}

// StartSessionRequest opens a session. Capabilities lists the browser signal
// sources the page can observe; unknown names are ignored.
type StartSessionRequest struct {
	Navigation   Navigation `json:"navigation"`
	Capabilities []string   `json:"capabilities"`
}

// RawSignal is one undecoded browser signal. Data is decoded according to Type.
type RawSignal struct {
	Type string          `json:"type" binding:"required"`
	Data json.RawMessage `json:"data"`
}

// SignalBatch is the beacon body carrying browser signals in firing order.
type SignalBatch struct {
	Signals []RawSignal `json:"signals" binding:"required,dive"`
}

// Track request types, one per recording function of the contract surface.
const (
	TrackEvent      = "event"
	TrackPageView   = "page_view"
	TrackFeature    = "feature"
	TrackConversion = "conversion"
	TrackError      = "error"
	TrackPreference = "preference"
)

// TrackRequest is an explicit recording call from page code.
type TrackRequest struct {
	Type     string         `json:"type" binding:"required"`
	Kind     Kind           `json:"kind,omitempty"`
	Category string         `json:"category,omitempty"`
	Action   string         `json:"action,omitempty"`
	Value    *float64       `json:"value,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`

	Page       string `json:"page,omitempty"`
	Title      string `json:"title,omitempty"`
	Feature    string `json:"feature,omitempty"`
	Conversion string `json:"conversion,omitempty"`
	Message    string `json:"message,omitempty"`
	Preference string `json:"preference,omitempty"`
	Setting    string `json:"setting,omitempty"`
}

// Validate checks the fields required by the request type.
func (r *TrackRequest) Validate() error {
	switch r.Type {
	case TrackEvent:
		if !r.Kind.Valid() {
			return fmt.Errorf("unknown kind %q", r.Kind)
		}
		if r.Category == "" || r.Action == "" {
			return fmt.Errorf("category and action are required")
		}
	case TrackPageView:
		if r.Page == "" {
			return fmt.Errorf("page is required")
		}
	case TrackFeature:
		if r.Feature == "" {
			return fmt.Errorf("feature is required")
		}
	case TrackConversion:
		if r.Conversion == "" {
			return fmt.Errorf("conversion is required")
		}
	case TrackError:
		if r.Message == "" {
			return fmt.Errorf("message is required")
		}
	case TrackPreference:
		if r.Preference == "" {
			return fmt.Errorf("preference is required")
		}
	default:
		return fmt.Errorf("unknown track type %q", r.Type)
	}
	return nil
}
