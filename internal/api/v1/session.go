package v1

// BounceThresholdMs is the time-on-site under which a single-page session counts as a bounce.
const BounceThresholdMs = 30000

// DeviceType is the coarse device classification.
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
)

// Dimensions is a width/height pair in CSS pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DeviceInfo is captured once at session start. DeviceType and Viewport are
// refreshed on resize.
type DeviceInfo struct {
	DeviceType   DeviceType `json:"deviceType"`
	Browser      string     `json:"browser"`
	OS           string     `json:"os"`
	Screen       Dimensions `json:"screen"`
	Viewport     Dimensions `json:"viewport"`
	TouchSupport bool       `json:"touchSupport,omitempty"`
}

// UTM holds campaign parameters read from the landing URL.
type UTM struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Term     string `json:"term,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Preference names with a known default. Sites may report others.
const (
	PrefAnimationSpeed = "animationSpeed"
	PrefTheme          = "theme"
	PrefLanguage       = "language"
)

// Location is the coarse visitor location captured at session start.
type Location struct {
	Timezone string `json:"timezone,omitempty"`
}

// PageDwell accumulates closed visits to one page.
type PageDwell struct {
	Visits  int   `json:"visits"`
	TotalMs int64 `json:"totalMs"`
}

// Session is one continuous visit.
type Session struct {
	SessionID string `json:"sessionId"`

	// UserID is set when the visitor is identified; empty otherwise.
	UserID string `json:"userId,omitempty"`

	StartTime int64  `json:"startTime"`
	EndTime   *int64 `json:"endTime,omitempty"`

	PageViews        int   `json:"pageViews"`
	InteractionCount int   `json:"interactionCount"`
	EngagementScore  int   `json:"engagementScore"`
	TimeOnSite       int64 `json:"timeOnSite"`
	BounceRate       int   `json:"bounceRate"`

	ConversionEvents []string `json:"conversionEvents"`

	DeviceInfo DeviceInfo `json:"deviceInfo"`
	Referrer   string     `json:"referrer"`
	UTM        UTM        `json:"utm"`
	Location   Location   `json:"location"`

	// Preferences holds the visitor's display preferences, updated by
	// preference_change events.
	Preferences map[string]string `json:"preferences,omitempty"`

	PageDwell     map[string]PageDwell `json:"pageDwell,omitempty"`
	CurrentPage   string               `json:"currentPage,omitempty"`
	PageEnteredAt int64                `json:"pageEnteredAt,omitempty"`
}

// Ended reports whether the session has been finalized.
func (s *Session) Ended() bool {
	return s.EndTime != nil
}

// Refresh recomputes TimeOnSite and BounceRate as of now (ms since epoch).
// Ended sessions measure against their EndTime.
func (s *Session) Refresh(now int64) {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	s.TimeOnSite = end - s.StartTime
	if s.TimeOnSite < 0 {
		s.TimeOnSite = 0
	}
	s.BounceRate = 0
	if IsBounce(s.PageViews, s.TimeOnSite) {
		s.BounceRate = 1
	}
}

// IsBounce reports whether a session with the given page views and time on
// site counts as a bounce.
func IsBounce(pageViews int, timeOnSiteMs int64) bool {
	return pageViews <= 1 && timeOnSiteMs < BounceThresholdMs
}

// Clone returns a deep copy that shares no mutable state with s.
func (s *Session) Clone() Session {
	c := *s
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	if s.ConversionEvents != nil {
		c.ConversionEvents = append([]string{}, s.ConversionEvents...)
	}
	if s.Preferences != nil {
		c.Preferences = make(map[string]string, len(s.Preferences))
		for k, v := range s.Preferences {
			c.Preferences[k] = v
		}
	}
	if s.PageDwell != nil {
		c.PageDwell = make(map[string]PageDwell, len(s.PageDwell))
		for k, v := range s.PageDwell {
			c.PageDwell[k] = v
		}
	}
	return c
}
