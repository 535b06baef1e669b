package collector

// Capability names one browser signal source.
type Capability string

const (
	CapVisibility  Capability = "visibility"
	CapScroll      Capability = "scroll"
	CapClick       Capability = "click"
	CapFocus       Capability = "focus"
	CapLoad        Capability = "load"
	CapResize      Capability = "resize"
	CapPageHide    Capability = "pagehide"
	CapError       Capability = "error"
	CapLCP         Capability = "largest-contentful-paint"
	CapFirstInput  Capability = "first-input"
	CapLayoutShift Capability = "layout-shift"
)

// AllCapabilities lists every source the collector knows how to observe.
var AllCapabilities = []Capability{
	CapVisibility, CapScroll, CapClick, CapFocus, CapLoad, CapResize,
	CapPageHide, CapError, CapLCP, CapFirstInput, CapLayoutShift,
}

// Signal is one observation delivered by an Environment.
type Signal interface {
	Capability() Capability
}

type VisibilityChange struct {
	Hidden bool `json:"hidden"`
}

// Scroll is a scroll position sample in CSS pixels.
type Scroll struct {
	ScrollTop      float64 `json:"scroll_top"`
	ScrollHeight   float64 `json:"scroll_height"`
	ViewportHeight float64 `json:"viewport_height"`
}

// Click describes the clicked element and pointer position.
type Click struct {
	Tag   string  `json:"tag"`
	ID    string  `json:"id"`
	Class string  `json:"class"`
	Text  string  `json:"text"`
	Href  string  `json:"href"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Focus is focus entering an element.
type Focus struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

// NavigationTiming carries the navigation timing entry, in ms relative to
// the time origin, available once the page has loaded.
type NavigationTiming struct {
	FetchStart               float64 `json:"fetch_start"`
	RequestStart             float64 `json:"request_start"`
	ResponseStart            float64 `json:"response_start"`
	DOMContentLoadedEventEnd float64 `json:"dom_content_loaded_event_end"`
	LoadEventEnd             float64 `json:"load_event_end"`
}

type Resize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PageHide is fired when the page is about to be torn down.
type PageHide struct{}

type ScriptError struct {
	Message string `json:"message"`
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

type LargestContentfulPaint struct {
	StartTime float64 `json:"start_time"`
}

type FirstInput struct {
	StartTime       float64 `json:"start_time"`
	ProcessingStart float64 `json:"processing_start"`
}

type LayoutShift struct {
	Value          float64 `json:"value"`
	HadRecentInput bool    `json:"had_recent_input"`
}

func (VisibilityChange) Capability() Capability       { return CapVisibility }
func (Scroll) Capability() Capability                 { return CapScroll }
func (Click) Capability() Capability                  { return CapClick }
func (Focus) Capability() Capability                  { return CapFocus }
func (NavigationTiming) Capability() Capability       { return CapLoad }
func (Resize) Capability() Capability                 { return CapResize }
func (PageHide) Capability() Capability               { return CapPageHide }
func (ScriptError) Capability() Capability            { return CapError }
func (LargestContentfulPaint) Capability() Capability { return CapLCP }
func (FirstInput) Capability() Capability             { return CapFirstInput }
func (LayoutShift) Capability() Capability            { return CapLayoutShift }
