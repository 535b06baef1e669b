package tracker

import (
	"net/url"
	"strings"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
)

const (
	mobileMaxWidth = 768
	tabletMaxWidth = 1024
)

// ClassifyDevice derives the device description captured at session start.
func ClassifyDevice(nav v1.Navigation) v1.DeviceInfo {
	return v1.DeviceInfo{
		DeviceType:   DeviceTypeFor(nav.Viewport.Width, nav.UserAgent),
		Browser:      detectBrowser(nav.UserAgent),
		OS:           detectOS(nav.UserAgent),
		Screen:       nav.Screen,
		Viewport:     nav.Viewport,
		TouchSupport: nav.TouchSupport,
	}
}

// DeviceTypeFor classifies by viewport width (both limits inclusive), falling
// back to the user agent when the width is unknown.
func DeviceTypeFor(viewportWidth int, userAgent string) v1.DeviceType {
	if viewportWidth > 0 {
		switch {
		case viewportWidth <= mobileMaxWidth:
			return v1.DeviceMobile
		case viewportWidth <= tabletMaxWidth:
			return v1.DeviceTablet
		default:
			return v1.DeviceDesktop
		}
	}

	switch {
	case strings.Contains(userAgent, "iPad") || strings.Contains(userAgent, "Tablet"):
		return v1.DeviceTablet
	case strings.Contains(userAgent, "Mobi") || strings.Contains(userAgent, "iPhone"):
		return v1.DeviceMobile
	default:
		return v1.DeviceDesktop
	}
}

// Order matters: Edge and Opera carry "Chrome", Chrome carries "Safari".
func detectBrowser(ua string) string {
	switch {
	case ua == "":
		return "Unknown"
	case strings.Contains(ua, "Edg/"):
		return "Edge"
	case strings.Contains(ua, "OPR/") || strings.Contains(ua, "Opera"):
		return "Opera"
	case strings.Contains(ua, "Firefox/"):
		return "Firefox"
	case strings.Contains(ua, "Chrome/"):
		return "Chrome"
	case strings.Contains(ua, "Safari/"):
		return "Safari"
	default:
		return "Unknown"
	}
}

func detectOS(ua string) string {
	switch {
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad"):
		return "iOS"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac OS X") || strings.Contains(ua, "Macintosh"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

// ParseUTM reads utm_* parameters from the landing URL.
func ParseUTM(rawURL string) v1.UTM {
	u, err := url.Parse(rawURL)
	if err != nil {
		return v1.UTM{}
	}
	q := u.Query()
	return v1.UTM{
		Source:   q.Get("utm_source"),
		Medium:   q.Get("utm_medium"),
		Campaign: q.Get("utm_campaign"),
		Term:     q.Get("utm_term"),
		Content:  q.Get("utm_content"),
	}
}
