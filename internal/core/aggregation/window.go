package aggregation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WindowAll names the window covering every recorded session.
const WindowAll = "all"

const day = 24 * time.Hour

// Window is a dashboard time range ending now. A zero Size covers all time.
type Window struct {
	Name string
	Size time.Duration
}

// AllTime reports whether the window is unbounded.
func (w Window) AllTime() bool {
	return w.Size <= 0
}

// Cutoff is the earliest capture time in ms the window includes, or 0 for all time.
func (w Window) Cutoff(now time.Time) int64 {
	return cutoff(w.Size, now)
}

func cutoff(size time.Duration, now time.Time) int64 {
	if size <= 0 {
		return 0
	}
	return now.Add(-size).UnixMilli()
}

// ParseWindow accepts "all", a Go duration such as "5m" or "24h", or a
// whole number of days such as "7d". Bounded windows must be positive.
func ParseWindow(s string) (Window, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Window{}, fmt.Errorf("window must not be empty")
	case strings.EqualFold(s, WindowAll):
		return Window{Name: WindowAll}, nil
	}

	var size time.Duration
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return Window{}, fmt.Errorf("invalid window %q: day count must be a whole number", s)
		}
		size = time.Duration(n) * day
	} else {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
		}
		size = d
	}
	if size <= 0 {
		return Window{}, fmt.Errorf("window must be positive, got %q", s)
	}
	return Window{Name: s, Size: size}, nil
}

// BucketFor truncates a timestamp to a granularity boundary. The real-time
// activity series uses one-minute buckets.
func BucketFor(t time.Time, granularity time.Duration) time.Time {
	return t.Truncate(granularity)
}
