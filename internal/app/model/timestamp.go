package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimestamp converts "MM:SS" or "HH:MM:SS" (optionally with a
// fractional second part after '.' or ',') into whole seconds
func ParseTimestamp(ts string) (int, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	parts := strings.Split(ts, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("timestamp %q: expected MM:SS or HH:MM:SS", ts)
	}

	last := parts[len(parts)-1]
	if i := strings.IndexAny(last, ".,"); i >= 0 {
		last = last[:i]
	}
	parts[len(parts)-1] = last

	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("timestamp %q: invalid component %q", ts, p)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("timestamp %q: component %q out of range", ts, p)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS past the hour
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
