package rag

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// timestampPattern accepts M:SS, MM:SS and H:MM:SS with optional fractional seconds.
var timestampPattern = regexp.MustCompile(`^(?:(\d{1,2}):(\d{2})|(\d{1,2})):(\d{2})(?:\.\d+)?$`)

// ParseTimestamp converts a timestamp token to whole seconds.
// Minutes and seconds above 59 are rejected, so "99:99:99" does not parse.
func ParseTimestamp(token string) (int, bool) {
	m := timestampPattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, false
	}

	var hours, minutes int
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
		minutes, _ = strconv.Atoi(m[2])
		if minutes > 59 {
			return 0, false
		}
	} else {
		minutes, _ = strconv.Atoi(m[3])
	}
	seconds, _ := strconv.Atoi(m[4])
	if seconds > 59 {
		return 0, false
	}
	return hours*3600 + minutes*60 + seconds, true
}

// FormatTimestamp renders seconds as "M:SS" below one hour and "H:MM:SS" otherwise.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// WatchLink builds the canonical watch URL for a video at the given offset.
func WatchLink(base, sourceID string, seconds int) string {
	if base == "" {
		base = DefaultWatchURLBase
	}
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%s?v=%s&t=%ds", base, url.QueryEscape(sourceID), seconds)
}

func floorSeconds(t float64) int {
	if t <= 0 || math.IsNaN(t) {
		return 0
	}
	return int(math.Floor(t))
}
