package datetime

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const ClockLayout = "15:04"

var (
	clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?$`)

	// Time part of an ISO or "date time" value: fractional seconds and a
	// zone suffix are tolerated and ignored.
	embeddedClockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::(\d{1,2})(?:\.\d+)?)?\s*(?:Z|[+-]\d{2}:?\d{2})?$`)
)

var genericClockLayouts = []string{
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"3:04:05PM",
	"15:04:05.000",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// NormalizeTime returns raw as a zero-padded HH:MM clock time, dropping
// seconds. On failure the original string is returned with ok == false.
func NormalizeTime(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw, false
	}

	if clock, ok := matchClock(clockPattern, s); ok {
		return clock, true
	}

	if i := strings.IndexAny(s, "T "); i > 0 {
		if clock, ok := matchClock(embeddedClockPattern, strings.TrimSpace(s[i+1:])); ok {
			return clock, true
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if clock, ok := fromDayFraction(f); ok {
			return clock, true
		}
		return raw, false
	}

	s = stripZoneName(s)
	for _, layout := range genericClockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ClockLayout), true
		}
	}
	return raw, false
}

// Minutes converts a canonical HH:MM value into minutes after midnight.
func Minutes(clock string) (int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(clock))
	if m == nil || m[3] != "" {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if hours > 23 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

func matchClock(pattern *regexp.Regexp, s string) (string, bool) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if hours > 23 || minutes > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes), true
}

// fromDayFraction reads spreadsheet time values stored as a fraction of a
// day, optionally on top of a serial day number.
func fromDayFraction(f float64) (string, bool) {
	if f < 0 {
		return "", false
	}
	if f >= 1 && (f < minExcelSerial || f > maxExcelSerial) {
		return "", false
	}
	_, frac := math.Modf(f)
	total := int(math.Round(frac*24*60)) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", total/60, total%60), true
}
