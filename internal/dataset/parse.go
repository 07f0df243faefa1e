package dataset

import (
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"Jan 2, 2006", "2 Jan 2006",
}

// parseTimeMaybe tries a fixed set of common layouts.
func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric parses a cell as a float, tolerating percent signs, thousands
// separators and comma decimals.
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	pct := strings.Contains(raw, "%")
	if pct {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.TrimSpace(strings.ReplaceAll(raw, " ", " "))
	// Decide decimal separator: the rightmost of '.' and ',' wins.
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	dec := byte('.')
	if cpos > dpos {
		dec = ','
	}
	for _, sep := range []string{",", ".", " "} {
		if sep[0] != dec {
			raw = strings.ReplaceAll(raw, sep, "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
