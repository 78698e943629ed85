// Package textutil provides small string and timestamp helpers shared by
// the enrichment operations.
package textutil

import (
	"strings"
	"time"
)

const stampFormat = "2006-01-02 15:04:05 MST"

// CollapseWhitespace replaces every run of whitespace, including newlines
// and tabs, with a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes shortens s to at most max runes, cutting at a rune
// boundary and appending "..." when anything was removed.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := max - 3
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + "..."
}

// FormatStamp renders a unix timestamp in the given location.
func FormatStamp(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(ts, 0).In(loc).Format(stampFormat)
}
