package ingest

import (
	"strings"
	"time"
)

// missingMarkers is the NA vocabulary of the upstream dumps. Matching is
// exact after trimming; different dataset releases spell their nulls
// differently.
var missingMarkers = map[string]struct{}{
	"null": {},
	"NULL": {},
	"Null": {},
	"N/A":  {},
	"n/a":  {},
	"NA":   {},
	"NaN":  {},
	"nan":  {},
	"None": {},
	"#N/A": {},
}

// IsMissing reports whether a raw cell denotes an absent value: empty,
// whitespace-only, or one of the dataset's null markers.
func IsMissing(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	_, ok := missingMarkers[trimmed]
	return ok
}

// dateLayouts are tried in order; first success wins. The unpadded forms
// accept both "03" and "3" for day and month, and month names match
// case-insensitively, so "03-Apr-2016" and "3-APR-2016" both parse.
var dateLayouts = []string{
	"2006-1-2",
	"2-Jan-2006",
	"2006/1/2",
	"2/1/2006",
}

// ParseDate converts a raw cell into a calendar date. Absent or unparseable
// input yields nil rather than an error: malformed dates are dropped, never
// rejected.
func ParseDate(raw string) *time.Time {
	if IsMissing(raw) {
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}
	return nil
}

// Truncate clips raw to at most max characters. It counts runes, not bytes,
// to honor the destination's character-based column widths. Absent input
// yields nil; anything at or under the limit passes through unchanged.
func Truncate(raw string, max int) *string {
	if IsMissing(raw) {
		return nil
	}
	if runes := []rune(raw); len(runes) > max {
		clipped := string(runes[:max])
		return &clipped
	}
	return &raw
}
