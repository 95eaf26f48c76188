package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// cadLayout is the CAD API "cd" column, e.g. "1900-Jan-01 00:11".
	cadLayout = "2006-Jan-02 15:04"
	// compactLayout is the spreadsheet-style export, e.g. "1/1/00 0:11".
	compactLayout = "1/2/06 15:04"
	// displayLayout is the canonical rendering. Seconds are deliberately absent.
	displayLayout = "2006-01-02 15:04"
)

var approachLayouts = []string{cadLayout, compactLayout}

// ParseApproachTime parses a CAD close-approach time into a UTC instant.
func ParseApproachTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range approachLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
}

// FormatApproachTime renders t as "YYYY-MM-DD HH:MM" in UTC.
func FormatApproachTime(t time.Time) string {
	return t.UTC().Format(displayLayout)
}
