package extract

import (
	"regexp"
	"strings"
	"time"
)

// dateFormats is the fixed precedence order for ambiguous tokens. Formats
// with an out-of-range month simply fail to parse, which implements the
// day>12 disambiguation; when both DD/MM and MM/DD are plausible the first
// matching format wins.
var dateFormats = []string{
	"02.01.2006",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"02.01.06",
	"02/01/06",
}

// reDateToken matches a date-shaped token anywhere in a line.
var reDateToken = regexp.MustCompile(`\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|\d{4}-\d{2}-\d{2}`)

// ParseDate parses a date string accepting multiple regional formats.
// The result is midnight UTC, matching DATE semantics downstream.
func ParseDate(s string) (time.Time, bool) {
	token := strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, token, time.UTC); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// firstDateInHeader is the positional fallback for garbled labels: the first
// date-shaped token within the document's leading lines.
func firstDateInHeader(text string, headLines int) (time.Time, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) > headLines {
		lines = lines[:headLines]
	}
	for _, line := range lines {
		for _, token := range reDateToken.FindAllString(line, -1) {
			if t, ok := ParseDate(token); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
