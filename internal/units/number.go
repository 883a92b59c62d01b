package units

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedNumberError reports a numeric token that could not be parsed
// under the locale disambiguation policy.
type MalformedNumberError struct {
	Token string
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("malformed number token %q", e.Token)
}

// ParseNumber parses a raw numeric token into a float64 under locale
// ambiguity. Policy:
//   - both '.' and ',' present: the rightmost separator is the decimal
//     point, the other character is a thousands separator;
//   - only ',' present: decimal if followed by exactly 1-2 digits at the
//     end of the token, otherwise a thousands separator;
//   - only '.' present: parsed as-is (no thousands grouping assumed).
//
// Whitespace inside the token (OCR artifact between digit groups) is
// stripped before parsing. A leading sign is preserved.
func ParseNumber(token string) (float64, error) {
	s := strings.TrimSpace(token)
	// OCR likes to split digit groups with regular or non-breaking spaces.
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, &MalformedNumberError{Token: token}
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,56 -> comma is decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// 1,234.56 -> point is decimal
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		frac := s[lastComma+1:]
		if strings.Count(s, ",") == 1 && len(frac) >= 1 && len(frac) <= 2 && allDigits(frac) {
			// 12,5 -> decimal comma
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 12,345 or 1,234,567 -> grouping
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &MalformedNumberError{Token: token}
	}
	return f, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
