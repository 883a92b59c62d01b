// Package extract turns raw certificate text (PDF-extracted or OCR output)
// into partially-filled certificate fields and measurement results. Matching
// is label-anchored with positional fallbacks; every matcher tolerates its
// field being absent.
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText prepares raw text for pattern matching: NFC so composed
// characters (°C, µm, Ω) match the label vocabulary regardless of how the
// OCR engine emitted them, CRLF folded to \n, over-long blank runs collapsed
// to a single blank line, trailing spaces trimmed per line.
//
// Column whitespace is left intact: the table extractor segments columns by
// whitespace runs, so collapsing interior spaces here would destroy rows.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
