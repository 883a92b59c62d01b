package extract

import (
	"regexp"
	"strings"
)

// Matcher is one field-location strategy. Implementations report the
// extracted value and whether they matched; absence is never an error.
type Matcher interface {
	Match(text string) (string, bool)
}

// labelMatcher anchors on a label whose first capture group is the value,
// on the same line as the label.
type labelMatcher struct {
	re *regexp.Regexp
}

func label(expr string) Matcher {
	return labelMatcher{re: regexp.MustCompile(`(?im)` + expr)}
}

func (m labelMatcher) Match(text string) (string, bool) {
	if g := m.re.FindStringSubmatch(text); g != nil {
		v := strings.TrimSpace(g[1])
		if v != "" {
			return v, true
		}
	}
	return "", false
}

// nextLineMatcher handles layouts where the label sits alone on its line and
// the value follows on the next non-empty line. An optional value pattern
// guards against swallowing the next label.
type nextLineMatcher struct {
	labelRe *regexp.Regexp
	valueRe *regexp.Regexp
}

func nextLine(labelExpr, valueExpr string) Matcher {
	m := nextLineMatcher{labelRe: regexp.MustCompile(`(?i)^\s*` + labelExpr + `\s*[:.]?\s*$`)}
	if valueExpr != "" {
		m.valueRe = regexp.MustCompile(valueExpr)
	}
	return m
}

func (m nextLineMatcher) Match(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !m.labelRe.MatchString(line) {
			continue
		}
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				continue
			}
			if m.valueRe != nil {
				if g := m.valueRe.FindStringSubmatch(next); g != nil {
					if len(g) > 1 {
						return strings.TrimSpace(g[1]), true
					}
					return strings.TrimSpace(g[0]), true
				}
				break // value line present but wrong shape; this strategy is done
			}
			return next, true
		}
	}
	return "", false
}

const (
	// sep glues a label to its value without crossing line boundaries.
	sep = `[ \t]*[:.]?[ \t]*`

	dateValue = `(\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|\d{4}-\d{2}-\d{2})`
	codeValue = `([A-Z0-9][A-Z0-9\-/]*)`
	lineValue = `([A-Za-z0-9ÄÖÜäöüß][^\n,;]*?)\s*(?:$|,|;)`
)

// fieldMatchers is the ordered strategy list per field family, English label
// vocabulary before German, label-anchored before positional. First match
// wins.
var fieldMatchers = map[string][]Matcher{
	"certificate_number": {
		label(`certificate\s*(?:no\.?|number)` + sep + codeValue),
		label(`certificate\s*id` + sep + codeValue),
		label(`kalibrier(?:schein|zertifikat)\s*(?:-?\s*nr\.?)?` + sep + codeValue),
		nextLine(`(?:calibration\s*)?certificate\s*(?:no\.?|number)`, `^([A-Z0-9][A-Z0-9\-/]*)$`),
	},
	"calibration_date": {
		label(`calibration\s*date` + sep + dateValue),
		label(`date\s+of\s+calibration` + sep + dateValue),
		label(`kalibrierdatum` + sep + dateValue),
		label(`kalibriert\s+am` + sep + dateValue),
	},
	"certificate_date": {
		label(`date\s+of\s+issue` + sep + dateValue),
		label(`issue\s*date` + sep + dateValue),
		label(`ausstellungsdatum` + sep + dateValue),
	},
	"valid_until": {
		label(`valid\s+until` + sep + dateValue),
		label(`recalibration\s+due` + sep + dateValue),
		label(`g[üu]ltig\s+bis` + sep + dateValue),
	},
	"serial_number": {
		label(`serial\s*(?:no\.?|number)` + sep + codeValue),
		label(`serien-?nummer` + sep + codeValue),
		label(`s/n` + sep + codeValue),
	},
	"identification_number": {
		label(`identification\s*(?:no\.?|number)?` + sep + codeValue),
		label(`inventar-?(?:nr\.?|nummer)` + sep + codeValue),
		label(`id\.?-?(?:no\.?|nr\.?)` + sep + codeValue),
	},
	"manufacturer": {
		label(`manufacturer` + sep + lineValue),
		label(`hersteller` + sep + lineValue),
		label(`made\s+by` + sep + lineValue),
	},
	"model": {
		label(`model\b` + sep + lineValue),
		label(`modell\b` + sep + lineValue),
		label(`typ(?:e)?\b` + sep + lineValue),
	},
	"equipment_name": {
		label(`(?:calibration\s+)?(?:object|item)` + sep + lineValue),
		label(`(?:kalibrier)?gegenstand` + sep + lineValue),
		nextLine(`(?:calibration\s+)?(?:object|item)|(?:kalibrier)?gegenstand`, ""),
	},
	"laboratory": {
		label(`calibration\s+laboratory` + sep + lineValue),
		label(`kalibrierlaboratorium` + sep + lineValue),
		nextLine(`(?:calibration\s+)?laboratory|kalibrierlabor(?:atorium)?`, ""),
	},
	"accreditation_number": {
		label(`accreditation\s*(?:no\.?|number)?` + sep + `(D-K-[0-9\-]+|[A-Z0-9][A-Z0-9\-/]*)`),
		label(`akkreditierungs?-?(?:nr\.?|nummer)?` + sep + `(D-K-[0-9\-]+|[A-Z0-9][A-Z0-9\-/]*)`),
		label(`\b(D-K-\d{5}-\d{2}-\d{2})\b`),
	},
	"customer": {
		label(`customer` + sep + lineValue),
		label(`(?:kunde|auftraggeber)` + sep + lineValue),
		nextLine(`customer|kunde|auftraggeber`, ""),
	},
	"procedure": {
		label(`(?:calibration|measurement)\s+procedure` + sep + lineValue),
		label(`kalibrierverfahren` + sep + lineValue),
	},
	"traceability": {
		label(`traceab(?:ility|le\s+to)` + sep + lineValue),
		label(`r[üu]ckf[üu]hrbarkeit` + sep + lineValue),
	},
}

// matchField runs a field family's strategies in order.
func matchField(text, key string) (string, bool) {
	for _, m := range fieldMatchers[key] {
		if v, ok := m.Match(text); ok {
			return v, true
		}
	}
	return "", false
}

// Environmental conditions need a value and a unit token, so they use
// dedicated two-group patterns instead of the Matcher chain.
var (
	envTemperature = []*regexp.Regexp{
		regexp.MustCompile(`(?i)temperatur(?:e)?` + sep + `([+\-]?[\d.,]+)[ \t]*(?-i:(°C|℃|K|°F))`),
		regexp.MustCompile(`(?i)temp\.?` + sep + `([+\-]?[\d.,]+)[ \t]*(?-i:(°C|℃|K|°F))`),
		regexp.MustCompile(`([+\-]?[\d.,]+)[ \t]*(°C)`),
	}
	envHumidity = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:relative\s+)?humidity` + sep + `([\d.,]+)[ \t]*(%[ \t]*r\.?h\.?|%)`),
		regexp.MustCompile(`(?i)(?:luft)?feucht(?:igkeit|e)` + sep + `([\d.,]+)[ \t]*(%[ \t]*r\.?h\.?|%)`),
	}
	envPressure = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:atmospheric\s+|air\s+)?pressure` + sep + `([\d.,]+)[ \t]*(?-i:(hPa|mbar|kPa|MPa|Pa|bar))`),
		regexp.MustCompile(`(?i)luftdruck` + sep + `([\d.,]+)[ \t]*(?-i:(hPa|mbar|kPa|MPa|Pa|bar))`),
	}
)

// germanLabels and englishLabels vote on the document language.
var (
	germanLabels = regexp.MustCompile(`(?i)kalibrierschein|kalibrierdatum|hersteller|kunde|auftraggeber|seriennummer|luftdruck|feuchte|gegenstand|g[üu]ltig`)

	englishLabels = regexp.MustCompile(`(?i)certificate|calibration\s+date|manufacturer|customer|serial\s+number|pressure|humidity|valid\s+until`)
)

// DetectLanguage votes German vs English label vocabulary; the hint (or
// "en") breaks ties and covers documents with no recognizable labels.
func DetectLanguage(text, hint string) string {
	if hint == "" {
		hint = "en"
	}
	de := len(germanLabels.FindAllString(text, -1))
	en := len(englishLabels.FindAllString(text, -1))
	switch {
	case de > en:
		return "de"
	case en > de:
		return "en"
	default:
		return hint
	}
}
