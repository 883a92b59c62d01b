package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/calibtools/dcc-convert/internal/entity"
	"github.com/calibtools/dcc-convert/internal/units"
)

// Fields is the partial result of one extraction pass. Every field may be
// zero; the assembler decides defaults and overrides.
type Fields struct {
	CertificateNumber string
	CalibrationDate   *time.Time
	CertificateDate   *time.Time
	ValidUntil        *time.Time

	EquipmentName        string
	Manufacturer         string
	Model                string
	SerialNumber         string
	IdentificationNumber string

	LabName             string
	AccreditationNumber string
	CustomerName        string

	Temperature *entity.MeasuredValue
	Humidity    *entity.MeasuredValue
	Pressure    *entity.MeasuredValue

	Procedure    string
	Traceability string

	Language string

	Results []entity.MeasurementResult

	// Warnings records fields and rows dropped during extraction; partial
	// extraction from a noisy document is the expected outcome, not a failure.
	Warnings []string
}

// Extractor runs the pattern-driven scan over normalized document text.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// headerRegionLines bounds the positional date fallback to the document head.
const headerRegionLines = 15

// Extract locates certificate fields in raw text. Matchers run
// independently; a field that is absent stays zero and never fails the
// extraction.
func (e *Extractor) Extract(raw, languageHint string) Fields {
	text := NormalizeText(raw)
	var f Fields

	if v, ok := matchField(text, "certificate_number"); ok {
		f.CertificateNumber = v
	}
	f.CalibrationDate = e.matchDate(text, "calibration_date", &f)
	f.CertificateDate = e.matchDate(text, "certificate_date", &f)
	f.ValidUntil = e.matchDate(text, "valid_until", &f)

	// Positional fallback: OCR frequently garbles date labels. Only the
	// calibration date gets the fallback; guessing an issue date from
	// position would misattribute it.
	if f.CalibrationDate == nil && f.CertificateDate == nil {
		if t, ok := firstDateInHeader(text, headerRegionLines); ok {
			f.CalibrationDate = &t
			f.Warnings = append(f.Warnings, "calibration date taken from header position, no label found")
		}
	}

	if v, ok := matchField(text, "equipment_name"); ok {
		f.EquipmentName = v
	}
	if v, ok := matchField(text, "manufacturer"); ok {
		f.Manufacturer = v
	}
	if v, ok := matchField(text, "model"); ok {
		f.Model = v
	}
	if v, ok := matchField(text, "serial_number"); ok {
		f.SerialNumber = v
	}
	if v, ok := matchField(text, "identification_number"); ok {
		f.IdentificationNumber = v
	}

	if v, ok := matchField(text, "laboratory"); ok {
		f.LabName = v
	}
	if v, ok := matchField(text, "accreditation_number"); ok {
		f.AccreditationNumber = v
	}
	if v, ok := matchField(text, "customer"); ok {
		f.CustomerName = v
	}
	if v, ok := matchField(text, "procedure"); ok {
		f.Procedure = v
	}
	if v, ok := matchField(text, "traceability"); ok {
		f.Traceability = v
	}

	f.Temperature = e.matchEnv(text, envTemperature, "temperature", &f)
	f.Humidity = e.matchEnv(text, envHumidity, "humidity", &f)
	f.Pressure = e.matchEnv(text, envPressure, "pressure", &f)

	f.Language = DetectLanguage(text, languageHint)

	results, warns := e.ExtractTable(text)
	f.Results = results
	f.Warnings = append(f.Warnings, warns...)

	e.logger.Debug("extract.fields",
		"certificate_number", f.CertificateNumber,
		"language", f.Language,
		"results", len(f.Results),
		"warnings", len(f.Warnings),
	)
	return f
}

func (e *Extractor) matchDate(text, key string, f *Fields) *time.Time {
	v, ok := matchField(text, key)
	if !ok {
		return nil
	}
	t, ok := ParseDate(v)
	if !ok {
		f.Warnings = append(f.Warnings, fmt.Sprintf("%s: unparseable date token %q", key, v))
		return nil
	}
	return &t
}

// matchEnv tries each pattern for one environmental condition and
// normalizes the first hit to SI. A failing normalization drops the field
// with a warning instead of aborting the document.
func (e *Extractor) matchEnv(text string, patterns []*regexp.Regexp, name string, f *Fields) *entity.MeasuredValue {
	for _, re := range patterns {
		g := re.FindStringSubmatch(text)
		if g == nil {
			continue
		}
		valueToken, unitToken := g[1], canonicalUnitToken(g[2])
		if name == "humidity" && unitToken == "%" {
			// bare percent after a humidity label can only mean relative humidity
			unitToken = "%rh"
		}
		si, siUnit, err := units.Normalize(valueToken, unitToken)
		if err != nil {
			f.Warnings = append(f.Warnings, fmt.Sprintf("%s: %v", name, err))
			return nil
		}
		return &entity.MeasuredValue{Value: si, Unit: siUnit}
	}
	return nil
}

var reRelHumidity = regexp.MustCompile(`(?i)^%\s*r\.?h\.?$`)

// canonicalUnitToken folds spelling noise the regexes allow ("% r.h.")
// into a token the unit table accepts. Humidity given as a bare "%" is
// reported as relative humidity, its only reading in this context.
func canonicalUnitToken(tok string) string {
	tok = strings.TrimSpace(tok)
	if reRelHumidity.MatchString(tok) {
		return "%rh"
	}
	return tok
}
