package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateFormats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"12.03.2024", date(2024, 3, 12)},
		{"2024-03-12", date(2024, 3, 12)},
		{"12/03/2024", date(2024, 3, 12)},
		{"12-03-2024", date(2024, 3, 12)},
		{"25/03/2024", date(2024, 3, 25)}, // day>12 forces DD/MM
		{"03/25/2024", date(2024, 3, 25)}, // day>12 forces MM/DD
		{"05.06.24", date(2024, 6, 5)},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		require.True(t, ok, "token %q", tc.in)
		assert.Equal(t, tc.want, got, "token %q", tc.in)
	}

	_, ok := ParseDate("not a date")
	assert.False(t, ok)
}

func TestNormalizeTextKeepsColumns(t *testing.T) {
	in := "a   b\r\nc  \n\n\n\nd"
	out := NormalizeText(in)
	assert.Equal(t, "a   b\nc\n\nd", out)
}

func TestExtractLabelAnchoredFields(t *testing.T) {
	text := `Calibration Certificate
Certificate No.: K-2024-0042
Calibration date: 12.03.2024
Date of issue: 15.03.2024
Manufacturer: Acme Instruments
Model: FX-200
Serial Number: SN-778812
Temperature: 23,5 °C
Humidity: 45 %rh
Pressure: 1013.25 hPa
`
	e := NewExtractor(nil)
	f := e.Extract(text, "en")

	assert.Equal(t, "K-2024-0042", f.CertificateNumber)
	require.NotNil(t, f.CalibrationDate)
	assert.Equal(t, date(2024, 3, 12), *f.CalibrationDate)
	require.NotNil(t, f.CertificateDate)
	assert.Equal(t, date(2024, 3, 15), *f.CertificateDate)

	assert.Equal(t, "Acme Instruments", f.Manufacturer)
	assert.Equal(t, "FX-200", f.Model)
	assert.Equal(t, "SN-778812", f.SerialNumber)

	require.NotNil(t, f.Temperature)
	assert.InDelta(t, 296.65, f.Temperature.Value, 1e-9)
	assert.Equal(t, "K", f.Temperature.Unit)

	require.NotNil(t, f.Humidity)
	assert.InDelta(t, 45, f.Humidity.Value, 1e-9)
	assert.Equal(t, "%rh", f.Humidity.Unit)

	require.NotNil(t, f.Pressure)
	assert.InDelta(t, 101325.0, f.Pressure.Value, 1e-9)
	assert.Equal(t, "Pa", f.Pressure.Unit)
}

func TestExtractGermanLabels(t *testing.T) {
	text := `Kalibrierschein Nr.: D-2023-117
Kalibrierdatum: 03.11.2023
Hersteller: Messtechnik GmbH
Modell: PR-5220
Seriennummer: 4711-A
Auftraggeber: Beispiel AG
Luftfeuchtigkeit: 48,2 %
`
	e := NewExtractor(nil)
	f := e.Extract(text, "en")

	assert.Equal(t, "D-2023-117", f.CertificateNumber)
	require.NotNil(t, f.CalibrationDate)
	assert.Equal(t, date(2023, 11, 3), *f.CalibrationDate)
	assert.Equal(t, "Messtechnik GmbH", f.Manufacturer)
	assert.Equal(t, "PR-5220", f.Model)
	assert.Equal(t, "4711-A", f.SerialNumber)
	assert.Equal(t, "Beispiel AG", f.CustomerName)
	assert.Equal(t, "de", f.Language)

	require.NotNil(t, f.Humidity)
	assert.InDelta(t, 48.2, f.Humidity.Value, 1e-9)
	assert.Equal(t, "%rh", f.Humidity.Unit)
}

func TestExtractMissingFieldsStayZero(t *testing.T) {
	e := NewExtractor(nil)
	f := e.Extract("just some unrelated prose without labels", "en")
	assert.Empty(t, f.CertificateNumber)
	assert.Nil(t, f.CalibrationDate)
	assert.Nil(t, f.Temperature)
	assert.Empty(t, f.Results)
}

func TestPositionalDateFallback(t *testing.T) {
	text := "Kalibrierschein\nGarbled l@bel 12.03.2024\n\nsome body text"
	e := NewExtractor(nil)
	f := e.Extract(text, "en")
	require.NotNil(t, f.CalibrationDate)
	assert.Equal(t, date(2024, 3, 12), *f.CalibrationDate)
	assert.NotEmpty(t, f.Warnings)
}

func TestExtractTableDefaultColumnOrder(t *testing.T) {
	e := NewExtractor(nil)
	results, warns := e.ExtractTable("Force | 10 kN | 10.02 kN | 0.05 kN")
	require.Len(t, results, 1)
	assert.Empty(t, warns)

	r := results[0]
	assert.Equal(t, "Force", r.Name)
	require.NotNil(t, r.Nominal)
	assert.InDelta(t, 10000.0, r.Nominal.Value, 1e-9)
	assert.Equal(t, "N", r.Nominal.Unit)
	assert.InDelta(t, 10020.0, r.Measured.Value, 1e-9)
	assert.Equal(t, "N", r.Measured.Unit)
	require.NotNil(t, r.Uncertainty)
	assert.InDelta(t, 50.0, r.Uncertainty.Value, 1e-9)
}

func TestExtractTableHeaderMapping(t *testing.T) {
	region := `Quantity        Measured        Nominal        Uncertainty
Pressure        1013.25 hPa     1000 hPa       0.5 hPa`
	e := NewExtractor(nil)
	results, warns := e.ExtractTable(region)
	require.Len(t, results, 1)
	assert.Empty(t, warns)

	r := results[0]
	assert.Equal(t, "Pressure", r.Name)
	assert.InDelta(t, 101325.0, r.Measured.Value, 1e-9)
	require.NotNil(t, r.Nominal)
	assert.InDelta(t, 100000.0, r.Nominal.Value, 1e-9)
	require.NotNil(t, r.Uncertainty)
	assert.InDelta(t, 50.0, r.Uncertainty.Value, 1e-9)
}

func TestExtractTableHeaderColumnUnit(t *testing.T) {
	region := `Quantity        Nominal [kN]    Measured [kN]
Force           10              10.02`
	e := NewExtractor(nil)
	results, warns := e.ExtractTable(region)
	require.Len(t, results, 1)
	assert.Empty(t, warns)

	r := results[0]
	require.NotNil(t, r.Nominal)
	assert.InDelta(t, 10000.0, r.Nominal.Value, 1e-9)
	assert.InDelta(t, 10020.0, r.Measured.Value, 1e-9)
	assert.Equal(t, "N", r.Measured.Unit)
}

func TestPartialTableTolerance(t *testing.T) {
	region := `Force | 10 kN | 10.02 kN | 0.05 kN
Mass | 1,2,3.4.5 kg
Length | 100 mm | 100.02 mm | 0.01 mm`
	e := NewExtractor(nil)
	results, warns := e.ExtractTable(region)

	assert.Len(t, results, 2)
	assert.Len(t, warns, 1)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "de", DetectLanguage("Kalibrierschein Hersteller Kunde", "en"))
	assert.Equal(t, "en", DetectLanguage("certificate manufacturer customer", "de"))
	assert.Equal(t, "de", DetectLanguage("no labels here", "de"))
	assert.Equal(t, "en", DetectLanguage("no labels here", ""))
}
