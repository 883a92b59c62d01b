package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calibtools/dcc-convert/internal/common"
	"github.com/calibtools/dcc-convert/internal/entity"
)

const sampleCertificate = `Calibration Certificate

Certificate number: K-2024-0042
Calibration date: 12.03.2024
Date of issue: 14.03.2024

Manufacturer: HBM
Model: C2-10kN
Serial number: SN-44721

Temperature: 23,5 °C
Humidity: 45 %
Pressure: 1013.25 hPa

Quantity | Nominal | Measured | Uncertainty
Force | 10 kN | 10.02 kN | 0.05 kN
`

func newTestAssembler() *Assembler {
	return NewAssembler(common.ExtractConfig{}, nil)
}

func TestAssembleFullDocument(t *testing.T) {
	a := newTestAssembler()

	cert, warnings, err := a.Assemble(sampleCertificate, "scan_0042.pdf", Overrides{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "K-2024-0042", cert.CertificateNumber)
	require.NotNil(t, cert.CalibrationDate)
	assert.Equal(t, "2024-03-12", entity.Date(cert.CalibrationDate))
	require.NotNil(t, cert.CertificateDate)
	assert.Equal(t, "2024-03-14", entity.Date(cert.CertificateDate))

	assert.Equal(t, "HBM", cert.Equipment.Manufacturer)
	assert.Equal(t, "C2-10kN", cert.Equipment.Model)
	assert.Equal(t, "SN-44721", cert.Equipment.SerialNumber)
	// no explicit equipment name, the model backstops it
	assert.Equal(t, "C2-10kN", cert.Equipment.Name)

	require.NotNil(t, cert.EnvironmentalConditions)
	require.NotNil(t, cert.EnvironmentalConditions.Temperature)
	assert.InDelta(t, 296.65, cert.EnvironmentalConditions.Temperature.Value, 1e-9)
	assert.Equal(t, "K", cert.EnvironmentalConditions.Temperature.Unit)
	require.NotNil(t, cert.EnvironmentalConditions.Pressure)
	assert.InDelta(t, 101325.0, cert.EnvironmentalConditions.Pressure.Value, 1e-6)
	assert.Equal(t, "Pa", cert.EnvironmentalConditions.Pressure.Unit)

	require.Len(t, cert.MeasurementResults, 1)
	r := cert.MeasurementResults[0]
	assert.Equal(t, "Force", r.Name)
	assert.InDelta(t, 10020.0, r.Measured.Value, 1e-9)
	assert.Equal(t, "N", r.Measured.Unit)
	require.NotNil(t, r.Nominal)
	assert.InDelta(t, 10000.0, r.Nominal.Value, 1e-9)
	require.NotNil(t, r.Uncertainty)
	assert.InDelta(t, 50.0, r.Uncertainty.Value, 1e-9)
	// the column uncertainty travels with the measured value
	require.NotNil(t, r.Measured.ExpandedUncertainty)
	assert.InDelta(t, 50.0, *r.Measured.ExpandedUncertainty, 1e-9)

	assert.Equal(t, "en", cert.Language)
	assert.Equal(t, "scan_0042.pdf", cert.SourceFile)
}

func TestAssembleResultPassesShapeCheck(t *testing.T) {
	a := newTestAssembler()

	text := "Certificate number: P-1\nForce | 10 kN | 10.02 kN | 0.05 kN"
	cert, _, err := a.Assemble(text, "p.txt", Overrides{})
	require.NoError(t, err)
	require.Len(t, cert.MeasurementResults, 1)
	require.NoError(t, validateShape(cert))
}

func TestAssembleEmptyTextFails(t *testing.T) {
	a := newTestAssembler()

	_, _, err := a.Assemble("   \n\t  ", "empty.txt", Overrides{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAssembly)
}

func TestAssembleCertificateNumberFallback(t *testing.T) {
	a := newTestAssembler()

	cert, _, err := a.Assemble("Some text without any labels at all", "folder/scan_17.pdf", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN-scan_17", cert.CertificateNumber)
	assert.Equal(t, "Unknown Equipment", cert.Equipment.Name)
	assert.Nil(t, cert.EnvironmentalConditions)
	assert.Nil(t, cert.Customer)
}

func TestAssembleOverridesWin(t *testing.T) {
	a := newTestAssembler()

	lab := &entity.Organization{
		Name:                "Prüflabor Nord GmbH",
		AccreditationNumber: "D-K-15262-01-00",
		Address:             &entity.Address{City: "Hamburg", CountryCode: "DE"},
	}
	customer := &entity.Organization{Name: "Acme Industries"}

	text := "Calibration laboratory: Extracted Lab Name\nCertificate number: X-1\nForce | 5 N"
	cert, _, err := a.Assemble(text, "x.txt", Overrides{Laboratory: lab, Customer: customer})
	require.NoError(t, err)

	assert.Equal(t, "Prüflabor Nord GmbH", cert.CalibrationLaboratory.Name)
	assert.Equal(t, "D-K-15262-01-00", cert.CalibrationLaboratory.AccreditationNumber)
	require.NotNil(t, cert.CalibrationLaboratory.Address)
	assert.Equal(t, "Hamburg", cert.CalibrationLaboratory.Address.City)
	require.NotNil(t, cert.Customer)
	assert.Equal(t, "Acme Industries", cert.Customer.Name)
}

func TestAssembleExtractedLabUsedWithoutOverride(t *testing.T) {
	a := newTestAssembler()

	text := "Calibration laboratory: Extracted Lab Name\nCertificate number: X-2"
	cert, _, err := a.Assemble(text, "x.txt", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "Extracted Lab Name", cert.CalibrationLaboratory.Name)
}

func TestAssembleDefaultLabName(t *testing.T) {
	a := NewAssembler(common.ExtractConfig{DefaultLabName: "House Lab"}, nil)

	cert, _, err := a.Assemble("Certificate number: X-3", "x.txt", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "House Lab", cert.CalibrationLaboratory.Name)
}

func TestAssembleLanguageOverride(t *testing.T) {
	a := newTestAssembler()

	cert, _, err := a.Assemble("Kalibrierschein: K-9\nHersteller: Sartorius", "x.txt", Overrides{Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "en", cert.Language)
}

func TestAssembleWarningsSurface(t *testing.T) {
	a := newTestAssembler()

	text := `Certificate number: W-1
Quantity | Nominal | Measured
Force | 10 kN | 10.02 kN
Mass | 1,2,3.4.5 kg | whatever
`
	cert, warnings, err := a.Assemble(text, "w.txt", Overrides{})
	require.NoError(t, err)
	require.Len(t, cert.MeasurementResults, 1)
	assert.NotEmpty(t, warnings)
}
