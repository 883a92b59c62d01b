package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calibtools/dcc-convert/internal/entity"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func completeCertificate() *entity.CalibrationCertificate {
	temp := entity.MeasuredValue{Value: 296.65, Unit: "K"}
	return &entity.CalibrationCertificate{
		CertificateNumber:     "K-2024-0042",
		CalibrationDate:       date(2024, time.March, 12),
		CertificateDate:       date(2024, time.March, 14),
		Language:              "en",
		CalibrationLaboratory: entity.Organization{Name: "Calibration Laboratory"},
		Equipment:             entity.EquipmentInfo{Name: "Load cell", Manufacturer: "HBM", SerialNumber: "SN-1"},
		EnvironmentalConditions: &entity.EnvironmentalConditions{
			Temperature: &temp,
		},
		MeasurementResults: []entity.MeasurementResult{
			{Name: "Force", Measured: entity.MeasuredValue{Value: 10020, Unit: "N"}},
			{Name: "Force", Measured: entity.MeasuredValue{Value: 20010, Unit: "N"}},
		},
	}
}

func TestCompleteCertificateHasNoFindings(t *testing.T) {
	assert.Empty(t, Certificate(completeCertificate()))
}

func TestMissingCertificateNumber(t *testing.T) {
	c := completeCertificate()
	c.CertificateNumber = ""
	findings := Certificate(c)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "certificate number is missing")
}

func TestUnknownCertificateNumberIsFlagged(t *testing.T) {
	c := completeCertificate()
	c.CertificateNumber = "UNKNOWN-scan_17"
	findings := Certificate(c)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "could not be extracted")
}

func TestNoDates(t *testing.T) {
	c := completeCertificate()
	c.CalibrationDate = nil
	c.CertificateDate = nil
	assert.Contains(t, Certificate(c), "no calibration date or issue date found")
}

func TestCalibrationAfterIssueDate(t *testing.T) {
	c := completeCertificate()
	c.CalibrationDate = date(2024, time.March, 20)
	findings := Certificate(c)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "after the issue date")
}

func TestValidityBeforeCalibration(t *testing.T) {
	c := completeCertificate()
	c.ValidUntil = date(2024, time.January, 1)
	findings := Certificate(c)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "before the calibration date")
}

func TestUnidentifiableEquipment(t *testing.T) {
	c := completeCertificate()
	c.Equipment = entity.EquipmentInfo{Name: "Unknown Equipment"}
	findings := Certificate(c)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "equipment cannot be identified")
}

func TestResultFindings(t *testing.T) {
	c := completeCertificate()
	c.MeasurementResults = nil
	assert.Contains(t, Certificate(c), "no measurement results extracted")

	c.MeasurementResults = []entity.MeasurementResult{
		{Name: "Force", Measured: entity.MeasuredValue{Value: 10, Unit: "N"}},
	}
	findings := Certificate(c)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "only one measurement result")
}

func TestMissingUnitIsFlagged(t *testing.T) {
	c := completeCertificate()
	c.MeasurementResults[1].Measured.Unit = ""
	findings := Certificate(c)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], `measurement "Force" has no unit`)
}

func TestMissingEnvironmentalConditions(t *testing.T) {
	c := completeCertificate()
	c.EnvironmentalConditions = nil
	assert.Contains(t, Certificate(c), "no environmental conditions recorded")

	c.EnvironmentalConditions = &entity.EnvironmentalConditions{}
	assert.Contains(t, Certificate(c), "no environmental conditions recorded")
}

// Filling in a missing required field never introduces a new finding.
func TestFixingFieldsOnlyRemovesFindings(t *testing.T) {
	c := &entity.CalibrationCertificate{}
	before := len(Certificate(c))

	steps := []func(){
		func() { c.CertificateNumber = "K-1" },
		func() { c.CalibrationDate = date(2024, time.March, 12) },
		func() { c.CalibrationLaboratory.Name = "Lab" },
		func() { c.Equipment.SerialNumber = "SN-1" },
		func() {
			c.MeasurementResults = []entity.MeasurementResult{
				{Name: "Force", Measured: entity.MeasuredValue{Value: 1, Unit: "N"}},
				{Name: "Force", Measured: entity.MeasuredValue{Value: 2, Unit: "N"}},
			}
		},
		func() {
			temp := entity.MeasuredValue{Value: 293.15, Unit: "K"}
			c.EnvironmentalConditions = &entity.EnvironmentalConditions{Temperature: &temp}
		},
	}
	for _, fix := range steps {
		fix()
		after := len(Certificate(c))
		assert.Less(t, after, before)
		before = after
	}
	assert.Zero(t, before)
}
