// Package validate checks assembled certificates for completeness and
// plausibility. Findings are advisory: they tell a reviewer what to look at,
// they never block serialization.
package validate

import (
	"fmt"
	"strings"

	"github.com/calibtools/dcc-convert/internal/entity"
)

// Certificate returns one human-readable finding per problem. An empty slice
// means the certificate passed every check.
func Certificate(c *entity.CalibrationCertificate) []string {
	var findings []string

	switch {
	case c.CertificateNumber == "":
		findings = append(findings, "certificate number is missing")
	case strings.HasPrefix(c.CertificateNumber, "UNKNOWN-"):
		findings = append(findings, "certificate number could not be extracted from the document")
	}

	if c.CalibrationDate == nil && c.CertificateDate == nil {
		findings = append(findings, "no calibration date or issue date found")
	}
	if c.CalibrationDate != nil && c.CertificateDate != nil && c.CalibrationDate.After(*c.CertificateDate) {
		findings = append(findings, fmt.Sprintf(
			"calibration date %s is after the issue date %s",
			entity.Date(c.CalibrationDate), entity.Date(c.CertificateDate)))
	}
	if c.ValidUntil != nil && c.CalibrationDate != nil && c.ValidUntil.Before(*c.CalibrationDate) {
		findings = append(findings, fmt.Sprintf(
			"validity end %s is before the calibration date %s",
			entity.Date(c.ValidUntil), entity.Date(c.CalibrationDate)))
	}

	if c.CalibrationLaboratory.Name == "" {
		findings = append(findings, "calibration laboratory name is missing")
	}

	if !identifiable(c.Equipment) {
		findings = append(findings, "equipment cannot be identified, no manufacturer, model, serial or identification number")
	}

	switch len(c.MeasurementResults) {
	case 0:
		findings = append(findings, "no measurement results extracted")
	case 1:
		findings = append(findings, "only one measurement result extracted, the document may contain a table that was not recognized")
	}
	for _, r := range c.MeasurementResults {
		if r.Measured.Unit == "" {
			findings = append(findings, fmt.Sprintf("measurement %q has no unit", r.Name))
		}
	}

	if c.EnvironmentalConditions == nil || !c.EnvironmentalConditions.HasData() {
		findings = append(findings, "no environmental conditions recorded")
	}

	return findings
}

func identifiable(e entity.EquipmentInfo) bool {
	return e.Manufacturer != "" || e.Model != "" || e.SerialNumber != "" || e.IdentificationNumber != ""
}
