// Package entity holds the typed calibration certificate model. All
// value+unit pairs carry canonical SI units; raw unit tokens never appear
// here, they stop at the unit normalizer boundary.
package entity

import "time"

// Contact holds optional contact channels for an organization.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Fax   string `json:"fax,omitempty"`
}

// Address is a structured postal address; every field is optional.
type Address struct {
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Organization identifies a laboratory or a customer. Role is carried by the
// certificate field it sits in, not by the value itself.
type Organization struct {
	Name                string   `json:"name"`
	Address             *Address `json:"address,omitempty"`
	Contact             *Contact `json:"contact,omitempty"`
	AccreditationNumber string   `json:"accreditation_number,omitempty"`
}

// MeasuredValue is a numeric value in a canonical SI unit, optionally with
// an expanded uncertainty statement.
type MeasuredValue struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"` // canonical SI symbol, e.g. "K", "Pa", "N"

	ExpandedUncertainty *float64 `json:"expanded_uncertainty,omitempty"`
	CoverageFactor      *float64 `json:"coverage_factor,omitempty"`
	CoverageProbability *float64 `json:"coverage_probability,omitempty"`
}

// MeasurementResult is one row of the calibration results table.
type MeasurementResult struct {
	Name      string         `json:"name"`
	Nominal   *MeasuredValue `json:"nominal,omitempty"` // reference value, if stated
	Measured  MeasuredValue  `json:"measured"`
	Deviation *MeasuredValue `json:"deviation,omitempty"`
	// Uncertainty unit is an SI symbol or "%" for relative statements.
	Uncertainty *MeasuredValue `json:"uncertainty,omitempty"`
	Remarks     string         `json:"remarks,omitempty"`
}

// EquipmentInfo describes the calibrated item. All identifying fields are
// optional; the validator flags an all-empty block without rejecting it.
type EquipmentInfo struct {
	Name                 string `json:"name"`
	Manufacturer         string `json:"manufacturer,omitempty"`
	Model                string `json:"model,omitempty"`
	SerialNumber         string `json:"serial_number,omitempty"`
	EquipmentClass       string `json:"equipment_class,omitempty"`
	IdentificationNumber string `json:"identification_number,omitempty"`
}

// EnvironmentalConditions captures the ambient state during calibration.
// Presence is independent per field.
type EnvironmentalConditions struct {
	Temperature *MeasuredValue `json:"temperature,omitempty"` // K
	Humidity    *MeasuredValue `json:"humidity,omitempty"`    // %rh
	Pressure    *MeasuredValue `json:"pressure,omitempty"`    // Pa
}

// HasData reports whether any condition was captured.
func (e *EnvironmentalConditions) HasData() bool {
	return e != nil && (e.Temperature != nil || e.Humidity != nil || e.Pressure != nil)
}

// CalibrationCertificate is the assembled record for one document. It is
// constructed once by the assembler and owns all nested values.
type CalibrationCertificate struct {
	CertificateNumber string     `json:"certificate_number"`
	CertificateDate   *time.Time `json:"certificate_date,omitempty"` // date of issue
	CalibrationDate   *time.Time `json:"calibration_date,omitempty"`
	ValidUntil        *time.Time `json:"valid_until,omitempty"`

	Language string `json:"language"` // ISO 639-1, default "en"

	CalibrationLaboratory Organization  `json:"calibration_laboratory"`
	Customer              *Organization `json:"customer,omitempty"`

	Equipment EquipmentInfo `json:"equipment"`

	EnvironmentalConditions *EnvironmentalConditions `json:"environmental_conditions,omitempty"`

	MeasurementResults []MeasurementResult `json:"measurement_results"`

	MeasurementProcedure string `json:"measurement_procedure,omitempty"`
	Traceability         string `json:"traceability,omitempty"`
	Remarks              string `json:"remarks,omitempty"`

	// RawText retains the extracted text evidence for traceability; only
	// serialized when the caller asks for it.
	RawText    string `json:"-"`
	SourceFile string `json:"source_file,omitempty"`
}

// Date formats a model date as ISO 8601 (date only); empty for nil.
func Date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
