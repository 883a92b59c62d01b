// Package assemble builds one CalibrationCertificate from raw document text
// plus caller-supplied overrides. Every field resolves by the same priority:
// explicit override, then extracted value, then configured default.
package assemble

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/calibtools/dcc-convert/internal/common"
	"github.com/calibtools/dcc-convert/internal/entity"
	"github.com/calibtools/dcc-convert/internal/extract"
)

// Overrides carries caller-known-correct values that win over anything
// extracted from noisy text.
type Overrides struct {
	Laboratory *entity.Organization
	Customer   *entity.Organization
	Language   string
}

type Assembler struct {
	cfg       common.ExtractConfig
	extractor *extract.Extractor
	logger    *slog.Logger
}

func NewAssembler(cfg common.ExtractConfig, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultLabName == "" {
		cfg.DefaultLabName = "Calibration Laboratory"
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	return &Assembler{
		cfg:       cfg,
		extractor: extract.NewExtractor(logger),
		logger:    logger,
	}
}

// resolve applies the uniform field priority {override, extracted, default}.
func resolve(override, extracted, fallback string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	if v := strings.TrimSpace(extracted); v != "" {
		return v
	}
	return fallback
}

// Assemble extracts fields from raw text, applies overrides and defaults,
// and returns the certificate plus extraction warnings. It fails only when
// the input text is empty or unusable; missing optional fields never fail
// the assembly.
func (a *Assembler) Assemble(rawText, sourceFile string, ov Overrides) (*entity.CalibrationCertificate, []string, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, nil, common.NewAppError("ASSEMBLY_ERROR", "input text is empty", common.ErrAssembly)
	}

	f := a.extractor.Extract(rawText, ov.Language)

	cert := &entity.CalibrationCertificate{
		CertificateNumber: resolve("", f.CertificateNumber, fallbackCertNumber(sourceFile)),
		CertificateDate:   f.CertificateDate,
		CalibrationDate:   f.CalibrationDate,
		ValidUntil:        f.ValidUntil,
		Language:          resolve(ov.Language, f.Language, a.cfg.DefaultLanguage),

		CalibrationLaboratory: a.resolveLab(&f, ov.Laboratory),
		Customer:              resolveCustomer(&f, ov.Customer),

		Equipment: entity.EquipmentInfo{
			Name:                 resolve("", f.EquipmentName, resolve("", f.Model, "Unknown Equipment")),
			Manufacturer:         f.Manufacturer,
			Model:                f.Model,
			SerialNumber:         f.SerialNumber,
			IdentificationNumber: f.IdentificationNumber,
		},

		// never nil: the schema and the serializer both expect an array
		MeasurementResults:   foldUncertainty(f.Results),
		MeasurementProcedure: f.Procedure,
		Traceability:         f.Traceability,

		RawText:    extract.NormalizeText(rawText),
		SourceFile: sourceFile,
	}

	env := &entity.EnvironmentalConditions{
		Temperature: f.Temperature,
		Humidity:    f.Humidity,
		Pressure:    f.Pressure,
	}
	if env.HasData() {
		cert.EnvironmentalConditions = env
	}

	warnings := f.Warnings
	if err := validateShape(cert); err != nil {
		// the assembler produced a record its own schema rejects; that is a
		// bug in this code path, not in the document
		return nil, warnings, common.NewAppError("ASSEMBLY_ERROR", "assembled certificate failed shape check", err)
	}

	a.logger.Info("assemble.ok",
		"certificate_number", cert.CertificateNumber,
		"language", cert.Language,
		"results", len(cert.MeasurementResults),
		"warnings", len(warnings),
	)
	return cert, warnings, nil
}

// resolveLab merges the extracted laboratory block with the override; the
// override wins per field, and the configured default backstops the name.
func (a *Assembler) resolveLab(f *extract.Fields, ov *entity.Organization) entity.Organization {
	lab := entity.Organization{
		Name:                resolve("", f.LabName, a.cfg.DefaultLabName),
		AccreditationNumber: f.AccreditationNumber,
	}
	if ov == nil {
		return lab
	}
	lab.Name = resolve(ov.Name, f.LabName, a.cfg.DefaultLabName)
	lab.AccreditationNumber = resolve(ov.AccreditationNumber, f.AccreditationNumber, "")
	// address and contact only ever come from the caller; extraction does
	// not attribute free-form address lines
	lab.Address = ov.Address
	lab.Contact = ov.Contact
	return lab
}

func resolveCustomer(f *extract.Fields, ov *entity.Organization) *entity.Organization {
	if ov != nil {
		c := *ov
		if c.Name == "" {
			c.Name = f.CustomerName
		}
		if c.Name == "" {
			return nil
		}
		return &c
	}
	if f.CustomerName == "" {
		return nil
	}
	return &entity.Organization{Name: f.CustomerName}
}

// foldUncertainty copies a table-column uncertainty into the measured
// value's expanded uncertainty so the statement travels with the value. A
// "%" uncertainty is relative and converts to an absolute one.
func foldUncertainty(results []entity.MeasurementResult) []entity.MeasurementResult {
	out := append([]entity.MeasurementResult{}, results...)
	for i := range out {
		u := out[i].Uncertainty
		if u == nil || out[i].Measured.ExpandedUncertainty != nil {
			continue
		}
		switch u.Unit {
		case out[i].Measured.Unit:
			v := u.Value
			out[i].Measured.ExpandedUncertainty = &v
		case "%":
			v := out[i].Measured.Value * u.Value / 100
			out[i].Measured.ExpandedUncertainty = &v
		}
	}
	return out
}

// fallbackCertNumber mirrors the documented default: UNKNOWN- plus the
// source file stem, so the validator can flag it while the record stays
// serializable.
func fallbackCertNumber(sourceFile string) string {
	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	if stem == "" || stem == "." {
		stem = "DOCUMENT"
	}
	return "UNKNOWN-" + stem
}
