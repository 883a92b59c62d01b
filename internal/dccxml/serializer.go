// Package dccxml serializes assembled certificates into the PTB Digital
// Calibration Certificate XML structure.
//
// Reference: https://ptb.de/dcc/v3.0.0/dcc.xsd
package dccxml

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/beevik/etree"

	"github.com/calibtools/dcc-convert/internal/common"
	"github.com/calibtools/dcc-convert/internal/entity"
)

const (
	dccNS = "https://ptb.de/dcc"
	siNS  = "https://ptb.de/si"
	xsiNS = "http://www.w3.org/2001/XMLSchema-instance"

	// maximum of raw source text carried into the comment section
	rawTextLimit = 2000
)

// Options control the output shape, not its content.
type Options struct {
	PrettyPrint    bool
	IncludeRawText bool
}

type Serializer struct {
	cfg    common.XMLConfig
	logger *slog.Logger
}

func NewSerializer(cfg common.XMLConfig, logger *slog.Logger) *Serializer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = "3.0.0"
	}
	if cfg.SoftwareName == "" {
		cfg.SoftwareName = "dcc-convert"
	}
	if cfg.SoftwareRelease == "" {
		cfg.SoftwareRelease = "0.1.0"
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = "DE"
	}
	return &Serializer{cfg: cfg, logger: logger}
}

// Serialize renders the certificate as a DCC XML document. The output is
// deterministic: the same certificate and options always produce the same
// bytes. Missing optional fields are omitted, never emitted empty.
func (s *Serializer) Serialize(cert *entity.CalibrationCertificate, opts Options) (string, error) {
	if cert == nil || cert.CertificateNumber == "" {
		return "", common.NewAppError("SERIALIZATION_ERROR", "certificate number is required", common.ErrSerialization)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("dcc:digitalCalibrationCertificate")
	root.CreateAttr("xmlns:dcc", dccNS)
	root.CreateAttr("xmlns:si", siNS)
	root.CreateAttr("xmlns:xsi", xsiNS)
	root.CreateAttr("xsi:schemaLocation", fmt.Sprintf("%s %s/v%s/dcc.xsd", dccNS, dccNS, s.cfg.SchemaVersion))
	root.CreateAttr("schemaVersion", s.cfg.SchemaVersion)

	s.addAdministrativeData(root, cert)
	s.addMeasurementResults(root, cert)
	s.addComments(root, cert, opts)

	if opts.PrettyPrint {
		doc.Indent(2)
	}
	out, err := doc.WriteToString()
	if err != nil {
		return "", common.NewAppError("SERIALIZATION_ERROR", "write xml", err)
	}
	s.logger.Debug("dccxml.serialize.ok",
		"certificate_number", cert.CertificateNumber,
		"bytes", len(out),
	)
	return out, nil
}

// WriteFile serializes the certificate and writes it to path.
func (s *Serializer) WriteFile(cert *entity.CalibrationCertificate, path string, opts Options) error {
	out, err := s.Serialize(cert, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return common.NewAppError("SERIALIZATION_ERROR", "write file", err)
	}
	s.logger.Info("dccxml.write.ok", "path", path)
	return nil
}

func (s *Serializer) addAdministrativeData(parent *etree.Element, cert *entity.CalibrationCertificate) {
	admin := parent.CreateElement("dcc:administrativeData")

	software := admin.CreateElement("dcc:dccSoftware").CreateElement("dcc:software")
	addText(software, "dcc:name", s.cfg.SoftwareName, cert.Language)
	software.CreateElement("dcc:release").SetText(s.cfg.SoftwareRelease)

	core := admin.CreateElement("dcc:coreData")
	core.CreateElement("dcc:countryCodeISO3166_1").SetText(s.cfg.CountryCode)
	core.CreateElement("dcc:usedLangCodeISO639_1").SetText(cert.Language)
	core.CreateElement("dcc:mandatoryLangCodeISO639_1").SetText(cert.Language)
	core.CreateElement("dcc:uniqueIdentifier").SetText(cert.CertificateNumber)

	// the performance dates come from the document alone; an absent date is
	// omitted so output stays reproducible
	if d := performanceDate(cert); d != "" {
		core.CreateElement("dcc:beginPerformanceDate").SetText(d)
		core.CreateElement("dcc:endPerformanceDate").SetText(d)
	}
	core.CreateElement("dcc:performanceLocation").SetText("laboratory")

	item := admin.CreateElement("dcc:items").CreateElement("dcc:item")
	addText(item, "dcc:name", cert.Equipment.Name, cert.Language)
	if cert.Equipment.Manufacturer != "" {
		addText(item.CreateElement("dcc:manufacturer"), "dcc:name", cert.Equipment.Manufacturer, cert.Language)
	}
	if cert.Equipment.Model != "" {
		item.CreateElement("dcc:model").SetText(cert.Equipment.Model)
	}
	if cert.Equipment.SerialNumber != "" || cert.Equipment.IdentificationNumber != "" {
		ids := item.CreateElement("dcc:identifications")
		if cert.Equipment.SerialNumber != "" {
			addIdentification(ids, "manufacturer", cert.Equipment.SerialNumber, "serialNumber", cert.Language)
		}
		if cert.Equipment.IdentificationNumber != "" {
			addIdentification(ids, "calibrationLaboratory", cert.Equipment.IdentificationNumber, "identificationNumber", cert.Language)
		}
	}

	lab := admin.CreateElement("dcc:calibrationLaboratory")
	if cert.CalibrationLaboratory.AccreditationNumber != "" {
		lab.CreateElement("dcc:calibrationLaboratoryCode").SetText(cert.CalibrationLaboratory.AccreditationNumber)
	}
	contact := lab.CreateElement("dcc:contact")
	addText(contact, "dcc:name", cert.CalibrationLaboratory.Name, cert.Language)
	if c := cert.CalibrationLaboratory.Contact; c != nil {
		if c.Email != "" {
			contact.CreateElement("dcc:eMail").SetText(c.Email)
		}
		if c.Phone != "" {
			contact.CreateElement("dcc:phone").SetText(c.Phone)
		}
		if c.Fax != "" {
			contact.CreateElement("dcc:fax").SetText(c.Fax)
		}
	}
	addLocation(contact, cert.CalibrationLaboratory.Address)

	if cert.Customer != nil && cert.Customer.Name != "" {
		resp := admin.CreateElement("dcc:respPersons").CreateElement("dcc:respPerson")
		person := resp.CreateElement("dcc:person")
		addText(person, "dcc:name", cert.Customer.Name, cert.Language)
		resp.CreateElement("dcc:role").SetText("customer")
	}
}

func (s *Serializer) addMeasurementResults(parent *etree.Element, cert *entity.CalibrationCertificate) {
	result := parent.CreateElement("dcc:measurementResults").CreateElement("dcc:measurementResult")
	addText(result, "dcc:name", "Calibration Results", cert.Language)

	if cert.MeasurementProcedure != "" || cert.Traceability != "" {
		methods := result.CreateElement("dcc:usedMethods")
		if cert.MeasurementProcedure != "" {
			method := methods.CreateElement("dcc:usedMethod")
			addText(method, "dcc:name", cert.MeasurementProcedure, cert.Language)
		}
		if cert.Traceability != "" {
			method := methods.CreateElement("dcc:usedMethod")
			method.CreateAttr("refType", "basic_traceability")
			addText(method, "dcc:name", cert.Traceability, cert.Language)
		}
	}

	if cert.EnvironmentalConditions != nil && cert.EnvironmentalConditions.HasData() {
		s.addInfluenceConditions(result, cert.EnvironmentalConditions, cert.Language)
	}

	list := result.CreateElement("dcc:data").CreateElement("dcc:list")
	for i, r := range cert.MeasurementResults {
		s.addQuantity(list, r, i+1, cert.Language)
	}
}

func (s *Serializer) addInfluenceConditions(parent *etree.Element, env *entity.EnvironmentalConditions, lang string) {
	influence := parent.CreateElement("dcc:influenceConditions")

	add := func(refID, name string, mv *entity.MeasuredValue) {
		if mv == nil {
			return
		}
		cond := influence.CreateElement("dcc:influenceCondition")
		cond.CreateAttr("refId", refID)
		addText(cond, "dcc:name", name, lang)
		quantity := cond.CreateElement("dcc:data").CreateElement("dcc:quantity")
		addValue(quantity, *mv)
	}
	add("temperature", "Ambient Temperature", env.Temperature)
	add("humidity", "Relative Humidity", env.Humidity)
	add("pressure", "Atmospheric Pressure", env.Pressure)
}

func (s *Serializer) addQuantity(list *etree.Element, r entity.MeasurementResult, index int, lang string) {
	quantity := list.CreateElement("dcc:quantity")
	quantity.CreateAttr("refId", fmt.Sprintf("measurement_%d", index))
	addText(quantity, "dcc:name", r.Name, lang)
	addValue(quantity, r.Measured)

	if r.Nominal != nil {
		ref := list.CreateElement("dcc:quantity")
		ref.CreateAttr("refId", fmt.Sprintf("reference_%d", index))
		addText(ref, "dcc:name", r.Name+" (Reference)", lang)
		addValue(ref, *r.Nominal)
	}
	if r.Deviation != nil {
		dev := list.CreateElement("dcc:quantity")
		dev.CreateAttr("refId", fmt.Sprintf("deviation_%d", index))
		addText(dev, "dcc:name", r.Name+" (Deviation)", lang)
		addValue(dev, *r.Deviation)
	}
}

func (s *Serializer) addComments(parent *etree.Element, cert *entity.CalibrationCertificate, opts Options) {
	includeRaw := opts.IncludeRawText && cert.RawText != ""
	if cert.Remarks == "" && !includeRaw {
		return
	}
	comment := parent.CreateElement("dcc:comment")
	if cert.Remarks != "" {
		content := comment.CreateElement("dcc:content")
		content.CreateAttr("lang", cert.Language)
		content.SetText(cert.Remarks)
	}
	if includeRaw {
		raw := cert.RawText
		if len(raw) > rawTextLimit {
			raw = raw[:rawTextLimit]
		}
		content := comment.CreateElement("dcc:content")
		content.CreateAttr("lang", cert.Language)
		content.SetText("Raw extracted text:\n" + raw)
	}
}

// addValue writes a si:real block for a measured value, including the
// expanded uncertainty statement when present.
func addValue(parent *etree.Element, mv entity.MeasuredValue) {
	value := parent.CreateElement("si:real")
	value.CreateElement("si:value").SetText(formatValue(mv.Value, mv.Unit))
	if mv.Unit != "" {
		value.CreateElement("si:unit").SetText(siUnit(mv.Unit))
	}
	if mv.ExpandedUncertainty != nil {
		unc := value.CreateElement("si:expandedUnc")
		unc.CreateElement("si:uncertainty").SetText(formatValue(*mv.ExpandedUncertainty, mv.Unit))
		if mv.CoverageFactor != nil {
			unc.CreateElement("si:coverageFactor").SetText(formatValue(*mv.CoverageFactor, ""))
		}
		if mv.CoverageProbability != nil {
			unc.CreateElement("si:coverageProbability").SetText(formatValue(*mv.CoverageProbability, ""))
		}
	}
}

func addText(parent *etree.Element, tag, text, lang string) {
	content := parent.CreateElement(tag).CreateElement("dcc:content")
	content.CreateAttr("lang", lang)
	content.SetText(text)
}

func addIdentification(parent *etree.Element, issuer, value, idType, lang string) {
	ident := parent.CreateElement("dcc:identification")
	addText(ident, "dcc:issuer", issuer, lang)
	addText(ident, "dcc:value", value, lang)
	ident.CreateElement("dcc:type").SetText(idType)
}

func addLocation(contact *etree.Element, addr *entity.Address) {
	if addr == nil {
		return
	}
	if addr.Street == "" && addr.City == "" && addr.PostalCode == "" && addr.CountryCode == "" {
		return
	}
	location := contact.CreateElement("dcc:location")
	if addr.Street != "" {
		location.CreateElement("dcc:street").SetText(addr.Street)
	}
	if addr.City != "" {
		location.CreateElement("dcc:city").SetText(addr.City)
	}
	if addr.PostalCode != "" {
		location.CreateElement("dcc:postCode").SetText(addr.PostalCode)
	}
	if addr.CountryCode != "" {
		location.CreateElement("dcc:countryCode").SetText(addr.CountryCode)
	}
}

func performanceDate(cert *entity.CalibrationCertificate) string {
	if cert.CalibrationDate != nil {
		return entity.Date(cert.CalibrationDate)
	}
	if cert.CertificateDate != nil {
		return entity.Date(cert.CertificateDate)
	}
	return ""
}
