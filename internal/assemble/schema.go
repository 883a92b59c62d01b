package assemble

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/calibtools/dcc-convert/internal/entity"
)

// certificateSchema is the minimum shape every assembled certificate must
// satisfy before it leaves this package. It is deliberately loose about
// optional fields; the validator reports on content, this only guards the
// structure.
const certificateSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["certificate_number", "language", "calibration_laboratory", "equipment", "measurement_results"],
  "properties": {
    "certificate_number": {"type": "string", "minLength": 1},
    "language": {"type": "string", "pattern": "^[a-z]{2}$"},
    "calibration_laboratory": {
      "type": "object",
      "required": ["name"],
      "properties": {"name": {"type": "string", "minLength": 1}}
    },
    "equipment": {
      "type": "object",
      "required": ["name"],
      "properties": {"name": {"type": "string", "minLength": 1}}
    },
    "measurement_results": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "measured"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "measured": {
            "type": "object",
            "required": ["value", "unit"],
            "properties": {"value": {"type": "number"}}
          }
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("certificate.json", strings.NewReader(certificateSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("certificate.json")
	})
	return schema, schemaErr
}

// validateShape checks the assembled certificate against the embedded schema.
func validateShape(cert *entity.CalibrationCertificate) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	b, err := json.Marshal(cert)
	if err != nil {
		return fmt.Errorf("marshal certificate: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal certificate: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("certificate does not match schema: %w", err)
	}
	return nil
}
