package spec

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema is the shape every spec document must satisfy after
// decoding. Unknown keys are allowed so that richer SPORE documents load.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["methods"],
  "properties": {
    "name": {"type": "string"},
    "version": {"type": ["string", "number"]},
    "base_url": {"type": "string"},
    "formats": {"type": "array", "items": {"type": "string"}},
    "methods": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["method", "path"],
        "properties": {
          "method": {"type": "string", "minLength": 1},
          "path": {"type": "string"},
          "required_params": {"type": "array", "items": {"type": "string"}},
          "optional_params": {"type": "array", "items": {"type": "string"}},
          "expected_status": {"type": "array", "items": {"type": "integer"}}
        }
      }
    }
  }
}`

const documentSchemaURL = "inline://spore-spec"

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiled() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(documentSchemaURL, strings.NewReader(documentSchema)); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = compiler.Compile(documentSchemaURL)
	})
	return compiledSchema, compileErr
}

// validateDocument checks a decoded document against documentSchema.
func validateDocument(doc any) error {
	s, err := compiled()
	if err != nil {
		return err
	}
	return s.Validate(doc)
}
