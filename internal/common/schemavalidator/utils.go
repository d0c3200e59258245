package schemavalidator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// GetJSONTag retrieves the JSON tag for a given struct field.
// If the JSON tag is not found or is explicitly ignored, it falls back to the field name.
func GetJSONTag(field reflect.StructField) string {
	jsonTag := field.Tag.Get("json")
	if jsonTag == "" || jsonTag == "-" {
		return field.Name
	}
	return strings.Split(jsonTag, ",")[0]
}

// Describe renders validation errors as "field: tag" pairs joined by "; ".
// Other errors are returned as is.
func Describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fe.Namespace()+": "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}
