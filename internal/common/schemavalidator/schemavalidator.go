// Package schemavalidator holds the shared go-playground validator instance
// and the custom tags used by spore models and the CLI config.
package schemavalidator

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	schemaValidator *validator.Validate
	once            sync.Once
)

func V() *validator.Validate {
	once.Do(func() {
		schemaValidator = validator.New(validator.WithRequiredStructEnabled())
		schemaValidator.RegisterTagNameFunc(GetJSONTag)
		registerValidators(schemaValidator)
	})
	return schemaValidator
}
