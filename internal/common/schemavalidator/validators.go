package schemavalidator

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
)

var knownVerbs = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

var noSpacesRe = regexp.MustCompile(`^[^\s]+$`)

// noSpacesValidator rejects empty values and values containing whitespace.
func noSpacesValidator(fl validator.FieldLevel) bool {
	return noSpacesRe.MatchString(fl.Field().String())
}

// httpVerbValidator accepts a known HTTP verb in any case.
func httpVerbValidator(fl validator.FieldLevel) bool {
	return slices.Contains(knownVerbs, strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

// headerNameRe is the RFC 7230 token charset.
var headerNameRe = regexp.MustCompile("^[!#$%&'*+\\-.^_`|~0-9A-Za-z]+$")

func headerNameValidator(fl validator.FieldLevel) bool {
	return headerNameRe.MatchString(fl.Field().String())
}

// semverConstraintValidator accepts an empty value or a parsable constraint.
func semverConstraintValidator(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := semver.NewConstraint(s)
	return err == nil
}

func registerValidators(v *validator.Validate) {
	v.RegisterValidation("noSpaces", noSpacesValidator)
	v.RegisterValidation("httpVerb", httpVerbValidator)
	v.RegisterValidation("headerName", headerNameValidator)
	v.RegisterValidation("semverConstraint", semverConstraintValidator)
}
