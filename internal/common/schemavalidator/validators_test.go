package schemavalidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoSpacesValidator(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"session", true},
		{"has space", false},
		{"tab\there", false},
		{"", false},
	}
	for _, test := range tests {
		err := V().Var(test.input, "noSpaces")
		assert.Equal(t, test.expected, err == nil, "input %q", test.input)
	}
}

func TestHTTPVerbValidator(t *testing.T) {
	for _, ok := range []string{"GET", "get", " Post ", "DELETE", "put"} {
		assert.NoError(t, V().Var(ok, "httpVerb"), ok)
	}
	for _, bad := range []string{"", "FETCH", "GETS"} {
		assert.Error(t, V().Var(bad, "httpVerb"), bad)
	}
}

func TestHeaderNameValidator(t *testing.T) {
	assert.NoError(t, V().Var("X-Weborama-Account_Id", "headerName"))
	assert.Error(t, V().Var("Bad Header", "headerName"))
	assert.Error(t, V().Var("", "headerName"))
}

func TestSemverConstraintValidator(t *testing.T) {
	assert.NoError(t, V().Var("", "semverConstraint"))
	assert.NoError(t, V().Var(">= 1.0, < 2", "semverConstraint"))
	assert.Error(t, V().Var("not a constraint", "semverConstraint"))
}

func TestDescribe(t *testing.T) {
	type cookie struct {
		Name string `json:"name" validate:"required,noSpaces"`
	}
	err := V().Struct(cookie{})
	require.Error(t, err)
	assert.Equal(t, "cookie.name: required", Describe(err))
}
