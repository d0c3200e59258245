// Package spec holds the in-memory model of an API description and the
// loaders that build it from JSON, YAML or OpenAPI documents.
//
// A description is a base URL plus a set of named methods:
//
//	base_url: http://api.example.com
//	methods:
//	  ping:
//	    method: GET
//	    path: /ping/:id
//	    required_params: [id]
package spec

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Spec is a loaded API description. Methods is keyed by method name and is
// never empty once returned by a loader.
type Spec struct {
	Name      string                `json:"name,omitempty"`
	Version   string                `json:"version,omitempty"`
	Authority string                `json:"authority,omitempty"`
	Formats   []string              `json:"formats,omitempty"`
	Meta      map[string]any        `json:"meta,omitempty"`
	BaseURL   string                `json:"base_url"`
	Methods   map[string]MethodSpec `json:"methods"`

	source string
}

// MethodSpec describes one callable method.
type MethodSpec struct {
	Method         string   `json:"method" validate:"required,noSpaces"`
	Path           string   `json:"path" validate:"omitempty,noSpaces"`
	RequiredParams []string `json:"required_params,omitempty"`
	OptionalParams []string `json:"optional_params,omitempty"`
	ExpectedStatus []int    `json:"expected_status,omitempty"`
	Description    string   `json:"description,omitempty"`
	Authentication bool     `json:"authentication,omitempty"`
}

// Verb returns the upper-cased HTTP verb.
func (m MethodSpec) Verb() string {
	return strings.ToUpper(strings.TrimSpace(m.Method))
}

// Method looks up a method by name.
func (s *Spec) Method(name string) (MethodSpec, bool) {
	if s == nil {
		return MethodSpec{}, false
	}
	m, ok := s.Methods[name]
	return m, ok
}

// MethodNames returns the declared method names in sorted order.
func (s *Spec) MethodNames() []string {
	names := make([]string, 0, len(s.Methods))
	for name := range s.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the path or URL the spec was loaded from, if any.
func (s *Spec) Source() string {
	return s.source
}

// SemVer parses the document version as a semantic version.
func (s *Spec) SemVer() (*semver.Version, error) {
	return semver.NewVersion(s.Version)
}
