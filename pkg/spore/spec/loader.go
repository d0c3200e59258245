package spec

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/tansive/spore/internal/common/apperrors"
	"github.com/tansive/spore/internal/common/schemavalidator"
	k8syaml "sigs.k8s.io/yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Supported document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var extensionRe = regexp.MustCompile(`(?i)\.(json|ya?ml)$`)

// Settings configures loader behavior.
type Settings struct {
	// Format overrides extension based detection when set.
	Format string
	// HTTPTimeout bounds each fetch of a URL source.
	HTTPTimeout time.Duration
	// FetchRetries is the number of attempts for URL sources (>= 1).
	FetchRetries int
	// VersionConstraint, when set, must be satisfied by the document version.
	VersionConstraint string
}

// DefaultSettings returns the loader defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout:  10 * time.Second,
		FetchRetries: 3,
	}
}

// Option mutates Settings.
type Option func(*Settings)

// WithFormat forces the document format ("json", "yaml" or "yml").
func WithFormat(format string) Option {
	return func(s *Settings) { s.Format = format }
}

func WithHTTPTimeout(d time.Duration) Option {
	return func(s *Settings) { s.HTTPTimeout = d }
}

func WithFetchRetries(n int) Option {
	return func(s *Settings) { s.FetchRetries = n }
}

// WithVersionConstraint rejects documents whose version does not satisfy c,
// for example ">= 1.0, < 2".
func WithVersionConstraint(c string) Option {
	return func(s *Settings) { s.VersionConstraint = c }
}

// DetectFormat returns "json" or "yaml" from the extension of a path or URL.
func DetectFormat(source string) (string, error) {
	p := source
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	}
	m := extensionRe.FindStringSubmatch(p)
	if m == nil {
		return "", ErrSpecFormat.Msg("unsupported spec file: " + source).With("source", source)
	}
	return normalizeFormat(m[1])
}

func normalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", ErrSpecFormat.Msg(fmt.Sprintf("unsupported spec format %q", format))
	}
}

// Load reads a spec from a file path or an http/https URL and validates it.
// The format comes from WithFormat or, by default, from the source extension.
func Load(ctx context.Context, source string, opts ...Option) (*Spec, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrSpecNotFound.Msg("initialization failed: spec file is not defined")
	}

	var (
		format string
		err    error
	)
	if settings.Format != "" {
		format, err = normalizeFormat(settings.Format)
	} else {
		format, err = DetectFormat(source)
	}
	if err != nil {
		return nil, err
	}

	var data []byte
	if isURL(source) {
		data, err = fetch(ctx, source, settings)
	} else {
		data, err = readFile(source)
	}
	if err != nil {
		return nil, err
	}

	sp, err := parse(data, format, source, settings)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Str("source", source).
		Str("format", format).
		Int("methods", len(sp.Methods)).
		Msg("spec loaded")
	return sp, nil
}

// Parse decodes and validates spec bytes in the given format.
func Parse(data []byte, format string, opts ...Option) (*Spec, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	f, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	return parse(data, f, "", settings)
}

func parse(data []byte, format, source string, settings Settings) (*Spec, error) {
	jsonData := data
	if format == FormatYAML {
		var err error
		jsonData, err = k8syaml.YAMLToJSON(data)
		if err != nil {
			return nil, shapeErr(source, "unable to decode yaml spec").Err(err)
		}
	}

	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, shapeErr(source, "unable to decode json spec").Err(err)
	}
	root, _ := doc.(map[string]any)
	methods, ok := root["methods"]
	if !ok || methods == nil {
		return nil, shapeErr(source, "no method has been defined in the spec file")
	}
	if m, isMap := methods.(map[string]any); isMap && len(m) == 0 {
		return nil, shapeErr(source, "no method has been defined in the spec file")
	}
	if err := validateDocument(doc); err != nil {
		return nil, shapeErr(source, "spec document does not match the expected shape").Err(err)
	}

	// version may be written as a bare number in YAML documents
	if v, isNum := root["version"].(float64); isNum {
		root["version"] = fmt.Sprint(v)
		normalized, err := json.Marshal(root)
		if err != nil {
			return nil, shapeErr(source, "unable to decode spec").Err(err)
		}
		jsonData = normalized
	}

	var sp Spec
	if err := json.Unmarshal(jsonData, &sp); err != nil {
		return nil, shapeErr(source, "unable to decode spec").Err(err)
	}
	for name, m := range sp.Methods {
		if err := schemavalidator.V().Struct(m); err != nil {
			return nil, shapeErr(source, "invalid method "+name+": "+schemavalidator.Describe(err)).With("method", name)
		}
	}
	sp.source = source

	if settings.VersionConstraint != "" {
		if err := checkVersion(&sp, settings.VersionConstraint); err != nil {
			return nil, err
		}
	}
	return &sp, nil
}

func checkVersion(sp *Spec, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return ErrSpecVersion.Msg(fmt.Sprintf("invalid version constraint %q", constraint)).Err(err)
	}
	v, err := sp.SemVer()
	if err != nil {
		return ErrSpecVersion.Msg(fmt.Sprintf("spec version %q is not a semantic version", sp.Version)).
			With("source", sp.source).Err(err)
	}
	if !c.Check(v) {
		return ErrSpecVersion.Msg(fmt.Sprintf("spec version %s does not satisfy %s", v, constraint)).
			With("source", sp.source)
	}
	return nil
}

func shapeErr(source, msg string) apperrors.Error {
	if source == "" {
		return ErrSpecShape.Msg(msg)
	}
	return ErrSpecShape.Msg(msg+": "+source).With("source", source)
}
