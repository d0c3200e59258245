package spore

import (
	"github.com/rs/zerolog"
	"github.com/tansive/spore/internal/common/httpclient"
	"github.com/tansive/spore/pkg/spore/spec"
	"github.com/tansive/spore/pkg/spore/transport"
)

type settings struct {
	transport       transport.Transport
	httpOptions     []httpclient.Option
	specOptions     []spec.Option
	logger          *zerolog.Logger
	format          string
	baseURL         string
	accountID       string
	domainAttribute string
	middlewares     []MiddlewareConfig
}

// MiddlewareConfig names a middleware kind and its arguments, as accepted
// by middleware.FromConfig.
type MiddlewareConfig struct {
	Kind string         `json:"kind" yaml:"kind" toml:"kind"`
	Args map[string]any `json:"args" yaml:"args" toml:"args"`
}

// Option configures a Client.
type Option func(*settings)

// WithTransport replaces the default net/http transport.
func WithTransport(t transport.Transport) Option {
	return func(s *settings) { s.transport = t }
}

// WithHTTPOptions configures the default transport. Ignored with WithTransport.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(s *settings) { s.httpOptions = append(s.httpOptions, opts...) }
}

// WithSpecOptions is passed to the loader by NewFromFile.
func WithSpecOptions(opts ...spec.Option) Option {
	return func(s *settings) { s.specOptions = append(s.specOptions, opts...) }
}

// WithLogger sets the logger of every call. Without it the client logs
// nothing.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = &l }
}

// WithFormat sets the default response format. The default is json.
func WithFormat(format string) Option {
	return func(s *settings) { s.format = format }
}

// WithBaseURL overrides the base URL declared by the spec.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) { s.baseURL = baseURL }
}

// WithAccountID behaves like calling SetAccountID after construction.
func WithAccountID(id string) Option {
	return func(s *settings) { s.accountID = id }
}

// WithCookieDomainAttribute changes the attribute written before a cookie
// domain. The default is "domaine".
func WithCookieDomainAttribute(attr string) Option {
	return func(s *settings) { s.domainAttribute = attr }
}

// WithMiddleware enables middleware built from config, in order.
func WithMiddleware(configs ...MiddlewareConfig) Option {
	return func(s *settings) { s.middlewares = append(s.middlewares, configs...) }
}
