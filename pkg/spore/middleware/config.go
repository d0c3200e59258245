package middleware

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/tansive/spore/internal/common/schemavalidator"
)

// Kinds accepted by FromConfig.
const (
	KindAddHeader    = "add_header"
	KindWeboramaAuth = "weborama_auth"
)

// FromConfig builds a middleware from a config entry such as
//
//	kind: weborama_auth
//	args:
//	  application_key: ...
//	  private_key: ...
//	  user_email: ...
func FromConfig(kind string, args map[string]any) (Middleware, error) {
	var m Middleware
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindAddHeader:
		m = &AddHeader{}
	case KindWeboramaAuth:
		m = &Weborama{}
	default:
		return nil, ErrUnknownMiddleware.Msg("unknown middleware kind: " + kind).With("kind", kind)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           m,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, ErrMiddlewareConfig.Err(err).With("kind", kind)
	}
	if err := decoder.Decode(args); err != nil {
		return nil, ErrMiddlewareConfig.MsgErr("invalid arguments for "+kind, err).With("kind", kind)
	}
	if err := schemavalidator.V().Struct(m); err != nil {
		return nil, ErrMiddlewareConfig.MsgErr("invalid arguments for "+kind+": "+schemavalidator.Describe(err), err).
			With("kind", kind)
	}
	return m, nil
}
