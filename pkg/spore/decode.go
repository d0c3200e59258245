package spore

import (
	"bytes"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response formats understood by Decode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatYML  = "yml"
	FormatXML  = "xml"
)

// Unparsed is returned as the body of formats the client does not decode.
type Unparsed struct {
	Format string
	Raw    []byte
}

func (u Unparsed) String() string {
	return "unparsed " + u.Format + " response"
}

// Decode converts a response body according to format. JSON and YAML are
// decoded into generic values, XML yields an Unparsed marker and any other
// format returns the body as a string.
func Decode(raw []byte, format string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil, nil
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, ErrResponseDecode.MsgErr("unable to decode json response", err).With("format", FormatJSON)
		}
		return v, nil
	case FormatYAML, FormatYML:
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, ErrResponseDecode.MsgErr("unable to decode yaml response", err).With("format", format)
		}
		return v, nil
	case FormatXML:
		return Unparsed{Format: FormatXML, Raw: raw}, nil
	default:
		return string(raw), nil
	}
}
