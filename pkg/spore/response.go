package spore

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Response is the decoded result of the latest call.
type Response struct {
	Status  int
	Headers map[string]string
	// Body is the decoded value, a string for raw formats or Unparsed.
	Body   any
	Raw    []byte
	Format string
}

func newResponse(status int, header http.Header, raw []byte, format string) (*Response, error) {
	body, err := Decode(raw, format)
	if err != nil {
		return nil, err
	}
	headers := make(map[string]string, len(header))
	for k, v := range header {
		headers[k] = strings.Join(v, ", ")
	}
	return &Response{
		Status:  status,
		Headers: headers,
		Body:    body,
		Raw:     raw,
		Format:  format,
	}, nil
}

// Get runs a gjson path query against a JSON body.
func (r *Response) Get(path string) gjson.Result {
	if r == nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Raw, path)
}

// Into decodes the raw body into v using the response format. Formats other
// than JSON and YAML are rejected.
func (r *Response) Into(v any) error {
	switch strings.ToLower(r.Format) {
	case FormatJSON:
		if err := json.Unmarshal(r.Raw, v); err != nil {
			return ErrResponseDecode.MsgErr("unable to decode json response", err)
		}
	case FormatYAML, FormatYML:
		if err := yaml.Unmarshal(r.Raw, v); err != nil {
			return ErrResponseDecode.MsgErr("unable to decode yaml response", err)
		}
	default:
		return ErrResponseDecode.Msg("cannot decode " + r.Format + " response into a value").With("format", r.Format)
	}
	return nil
}

// Header returns the value of a response header, matching the name
// case-insensitively.
func (r *Response) Header(name string) string {
	if v, ok := r.Headers[http.CanonicalHeaderKey(name)]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
