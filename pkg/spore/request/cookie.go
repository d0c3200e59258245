package request

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tansive/spore/internal/common/schemavalidator"
)

// DefaultDomainAttribute is the attribute name written before the cookie
// domain. Existing servers expect this spelling.
const DefaultDomainAttribute = "domaine"

// Cookie is a cookie sent with the next request.
type Cookie struct {
	Name   string `json:"name" validate:"required,noSpaces"`
	Value  string `json:"value"`
	Path   string `json:"path"`
	Domain string `json:"domain"`
	Secure bool   `json:"secure"`
}

// CookieSink receives rendered cookies. The transport implements it.
type CookieSink interface {
	AddCookie(cookie string)
}

// Jar renders cookies for the transport.
type Jar struct {
	// DomainAttribute replaces DefaultDomainAttribute when set.
	DomainAttribute string
}

// Validate checks every cookie and reports the first invalid one.
func (j Jar) Validate(cookies []Cookie) error {
	for i, c := range cookies {
		if err := schemavalidator.V().Struct(c); err != nil {
			name := c.Name
			if name == "" {
				name = "#" + strconv.Itoa(i)
			}
			return ErrInvalidCookie.MsgErr("invalid cookie "+name+": "+schemavalidator.Describe(err), err).
				With("cookie", name)
		}
	}
	return nil
}

// Prepare validates all cookies and renders them sorted by name as
// name=value;path=<path>;[domaine=<domain>;][secure;].
// Nothing is rendered when any cookie is invalid.
func (j Jar) Prepare(cookies []Cookie) ([]string, error) {
	if err := j.Validate(cookies); err != nil {
		return nil, err
	}
	sorted := append([]Cookie(nil), cookies...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Name < sorted[b].Name })

	attr := j.DomainAttribute
	if attr == "" {
		attr = DefaultDomainAttribute
	}
	out := make([]string, 0, len(sorted))
	for _, c := range sorted {
		var b strings.Builder
		b.WriteString(c.Name)
		b.WriteString("=")
		b.WriteString(c.Value)
		b.WriteString(";path=")
		b.WriteString(c.Path)
		b.WriteString(";")
		if c.Domain != "" {
			b.WriteString(attr)
			b.WriteString("=")
			b.WriteString(c.Domain)
			b.WriteString(";")
		}
		if c.Secure {
			b.WriteString("secure;")
		}
		out = append(out, b.String())
	}
	return out, nil
}

// Apply renders cookies and adds each one to sink. sink is untouched when
// any cookie is invalid.
func (j Jar) Apply(cookies []Cookie, sink CookieSink) error {
	rendered, err := j.Prepare(cookies)
	if err != nil {
		return err
	}
	for _, c := range rendered {
		sink.AddCookie(c)
	}
	return nil
}

