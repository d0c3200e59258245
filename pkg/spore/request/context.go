// Package request turns a method name and caller arguments into a resolved
// request: substituted path, ordered params, raw body and cookies.
package request

// Context is the per invocation request state shared by the binder, the
// middleware pipeline and the dispatcher.
type Context struct {
	// Method is the spec method name, e.g. "ping".
	Method string
	// Verb is the upper-cased HTTP verb.
	Verb string
	// Path is the base URL followed by the substituted path template.
	Path string
	// URLPath is the substituted path template without the base URL. It is
	// the path used for request signing.
	URLPath string
	// Params holds the query or body params in insertion order.
	Params *Params
	// RawBody is Params encoded as key=value pairs joined by "&".
	RawBody string
	// Cookies are sent with this request only.
	Cookies []Cookie
	// Format drives response decoding for this call.
	Format string
}

// Snapshot returns a copy that does not share Params with rc.
func (rc *Context) Snapshot() Context {
	cp := *rc
	cp.Params = rc.Params.Clone()
	cp.Cookies = append([]Cookie(nil), rc.Cookies...)
	return cp
}
