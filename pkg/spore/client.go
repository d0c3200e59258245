// Package spore is an HTTP client driven by a SPORE API description. A Client loads an API
// description, resolves method names at call time into requests, runs the
// enabled middleware and decodes the response.
//
//	c, err := spore.NewFromFile(ctx, "api.json")
//	c.Enable(middleware.NewWeborama(appKey, privateKey, email))
//	resp, err := c.Invoke(ctx, "ping", map[string]any{"id": 7})
//
// A Client is not safe for concurrent use. Use one client per goroutine or
// guard it with a mutex.
package spore

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/tansive/spore/internal/common/httpclient"
	"github.com/tansive/spore/pkg/spore/middleware"
	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/spec"
	"github.com/tansive/spore/pkg/spore/transport"
)

// DefaultFormat is the response format used until SetFormat is called.
const DefaultFormat = FormatJSON

// HeaderAccountID carries the account id once SetAccountID is called.
const HeaderAccountID = "X-Weborama-Account_Id"

// Client invokes the methods of one spec through one transport.
type Client struct {
	spec      *spec.Spec
	baseURL   string
	accountID string
	format    string

	pipeline  middleware.Pipeline
	cookies   map[string]request.Cookie
	jar       request.Jar
	transport transport.Transport
	logger    zerolog.Logger

	response    *Response
	lastRequest *request.Context
}

// New creates a client for sp.
func New(sp *spec.Spec, opts ...Option) (*Client, error) {
	if sp == nil || len(sp.Methods) == 0 {
		return nil, spec.ErrSpecShape.Msg("no method has been defined in the spec")
	}
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}

	c := &Client{
		spec:      sp,
		baseURL:   sp.BaseURL,
		format:    DefaultFormat,
		cookies:   map[string]request.Cookie{},
		jar:       request.Jar{DomainAttribute: s.domainAttribute},
		transport: s.transport,
		logger:    zerolog.Nop(),
	}
	if s.logger != nil {
		c.logger = *s.logger
	}
	if c.transport == nil {
		c.transport = httpclient.NewClient(s.httpOptions...)
	}
	if s.baseURL != "" {
		c.baseURL = s.baseURL
	}
	if s.format != "" {
		c.format = s.format
	}
	c.transport.AddHeader("Accept-Charset", "ISO-8859-1,utf-8")

	if s.accountID != "" {
		c.SetAccountID(s.accountID)
	}
	for _, mc := range s.middlewares {
		if err := c.EnableConfig(mc.Kind, mc.Args); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewFromFile loads the spec at source, a file path or URL, and creates a
// client for it.
func NewFromFile(ctx context.Context, source string, opts ...Option) (*Client, error) {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	sp, err := spec.Load(ctx, source, s.specOptions...)
	if err != nil {
		return nil, err
	}
	return New(sp, opts...)
}

// Invoke calls method with args. Args that are not required params are
// added in lexicographic key order; use InvokeOrdered to control it.
func (c *Client) Invoke(ctx context.Context, method string, args map[string]any) (*Response, error) {
	return c.dispatch(ctx, method, request.ArgsFromMap(args))
}

// InvokeOrdered calls method with args kept in caller order.
func (c *Client) InvokeOrdered(ctx context.Context, method string, args *request.Args) (*Response, error) {
	if args == nil {
		args = request.NewArgs()
	}
	return c.dispatch(ctx, method, args)
}

// SetAccountID sets the account id used to fill a missing account_id param
// and sends it in the X-Weborama-Account_Id header.
func (c *Client) SetAccountID(id string) {
	c.accountID = id
	c.Enable(middleware.NewAddHeader(HeaderAccountID, id))
}

// SetFormat sets the response format for later calls.
func (c *Client) SetFormat(format string) {
	c.format = format
}

// SetBaseURL replaces the base URL of the spec for later calls.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Enable appends m to the middleware pipeline.
func (c *Client) Enable(m middleware.Middleware) {
	c.pipeline.Register(m)
}

// EnableConfig builds a middleware with middleware.FromConfig and enables it.
func (c *Client) EnableConfig(kind string, args map[string]any) error {
	m, err := middleware.FromConfig(kind, args)
	if err != nil {
		return err
	}
	c.Enable(m)
	return nil
}

// SetCookie stores a cookie sent with every following call. A cookie with
// the same name is replaced.
func (c *Client) SetCookie(name, value, path, domain string, secure bool) {
	c.cookies[name] = request.Cookie{
		Name:   name,
		Value:  value,
		Path:   path,
		Domain: domain,
		Secure: secure,
	}
}

// Spec returns the loaded spec.
func (c *Client) Spec() *spec.Spec {
	return c.spec
}

// Methods returns the method names of the spec in sorted order.
func (c *Client) Methods() []string {
	return c.spec.MethodNames()
}

// Response returns the response of the latest successful call.
func (c *Client) Response() *Response {
	return c.response
}

// LastRequest returns the request built by the latest call that got past
// param binding.
func (c *Client) LastRequest() (request.Context, bool) {
	if c.lastRequest == nil {
		return request.Context{}, false
	}
	return c.lastRequest.Snapshot(), true
}

// Middlewares returns the enabled middleware in execution order.
func (c *Client) Middlewares() []middleware.Middleware {
	return c.pipeline.Items()
}

// AccountID returns the account id set with SetAccountID.
func (c *Client) AccountID() string {
	return c.accountID
}

// Format returns the default response format.
func (c *Client) Format() string {
	return c.format
}

// BaseURL returns the base URL requests are built on.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Transport returns the transport requests are sent through.
func (c *Client) Transport() transport.Transport {
	return c.transport
}

func (c *Client) cookieList() []request.Cookie {
	names := make([]string, 0, len(c.cookies))
	for name := range c.cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]request.Cookie, 0, len(names))
	for _, name := range names {
		out = append(out, c.cookies[name])
	}
	return out
}
