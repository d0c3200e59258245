package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/transport"
)

// RecordedRequest is a request captured by TestHTTPClient.
type RecordedRequest struct {
	Verb    string
	Path    string
	Params  map[string]string
	Keys    []string // param keys in the order they were passed
	Body    string
	Header  http.Header
	Cookies []string
}

// TestHTTPClient serves requests with an in-process handler through
// httptest.NewRecorder, without making network calls. Every request is
// recorded. With a nil handler every request gets an empty 200 reply.
type TestHTTPClient struct {
	headerState
	handler http.Handler

	mu       sync.Mutex
	requests []RecordedRequest
	fail     error
}

// NewTestClient creates a test transport serving requests with handler.
func NewTestClient(handler http.Handler) *TestHTTPClient {
	return &TestHTTPClient{
		headerState: headerState{headers: http.Header{}},
		handler:     handler,
	}
}

// FailWith makes every following request fail with err before it is
// served. A nil err restores normal behavior.
func (c *TestHTTPClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

// Requests returns the recorded requests in order.
func (c *TestHTTPClient) Requests() []RecordedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]RecordedRequest(nil), c.requests...)
}

// LastRequest returns the latest recorded request.
func (c *TestHTTPClient) LastRequest() (RecordedRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return RecordedRequest{}, false
	}
	return c.requests[len(c.requests)-1], true
}

func (c *TestHTTPClient) Get(ctx context.Context, path string, params *request.Params) (*transport.Reply, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, Path: path, Query: params})
}

func (c *TestHTTPClient) Delete(ctx context.Context, path string, params *request.Params) (*transport.Reply, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodDelete, Path: path, Query: params})
}

func (c *TestHTTPClient) Post(ctx context.Context, path string, body string) (*transport.Reply, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPost, Path: path, Body: body})
}

func (c *TestHTTPClient) Put(ctx context.Context, path string, body string) (*transport.Reply, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPut, Path: path, Body: body})
}

// DoRequest records the request and serves it with the handler.
func (c *TestHTTPClient) DoRequest(ctx context.Context, opts RequestOptions) (*transport.Reply, error) {
	header := c.takeRequestHeaders()
	rec := RecordedRequest{
		Verb:    opts.Method,
		Path:    opts.Path,
		Params:  opts.Query.Map(),
		Keys:    opts.Query.Keys(),
		Body:    opts.Body,
		Header:  header,
		Cookies: header.Values("Cookie"),
	}

	c.mu.Lock()
	c.requests = append(c.requests, rec)
	fail := c.fail
	c.mu.Unlock()

	if fail != nil {
		return nil, transport.ErrRequestFailed.MsgErr(opts.Method+" "+opts.Path+" failed", fail).
			With("verb", opts.Method).
			With("url", opts.Path)
	}
	if c.handler == nil {
		return &transport.Reply{Status: http.StatusOK, Header: http.Header{}}, nil
	}

	target, err := buildURL(opts)
	if err != nil {
		return nil, transport.ErrRequestFailed.MsgErr("invalid request url "+opts.Path, err).With("url", opts.Path)
	}
	var body io.Reader = http.NoBody
	if opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}
	req := httptest.NewRequest(opts.Method, target, body).WithContext(ctx)
	req.Header = header.Clone()

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	return &transport.Reply{
		Status: rr.Code,
		Header: rr.Header(),
		Body:   rr.Body.Bytes(),
	}, nil
}
