package httpclient

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/transport"
)

// HTTPClient is a transport.Transport backed by net/http.
type HTTPClient struct {
	headerState
	httpClient *http.Client
	opts       ClientOptions
}

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	Timeout               time.Duration // per request timeout, 0 disables it
	Attempts              uint          // attempts for requests failing at the network level
	RetryDelay            time.Duration // initial backoff between attempts
	DisableCertValidation bool          // If true, skips SSL certificate validation
	HTTPClient            *http.Client  // replaces the default client when set
}

// Option mutates ClientOptions.
type Option func(*ClientOptions)

func WithTimeout(d time.Duration) Option {
	return func(o *ClientOptions) { o.Timeout = d }
}

// WithRetries sets the number of attempts for requests that fail before a
// response is received. Requests that got a response are never retried.
func WithRetries(attempts uint) Option {
	return func(o *ClientOptions) { o.Attempts = attempts }
}

func WithRetryDelay(d time.Duration) Option {
	return func(o *ClientOptions) { o.RetryDelay = d }
}

func WithInsecureSkipVerify() Option {
	return func(o *ClientOptions) { o.DisableCertValidation = true }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *ClientOptions) { o.HTTPClient = c }
}

// NewClient creates an HTTP transport.
func NewClient(opts ...Option) *HTTPClient {
	clientOpts := ClientOptions{
		Timeout:    30 * time.Second,
		Attempts:   1,
		RetryDelay: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&clientOpts)
	}
	return NewClientWithOptions(clientOpts)
}

// NewClientWithOptions creates an HTTP transport from explicit options.
func NewClientWithOptions(opts ClientOptions) *HTTPClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
		if opts.DisableCertValidation {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			}
		}
	}
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	return &HTTPClient{
		headerState: headerState{headers: http.Header{}},
		httpClient:  httpClient,
		opts:        opts,
	}
}

// RequestOptions describes one request.
type RequestOptions struct {
	Method string          // HTTP method (GET, POST, PUT, DELETE)
	Path   string          // absolute URL
	Query  *request.Params // optional query parameters
	Body   string          // optional raw body
}

func (c *HTTPClient) Get(ctx context.Context, path string, params *request.Params) (*transport.Reply, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, Path: path, Query: params})
}

func (c *HTTPClient) Delete(ctx context.Context, path string, params *request.Params) (*transport.Reply, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodDelete, Path: path, Query: params})
}

func (c *HTTPClient) Post(ctx context.Context, path string, body string) (*transport.Reply, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPost, Path: path, Body: body})
}

func (c *HTTPClient) Put(ctx context.Context, path string, body string) (*transport.Reply, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPut, Path: path, Body: body})
}

// DoRequest sends the request and returns the reply whatever its status.
// Only failures to obtain a response are errors.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) (*transport.Reply, error) {
	// queued cookies belong to this request even when it cannot be built
	header := c.takeRequestHeaders()
	target, err := buildURL(opts)
	if err != nil {
		return nil, transport.ErrRequestFailed.MsgErr("invalid request url "+opts.Path, err).With("url", opts.Path)
	}
	logger := log.Ctx(ctx)

	var reply *transport.Reply
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, opts.Method, target, bodyReader(opts))
			if err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "failed to create request"))
			}
			req.Header = header.Clone()

			start := time.Now()
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return errors.Wrapf(err, "%s %s", opts.Method, target)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "failed to read response body"))
			}
			logger.Debug().
				Str("verb", opts.Method).
				Str("url", target).
				Int("status", resp.StatusCode).
				Dur("elapsed", time.Since(start)).
				Msg("http exchange")
			reply = &transport.Reply{
				Status: resp.StatusCode,
				Header: resp.Header,
				Body:   body,
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.opts.Attempts),
		retry.Delay(c.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn().Uint("attempt", n+1).Err(err).Msg("retrying request")
		}),
	)
	if err != nil {
		return nil, transport.ErrRequestFailed.MsgErr(opts.Method+" "+opts.Path+" failed", err).
			With("verb", opts.Method).
			With("url", opts.Path)
	}
	return reply, nil
}

func buildURL(opts RequestOptions) (string, error) {
	u, err := url.Parse(opts.Path)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("url %q is not absolute", opts.Path)
	}
	if opts.Query.Len() > 0 {
		q := u.Query()
		opts.Query.Each(func(k, v string) {
			q.Set(k, v)
		})
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func bodyReader(opts RequestOptions) io.Reader {
	if opts.Body == "" {
		return http.NoBody
	}
	return strings.NewReader(opts.Body)
}
