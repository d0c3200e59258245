package spore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/spore/internal/common/httpclient"
	"github.com/tansive/spore/pkg/spore/middleware"
	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/spec"
)

const apiSpec = `{
  "base_url": "http://api",
  "methods": {
    "ping":    {"method": "GET", "path": "/ping/:id", "required_params": ["id"]},
    "create":  {"method": "POST", "path": "/users/:uid/items", "required_params": ["uid"]},
    "replace": {"method": "PUT", "path": "/items/:id", "required_params": ["id"]},
    "remove":  {"method": "DELETE", "path": "/items/:id", "required_params": ["id"]},
    "peek":    {"method": "HEAD", "path": "/peek"},
    "list":    {"method": "GET", "path": "/accounts/:account_id/items", "required_params": ["account_id"]},
    "search":  {"method": "GET", "path": "/search"}
  }
}`

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httpclient.TestHTTPClient) {
	t.Helper()
	sp, err := spec.Parse([]byte(apiSpec), "json")
	require.NoError(t, err)
	tc := httpclient.NewTestClient(handler)
	c, err := New(sp, append([]Option{WithTransport(tc)}, opts...)...)
	require.NoError(t, err)
	return c, tc
}

func TestNewRejectsEmptySpec(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrSpecShape)
	_, err = New(&spec.Spec{})
	assert.ErrorIs(t, err, ErrSpec)
}

func TestPingEndToEnd(t *testing.T) {
	c, tc := newTestClient(t, nil)

	_, err := c.Invoke(context.Background(), "ping", map[string]any{"id": "7"})
	require.NoError(t, err)

	reqs := tc.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Verb)
	assert.Equal(t, "http://api/ping/7", reqs[0].Path)
	assert.Empty(t, reqs[0].Params)
	assert.Equal(t, "ISO-8859-1,utf-8", reqs[0].Header.Get("Accept-Charset"))
	assert.Equal(t, FormContentType, reqs[0].Header.Get("Content-Type"))
}

func TestUnknownMethodSendsNothing(t *testing.T) {
	c, tc := newTestClient(t, nil)
	_, err := c.Invoke(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.ErrorIs(t, err, ErrInvocation)
	assert.Contains(t, err.Error(), "nope")
	assert.Empty(t, tc.Requests())
	assert.Nil(t, c.Response())
}

func TestVerbDispatch(t *testing.T) {
	c, tc := newTestClient(t, nil)
	ctx := context.Background()

	_, err := c.InvokeOrdered(ctx, "create", request.NewArgs("uid", 3, "name", "bob", "age", 40))
	require.NoError(t, err)
	last, _ := tc.LastRequest()
	assert.Equal(t, http.MethodPost, last.Verb)
	assert.Equal(t, "http://api/users/3/items", last.Path)
	assert.Equal(t, "name=bob&age=40", last.Body)

	_, err = c.Invoke(ctx, "replace", map[string]any{"id": 5, "name": "x"})
	require.NoError(t, err)
	last, _ = tc.LastRequest()
	assert.Equal(t, http.MethodPut, last.Verb)
	assert.Equal(t, "http://api/items/5", last.Path)
	assert.Equal(t, "name=x", last.Body)

	_, err = c.Invoke(ctx, "remove", map[string]any{"id": 5, "force": true})
	require.NoError(t, err)
	last, _ = tc.LastRequest()
	assert.Equal(t, http.MethodDelete, last.Verb)
	assert.Equal(t, map[string]string{"force": "true"}, last.Params)

	_, err = c.Invoke(ctx, "peek", map[string]any{"q": "1"})
	require.NoError(t, err)
	last, _ = tc.LastRequest()
	assert.Equal(t, http.MethodGet, last.Verb)
	assert.Equal(t, map[string]string{"q": "1"}, last.Params)
}

func TestUnknownVerbDoesNotForceContentType(t *testing.T) {
	c, tc := newTestClient(t, nil)
	_, err := c.Invoke(context.Background(), "peek", nil)
	require.NoError(t, err)
	last, _ := tc.LastRequest()
	assert.Empty(t, last.Header.Get("Content-Type"))
}

func TestEmptyValuesAndComposites(t *testing.T) {
	c, tc := newTestClient(t, nil)
	_, err := c.InvokeOrdered(context.Background(), "create", request.NewArgs(
		"uid", "1", "blank", "", "none", nil, "ids", []int{1, 2},
	))
	require.NoError(t, err)
	last, _ := tc.LastRequest()
	assert.Equal(t, "ids=[1,2]", last.Body)
}

func TestAccountIDAutocompletion(t *testing.T) {
	c, tc := newTestClient(t, nil)
	ctx := context.Background()

	_, err := c.Invoke(ctx, "list", nil)
	assert.ErrorIs(t, err, ErrMissingRequiredParam)
	assert.Empty(t, tc.Requests())

	c.SetAccountID("abc")
	_, err = c.Invoke(ctx, "list", nil)
	require.NoError(t, err)
	_, err = c.Invoke(ctx, "list", map[string]any{"account_id": "abc"})
	require.NoError(t, err)

	reqs := tc.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, reqs[1].Path, reqs[0].Path)
	assert.Equal(t, reqs[1].Params, reqs[0].Params)
	assert.Equal(t, "http://api/accounts/abc/items", reqs[0].Path)
	assert.Equal(t, "abc", reqs[0].Header.Get(HeaderAccountID))
}

func TestNoParamLeakage(t *testing.T) {
	c, tc := newTestClient(t, nil)
	ctx := context.Background()

	_, err := c.Invoke(ctx, "search", map[string]any{"q": "first", "page": 2})
	require.NoError(t, err)
	_, err = c.Invoke(ctx, "search", map[string]any{"q": "second"})
	require.NoError(t, err)

	reqs := tc.Requests()
	assert.Equal(t, map[string]string{"q": "second"}, reqs[1].Params)

	rc, ok := c.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "q=second", rc.RawBody)
	assert.Equal(t, 1, rc.Params.Len())
}

func TestCookies(t *testing.T) {
	c, tc := newTestClient(t, nil)
	ctx := context.Background()

	c.SetCookie("sid", "1", "/", "example.com", true)
	c.SetCookie("lang", "fr", "/", "", false)
	_, err := c.Invoke(ctx, "search", nil)
	require.NoError(t, err)
	last, _ := tc.LastRequest()
	assert.Equal(t, []string{"lang=fr;path=/;", "sid=1;path=/;domaine=example.com;secure;"}, last.Cookies)

	c.SetCookie("", "orphan", "/", "", false)
	_, err = c.Invoke(ctx, "search", nil)
	assert.ErrorIs(t, err, ErrInvalidCookie)
	assert.Len(t, tc.Requests(), 1)
}

func TestCookieDomainAttribute(t *testing.T) {
	c, tc := newTestClient(t, nil, WithCookieDomainAttribute("domain"))
	c.SetCookie("sid", "1", "/", "example.com", false)
	_, err := c.Invoke(context.Background(), "search", nil)
	require.NoError(t, err)
	last, _ := tc.LastRequest()
	assert.Equal(t, []string{"sid=1;path=/;domain=example.com;"}, last.Cookies)
}

func TestSigningMiddleware(t *testing.T) {
	c, tc := newTestClient(t, nil)
	signer := middleware.NewWeborama("app", "k", "me@example.com")
	c.Enable(signer)

	_, err := c.InvokeOrdered(context.Background(), "search", request.NewArgs("b", "2", "a", "1"))
	require.NoError(t, err)

	assert.Equal(t, "get/searcha=1b=2k", signer.LastCanonical())
	last, _ := tc.LastRequest()
	assert.Equal(t, middleware.Sign("get/searcha=1b=2k"), last.Header.Get(middleware.HeaderSignature))
	assert.Equal(t, "app", last.Header.Get(middleware.HeaderAppKey))
	assert.Equal(t, "me@example.com", last.Header.Get(middleware.HeaderUserEmail))
	assert.Len(t, c.Middlewares(), 1)
}

func TestMiddlewareFromConfig(t *testing.T) {
	sp, err := spec.Parse([]byte(apiSpec), "json")
	require.NoError(t, err)
	tc := httpclient.NewTestClient(nil)
	_, err = New(sp, WithTransport(tc), WithMiddleware(MiddlewareConfig{Kind: "oauth"}))
	assert.ErrorIs(t, err, ErrUnknownMiddleware)

	c, err := New(sp, WithTransport(tc), WithMiddleware(MiddlewareConfig{
		Kind: "add_header",
		Args: map[string]any{"header": "X-Client", "value": "spore"},
	}))
	require.NoError(t, err)
	_, err = c.Invoke(context.Background(), "search", nil)
	require.NoError(t, err)
	last, _ := tc.LastRequest()
	assert.Equal(t, "spore", last.Header.Get("X-Client"))
}

func TestTransportErrorIsReturned(t *testing.T) {
	c, tc := newTestClient(t, nil)
	tc.FailWith(errors.New("connection reset"))
	_, err := c.Invoke(context.Background(), "search", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Nil(t, c.Response())
}

func apiRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/ping/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + chi.URLParam(r, "id") + `","tags":["a","b"]}`))
	})
	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("broken") != "" {
			_, _ = w.Write([]byte("{not json"))
			return
		}
		switch r.URL.Query().Get("format") {
		case "yaml":
			_, _ = w.Write([]byte("items:\n  - one\n  - two\n"))
		case "xml":
			_, _ = w.Write([]byte("<items/>"))
		default:
			_, _ = w.Write([]byte("plain text"))
		}
	})
	r.Post("/users/{uid}/items", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"body":"` + string(body) + `"}`))
	})
	return r
}

func TestResponseDecodingOverHTTP(t *testing.T) {
	srv := httptest.NewServer(apiRouter())
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "api.json")
	require.NoError(t, os.WriteFile(path, []byte(apiSpec), 0o600))

	ctx := context.Background()
	c, err := NewFromFile(ctx, path, WithBaseURL(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, srv.URL, c.BaseURL())
	assert.Contains(t, c.Methods(), "ping")

	resp, err := c.Invoke(ctx, "ping", map[string]any{"id": 7})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "application/json", resp.Header("content-type"))
	assert.Equal(t, map[string]any{"id": "7", "tags": []any{"a", "b"}}, resp.Body)
	assert.Equal(t, "b", resp.Get("tags.1").String())
	var typed struct {
		ID   string   `json:"id"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, resp.Into(&typed))
	assert.Equal(t, []string{"a", "b"}, typed.Tags)

	resp, err = c.Invoke(ctx, "create", map[string]any{"uid": 1, "name": "bob"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "name=bob", resp.Get("body").String())

	// format passed as a param only affects this call
	resp, err = c.Invoke(ctx, "search", map[string]any{"format": "yaml"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"items": []any{"one", "two"}}, resp.Body)
	assert.Equal(t, "json", c.Format())

	resp, err = c.Invoke(ctx, "search", map[string]any{"format": "xml"})
	require.NoError(t, err)
	assert.Equal(t, Unparsed{Format: "xml", Raw: []byte("<items/>")}, resp.Body)

	resp, err = c.Invoke(ctx, "search", map[string]any{"format": "raw"})
	require.NoError(t, err)
	assert.Equal(t, "plain text", resp.Body)
	assert.ErrorIs(t, resp.Into(&typed), ErrResponseDecode)

	_, err = c.Invoke(ctx, "search", map[string]any{"broken": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseDecode)
	assert.Nil(t, c.Response())

	c.SetFormat("raw")
	resp, err = c.Invoke(ctx, "search", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", resp.Body)
	assert.Same(t, resp, c.Response())
}

func TestCookiesNotResentAfterFailedSend(t *testing.T) {
	var got [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Values("Cookie"))
	}))
	defer srv.Close()

	sp, err := spec.Parse([]byte(apiSpec), "json")
	require.NoError(t, err)
	c, err := New(sp, WithBaseURL("relative"))
	require.NoError(t, err)
	c.SetCookie("sid", "1", "/", "", false)

	ctx := context.Background()
	_, err = c.Invoke(ctx, "search", nil)
	require.ErrorIs(t, err, ErrTransport)

	c.SetBaseURL(srv.URL)
	_, err = c.Invoke(ctx, "search", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"sid=1;path=/;"}, got[0])
}

func TestDefaultClientLogsNothing(t *testing.T) {
	srv := httptest.NewServer(apiRouter())
	defer srv.Close()

	var global bytes.Buffer
	saved := log.Logger
	log.Logger = zerolog.New(&global)
	defer func() { log.Logger = saved }()

	sp, err := spec.Parse([]byte(apiSpec), "json")
	require.NoError(t, err)
	c, err := New(sp, WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = c.Invoke(context.Background(), "ping", map[string]any{"id": 7})
	require.NoError(t, err)
	assert.Empty(t, global.String())

	var own bytes.Buffer
	c, err = New(sp, WithBaseURL(srv.URL), WithLogger(zerolog.New(&own).Level(zerolog.DebugLevel)))
	require.NoError(t, err)
	_, err = c.Invoke(context.Background(), "ping", map[string]any{"id": 7})
	require.NoError(t, err)
	assert.Contains(t, own.String(), "call completed")
	assert.Empty(t, global.String())
}
