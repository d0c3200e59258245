package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/transport"
)

func echoRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/ping/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Seen-Cookie", r.Header.Get("Cookie"))
		w.Header().Set("X-Seen-Agent", r.Header.Get("X-Agent"))
		_, _ = w.Write([]byte(`{"id":"` + chi.URLParam(r, "id") + `","q":"` + r.URL.Query().Get("q") + `"}`))
	})
	r.Post("/items", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	})
	r.Put("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})
	r.Delete("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return r
}

func TestHTTPClientRequests(t *testing.T) {
	srv := httptest.NewServer(echoRouter())
	defer srv.Close()
	ctx := context.Background()

	c := NewClient(WithTimeout(5 * time.Second))
	c.SetHeader("X-Agent", "a")
	c.SetHeader("X-Agent", "b")
	c.AddCookie("sid=1;path=/;")

	params := request.NewParams()
	params.Set("q", "x")
	reply, err := c.Get(ctx, srv.URL+"/ping/7", params)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, reply.Status)
	assert.JSONEq(t, `{"id":"7","q":"x"}`, string(reply.Body))
	assert.Equal(t, "b", reply.Header.Get("X-Seen-Agent"))
	assert.Equal(t, "sid=1;path=/;", reply.Header.Get("X-Seen-Cookie"))

	// cookies are sent with one request only
	reply, err = c.Get(ctx, srv.URL+"/ping/8", nil)
	require.NoError(t, err)
	assert.Empty(t, reply.Header.Get("X-Seen-Cookie"))
	assert.Equal(t, "b", reply.Header.Get("X-Seen-Agent"))

	c.SetHeader("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	reply, err = c.Post(ctx, srv.URL+"/items", "a=1&b=2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, reply.Status)
	assert.Equal(t, "a=1&b=2", string(reply.Body))
	assert.Equal(t, "application/x-www-form-urlencoded; charset=utf-8", reply.Header.Get("X-Content-Type"))

	reply, err = c.Put(ctx, srv.URL+"/items/3", "name=x")
	require.NoError(t, err)
	assert.Equal(t, "name=x", string(reply.Body))

	reply, err = c.Delete(ctx, srv.URL+"/items/3", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, reply.Status)
}

func TestHTTPClientErrors(t *testing.T) {
	c := NewClient(WithRetries(2), WithRetryDelay(time.Millisecond))

	_, err := c.Get(context.Background(), "/relative", nil)
	assert.ErrorIs(t, err, transport.ErrRequestFailed)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err = c.Get(context.Background(), url+"/gone", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrTransport)
}

func TestCookiesDrainedOnInvalidURL(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Values("Cookie")
	}))
	defer srv.Close()

	c := NewClient()
	c.AddCookie("sid=1;path=/;")
	_, err := c.Get(context.Background(), "relative", nil)
	require.ErrorIs(t, err, transport.ErrRequestFailed)

	c.AddCookie("sid=1;path=/;")
	_, err = c.Get(context.Background(), srv.URL+"/x", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sid=1;path=/;"}, got)
}

func TestTestHTTPClient(t *testing.T) {
	c := NewTestClient(echoRouter())
	c.SetHeader("X-Agent", "test")
	c.AddCookie("sid=1;path=/;")

	params := request.NewParams()
	params.Set("q", "y")
	params.Set("a", "1")
	reply, err := c.Get(context.Background(), "http://api/ping/9", params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"9","q":"y"}`, string(reply.Body))

	last, ok := c.LastRequest()
	require.True(t, ok)
	assert.Equal(t, http.MethodGet, last.Verb)
	assert.Equal(t, "http://api/ping/9", last.Path)
	assert.Equal(t, []string{"q", "a"}, last.Keys)
	assert.Equal(t, []string{"sid=1;path=/;"}, last.Cookies)
	assert.Equal(t, "test", last.Header.Get("X-Agent"))

	_, err = c.Post(context.Background(), "http://api/items", "k=v")
	require.NoError(t, err)
	assert.Len(t, c.Requests(), 2)
	last, _ = c.LastRequest()
	assert.Empty(t, last.Cookies)
	assert.Equal(t, "k=v", last.Body)

	c.FailWith(errors.New("connection refused"))
	_, err = c.Get(context.Background(), "http://api/ping/1", nil)
	assert.ErrorIs(t, err, transport.ErrRequestFailed)
}

func TestTestHTTPClientWithoutHandler(t *testing.T) {
	c := NewTestClient(nil)
	reply, err := c.Delete(context.Background(), "http://api/x", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, reply.Status)
	assert.Empty(t, reply.Body)
}
