// Package httpclient provides the net/http transport used by spore clients.
// HTTPClient sends requests over the network. TestHTTPClient serves them
// in-process with an http.Handler and records what was sent, for tests.
package httpclient

import (
	"net/http"
	"strings"
	"sync"

	"github.com/tansive/spore/pkg/spore/transport"
)

// Verify that the HTTPClient and TestHTTPClient implement transport.Transport.
var _ transport.Transport = &HTTPClient{}
var _ transport.Transport = &TestHTTPClient{}

// headerState holds the headers persisted across requests and the cookies
// queued for the next request.
type headerState struct {
	mu      sync.Mutex
	headers http.Header
	cookies []string
}

func (s *headerState) AddHeader(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers.Add(name, value)
}

func (s *headerState) SetHeader(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers.Set(name, value)
}

func (s *headerState) Header(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers.Get(name)
}

func (s *headerState) AddCookie(cookie string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = append(s.cookies, strings.TrimSpace(cookie))
}

// takeRequestHeaders returns a copy of the persistent headers with the
// queued cookies attached, and empties the cookie queue.
func (s *headerState) takeRequestHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.headers.Clone()
	if h == nil {
		h = http.Header{}
	}
	for _, c := range s.cookies {
		h.Add("Cookie", c)
	}
	s.cookies = nil
	return h
}
