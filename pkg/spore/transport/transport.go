// Package transport defines the contract between the spore client and the
// component that performs HTTP exchanges.
package transport

import (
	"context"
	"net/http"

	"github.com/tansive/spore/internal/common/apperrors"
	"github.com/tansive/spore/pkg/spore/request"
)

var (
	ErrTransport     apperrors.Error = apperrors.New("transport error")
	ErrRequestFailed apperrors.Error = ErrTransport.New("request failed")
)

// HeaderWriter is the header surface exposed to middleware.
type HeaderWriter interface {
	// AddHeader appends a value to the header.
	AddHeader(name, value string)
	// SetHeader creates the header or replaces its values.
	SetHeader(name, value string)
	// Header returns the first value of the header.
	Header(name string) string
}

// Reply is the raw result of an exchange.
type Reply struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport performs requests on behalf of a client. Headers persist across
// requests; cookies added with AddCookie are sent with the next request only.
// Implementations return errors matching ErrTransport.
type Transport interface {
	HeaderWriter
	AddCookie(cookie string)
	Get(ctx context.Context, path string, params *request.Params) (*Reply, error)
	Delete(ctx context.Context, path string, params *request.Params) (*Reply, error)
	Post(ctx context.Context, path string, body string) (*Reply, error)
	Put(ctx context.Context, path string, body string) (*Reply, error)
}
