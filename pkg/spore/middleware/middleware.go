// Package middleware holds the request mutating steps run before every call.
package middleware

import (
	"strconv"

	"github.com/tansive/spore/internal/common/apperrors"
	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/transport"
)

var (
	ErrMiddleware        apperrors.Error = apperrors.New("middleware error")
	ErrUnknownMiddleware apperrors.Error = ErrMiddleware.New("unknown middleware")
	ErrMiddlewareConfig  apperrors.Error = ErrMiddleware.New("invalid middleware configuration")
)

// Middleware mutates the request context or the transport headers before a
// request is sent. The set of implementations is closed: AddHeader and
// Weborama.
type Middleware interface {
	Name() string
	Apply(rc *request.Context, h transport.HeaderWriter) error
	sealed()
}

// Pipeline runs middleware in registration order.
type Pipeline struct {
	items []Middleware
}

// Register appends m. Nothing is reordered or deduplicated.
func (p *Pipeline) Register(m Middleware) {
	p.items = append(p.items, m)
}

// Len returns the number of registered middleware.
func (p *Pipeline) Len() int {
	return len(p.items)
}

// Items returns a copy of the registered middleware in order.
func (p *Pipeline) Items() []Middleware {
	return append([]Middleware(nil), p.items...)
}

// Run applies every middleware in order and stops at the first failure.
func (p *Pipeline) Run(rc *request.Context, h transport.HeaderWriter) error {
	for i, m := range p.items {
		if err := m.Apply(rc, h); err != nil {
			return ErrMiddleware.MsgErr("middleware "+m.Name()+" failed", err).
				With("middleware", m.Name()).
				With("position", strconv.Itoa(i))
		}
	}
	return nil
}
