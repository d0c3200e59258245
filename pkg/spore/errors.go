package spore

import (
	"github.com/tansive/spore/internal/common/apperrors"
	"github.com/tansive/spore/pkg/spore/middleware"
	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/spec"
	"github.com/tansive/spore/pkg/spore/transport"
)

// Spec errors are fatal to client construction.
var (
	ErrSpec         = spec.ErrSpec
	ErrSpecFormat   = spec.ErrSpecFormat
	ErrSpecNotFound = spec.ErrSpecNotFound
	ErrSpecShape    = spec.ErrSpecShape
	ErrSpecVersion  = spec.ErrSpecVersion
)

// Invocation errors abort a single call.
var (
	ErrInvocation           = request.ErrInvocation
	ErrUnknownMethod        = request.ErrUnknownMethod
	ErrMissingRequiredParam = request.ErrMissingRequiredParam
	ErrInvalidCookie        = request.ErrInvalidCookie
	ErrInvalidParam         = request.ErrInvalidParam
	ErrMiddleware           = middleware.ErrMiddleware
	ErrUnknownMiddleware    = middleware.ErrUnknownMiddleware
	ErrMiddlewareConfig     = middleware.ErrMiddlewareConfig
)

// Transport errors are returned as produced by the transport.
var (
	ErrTransport     = transport.ErrTransport
	ErrRequestFailed = transport.ErrRequestFailed
)

var ErrResponseDecode apperrors.Error = apperrors.New("unable to decode response")
