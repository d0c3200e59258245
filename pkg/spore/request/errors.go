package request

import "github.com/tansive/spore/internal/common/apperrors"

// Invocation errors abort a single call. The client stays usable.
var (
	ErrInvocation           apperrors.Error = apperrors.New("invocation error")
	ErrUnknownMethod        apperrors.Error = ErrInvocation.New("unknown method")
	ErrMissingRequiredParam apperrors.Error = ErrInvocation.New("missing required parameter")
	ErrInvalidCookie        apperrors.Error = ErrInvocation.New("invalid cookie")
	ErrInvalidParam         apperrors.Error = ErrInvocation.New("invalid parameter")
)
