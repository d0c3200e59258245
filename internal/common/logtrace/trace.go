package logtrace

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/tansive/spore/internal/common/uuid"
)

type callIdContextKey string

const callIdKey = callIdContextKey("callId")

// StartCall derives a context carrying a fresh call id and a sub-logger of
// base tagged with it. The logger is retrievable with log.Ctx.
func StartCall(ctx context.Context, base zerolog.Logger, method string) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	callID := uuid.NewCallID()
	ctx = context.WithValue(ctx, callIdKey, callID)
	l := base.With().Str("call_id", callID).Str("method", method).Logger()
	return l.WithContext(ctx), callID
}

// CallIdFromContext extracts the call id from the context.
// Returns an empty string if the context is nil or carries no call id.
func CallIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(callIdKey).(string)
	if !ok {
		return ""
	}
	return r
}
