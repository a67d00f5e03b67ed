package logtrace

import (
	"context"
	"os"
)

type requestIdContextKey string

const requestIdKey = requestIdContextKey("requestId")

// WithRequestId returns a context carrying the given request ID.
func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, requestIdKey, requestId)
}

func RequestIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(requestIdKey).(string)
	if !ok {
		return ""
	}
	return r
}

// IsTraceEnabled reports whether request tracing middleware should be mounted.
func IsTraceEnabled() bool {
	return os.Getenv("SYNCFLOW_TRACE") != ""
}
