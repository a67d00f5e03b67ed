package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/syncflow/syncflow/internal/common/httpx"
	"github.com/syncflow/syncflow/internal/common/logtrace"
)

// RequestLogger is a middleware that logs the request details, adds a unique
// request ID to the context, and logs the completion status of the request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := newRequestId()
		// Add the request ID to the request context
		ctx = logtrace.WithRequestId(ctx, requestID)
		// Add a sub-logger with requestId to context
		ctx = log.With().Str("request_id", requestID).Caller().Logger().WithContext(ctx)
		// Include the request ID in the response header
		w.Header().Set("X-Syncflow-Request-ID", requestID)

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		requestURL := fmt.Sprintf("%s://%s%s", scheme, r.Host, r.RequestURI)
		requestFields := map[string]interface{}{
			"requestURL":    requestURL,
			"requestMethod": r.Method,
			"requestPath":   r.URL.Path,
			"remoteIP":      r.RemoteAddr,
			"proto":         r.Proto,
		}
		log.Ctx(ctx).Info().Fields(requestFields).Msg("")

		rw := httpx.NewResponseWriter(w)
		start := time.Now()
		next.ServeHTTP(rw, r.WithContext(ctx))
		log.Ctx(ctx).Info().
			Int("status", rw.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request complete")
	})
}

func newRequestId() string {
	u, err := uuid.NewRandom()
	if err == nil {
		return u.String()
	} else {
		return ""
	}
}
