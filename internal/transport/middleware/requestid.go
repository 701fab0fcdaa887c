package middleware

import (
	"net/http"

	"github.com/frahmantamala/leave-management/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// maxTraceLength bounds caller supplied trace ids before they reach the logs.
const maxTraceLength = 128

// RequestID propagates the caller's X-Trace-ID or mints one, echoes it on the
// response and tags the request logger with it. Chi's request id is kept
// alongside so both show up in the access log.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" || len(traceID) > maxTraceLength {
			traceID = uuid.NewString()
		}
		w.Header().Set(TraceHeader, traceID)

		ctx := logger.WithTrace(r.Context(), traceID)
		if reqID := chiMiddleware.GetReqID(ctx); reqID != "" {
			ctx = logger.With(ctx, "request_id", reqID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
