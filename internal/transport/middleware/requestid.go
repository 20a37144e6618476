package middleware

import (
	"net/http"

	"github.com/frahmantamala/certification-management/pkg/logger"

	"github.com/google/uuid"
)

// RequestID propagates X-Trace-ID, generating one when the caller sent none,
// and attaches it to the request-scoped logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
