package kit

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// Correlation assigns a fresh request id before anything else runs. Inbound
// X-Request-Id headers are ignored so an id is never client-supplied.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// WithRequestID stores id under chi's request id key, so GetReqID and
// RequestID agree.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
