package middleware

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/observability"
)

// Tracing starts a server span per request, continuing an inbound
// traceparent. The span carries the request id, and the trace id is put in
// the context under logger.TraceIDKey for request logs. Install it after
// RequestID.
func Tracing() Middleware {
	spans := otelhttp.NewMiddleware(observability.SpanHTTPRequest,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	return func(next http.Handler) http.Handler {
		return spans(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := GetRequestID(ctx); id != "" {
				observability.SetSpanAttribute(ctx, observability.AttrRequestID, id)
			}
			if tid := observability.TraceID(ctx); tid != "" {
				ctx = context.WithValue(ctx, logger.TraceIDKey, tid)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		}))
	}
}
