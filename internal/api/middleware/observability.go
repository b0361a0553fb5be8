package middleware

import (
	"net/http"
	"time"

	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// unmatchedRoute labels requests no pattern claimed, keeping raw paths out of span
// names and metric labels
const unmatchedRoute = "unmatched"

// routeOf returns the mux pattern that served r. The mux records it on the request
// it was handed, so call this on that request after it returns.
func routeOf(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return unmatchedRoute
}

// Tracing wraps each request in a span and records its latency. The span is renamed
// to the matched route once the mux has run.
func Tracing(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), "HTTP "+r.Method)
			defer span.End()

			routed := r.WithContext(ctx)
			rec := newStatusRecorder(w)
			start := time.Now()

			next.ServeHTTP(rec, routed)

			route := routeOf(routed)
			span.SetName(route)
			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.status_code", rec.status),
			)
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}

			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rec.status, time.Since(start))
		})
	}
}
