package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// Audit logs a security-relevant request event with uniform attributes.
// The trace id is attached when a span is active so audit lines can be
// correlated with traces.
func Audit(r *http.Request, event string, attrs ...any) {
	base := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
		base = append(base, "trace_id", sc.TraceID().String())
	}
	base = append(base, attrs...)
	slog.InfoContext(r.Context(), "audit", base...)
}
