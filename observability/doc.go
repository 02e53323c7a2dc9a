// Package observability sets up OpenTelemetry tracing and metrics export
// over OTLP/HTTP and provides span helpers.
//
//	shutdown, err := observability.Setup(ctx, cfg)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanAnalysis)
//	defer span.End()
package observability
