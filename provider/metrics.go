package provider

import (
	"context"
	"time"
)

// Recorder receives per-call measurements. observability.Metrics and
// metrics.Registry both implement it.
type Recorder interface {
	RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration)
	RecordError(ctx context.Context, errType, component string)
}

// WithMetrics reports each call to rec as operation "execute" with status
// "ok" or "error".
func WithMetrics[I, O any](rec Recorder) Middleware[I, O] {
	return func(next RequestResponse[I, O]) RequestResponse[I, O] {
		return &measured[I, O]{RequestResponse: next, rec: rec}
	}
}

type measured[I, O any] struct {
	RequestResponse[I, O]
	rec Recorder
}

func (m *measured[I, O]) Execute(ctx context.Context, in I) (O, error) {
	start := time.Now()
	out, err := m.RequestResponse.Execute(ctx, in)
	status := "ok"
	if err != nil {
		status = "error"
		m.rec.RecordError(ctx, "execute", m.Name())
	}
	m.rec.RecordOperation(ctx, m.Name(), "execute", status, time.Since(start))
	return out, err
}
