package provider

import (
	"context"
	"time"

	"github.com/kbukum/meetingmind/logger"
)

// WithLogging logs every call at debug, and failures at warn, with the
// provider name and latency.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return func(next RequestResponse[I, O]) RequestResponse[I, O] {
		return &logged[I, O]{RequestResponse: next, log: log}
	}
}

type logged[I, O any] struct {
	RequestResponse[I, O]
	log *logger.Logger
}

func (l *logged[I, O]) Execute(ctx context.Context, in I) (O, error) {
	start := time.Now()
	out, err := l.RequestResponse.Execute(ctx, in)

	f := logger.DurationFields("execute", time.Since(start))
	f[logger.FieldProvider] = l.Name()
	log := l.log.WithContext(ctx)
	if err == nil {
		log.Debug("Provider call finished", f)
		return out, nil
	}
	f[logger.FieldError] = err.Error()
	log.Warn("Provider call failed", f)
	return out, err
}
