package provider

import (
	"context"

	"github.com/kbukum/meetingmind/observability"
)

// WithTracing records a span "<service>.<provider>" for every call.
func WithTracing[I, O any](service string) Middleware[I, O] {
	return func(next RequestResponse[I, O]) RequestResponse[I, O] {
		return &traced[I, O]{RequestResponse: next, service: service}
	}
}

type traced[I, O any] struct {
	RequestResponse[I, O]
	service string
}

func (t *traced[I, O]) Execute(ctx context.Context, in I) (O, error) {
	name := t.RequestResponse.Name()
	ctx, span := observability.StartSpan(ctx, t.service+"."+name)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.service)
	observability.SetSpanAttribute(ctx, observability.AttrOperationName, name)

	out, err := t.RequestResponse.Execute(ctx, in)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return out, err
}
