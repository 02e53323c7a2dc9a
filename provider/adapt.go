package provider

import "context"

// Adapt exposes a provider of [BI, BO] as a provider of [I, O]. The
// analysis engine uses it to put its Completion types in front of the
// generic llm adapter.
func Adapt[I, O, BI, BO any](
	inner RequestResponse[BI, BO],
	name string,
	in func(ctx context.Context, input I) (BI, error),
	out func(output BO) (O, error),
) RequestResponse[I, O] {
	return adapter[I, O, BI, BO]{inner: inner, name: name, in: in, out: out}
}

type adapter[I, O, BI, BO any] struct {
	inner RequestResponse[BI, BO]
	name  string
	in    func(context.Context, I) (BI, error)
	out   func(BO) (O, error)
}

func (a adapter[I, O, BI, BO]) Name() string { return a.name }

func (a adapter[I, O, BI, BO]) IsAvailable(ctx context.Context) bool {
	return a.inner.IsAvailable(ctx)
}

func (a adapter[I, O, BI, BO]) Execute(ctx context.Context, input I) (O, error) {
	req, err := a.in(ctx, input)
	if err != nil {
		var zero O
		return zero, err
	}
	resp, err := a.inner.Execute(ctx, req)
	if err != nil {
		var zero O
		return zero, err
	}
	return a.out(resp)
}
