package provider

// Middleware decorates a RequestResponse provider.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain folds mws into a single middleware. The first one sees the request
// first: Chain(a, b)(p) == a(b(p)).
func Chain[I, O any](mws ...Middleware[I, O]) Middleware[I, O] {
	return func(p RequestResponse[I, O]) RequestResponse[I, O] {
		for i := range mws {
			p = mws[len(mws)-1-i](p)
		}
		return p
	}
}
