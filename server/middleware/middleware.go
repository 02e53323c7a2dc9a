package middleware

import "net/http"

// Middleware wraps the whole handler, outside gin, so unmatched routes are
// covered too.
type Middleware func(http.Handler) http.Handler

// Chain applies mws with the first one outermost.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := range mws {
			h = mws[len(mws)-1-i](h)
		}
		return h
	}
}
