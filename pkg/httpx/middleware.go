// Package httpx holds the request pipeline: middleware composition,
// response envelopes, the error translator, rate limiting and bearer
// authentication.
package httpx

import "net/http"

// Middleware is a single pipeline stage wrapping an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h so that the first listed middleware is
// the outermost stage. Chain(h, a, b) serves a(b(h)).
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
