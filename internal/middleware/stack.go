package middleware

import "net/http"

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Stack composes middleware so the first argument runs outermost.
//
//	chain := middleware.Stack(logging, authRequired)
//	mux.Handle("GET /reports/{id}", chain(handler))
func Stack(mw ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}
