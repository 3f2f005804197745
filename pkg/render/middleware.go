package render

// NextFunc continues the middleware chain. The terminal continuation is
// the core renderer itself.
type NextFunc func() (*Response, error)

// Middleware intercepts a request before rendering. It may short-circuit
// by returning its own Response without calling next.
type Middleware func(ctx *Context, next NextFunc) (*Response, error)

// chain composes the ordered middleware list into one continuation ending
// in terminal. Short-circuit semantics fall out of continuation passing:
// a handler that never calls next stops the chain.
func chain(ctx *Context, handlers []Middleware, terminal NextFunc) (*Response, error) {
	next := terminal
	for i := len(handlers) - 1; i >= 0; i-- {
		h := handlers[i]
		inner := next
		next = func() (*Response, error) {
			return h(ctx, inner)
		}
	}
	return next()
}
