package render

import "github.com/strataframe/strata/pkg/routing"

// EndpointHandler is one exported HTTP-method handler of an endpoint
// module. It may return a *Response, a string or []byte for simple
// serialization, or any JSON-marshalable value.
type EndpointHandler func(ctx *Context) (any, error)

// Module is the compiled output contract of a page, endpoint, or redirect
// component. The compiler emits one Module per component, registered under
// a stable id; the core only dispatches it.
type Module struct {
	// Render is the page entry point. It writes incrementally into the
	// destination, or short-circuits by returning a complete Response
	// (an explicit redirect or custom response primitive).
	Render func(ctx *Context, dest *Destination) (*Response, error)

	// StaticPaths enumerates concrete paths for a dynamic prerendered
	// route. Nil for fully static patterns.
	StaticPaths func(ctx *Context) ([]routing.StaticPath, error)

	// Handlers maps HTTP method names (plus optional "ALL") to endpoint
	// handlers. Only consulted for endpoint routes.
	Handlers map[string]EndpointHandler
}
