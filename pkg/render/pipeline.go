package render

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/strataframe/strata/internal/errors"
	"github.com/strataframe/strata/pkg/routing"
)

// EndpointResult classifies what an endpoint handler produced: either a
// full Response or a simple body value with an encoding hint.
type EndpointResult struct {
	resp     *Response
	Body     []byte
	Encoding string
}

// Response converts the result into a Response, synthesizing one for
// simple bodies.
func (r *EndpointResult) Response() *Response {
	if r.resp != nil {
		return r.resp
	}
	resp := NewResponse(http.StatusOK)
	resp.Header().Set("Content-Type", r.Encoding)
	resp.SetBody(r.Body)
	return resp
}

// TryRenderRoute executes a matched route's handler, producing a Response.
//
// Any onRequest middleware runs first with a next continuation performing
// the underlying render; middleware may short-circuit with its own
// Response. Errors thrown during rendering propagate to the caller
// uncaught, so the server facade and the static builder can apply
// mode-specific fallback (error page vs. build failure).
func TryRenderRoute(ctx *Context, env *Environment, mod *Module, onRequest ...Middleware) (*Response, error) {
	terminal := func() (*Response, error) {
		return renderRoute(ctx, env, mod)
	}
	return chain(ctx, onRequest, terminal)
}

func renderRoute(ctx *Context, env *Environment, mod *Module) (*Response, error) {
	switch ctx.Route.Type {
	case routing.RouteEndpoint:
		result, err := renderEndpoint(ctx, env, mod)
		if err != nil {
			return nil, err
		}
		return result.Response(), nil

	case routing.RouteRedirect:
		// A redirect route with page logic renders like a page; the
		// well-known built-in stand-in has no Render and is synthesized.
		if mod == nil || mod.Render == nil {
			return synthesizeRedirect(ctx)
		}
		return renderPage(ctx, env, mod)

	default:
		return renderPage(ctx, env, mod)
	}
}

// renderPage drives a compiled page's render function through the
// destination, enforcing the single-write invariant.
func renderPage(ctx *Context, env *Environment, mod *Module) (*Response, error) {
	if mod == nil || mod.Render == nil {
		return nil, errors.New("S201").WithDetail("route %q has no render function", ctx.Pathname)
	}

	out := NewResponse(ctx.Status)
	out.Header().Set("Content-Type", "text/html; charset=utf-8")

	dest := ctx.dest
	if dest == nil {
		dest = NewBufferedDestination()
		ctx.dest = dest
	}
	dest.Bind(out)

	resp, err := mod.Render(ctx, dest)
	if err != nil {
		out.MarkFailed()
		return nil, errors.New("S101").WithDetail("rendering %q", ctx.Pathname).Wrap(err)
	}

	// Explicit redirect/response primitive short-circuits, but only while
	// nothing has reached the transport.
	if resp != nil {
		if dest.Started() {
			return nil, ErrAlreadySent
		}
		return resp, nil
	}

	if !dest.streaming {
		out.SetBody(dest.Buffered())
	} else if !dest.Started() {
		out.SetBody(nil)
	}
	if env.Mode == ModeDevelopment {
		env.logger().Debug("page rendered", "pathname", ctx.Pathname, "status", out.Status(), "streamed", dest.Started() && dest.streaming)
	}
	return out, nil
}

// renderEndpoint invokes the handler exported for the request method,
// falling back to an ALL handler when declared.
func renderEndpoint(ctx *Context, env *Environment, mod *Module) (*EndpointResult, error) {
	method := http.MethodGet
	if ctx.Request != nil {
		method = ctx.Request.Method
	}

	var handler EndpointHandler
	if mod != nil {
		handler = mod.Handlers[method]
		if handler == nil {
			handler = mod.Handlers["ALL"]
		}
	}
	if handler == nil {
		// No handler for this method is a plain 404, not an exception.
		// The structured error is logged as a diagnostic only.
		se := errors.New("S102").WithDetail("endpoint %s %q", method, ctx.Pathname)
		env.logger().Warn("endpoint method not handled", "error", se)
		resp := NewResponse(http.StatusNotFound)
		return &EndpointResult{resp: resp}, nil
	}

	out, err := handler(ctx)
	if err != nil {
		return nil, errors.New("S101").WithDetail("endpoint %s %q", method, ctx.Pathname).Wrap(err)
	}

	switch v := out.(type) {
	case *Response:
		return &EndpointResult{resp: v}, nil
	case string:
		return &EndpointResult{Body: []byte(v), Encoding: "text/plain; charset=utf-8"}, nil
	case []byte:
		return &EndpointResult{Body: v, Encoding: "application/octet-stream"}, nil
	default:
		body, err := json.Marshal(v)
		if err != nil {
			return nil, errors.New("S101").WithDetail("serializing endpoint result for %q", ctx.Pathname).Wrap(err)
		}
		return &EndpointResult{Body: body, Encoding: "application/json"}, nil
	}
}

// synthesizeRedirect builds the Response for a redirect route with no
// page logic.
func synthesizeRedirect(ctx *Context) (*Response, error) {
	status := ctx.Route.RedirectStatus
	if status == 0 {
		status = http.StatusMovedPermanently
	}

	// A plain 301/302 is not safe to replay with a different method and
	// body, so non-GET/HEAD requests upgrade to 308.
	method := http.MethodGet
	if ctx.Request != nil {
		method = ctx.Request.Method
	}
	if method != http.MethodGet && method != http.MethodHead &&
		(status == http.StatusMovedPermanently || status == http.StatusFound) {
		status = http.StatusPermanentRedirect
	}

	location := RedirectLocation(ctx.Route, ctx.Params)
	if location == "" {
		return nil, errors.New("S202").WithDetail("redirect route %q has no destination", ctx.Pathname)
	}
	return Redirect(location, status), nil
}

// RedirectLocation derives the Location value for a redirect route from
// its target. Dynamic target segments are substituted from the source
// match's params; an unresolvable target yields "".
func RedirectLocation(route *routing.Route, params map[string]string) string {
	target := route.RedirectRoute
	if target == nil {
		return ""
	}
	if target.Pathname != "" {
		return target.Pathname
	}

	var b strings.Builder
	for _, seg := range target.Pattern {
		switch seg.Kind {
		case routing.SegmentStatic:
			b.WriteString("/")
			b.WriteString(seg.Value)
		default:
			val := params[seg.Value]
			if val == "" {
				return ""
			}
			b.WriteString("/")
			b.WriteString(val)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
