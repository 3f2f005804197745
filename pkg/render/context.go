package render

import (
	"log/slog"
	"net/http"

	"github.com/strataframe/strata/pkg/routing"
)

// Script is a script element attached to a page.
type Script struct {
	// Src is the external source URL; empty for inline scripts.
	Src string

	// Content is the inline script body.
	Content string

	// Type is the script type attribute, e.g. "module".
	Type string
}

// Link is a link element attached to a page (stylesheets, preloads).
type Link struct {
	Rel  string
	Href string
}

// Context is the per-request state bundle consumed by rendering.
// It is created fresh per request or per static path, never shared, and
// discarded once the response is produced.
type Context struct {
	// Request is the original incoming request (synthetic during builds).
	Request *http.Request

	// Pathname is the matched request path.
	Pathname string

	// Route is the matched route descriptor.
	Route *routing.Route

	// Params are the values extracted from dynamic pattern segments.
	Params map[string]string

	// Props are the per-path props produced by static-path enumeration.
	Props map[string]any

	// Locals is request-scoped state shared with middleware.
	Locals map[string]any

	// Status is the initial response status for page renders.
	Status int

	// Scripts and Styles are the route's resolved asset sets, deduplicated
	// and order-preserving. Empty for endpoint routes.
	Scripts []Script
	Styles  []Link
	Links   []Link

	// Site is the configured site URL; Generator identifies the framework
	// build that produced the page.
	Site      string
	Generator string

	logger *slog.Logger
	dest   *Destination
}

// ContextOptions carries everything needed to build a Context.
type ContextOptions struct {
	Request   *http.Request
	Pathname  string
	Route     *routing.Route
	Params    map[string]string
	Props     map[string]any
	Locals    map[string]any
	Status    int
	Scripts   []Script
	Styles    []Link
	Links     []Link
	Site      string
	Generator string
	Logger    *slog.Logger
}

// NewContext builds the per-request context for a matched route.
//
// Endpoint routes wrap just the handler: no script or style resolution
// happens for them. Page and redirect routes carry the route's asset sets,
// deduplicated while preserving declared order.
func NewContext(opts ContextOptions) *Context {
	ctx := &Context{
		Request:   opts.Request,
		Pathname:  opts.Pathname,
		Route:     opts.Route,
		Params:    opts.Params,
		Props:     opts.Props,
		Locals:    opts.Locals,
		Status:    opts.Status,
		Site:      opts.Site,
		Generator: opts.Generator,
		logger:    opts.Logger,
	}
	if ctx.Params == nil && opts.Route != nil {
		ctx.Params = routing.Params(opts.Route, opts.Pathname)
	}
	if ctx.Locals == nil {
		ctx.Locals = make(map[string]any)
	}
	if ctx.Status == 0 {
		ctx.Status = http.StatusOK
	}

	if opts.Route != nil && opts.Route.Type != routing.RouteEndpoint {
		ctx.Scripts = dedupeScripts(opts.Scripts)
		ctx.Styles = dedupeLinks(opts.Styles)
		ctx.Links = dedupeLinks(opts.Links)
	}
	return ctx
}

// AttachDestination binds the output sink the page will write into.
// The facade attaches a streaming destination for live SSR; the pipeline
// creates a buffered one otherwise.
func (c *Context) AttachDestination(d *Destination) {
	c.dest = d
}

// Param returns one extracted route parameter.
func (c *Context) Param(name string) string {
	return c.Params[name]
}

// Logger returns the request logger.
func (c *Context) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Redirect is the page-level redirect primitive. It fails with
// ErrAlreadySent when output has already started streaming, because the
// status line left the building with the first chunk.
func (c *Context) Redirect(location string, status int) (*Response, error) {
	if c.dest != nil && c.dest.Started() {
		return nil, ErrAlreadySent
	}
	if status == 0 {
		status = http.StatusFound
	}
	return Redirect(location, status), nil
}

// RenderHead produces the link and script tags for the route's resolved
// asset sets, in declared CSS order then component traversal order.
func (c *Context) RenderHead() Renderable {
	seq := make(Sequence, 0, len(c.Styles)+len(c.Links)+len(c.Scripts))
	for _, l := range c.Styles {
		seq = append(seq, SafeHTML(`<link rel="stylesheet" href="`+EscapeAttr(l.Href)+`">`))
	}
	for _, l := range c.Links {
		seq = append(seq, SafeHTML(`<link rel="`+EscapeAttr(l.Rel)+`" href="`+EscapeAttr(l.Href)+`">`))
	}
	for _, s := range c.Scripts {
		typ := s.Type
		if typ == "" {
			typ = "module"
		}
		if s.Src != "" {
			seq = append(seq, SafeHTML(`<script type="`+EscapeAttr(typ)+`" src="`+EscapeAttr(s.Src)+`"></script>`))
		} else {
			seq = append(seq, SafeHTML(`<script type="`+EscapeAttr(typ)+`">`+s.Content+`</script>`))
		}
	}
	return seq
}

func dedupeLinks(links []Link) []Link {
	seen := make(map[Link]bool, len(links))
	out := links[:0:0]
	for _, l := range links {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func dedupeScripts(scripts []Script) []Script {
	seen := make(map[Script]bool, len(scripts))
	out := scripts[:0:0]
	for _, s := range scripts {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
