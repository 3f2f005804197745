// Package strata is the server-side request-rendering core of the Strata
// web meta-framework.
//
// An App wraps a deployed Manifest, a ComponentLoader, and the render
// pipeline into the runtime entry point hosting adapters call:
//
//	app := strata.New(m, registry, strata.DefaultConfig())
//	http.ListenAndServe(":8080", app)
//
// Adapters that manage their own transport call Render directly and stream
// the returned Response themselves. Match and Render are the entire
// adapter contract.
package strata

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/strataframe/strata/internal/errors"
	"github.com/strataframe/strata/pkg/manifest"
	"github.com/strataframe/strata/pkg/render"
	"github.com/strataframe/strata/pkg/routing"
)

// App orchestrates matching, context construction, rendering, and
// error-route fallback for live requests.
type App struct {
	manifest  *manifest.Manifest
	loader    manifest.ComponentLoader
	env       *render.Environment
	config    Config
	logger    *slog.Logger
	onRequest []render.Middleware
	staticFS  http.FileSystem
}

// New creates an App serving the given manifest with modules resolved
// through loader.
func New(m *manifest.Manifest, loader manifest.ComponentLoader, cfg Config) *App {
	if cfg.Static.Prefix == "" {
		cfg.Static.Prefix = "/"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		manifest: m,
		loader:   loader,
		config:   cfg,
		logger:   logger,
		env:      cfg.environment(nil),
	}
	if cfg.Static.Dir != "" {
		app.staticFS = http.Dir(cfg.Static.Dir)
	}
	return app
}

// Use appends request middleware, run in order before every render with a
// next continuation; middleware may short-circuit with its own response.
func (a *App) Use(mw ...render.Middleware) {
	a.onRequest = append(a.onRequest, mw...)
}

// Environment exposes the shared rendering environment (route cache,
// logger). Used by the dev server to wire cache invalidation.
func (a *App) Environment() *render.Environment {
	return a.env
}

// Match resolves the route for a pathname. Declared static-asset paths
// never match; the static file layer owns those. A prerendered route is
// returned so callers can pass it through to the static layer.
func (a *App) Match(pathname string) *routing.Route {
	if a.manifest.IsAssetPath(pathname) {
		return nil
	}
	return routing.Match(pathname, a.manifest.Routes)
}

type renderOptions struct {
	route  *routing.Route
	locals map[string]any
}

// RenderOption customizes one Render call.
type RenderOption func(*renderOptions)

// WithRoute skips matching and renders the given route.
func WithRoute(route *routing.Route) RenderOption {
	return func(o *renderOptions) { o.route = route }
}

// WithLocals seeds the request-scoped locals object.
func WithLocals(locals map[string]any) RenderOption {
	return func(o *renderOptions) { o.locals = locals }
}

// Render produces the response for a request: resolve the route, build the
// per-request context, run the pipeline, and apply 404/500 fallback.
// It never returns nil.
func (a *App) Render(req *http.Request, opts ...RenderOption) *render.Response {
	return a.renderWith(req, nil, opts...)
}

func (a *App) renderWith(req *http.Request, dest *render.Destination, opts ...RenderOption) *render.Response {
	var o renderOptions
	for _, opt := range opts {
		opt(&o)
	}

	pathname := a.stripBase(req.URL.Path)
	route := o.route
	if route == nil {
		route = a.Match(pathname)
	}

	if route == nil {
		return a.renderFallback(req, http.StatusNotFound, nil)
	}
	if route.Prerender {
		// Prerendered routes are never executed by the live server; the
		// static layer owns them. Serve the built file when we can see it.
		if resp := a.prerenderedResponse(route, pathname); resp != nil {
			return resp
		}
		return a.renderFallback(req, http.StatusNotFound, nil)
	}

	resp, err := a.renderRoute(req, pathname, route, o.locals, dest, 0)
	if err != nil {
		if dest != nil && dest.Started() {
			// The stream already carried output; there is no response
			// left to substitute. Log and hand back what was sent.
			a.logger.Error("render failed mid-stream", "pathname", pathname, "error", err)
			failed := render.NewResponse(http.StatusInternalServerError)
			failed.MarkSent()
			return failed
		}
		a.logger.Error("render failed", "pathname", pathname, "error", err)
		return a.renderFallback(req, http.StatusInternalServerError, nil)
	}

	// A redirect without a Location header is a deploy mistake, not
	// something to pass through silently.
	if resp.IsRedirect() && resp.Header().Get("Location") == "" {
		err := errors.New("S202").WithDetail("route %q returned %d without Location", pathname, resp.Status())
		a.logger.Error("render failed", "pathname", pathname, "error", err)
		return a.renderFallback(req, http.StatusInternalServerError, nil)
	}

	// A page that explicitly produced a 404/500 still gets the themed
	// fallback body, keeping its own status and headers.
	if status := resp.Status(); (status == http.StatusNotFound || status == http.StatusInternalServerError) &&
		!resp.Sent() && !isFallbackPathname(route.Pathname) {
		return a.renderFallback(req, status, resp)
	}
	return resp
}

// renderRoute builds the context for one route and runs the pipeline.
func (a *App) renderRoute(req *http.Request, pathname string, route *routing.Route, locals map[string]any, dest *render.Destination, status int) (*render.Response, error) {
	assets, err := a.manifest.AssetsFor(route)
	if err != nil {
		return nil, err
	}

	var mod *render.Module
	if route.Component != "" {
		mod, err = a.loader.Load(route.Component)
		if err != nil {
			return nil, err
		}
	}

	ctx := render.NewContext(render.ContextOptions{
		Request:   req,
		Pathname:  pathname,
		Route:     route,
		Locals:    locals,
		Status:    status,
		Scripts:   assets.Scripts,
		Styles:    assets.Styles,
		Links:     assets.Links,
		Site:      a.config.Site,
		Generator: Generator,
		Logger:    a.logger,
	})
	if dest != nil {
		ctx.AttachDestination(dest)
	}

	return render.TryRenderRoute(ctx, a.env, mod, a.onRequest...)
}

// renderFallback produces the configured 404/500 page. When original is
// non-nil and carried a non-200 status, its status and headers are kept
// and only the body is substituted.
func (a *App) renderFallback(req *http.Request, status int, original *render.Response) *render.Response {
	pathname := "/404"
	if status == http.StatusInternalServerError {
		pathname = "/500"
	}

	fallback := a.fallbackResponse(req, pathname, status)
	if fallback == nil {
		// No fallback page configured: a bare status response.
		fallback = render.NewResponse(status)
	}

	if original != nil && original.Status() != http.StatusOK {
		merged := render.NewResponse(original.Status())
		for k, vs := range original.Header() {
			for _, v := range vs {
				merged.Header().Add(k, v)
			}
		}
		if merged.Header().Get("Content-Type") == "" {
			merged.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		body, err := fallback.Bytes()
		if err == nil {
			merged.SetBody(body)
		}
		return merged
	}
	return fallback
}

// fallbackResponse renders or fetches the fallback page body.
func (a *App) fallbackResponse(req *http.Request, pathname string, status int) *render.Response {
	route := a.manifest.RouteByPathname(pathname)
	if route == nil {
		return nil
	}

	// A statically pre-rendered fallback is fetched from the built
	// output instead of being re-executed.
	if route.Prerender && a.stripBase(req.URL.Path) != pathname {
		if resp := a.prerenderedResponse(route, pathname); resp != nil {
			resp.SetStatus(status)
			return resp
		}
	}

	resp, err := a.renderRoute(req, pathname, route, nil, nil, status)
	if err != nil {
		a.logger.Error("fallback render failed", "pathname", pathname, "error", err)
		return nil
	}
	return resp
}

// prerenderedResponse reads a route's built HTML from the output
// directory. Returns nil when no built file exists.
func (a *App) prerenderedResponse(route *routing.Route, pathname string) *render.Response {
	if a.config.OutDir == "" {
		return nil
	}
	for _, candidate := range prerenderedCandidates(pathname) {
		body, err := os.ReadFile(filepath.Join(a.config.OutDir, filepath.FromSlash(candidate)))
		if err != nil {
			continue
		}
		resp := render.NewResponse(http.StatusOK)
		resp.Header().Set("Content-Type", "text/html; charset=utf-8")
		resp.SetBody(body)
		return resp
	}
	return nil
}

// prerenderedCandidates lists the on-disk names a built page may have
// under either build format.
func prerenderedCandidates(pathname string) []string {
	trimmed := strings.Trim(pathname, "/")
	if trimmed == "" {
		return []string{"index.html"}
	}
	return []string{
		trimmed + "/index.html",
		trimmed + ".html",
		trimmed,
	}
}

func isFallbackPathname(pathname string) bool {
	return pathname == "/404" || pathname == "/500"
}

// stripBase removes the configured base prefix from a request path.
func (a *App) stripBase(pathname string) string {
	base := strings.TrimSuffix(a.config.Base, "/")
	if base == "" {
		return pathname
	}
	if strings.HasPrefix(pathname, base) {
		rest := pathname[len(base):]
		if rest == "" {
			return "/"
		}
		if strings.HasPrefix(rest, "/") {
			return rest
		}
	}
	return pathname
}

// ServeHTTP implements http.Handler: static files first, then prerendered
// pass-through, then the render pipeline with streaming output when
// enabled.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if a.staticFS != nil && a.shouldServeStatic(r.URL.Path) {
		a.serveStatic(w, r)
		return
	}

	pathname := a.stripBase(r.URL.Path)
	route := a.Match(pathname)

	var dest *render.Destination
	if a.config.Streaming && route != nil && !route.Prerender && route.Type == routing.RoutePage {
		dest = render.NewStreamingDestination(r.Context(), w, func(resp *render.Response) {
			if resp == nil {
				return
			}
			copyHeader(w.Header(), resp.Header())
			w.WriteHeader(resp.Status())
		})
	}

	var resp *render.Response
	if route != nil {
		resp = a.renderWith(r, dest, WithRoute(route))
	} else {
		resp = a.renderWith(r, dest)
	}

	if resp.Sent() {
		// Headers and body already reached the transport.
		return
	}
	writeResponse(w, resp)
}

// writeResponse copies a buffered response onto the transport.
func writeResponse(w http.ResponseWriter, resp *render.Response) {
	copyHeader(w.Header(), resp.Header())
	body, err := resp.Bytes()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(resp.Status())
	if len(body) > 0 {
		w.Write(body)
	}
	resp.MarkSent()
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
