package routing

import "strings"

// RouteType discriminates how a route is handled.
type RouteType string

const (
	// RoutePage renders a component to HTML.
	RoutePage RouteType = "page"

	// RouteEndpoint calls an HTTP-method handler and returns its raw result.
	RouteEndpoint RouteType = "endpoint"

	// RouteRedirect responds with a Location header; no user code runs.
	RouteRedirect RouteType = "redirect"
)

// SegmentKind is the pattern segment discriminator.
type SegmentKind int

const (
	// SegmentStatic matches one path part exactly.
	SegmentStatic SegmentKind = iota

	// SegmentDynamic matches any single non-empty path part ([param]).
	SegmentDynamic

	// SegmentRest absorbs the remaining path parts ([...param]).
	SegmentRest
)

// Segment is one compiled element of a route pattern.
type Segment struct {
	Kind SegmentKind `json:"kind"`

	// Value is the literal text for static segments and the parameter
	// name for dynamic and rest segments.
	Value string `json:"value"`
}

// Route is a compiled route descriptor.
//
// Routes are created once during route-table compilation and are immutable
// afterwards, so they are shared across requests and build workers without
// locking.
type Route struct {
	// Pattern is the ordered list of compiled segments.
	Pattern []Segment

	// Component is the stable id of the module that handles this route.
	Component string

	// Type is the route discriminator; exactly one per route.
	Type RouteType

	// Prerender marks the route as statically generated at build time.
	// Prerendered routes are never dispatched by the live server.
	Prerender bool

	// Pathname is the concrete path for fully static patterns, "" otherwise.
	Pathname string

	// RedirectRoute is the target route for redirect aliases.
	RedirectRoute *Route

	// RedirectStatus is the declared redirect status; 0 means the 301 default.
	RedirectStatus int
}

// IsStatic reports whether the pattern contains no dynamic or rest segments.
func (r *Route) IsStatic() bool {
	for _, seg := range r.Pattern {
		if seg.Kind != SegmentStatic {
			return false
		}
	}
	return true
}

// restCount returns the number of rest segments in the pattern.
func (r *Route) restCount() int {
	n := 0
	for _, seg := range r.Pattern {
		if seg.Kind == SegmentRest {
			n++
		}
	}
	return n
}

// ParsePattern compiles a path pattern into segments.
//
// Syntax follows the file-routing convention: static text, "[param]" for a
// dynamic segment, "[...param]" for a rest segment.
//
//	ParsePattern("/blog/[slug]")   => static "blog", dynamic "slug"
//	ParsePattern("/docs/[...path]") => static "docs", rest "path"
func ParsePattern(pattern string) []Segment {
	parts := splitPath(pattern)
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		switch {
		case strings.HasPrefix(part, "[...") && strings.HasSuffix(part, "]"):
			segments = append(segments, Segment{Kind: SegmentRest, Value: part[4 : len(part)-1]})
		case strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]"):
			segments = append(segments, Segment{Kind: SegmentDynamic, Value: part[1 : len(part)-1]})
		default:
			segments = append(segments, Segment{Kind: SegmentStatic, Value: part})
		}
	}
	return segments
}

// NewRoute compiles a pattern into a Route of the given type.
// Fully static patterns get their Pathname set.
func NewRoute(pattern string, typ RouteType, component string) *Route {
	r := &Route{
		Pattern:   ParsePattern(pattern),
		Component: component,
		Type:      typ,
	}
	if r.IsStatic() {
		r.Pathname = canonicalPath(pattern)
	}
	return r
}

// canonicalPath normalizes a static pattern to a leading-slash path with no
// trailing slash (except root).
func canonicalPath(pattern string) string {
	parts := splitPath(pattern)
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/")
}

// splitPath splits a path into segments, dropping empty leading/trailing parts.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
