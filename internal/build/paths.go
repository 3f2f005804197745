package build

import (
	"strings"

	"github.com/strataframe/strata/internal/errors"
	"github.com/strataframe/strata/pkg/routing"
)

// Format selects the on-disk shape of built pages.
type Format string

const (
	// FormatDirectory writes /about as about/index.html, giving every
	// page a trailing-slash URL.
	FormatDirectory Format = "directory"

	// FormatFile writes /about as about.html.
	FormatFile Format = "file"
)

// PathnameFor substitutes a static path's params into the route pattern,
// yielding the concrete request path to render.
func PathnameFor(route *routing.Route, params map[string]string) (string, error) {
	if route.Pathname != "" {
		return route.Pathname, nil
	}

	var b strings.Builder
	for _, seg := range route.Pattern {
		switch seg.Kind {
		case routing.SegmentStatic:
			b.WriteString("/")
			b.WriteString(seg.Value)
		case routing.SegmentDynamic:
			val := params[seg.Value]
			if val == "" {
				return "", errors.New("S103").WithDetail("static path for %q is missing param %q", patternString(route), seg.Value)
			}
			b.WriteString("/")
			b.WriteString(val)
		case routing.SegmentRest:
			// An absent rest param collapses the segment entirely.
			if val := params[seg.Value]; val != "" {
				b.WriteString("/")
				b.WriteString(strings.Trim(val, "/"))
			}
		}
	}
	if b.Len() == 0 {
		return "/", nil
	}
	return b.String(), nil
}

// OutputPath maps a rendered pathname to its file name inside the output
// store. Endpoint routes keep their literal path, which usually carries
// its own extension.
func OutputPath(pathname string, route *routing.Route, format Format) string {
	trimmed := strings.Trim(pathname, "/")

	if route.Type == routing.RouteEndpoint {
		if trimmed == "" {
			return "index"
		}
		return trimmed
	}

	if trimmed == "" {
		return "index.html"
	}
	if format == FormatFile {
		return trimmed + ".html"
	}
	return trimmed + "/index.html"
}

func patternString(route *routing.Route) string {
	if len(route.Pattern) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range route.Pattern {
		b.WriteString("/")
		switch seg.Kind {
		case routing.SegmentDynamic:
			b.WriteString("[" + seg.Value + "]")
		case routing.SegmentRest:
			b.WriteString("[..." + seg.Value + "]")
		default:
			b.WriteString(seg.Value)
		}
	}
	return b.String()
}
