package middleware

import (
	"strings"

	"github.com/strataframe/strata/pkg/render"
	"github.com/strataframe/strata/pkg/routing"
)

// routeLabel formats a route's declared pattern for use in metric labels
// and span names. Dynamic segments keep their bracket syntax, so every
// request to /blog/[slug] shares one value.
func routeLabel(ctx *render.Context) string {
	route := ctx.Route
	if route == nil {
		return ctx.Pathname
	}
	if len(route.Pattern) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, seg := range route.Pattern {
		b.WriteString("/")
		switch seg.Kind {
		case routing.SegmentDynamic:
			b.WriteString("[")
			b.WriteString(seg.Value)
			b.WriteString("]")
		case routing.SegmentRest:
			b.WriteString("[...")
			b.WriteString(seg.Value)
			b.WriteString("]")
		default:
			b.WriteString(seg.Value)
		}
	}
	return b.String()
}
