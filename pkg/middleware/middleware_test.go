package middleware

import (
	"testing"

	"github.com/strataframe/strata/pkg/render"
	"github.com/strataframe/strata/pkg/routing"
)

func TestRouteLabel(t *testing.T) {
	cases := []struct {
		pattern string
		want    string
	}{
		{"/", "/"},
		{"/about", "/about"},
		{"/blog/[slug]", "/blog/[slug]"},
		{"/docs/[...path]", "/docs/[...path]"},
		{"/shop/[category]/[id]", "/shop/[category]/[id]"},
	}
	for _, tc := range cases {
		ctx := render.NewContext(render.ContextOptions{
			Pathname: "/blog/some-post",
			Route:    routing.NewRoute(tc.pattern, routing.RoutePage, "c"),
		})
		if got := routeLabel(ctx); got != tc.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tc.pattern, got, tc.want)
		}
	}
}

func TestRouteLabel_NoRoute(t *testing.T) {
	ctx := render.NewContext(render.ContextOptions{Pathname: "/raw"})
	if got := routeLabel(ctx); got != "/raw" {
		t.Errorf("routeLabel = %q, want /raw", got)
	}
}
