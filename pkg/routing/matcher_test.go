package routing

import "testing"

func TestMatch_StaticAndDynamic(t *testing.T) {
	routes := []*Route{
		NewRoute("/", RoutePage, "pages/index"),
		NewRoute("/about", RoutePage, "pages/about"),
		NewRoute("/blog/[slug]", RoutePage, "pages/blog/slug"),
	}

	t.Run("root", func(t *testing.T) {
		got := Match("/", routes)
		if got == nil || got.Component != "pages/index" {
			t.Fatalf("Match(/) = %+v, want pages/index", got)
		}
	})

	t.Run("static", func(t *testing.T) {
		got := Match("/about", routes)
		if got == nil || got.Component != "pages/about" {
			t.Fatalf("Match(/about) = %+v, want pages/about", got)
		}
	})

	t.Run("dynamic", func(t *testing.T) {
		got := Match("/blog/hello-world", routes)
		if got == nil || got.Component != "pages/blog/slug" {
			t.Fatalf("Match(/blog/hello-world) = %+v, want pages/blog/slug", got)
		}
	})

	t.Run("dynamic rejects empty segment", func(t *testing.T) {
		if got := Match("/blog//", routes); got != nil {
			t.Fatalf("Match(/blog//) = %+v, want nil", got)
		}
	})

	t.Run("no match returns nil", func(t *testing.T) {
		if got := Match("/missing/deeply", routes); got != nil {
			t.Fatalf("Match = %+v, want nil", got)
		}
	})
}

func TestMatch_StaticOutranksDynamic(t *testing.T) {
	// Declaration order deliberately puts the dynamic route first.
	routes := []*Route{
		NewRoute("/posts/[id]", RoutePage, "pages/posts/id"),
		NewRoute("/posts/featured", RoutePage, "pages/posts/featured"),
	}

	got := Match("/posts/featured", routes)
	if got == nil || got.Component != "pages/posts/featured" {
		t.Fatalf("Match = %+v, want the static route regardless of order", got)
	}
}

func TestMatch_DynamicOutranksRest(t *testing.T) {
	routes := []*Route{
		NewRoute("/docs/[...path]", RoutePage, "pages/docs/rest"),
		NewRoute("/docs/[page]", RoutePage, "pages/docs/page"),
	}

	if got := Match("/docs/intro", routes); got == nil || got.Component != "pages/docs/page" {
		t.Fatalf("Match(/docs/intro) = %+v, want the dynamic route", got)
	}
	if got := Match("/docs/guides/routing", routes); got == nil || got.Component != "pages/docs/rest" {
		t.Fatalf("Match(/docs/guides/routing) = %+v, want the rest route", got)
	}
}

func TestMatch_DeclarationOrderBreaksTies(t *testing.T) {
	routes := []*Route{
		NewRoute("/items/[a]", RoutePage, "injected"),
		NewRoute("/items/[b]", RoutePage, "project"),
	}

	got := Match("/items/42", routes)
	if got == nil || got.Component != "injected" {
		t.Fatalf("Match = %+v, want the earlier-declared route", got)
	}
}

func TestMatch_RestAbsorbsRemainderIncludingNothing(t *testing.T) {
	routes := []*Route{
		NewRoute("/files/[...path]", RoutePage, "pages/files"),
	}

	if got := Match("/files", routes); got == nil {
		t.Fatal("rest segment should match zero remaining parts")
	}
	if got := Match("/files/a/b/c", routes); got == nil {
		t.Fatal("rest segment should absorb the remainder")
	}
}

func TestParams(t *testing.T) {
	route := NewRoute("/blog/[year]/[...slug]", RoutePage, "pages/blog")

	params := Params(route, "/blog/2024/go/generics")
	if params["year"] != "2024" {
		t.Fatalf("year = %q, want 2024", params["year"])
	}
	if params["slug"] != "go/generics" {
		t.Fatalf("slug = %q, want go/generics", params["slug"])
	}

	params = Params(route, "/blog/2024")
	if params["slug"] != "" {
		t.Fatalf("empty rest = %q, want \"\"", params["slug"])
	}
}

func TestMatchAll_OrdersBestFirst(t *testing.T) {
	routes := []*Route{
		NewRoute("/x/[...rest]", RoutePage, "rest"),
		NewRoute("/x/[p]", RoutePage, "dynamic"),
		NewRoute("/x/a", RoutePage, "static"),
	}

	all := MatchAll("/x/a", routes)
	want := []string{"static", "dynamic", "rest"}
	if len(all) != len(want) {
		t.Fatalf("len = %d, want %d", len(all), len(want))
	}
	for i, w := range want {
		if all[i].Component != w {
			t.Fatalf("all[%d] = %q, want %q", i, all[i].Component, w)
		}
	}
}

func TestNewRoute_StaticPathname(t *testing.T) {
	r := NewRoute("/about/team/", RoutePage, "pages/about/team")
	if r.Pathname != "/about/team" {
		t.Fatalf("Pathname = %q, want /about/team", r.Pathname)
	}

	d := NewRoute("/blog/[slug]", RoutePage, "pages/blog")
	if d.Pathname != "" {
		t.Fatalf("dynamic Pathname = %q, want \"\"", d.Pathname)
	}
}
