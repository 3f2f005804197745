package strata

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strataframe/strata/pkg/manifest"
	"github.com/strataframe/strata/pkg/render"
	"github.com/strataframe/strata/pkg/routing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testManifest(routes ...*routing.Route) *manifest.Manifest {
	assets := make(map[string]*manifest.RouteAssets)
	for _, r := range routes {
		if r.Component != "" {
			assets[r.Component] = &manifest.RouteAssets{}
		}
	}
	return &manifest.Manifest{Base: "/", Routes: routes, Assets: assets}
}

func pageModule(html string) *render.Module {
	return &render.Module{
		Render: func(ctx *render.Context, dest *render.Destination) (*render.Response, error) {
			if err := dest.Write(render.SafeHTML(html)); err != nil {
				return nil, err
			}
			return nil, nil
		},
	}
}

func testApp(t *testing.T, m *manifest.Manifest, reg *manifest.ModuleRegistry, mutate func(*Config)) *App {
	t.Helper()
	cfg := DefaultConfig()
	cfg.OutDir = ""
	cfg.Logger = testLogger()
	if mutate != nil {
		mutate(&cfg)
	}
	return New(m, reg, cfg)
}

func TestServeHTTP_Page(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/index", pageModule("<h1>Home</h1>"))
	m := testManifest(routing.NewRoute("/", routing.RoutePage, "pages/index"))
	app := testApp(t, m, reg, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "<h1>Home</h1>" {
		t.Fatalf("body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestServeHTTP_PageBuffered(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/index", pageModule("<p>buffered</p>"))
	m := testManifest(routing.NewRoute("/", routing.RoutePage, "pages/index"))
	app := testApp(t, m, reg, func(cfg *Config) { cfg.Streaming = false })

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "<p>buffered</p>" {
		t.Fatalf("body = %q", got)
	}
}

func TestServeHTTP_RedirectRoute(t *testing.T) {
	login := routing.NewRoute("/login", routing.RoutePage, "pages/login")
	secret := routing.NewRoute("/secret", routing.RouteRedirect, "")
	secret.RedirectRoute = login
	secret.RedirectStatus = http.StatusFound

	reg := manifest.NewRegistry()
	reg.Register("pages/login", pageModule("login"))
	app := testApp(t, testManifest(login, secret), reg, nil)

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secret", nil))

		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Fatalf("Location = %q, want /login", loc)
		}
	})

	t.Run("post upgrades to 308", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/secret", nil))

		if rec.Code != http.StatusPermanentRedirect {
			t.Fatalf("status = %d, want 308", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Fatalf("Location = %q, want /login", loc)
		}
	})
}

func TestServeHTTP_NotFoundEmptyTable(t *testing.T) {
	app := testApp(t, testManifest(), manifest.NewRegistry(), nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestServeHTTP_NotFoundFallbackPage(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/404", pageModule("custom not found"))
	m := testManifest(routing.NewRoute("/404", routing.RoutePage, "pages/404"))
	app := testApp(t, m, reg, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Body.String(); got != "custom not found" {
		t.Fatalf("body = %q", got)
	}
}

func TestRender_ErrorUsesErrorFallback(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/boom", &render.Module{
		Render: func(ctx *render.Context, dest *render.Destination) (*render.Response, error) {
			return nil, io.ErrUnexpectedEOF
		},
	})
	reg.Register("pages/500", pageModule("something broke"))
	m := testManifest(
		routing.NewRoute("/boom", routing.RoutePage, "pages/boom"),
		routing.NewRoute("/500", routing.RoutePage, "pages/500"),
	)
	app := testApp(t, m, reg, nil)

	resp := app.Render(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if resp.Status() != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.Status())
	}
	body, err := resp.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(body) != "something broke" {
		t.Fatalf("body = %q", body)
	}
}

func TestRender_FallbackMergesOriginalStatusAndHeaders(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/gone", &render.Module{
		Render: func(ctx *render.Context, dest *render.Destination) (*render.Response, error) {
			resp := render.NewResponse(http.StatusNotFound)
			resp.SetHeader("X-Reason", "expired")
			return resp, nil
		},
	})
	reg.Register("pages/404", pageModule("not here"))
	m := testManifest(
		routing.NewRoute("/gone", routing.RoutePage, "pages/gone"),
		routing.NewRoute("/404", routing.RoutePage, "pages/404"),
	)
	app := testApp(t, m, reg, nil)

	resp := app.Render(httptest.NewRequest(http.MethodGet, "/gone", nil))
	if resp.Status() != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Status())
	}
	if got := resp.Header().Get("X-Reason"); got != "expired" {
		t.Fatalf("X-Reason = %q, want expired", got)
	}
	body, _ := resp.Bytes()
	if string(body) != "not here" {
		t.Fatalf("body = %q, want fallback body", body)
	}
}

func TestRender_FallbackPageRenderingItselfIsNotRecursed(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/404", pageModule("the 404 page"))
	m := testManifest(routing.NewRoute("/404", routing.RoutePage, "pages/404"))
	app := testApp(t, m, reg, nil)

	// Requesting /404 directly renders the page once; its 200 status is
	// whatever the page produced.
	resp := app.Render(httptest.NewRequest(http.MethodGet, "/404", nil))
	body, _ := resp.Bytes()
	if string(body) != "the 404 page" {
		t.Fatalf("body = %q", body)
	}
}

func TestServeHTTP_Endpoint(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/api/health", &render.Module{
		Handlers: map[string]render.EndpointHandler{
			http.MethodGet: func(ctx *render.Context) (any, error) {
				return map[string]string{"status": "ok"}, nil
			},
		},
	})
	m := testManifest(routing.NewRoute("/api/health", routing.RouteEndpoint, "pages/api/health"))
	app := testApp(t, m, reg, nil)

	t.Run("json body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("Content-Type = %q", ct)
		}
		if got := rec.Body.String(); got != `{"status":"ok"}` {
			t.Fatalf("body = %q", got)
		}
	})

	t.Run("missing method is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/health", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestServeHTTP_StreamedOutputThenError(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/stream", &render.Module{
		Render: func(ctx *render.Context, dest *render.Destination) (*render.Response, error) {
			if err := dest.Write(render.SafeHTML("<head></head>")); err != nil {
				return nil, err
			}
			return ctx.Redirect("/elsewhere", http.StatusFound)
		},
	})
	m := testManifest(routing.NewRoute("/stream", routing.RoutePage, "pages/stream"))
	app := testApp(t, m, reg, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	// The stream already started, so the redirect cannot take effect; the
	// partial output stands and no second status line is written.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "<head></head>" {
		t.Fatalf("body = %q", got)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Fatalf("Location = %q, want empty", loc)
	}
}

func TestServeHTTP_PrerenderedPassThrough(t *testing.T) {
	out := t.TempDir()
	if err := os.MkdirAll(filepath.Join(out, "about"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(out, "about", "index.html"), []byte("<p>built</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	about := routing.NewRoute("/about", routing.RoutePage, "pages/about")
	about.Prerender = true
	m := testManifest(about)
	app := testApp(t, m, manifest.NewRegistry(), func(cfg *Config) { cfg.OutDir = out })

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "<p>built</p>" {
		t.Fatalf("body = %q", got)
	}
}

func TestServeHTTP_BasePrefix(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/index", pageModule("docs home"))
	m := testManifest(routing.NewRoute("/", routing.RoutePage, "pages/index"))
	app := testApp(t, m, reg, func(cfg *Config) { cfg.Base = "/docs" })

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "docs home" {
		t.Fatalf("body = %q", got)
	}
}

func TestMatch_AssetPathsNeverMatch(t *testing.T) {
	catchAll := routing.NewRoute("/[...slug]", routing.RoutePage, "pages/catchall")
	m := testManifest(catchAll)
	m.AssetFiles = []string{"/favicon.ico"}
	app := testApp(t, m, manifest.NewRegistry(), nil)

	if got := app.Match("/favicon.ico"); got != nil {
		t.Fatalf("Match(/favicon.ico) = %v, want nil", got)
	}
	if got := app.Match("/anything/else"); got != catchAll {
		t.Fatalf("Match(/anything/else) = %v, want catch-all", got)
	}
}

func TestUse_MiddlewareShortCircuit(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/index", pageModule("never rendered"))
	m := testManifest(routing.NewRoute("/", routing.RoutePage, "pages/index"))
	app := testApp(t, m, reg, func(cfg *Config) { cfg.Streaming = false })

	app.Use(func(ctx *render.Context, next render.NextFunc) (*render.Response, error) {
		if ctx.Request.Header.Get("Authorization") == "" {
			return render.Redirect("/login", http.StatusFound), nil
		}
		return next()
	})

	t.Run("short circuit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Fatalf("Location = %q", loc)
		}
	})

	t.Run("pass through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := rec.Body.String(); got != "never rendered" {
			t.Fatalf("body = %q", got)
		}
	})
}

func TestRender_LocalsFlowToHandlers(t *testing.T) {
	reg := manifest.NewRegistry()
	reg.Register("pages/api/me", &render.Module{
		Handlers: map[string]render.EndpointHandler{
			http.MethodGet: func(ctx *render.Context) (any, error) {
				user, _ := ctx.Locals["user"].(string)
				return user, nil
			},
		},
	})
	m := testManifest(routing.NewRoute("/api/me", routing.RouteEndpoint, "pages/api/me"))
	app := testApp(t, m, reg, nil)

	resp := app.Render(
		httptest.NewRequest(http.MethodGet, "/api/me", nil),
		WithLocals(map[string]any{"user": "ada"}),
	)
	body, err := resp.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(body) != "ada" {
		t.Fatalf("body = %q, want ada", body)
	}
}
