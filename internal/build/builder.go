package build

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strataframe/strata/internal/errors"
	"github.com/strataframe/strata/pkg/manifest"
	"github.com/strataframe/strata/pkg/render"
	"github.com/strataframe/strata/pkg/routing"
)

// Result summarizes one build run.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Pages is the number of page and endpoint files written.
	Pages int

	// Redirects is the number of redirect stand-in files written.
	Redirects int

	// Skipped is the number of path collisions resolved against a route.
	Skipped int
}

// Options configures the builder.
type Options struct {
	// Format selects directory or file output (default: directory).
	Format Format

	// Concurrency bounds parallel page generation (default: NumCPU).
	Concurrency int

	// EmitRedirects controls whether redirect routes produce meta-refresh
	// HTML files. When false, pure redirect routes write nothing.
	EmitRedirects bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// DefaultOptions returns the standard build options.
func DefaultOptions() Options {
	return Options{
		Format:        FormatDirectory,
		Concurrency:   runtime.NumCPU(),
		EmitRedirects: true,
	}
}

// Builder renders every prerenderable route to the output store.
type Builder struct {
	manifest *manifest.Manifest
	loader   manifest.ComponentLoader
	env      *render.Environment
	store    OutputStore
	options  Options
	logger   *slog.Logger
}

// New creates a builder.
func New(m *manifest.Manifest, loader manifest.ComponentLoader, env *render.Environment, store OutputStore, options Options) *Builder {
	if options.Format == "" {
		options.Format = FormatDirectory
	}
	if options.Concurrency <= 0 {
		options.Concurrency = runtime.NumCPU()
	}
	logger := slog.Default()
	if env != nil && env.Logger != nil {
		logger = env.Logger
	}
	return &Builder{
		manifest: m,
		loader:   loader,
		env:      env,
		store:    store,
		options:  options,
		logger:   logger,
	}
}

// job is one concrete path of one route.
type job struct {
	route    *routing.Route
	pathname string
	props    map[string]any
}

// Build renders all prerenderable routes. The first render error aborts
// the whole run.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	jobs, err := b.enumerate(ctx)
	if err != nil {
		return nil, err
	}

	session := NewSession(b.store, b.logger)
	var pages, redirects, skipped atomic.Int64

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		failOnce sync.Once
		buildErr error
	)
	fail := func(err error) {
		failOnce.Do(func() {
			buildErr = err
			cancel()
		})
	}

	jobCh := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < b.options.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if runCtx.Err() != nil {
					continue
				}
				outcome, err := b.buildPath(runCtx, session, j)
				if err != nil {
					fail(err)
					continue
				}
				switch outcome {
				case wrotePage:
					pages.Add(1)
				case wroteRedirect:
					redirects.Add(1)
				case skippedCollision:
					skipped.Add(1)
				}
			}
		}()
	}

feed:
	for _, j := range jobs {
		select {
		case jobCh <- j:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobCh)
	wg.Wait()

	if buildErr != nil {
		return nil, buildErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Duration:  time.Since(start),
		Pages:     int(pages.Load()),
		Redirects: int(redirects.Load()),
		Skipped:   int(skipped.Load()),
	}, nil
}

// enumerate expands every prerenderable route into concrete paths, in
// route declaration order.
func (b *Builder) enumerate(ctx context.Context) ([]job, error) {
	var jobs []job
	for _, route := range b.manifest.Routes {
		if !route.Prerender {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var mod *render.Module
		if route.Component != "" {
			var err error
			mod, err = b.loader.Load(route.Component)
			if err != nil {
				return nil, err
			}
		}

		b.progress("Enumerating " + patternString(route))
		pctx := render.NewContext(render.ContextOptions{
			Pathname:  route.Pathname,
			Route:     route,
			Site:      b.env.Site,
			Generator: b.env.Generator,
			Logger:    b.logger,
		})
		paths, err := render.EnumerateStaticPaths(pctx, b.env, mod)
		if err != nil {
			return nil, errors.New("S101").WithDetail("enumerating paths for %q", patternString(route)).Wrap(err)
		}

		for _, sp := range paths {
			pathname, err := PathnameFor(route, sp.Params)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job{route: route, pathname: pathname, props: sp.Props})
		}
	}
	return jobs, nil
}

type pathOutcome int

const (
	wrotePage pathOutcome = iota
	wroteRedirect
	skippedCollision
	wroteNothing
)

// buildPath renders one concrete path and persists its output.
func (b *Builder) buildPath(ctx context.Context, session *BuildSession, j job) (pathOutcome, error) {
	name := OutputPath(j.pathname, j.route, b.options.Format)
	if !session.Claim(name, j.route) {
		b.logger.Warn("skipping collision", "path", name, "route", patternString(j.route))
		return skippedCollision, nil
	}

	resp, err := b.renderPath(ctx, j)
	if err != nil {
		return wroteNothing, err
	}

	if resp.IsRedirect() {
		if !b.options.EmitRedirects {
			return wroteNothing, nil
		}
		location := resp.Header().Get("Location")
		if location == "" {
			return wroteNothing, errors.New("S202").WithDetail("prerendering %q", j.pathname)
		}
		body := redirectHTML(j.pathname, location, resp.Status())
		if err := session.Write(ctx, name, body); err != nil {
			return wroteNothing, err
		}
		return wroteRedirect, nil
	}

	body, err := resp.Bytes()
	if err != nil {
		return wroteNothing, err
	}
	if err := session.Write(ctx, name, body); err != nil {
		return wroteNothing, err
	}
	b.progress("Built " + j.pathname)
	return wrotePage, nil
}

// renderPath runs one path through the pipeline with a synthetic request.
func (b *Builder) renderPath(ctx context.Context, j job) (*render.Response, error) {
	assets, err := b.manifest.AssetsFor(j.route)
	if err != nil {
		return nil, err
	}

	var mod *render.Module
	if j.route.Component != "" {
		mod, err = b.loader.Load(j.route.Component)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.pathname, nil)
	if err != nil {
		return nil, err
	}

	rctx := render.NewContext(render.ContextOptions{
		Request:   req,
		Pathname:  j.pathname,
		Route:     j.route,
		Props:     j.props,
		Scripts:   assets.Scripts,
		Styles:    assets.Styles,
		Links:     assets.Links,
		Site:      b.env.Site,
		Generator: b.env.Generator,
		Logger:    b.logger,
	})
	return render.TryRenderRoute(rctx, b.env, mod)
}

func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}
