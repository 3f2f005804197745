package render

import (
	"log/slog"

	"github.com/strataframe/strata/pkg/routing"
)

// Mode distinguishes development from production behavior.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Environment is the per-process rendering configuration, shared read-only
// across every render call in one server boot or static-build run.
type Environment struct {
	// Mode selects development or production behavior.
	Mode Mode

	// Streaming enables chunked output on the live server.
	Streaming bool

	// SSR is false for fully static sites.
	SSR bool

	// Site is the canonical site URL, "" when unset.
	Site string

	// Generator is the value pages expose in their generator meta tag.
	Generator string

	// Logger receives render-time diagnostics.
	Logger *slog.Logger

	// ResolveAsset maps a source asset path to its served URL.
	ResolveAsset func(string) string

	// Cache memoizes static-path enumeration across requests.
	Cache *routing.Cache
}

func (e *Environment) logger() *slog.Logger {
	if e != nil && e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// EnumerateStaticPaths returns the concrete paths for a prerenderable
// route, memoized in the environment's route cache. Routes without a
// static-path export produce their single fixed pathname.
func EnumerateStaticPaths(ctx *Context, env *Environment, mod *Module) ([]routing.StaticPath, error) {
	if env.Cache != nil {
		if paths, ok := env.Cache.Get(ctx.Route); ok {
			return paths, nil
		}
	}

	var paths []routing.StaticPath
	if mod == nil || mod.StaticPaths == nil {
		paths = []routing.StaticPath{{}}
	} else {
		var err error
		paths, err = mod.StaticPaths(ctx)
		if err != nil {
			return nil, err
		}
	}

	if env.Cache != nil {
		env.Cache.Set(ctx.Route, paths)
	}
	return paths, nil
}
