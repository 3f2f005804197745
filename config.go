package strata

import (
	"log/slog"

	"github.com/strataframe/strata/pkg/render"
	"github.com/strataframe/strata/pkg/routing"
)

// CacheControlMode selects the cache headers applied to static files.
type CacheControlMode int

const (
	// CacheControlNone disables caching. Useful in development.
	CacheControlNone CacheControlMode = iota

	// CacheControlProduction caches fingerprinted files as immutable and
	// everything else with short revalidation.
	CacheControlProduction
)

// StaticConfig configures static file pass-through.
type StaticConfig struct {
	// Dir is the directory containing deployed static files.
	Dir string

	// Prefix is the URL prefix static files are served under.
	Prefix string

	// CacheControl selects the caching strategy.
	CacheControl CacheControlMode

	// Headers are extra headers applied to every static response.
	Headers map[string]string
}

// Config configures an App.
type Config struct {
	// Mode selects development or production behavior.
	Mode render.Mode

	// Streaming enables chunked HTML output on the live server.
	Streaming bool

	// Site is the canonical site URL, "" when unset.
	Site string

	// Base is the path prefix the site is served under.
	Base string

	// OutDir is the built output directory holding prerendered pages.
	OutDir string

	// Static configures static file pass-through.
	Static StaticConfig

	// Logger receives server diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Generator is the value exposed by pages in their generator meta tag.
const Generator = "Strata v1"

// DefaultConfig returns a production configuration.
func DefaultConfig() Config {
	return Config{
		Mode:      render.ModeProduction,
		Streaming: true,
		Base:      "/",
		OutDir:    "dist",
		Static: StaticConfig{
			Prefix:       "/",
			CacheControl: CacheControlProduction,
		},
	}
}

// environment builds the shared per-process rendering environment.
func (cfg Config) environment(resolveAsset func(string) string) *render.Environment {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if resolveAsset == nil {
		resolveAsset = func(s string) string { return s }
	}
	return &render.Environment{
		Mode:         cfg.Mode,
		Streaming:    cfg.Streaming,
		SSR:          true,
		Site:         cfg.Site,
		Generator:    Generator,
		Logger:       logger,
		ResolveAsset: resolveAsset,
		Cache:        routing.NewCache(),
	}
}
