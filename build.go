package strata

import (
	"context"
	"time"

	"github.com/strataframe/strata/internal/build"
)

// OutputStore persists built files; see internal/build for the disk and S3
// implementations used by the CLI.
type OutputStore interface {
	Put(ctx context.Context, name string, body []byte) error
}

// BuildOptions configures one static generation run.
type BuildOptions struct {
	// OutDir overrides the configured output directory. Ignored when
	// Store is set.
	OutDir string

	// Store receives the built files. Defaults to a disk store at OutDir.
	Store OutputStore

	// Format is "directory" or "file" (default: "directory").
	Format string

	// Concurrency bounds parallel page generation (default: NumCPU).
	Concurrency int

	// EmitRedirects controls whether redirect routes produce meta-refresh
	// HTML files.
	EmitRedirects bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// DefaultBuildOptions returns the standard build options.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{EmitRedirects: true}
}

// BuildResult summarizes one static generation run.
type BuildResult struct {
	Duration  time.Duration
	Pages     int
	Redirects int
	Skipped   int
}

// Build statically generates every prerenderable route in the app's
// manifest, rendering through the same pipeline the live server uses.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	store := opts.Store
	if store == nil {
		dir := opts.OutDir
		if dir == "" {
			dir = a.config.OutDir
		}
		disk, err := build.NewDiskStore(dir)
		if err != nil {
			return nil, err
		}
		store = disk
	}

	builder := build.New(a.manifest, a.loader, a.env, store, build.Options{
		Format:        build.Format(opts.Format),
		Concurrency:   opts.Concurrency,
		EmitRedirects: opts.EmitRedirects,
		OnProgress:    opts.OnProgress,
	})

	result, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	return &BuildResult{
		Duration:  result.Duration,
		Pages:     result.Pages,
		Redirects: result.Redirects,
		Skipped:   result.Skipped,
	}, nil
}
