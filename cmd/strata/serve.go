package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/strataframe/strata"
	"github.com/strataframe/strata/internal/config"
	"github.com/strataframe/strata/pkg/manifest"
	"github.com/strataframe/strata/pkg/middleware"
	"github.com/strataframe/strata/pkg/render"
	"github.com/strataframe/strata/pkg/routing"
)

func serveCmd() *cobra.Command {
	var (
		dir  string
		addr string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a built site",
		Long: `Serve a built site directory over HTTP.

Prerendered pages are served from the build output, redirect routes are
answered from the manifest, and static files are passed through with
cache headers.

Examples:
  strata serve
  strata serve --dir=./my-site --addr=:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dir, addr, dev)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Site directory containing strata.json")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from strata.json)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode: no caching, debug logging")

	return cmd
}

func runServe(dir, addr string, dev bool) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		return err
	}

	app := newApp(cfg, m, dev)
	app.Use(middleware.Prometheus())

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", app)

	if addr == "" {
		addr = cfg.Address()
	}
	server := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if dev {
		watcher, err := routing.NewWatcher(app.Environment().Cache, componentResolver(m), nil)
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Add(cfg.Dir()); err != nil {
			return err
		}
		go watcher.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	fmt.Printf("  Serving %s on http://%s\n", cfg.Name, addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// componentResolver maps changed file paths to component ids through the
// manifest's entry-module table, so edits drop the right cache entries.
func componentResolver(m *manifest.Manifest) func(path string) string {
	byFile := make(map[string]string, len(m.EntryModules))
	for component, file := range m.EntryModules {
		byFile[file] = component
	}
	return func(path string) string {
		for file, component := range byFile {
			if strings.HasSuffix(path, file) {
				return component
			}
		}
		return ""
	}
}

// newApp assembles the server facade from project configuration. The CLI
// serves deployed artifacts, so pages resolve through the build output
// rather than a module registry; application binaries register their
// compiled modules and construct the App themselves.
func newApp(cfg *config.Config, m *manifest.Manifest, dev bool) *strata.App {
	appCfg := strata.DefaultConfig()
	appCfg.Site = cfg.Site
	appCfg.Base = cfg.Base
	appCfg.Streaming = cfg.Server.Streaming
	appCfg.OutDir = cfg.OutputPath()
	appCfg.Static.Dir = cfg.StaticPath()
	appCfg.Static.Prefix = cfg.Static.Prefix

	level := slog.LevelInfo
	if dev {
		appCfg.Mode = render.ModeDevelopment
		appCfg.Static.CacheControl = strata.CacheControlNone
		level = slog.LevelDebug
	}
	appCfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return strata.New(m, manifest.NewRegistry(), appCfg)
}
