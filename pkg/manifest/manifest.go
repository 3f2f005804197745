// Package manifest holds the serialized, deploy-time snapshot of the site:
// the compiled route table, the per-route asset side-table, entry-module
// mappings, and site-level settings. A deployed server loads it once at
// startup and treats it as read-only afterwards.
package manifest

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/strataframe/strata/internal/errors"
	"github.com/strataframe/strata/pkg/render"
	"github.com/strataframe/strata/pkg/routing"
)

// RouteAssets is the side-table entry mapping one route to its concrete
// scripts and styles, in declared CSS order then component traversal order.
type RouteAssets struct {
	Scripts []render.Script `json:"scripts,omitempty"`
	Styles  []render.Link   `json:"styles,omitempty"`
	Links   []render.Link   `json:"links,omitempty"`
}

// RendererInfo declares a framework component renderer's entry points.
type RendererInfo struct {
	Name             string `json:"name"`
	ClientEntrypoint string `json:"clientEntrypoint,omitempty"`
	ServerEntrypoint string `json:"serverEntrypoint,omitempty"`
}

// MarkdownSettings carries the markdown configuration pages render with.
type MarkdownSettings struct {
	SyntaxHighlight string `json:"syntaxHighlight,omitempty"`
	Drafts          bool   `json:"drafts,omitempty"`
}

// Manifest is the in-memory deploy snapshot.
type Manifest struct {
	// Base is the path prefix the site is served under.
	Base string

	// Site is the canonical site URL, "" when unset.
	Site string

	// Routes is the compiled route table in declaration order.
	Routes []*routing.Route

	// Assets maps component ids to their script/style sets.
	Assets map[string]*RouteAssets

	// EntryModules maps component ids to built module file paths.
	EntryModules map[string]string

	// AssetFiles is the set of deployed static asset paths. Requests to
	// these paths never reach the route matcher.
	AssetFiles []string

	// Renderers lists the configured component renderers.
	Renderers []RendererInfo

	// Markdown is the markdown configuration.
	Markdown MarkdownSettings

	// ClientDirectives maps directive names to their client scripts.
	ClientDirectives map[string]string

	assetOnce sync.Once
	assetSet  map[string]bool
}

// AssetsFor returns the side-table entry for a route. A page route with no
// entry indicates a build/deploy mismatch and raises a config error.
func (m *Manifest) AssetsFor(route *routing.Route) (*RouteAssets, error) {
	if a, ok := m.Assets[route.Component]; ok {
		return a, nil
	}
	if route.Type == routing.RoutePage {
		return nil, errors.New("S203").WithDetail("component %q", route.Component)
	}
	return &RouteAssets{}, nil
}

// IsAssetPath reports whether a request path names a deployed static asset.
// Safe for concurrent use; the lookup set is built once on first call.
func (m *Manifest) IsAssetPath(pathname string) bool {
	m.assetOnce.Do(func() {
		m.assetSet = make(map[string]bool, len(m.AssetFiles))
		for _, f := range m.AssetFiles {
			m.assetSet[f] = true
		}
	})
	return m.assetSet[pathname]
}

// serializedRoute is the wire form of a route. Redirect targets are
// referenced by pathname and relinked after decoding, so pattern segments
// are reconstructed rather than re-derived.
type serializedRoute struct {
	Pattern        []routing.Segment `json:"pattern"`
	Component      string            `json:"component,omitempty"`
	Type           routing.RouteType `json:"type"`
	Prerender      bool              `json:"prerender,omitempty"`
	Pathname       string            `json:"pathname,omitempty"`
	Redirect       string            `json:"redirect,omitempty"`
	RedirectStatus int               `json:"redirectStatus,omitempty"`
}

type serializedManifest struct {
	Base             string                  `json:"base,omitempty"`
	Site             string                  `json:"site,omitempty"`
	Routes           []serializedRoute       `json:"routes"`
	Assets           map[string]*RouteAssets `json:"assets,omitempty"`
	EntryModules     map[string]string       `json:"entryModules,omitempty"`
	AssetFiles       []string                `json:"assetFiles,omitempty"`
	Renderers        []RendererInfo          `json:"renderers,omitempty"`
	Markdown         MarkdownSettings        `json:"markdown,omitempty"`
	ClientDirectives map[string]string       `json:"clientDirectives,omitempty"`
}

// Serialize encodes the manifest for deployment.
func (m *Manifest) Serialize() ([]byte, error) {
	sm := serializedManifest{
		Base:             m.Base,
		Site:             m.Site,
		Assets:           m.Assets,
		EntryModules:     m.EntryModules,
		AssetFiles:       m.AssetFiles,
		Renderers:        m.Renderers,
		Markdown:         m.Markdown,
		ClientDirectives: m.ClientDirectives,
	}
	for _, route := range m.Routes {
		sr := serializedRoute{
			Pattern:        route.Pattern,
			Component:      route.Component,
			Type:           route.Type,
			Prerender:      route.Prerender,
			Pathname:       route.Pathname,
			RedirectStatus: route.RedirectStatus,
		}
		if route.RedirectRoute != nil {
			sr.Redirect = route.RedirectRoute.Pathname
		}
		sm.Routes = append(sm.Routes, sr)
	}
	return json.MarshalIndent(sm, "", "  ")
}

// Parse decodes a serialized manifest and relinks redirect targets.
func Parse(data []byte) (*Manifest, error) {
	var sm serializedManifest
	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, errors.Newf(errors.CategoryConfig, "manifest is not valid JSON").Wrap(err)
	}

	m := &Manifest{
		Base:             sm.Base,
		Site:             sm.Site,
		Assets:           sm.Assets,
		EntryModules:     sm.EntryModules,
		AssetFiles:       sm.AssetFiles,
		Renderers:        sm.Renderers,
		Markdown:         sm.Markdown,
		ClientDirectives: sm.ClientDirectives,
	}

	byPathname := make(map[string]*routing.Route)
	for _, sr := range sm.Routes {
		route := &routing.Route{
			Pattern:        sr.Pattern,
			Component:      sr.Component,
			Type:           sr.Type,
			Prerender:      sr.Prerender,
			Pathname:       sr.Pathname,
			RedirectStatus: sr.RedirectStatus,
		}
		m.Routes = append(m.Routes, route)
		if route.Pathname != "" {
			byPathname[route.Pathname] = route
		}
	}
	for i, sr := range sm.Routes {
		if sr.Redirect == "" {
			continue
		}
		if target, ok := byPathname[sr.Redirect]; ok {
			m.Routes[i].RedirectRoute = target
		} else {
			// External or unrouted destination: keep it as a bare target.
			m.Routes[i].RedirectRoute = &routing.Route{Pathname: sr.Redirect}
		}
	}
	return m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Newf(errors.CategoryConfig, "cannot read manifest %q", path).Wrap(err)
	}
	return Parse(data)
}

// RouteByPathname finds the route with the given fixed pathname.
func (m *Manifest) RouteByPathname(pathname string) *routing.Route {
	for _, route := range m.Routes {
		if route.Pathname == pathname {
			return route
		}
	}
	return nil
}
