package strata

import (
	"testing"

	"github.com/strataframe/strata/pkg/render"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != render.ModeProduction {
		t.Fatalf("Mode = %q", cfg.Mode)
	}
	if !cfg.Streaming {
		t.Fatal("Streaming disabled by default")
	}
	if cfg.Base != "/" {
		t.Fatalf("Base = %q", cfg.Base)
	}
	if cfg.OutDir != "dist" {
		t.Fatalf("OutDir = %q", cfg.OutDir)
	}
	if cfg.Static.CacheControl != CacheControlProduction {
		t.Fatalf("Static.CacheControl = %v", cfg.Static.CacheControl)
	}
}

func TestConfigEnvironment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Site = "https://example.com"
	env := cfg.environment(nil)

	if env.Site != "https://example.com" {
		t.Fatalf("Site = %q", env.Site)
	}
	if env.Generator != Generator {
		t.Fatalf("Generator = %q", env.Generator)
	}
	if !env.SSR {
		t.Fatal("SSR not set")
	}
	if env.Cache == nil {
		t.Fatal("route cache not initialized")
	}
	if env.ResolveAsset == nil || env.ResolveAsset("/a.css") != "/a.css" {
		t.Fatal("ResolveAsset default should be identity")
	}
}
