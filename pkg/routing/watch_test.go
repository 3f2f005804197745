package routing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()

	cache := NewCache()
	route := NewRoute("/blog/[slug]", RoutePage, "pages/blog")
	cache.Set(route, []StaticPath{{Params: map[string]string{"slug": "a"}}})

	resolve := func(path string) string {
		if strings.HasSuffix(path, "blog.page") {
			return "pages/blog"
		}
		return ""
	}

	w, err := NewWatcher(cache, resolve, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "blog.page"), []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for cache.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("cache entry not invalidated after file change")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcher_IgnoresUnresolvedFiles(t *testing.T) {
	dir := t.TempDir()

	cache := NewCache()
	route := NewRoute("/", RoutePage, "pages/index")
	cache.Set(route, []StaticPath{{}})

	w, err := NewWatcher(cache, func(string) string { return "" }, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
	if cache.Len() != 1 {
		t.Fatalf("cache.Len() = %d, want untouched entry", cache.Len())
	}
}
