// Package routing holds the compiled route table and the matcher.
//
// A Route is compiled once (at build time or dev-server startup) from a
// file-routing pattern such as "/blog/[slug]" or "/docs/[...path]" and is
// immutable afterwards. Match resolves a request pathname to the single
// best route using a deterministic specificity comparator, so overlapping
// routes always dispatch the same way regardless of table order.
//
// The Cache memoizes per-route static-path enumeration across dev-server
// requests; a Watcher built on fsnotify drops entries when the backing
// source files change.
package routing
