// Package render executes a matched route's handler and produces an HTTP
// response, for both live (SSR) requests and build-time static generation.
//
// The package owns three pieces of the request path:
//
//   - Context: the per-request bundle of request, route, params, and asset
//     metadata handed to a page or endpoint module.
//   - Destination: the incremental output sink pages write HTML into,
//     backed by a buffer (static builds, non-streaming adapters) or the
//     live transport (SSR streaming).
//   - TryRenderRoute: the core pipeline that runs middleware, dispatches by
//     route type, and enforces the single-write invariant. Once the first
//     body byte reaches the transport the response is sealed; any further
//     mutation or re-read fails with ErrAlreadySent.
//
// Values written into a Destination are a closed set of Renderable
// variants. Plain Text is HTML-escaped on the way out; SafeHTML passes
// through untouched, so only compiler-emitted markup can inject raw HTML.
//
// # Security
//
// All interpolated text is escaped by default to prevent XSS. SafeHTML
// should only wrap trusted, compiler-produced markup.
package render
