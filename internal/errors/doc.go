// Package errors provides structured framework errors for Strata.
//
// Every error carries a stable code, a category, and an optional fix
// suggestion. Categories map to how the error must be handled:
//
//   - routing: no matching route; handled as a 404, never fatal
//   - render:  a page or endpoint failed during rendering; the server
//     facade converts these to the 500 fallback, the static builder
//     aborts the build
//   - config:  manifest or page-map inconsistency; fatal, operator-facing
//   - stream:  an already-sent response was mutated or re-read; a
//     programming mistake surfaced loudly instead of returning stale data
package errors
