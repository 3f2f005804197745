// Package build drives static generation.
//
// The builder walks every prerenderable route in the manifest, enumerates
// its concrete paths, renders each one through the same pipeline the live
// server uses, and persists the output through an OutputStore. Redirect
// responses become small meta-refresh HTML documents so hosts without
// server-side redirect support still work.
//
// A BuildSession tracks what one build run has written. Two routes can map
// to the same on-disk path (a static route shadowing a dynamic one); the
// session resolves those collisions with the matcher's priority rule and
// skips the loser.
package build
