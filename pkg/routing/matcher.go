package routing

import "strings"

// Match finds the single best-matching route for a pathname.
//
// Every route whose full pattern matches is a candidate; the best candidate
// wins by specificity (static outranks dynamic outranks rest at the same
// position, fewer rest segments outrank more) with route-table declaration
// order as the final tie-break. No match returns nil, never an error.
func Match(pathname string, routes []*Route) *Route {
	parts := splitPath(pathname)

	var best *Route
	for _, route := range routes {
		if !patternMatches(route.Pattern, parts) {
			continue
		}
		if best == nil || compareSpecificity(route, best) < 0 {
			best = route
		}
	}
	return best
}

// MatchAll returns every matching route ordered best-first.
// Used by the static builder to resolve output-path collisions.
func MatchAll(pathname string, routes []*Route) []*Route {
	parts := splitPath(pathname)

	var matched []*Route
	for _, route := range routes {
		if patternMatches(route.Pattern, parts) {
			matched = append(matched, route)
		}
	}
	// Insertion sort keeps declaration order for equal specificity.
	for i := 1; i < len(matched); i++ {
		for j := i; j > 0 && compareSpecificity(matched[j], matched[j-1]) < 0; j-- {
			matched[j], matched[j-1] = matched[j-1], matched[j]
		}
	}
	return matched
}

// Params extracts the named parameters from a pathname against a route.
// Rest segments capture the joined remainder. The pathname must match.
func Params(route *Route, pathname string) map[string]string {
	parts := splitPath(pathname)
	params := make(map[string]string)
	for i, seg := range route.Pattern {
		switch seg.Kind {
		case SegmentDynamic:
			if i < len(parts) {
				params[seg.Value] = parts[i]
			}
		case SegmentRest:
			if i <= len(parts) {
				params[seg.Value] = strings.Join(parts[i:], "/")
			} else {
				params[seg.Value] = ""
			}
			return params
		}
	}
	return params
}

// patternMatches reports whether pattern matches the split pathname.
// Static segments compare exactly, dynamic segments need one non-empty
// part, and a rest segment absorbs whatever remains (including nothing).
func patternMatches(pattern []Segment, parts []string) bool {
	for i, seg := range pattern {
		switch seg.Kind {
		case SegmentRest:
			return true
		case SegmentDynamic:
			if i >= len(parts) || parts[i] == "" {
				return false
			}
		default:
			if i >= len(parts) || parts[i] != seg.Value {
				return false
			}
		}
	}
	return len(parts) == len(pattern)
}

// segmentRank orders segment kinds by specificity.
func segmentRank(k SegmentKind) int {
	switch k {
	case SegmentStatic:
		return 0
	case SegmentDynamic:
		return 1
	default:
		return 2
	}
}

// MoreSpecific reports whether a strictly outranks b under the matcher's
// priority rule. Equally specific routes report false both ways, leaving
// declaration order in charge.
func MoreSpecific(a, b *Route) bool {
	return compareSpecificity(a, b) < 0
}

// compareSpecificity returns a negative value when a outranks b.
// Zero means equally specific; the caller falls back to declaration order.
func compareSpecificity(a, b *Route) int {
	n := len(a.Pattern)
	if len(b.Pattern) < n {
		n = len(b.Pattern)
	}
	for i := 0; i < n; i++ {
		if d := segmentRank(a.Pattern[i].Kind) - segmentRank(b.Pattern[i].Kind); d != 0 {
			return d
		}
	}
	if d := a.restCount() - b.restCount(); d != 0 {
		return d
	}
	// More segments resolve more of the path before any rest absorption.
	return len(b.Pattern) - len(a.Pattern)
}
