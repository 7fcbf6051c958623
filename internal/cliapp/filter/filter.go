// Package filter applies a server entry's allow/deny glob lists to the
// tools that server advertises. spec.md §1 calls glob matching out as an
// explicit external collaborator needing "no hard engineering"; no pack
// example reaches for a dedicated glob library for this shape of pattern,
// so this stays on the standard library's path/filepath.Match (see
// DESIGN.md for the stdlib-over-library justification).
package filter

import "path/filepath"

// Allowed reports whether name passes the allow/deny glob lists. An empty
// allow list allows everything except what deny matches; a non-empty allow
// list requires a match there too, and deny is still checked afterward so
// an operator can carve an exception out of a broad allow pattern.
func Allowed(name string, allow, deny []string) bool {
	if len(allow) > 0 && !matchesAny(name, allow) {
		return false
	}
	if matchesAny(name, deny) {
		return false
	}
	return true
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Tools filters a slice of tool names in place order, keeping only the
// ones Allowed passes.
func Tools(names []string, allow, deny []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if Allowed(n, allow, deny) {
			out = append(out, n)
		}
	}
	return out
}
