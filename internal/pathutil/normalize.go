// Package pathutil canonicalizes path strings exchanged with clients.
//
// Every path that enters the system goes through Normalize exactly once;
// all downstream comparisons (allowlist checks, selection expansion) operate
// on canonical form only.
package pathutil

import (
	"strings"
	"unicode/utf8"
)

// RelativeRoot is the canonical form of an empty relative path.
const RelativeRoot = "."

// Normalize canonicalizes a raw path string. The second return value is
// false when the input cannot be a filesystem path at all (embedded NUL or
// invalid UTF-8); such entries are dropped by callers, never errored on.
//
// Canonical form: no trailing slash except the absolute root "/", no leading
// "./", empty input maps to ".". Normalize is idempotent and never panics.
func Normalize(raw string) (string, bool) {
	if !utf8.ValidString(raw) || strings.ContainsRune(raw, 0) {
		return "", false
	}

	// Each rule can expose work for an earlier one ("./  x" exposes
	// whitespace, "././x" a second prefix), so run the pass to a fixpoint.
	// Every change shortens the string except the final empty-to-"." step,
	// and "." is stable, so this terminates.
	p := raw
	for {
		next := normalizeOnce(p)
		if next == p {
			return p, true
		}
		p = next
	}
}

func normalizeOnce(p string) string {
	p = strings.TrimSpace(p)
	if p == "/" {
		return "/"
	}
	p = strings.TrimPrefix(p, "./")
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	if p == "" {
		return RelativeRoot
	}
	return p
}

// IsDescendant reports whether path sits strictly below ancestor, using
// canonical-path prefix semantics. The absolute root "/" contains every
// other absolute path.
func IsDescendant(ancestor, path string) bool {
	if ancestor == "/" {
		return path != "/" && strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, ancestor+"/")
}
