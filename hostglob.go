package linkcheck

import (
	"net/url"

	"github.com/gobwas/glob"
)

// Matcher classifies a URL as internal or external against a set of
// host+path-prefix glob patterns, e.g. "http://example.com/guides**".
type Matcher struct {
	globs []glob.Glob
}

// NewMatcher compiles the given patterns. A malformed pattern is
// skipped rather than failing the whole matcher, since a single typo'd
// seed-derived glob should not abort the crawl.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			continue
		}
		m.globs = append(m.globs, g)
	}
	return m
}

// SeedGlob builds the implicit "<seed>**" pattern a seed contributes
// when the caller supplies no explicit host-globs.
func SeedGlob(seed string) string {
	return seed + "**"
}

// MatchesAsInternal reports whether u matches any configured glob.
func (m *Matcher) MatchesAsInternal(u *url.URL) bool {
	if u == nil {
		return false
	}
	s := u.String()
	for _, g := range m.globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}
