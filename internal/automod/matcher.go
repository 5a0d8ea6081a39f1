package automod

import (
	"regexp"
	"strings"
)

// Matcher checks free text against a denylist using whole-word matching.
// Each term is compiled once into a case-insensitive pattern that requires
// a non-letter, non-digit character (or the string edge) on both sides, so
// a denylisted root never matches inside an unrelated longer word.
type Matcher struct {
	patterns []*regexp.Regexp
}

// NewMatcher compiles the denylist terms. Blank terms are skipped.
func NewMatcher(terms []string) *Matcher {
	patterns := make([]*regexp.Regexp, 0, len(terms))

	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		pattern := `(?i)(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(term) + `(?:[^\p{L}\p{N}]|$)`
		patterns = append(patterns, regexp.MustCompile(pattern))
	}

	return &Matcher{patterns: patterns}
}

// ContainsProfanity reports whether the text contains any denylisted term
// as a standalone word. Returns on the first match.
func (m *Matcher) ContainsProfanity(text string) bool {
	for _, pattern := range m.patterns {
		if pattern.MatchString(text) {
			return true
		}
	}

	return false
}
