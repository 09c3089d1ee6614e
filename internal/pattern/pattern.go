// Package pattern implements the wildcard matching used by the mapping store.
//
// A pattern matches a text only when it covers the whole text. The single
// metacharacter is '*', which stands for any run of characters (including
// none and including newlines). Every other character is literal and
// case-sensitive; there is no escape syntax.
package pattern

import (
	"regexp"
	"strings"
)

// Wildcard is the only metacharacter a pattern understands.
const Wildcard = "*"

// Pattern is a compiled wildcard pattern.
type Pattern struct {
	source string
	re     *regexp.Regexp
}

// Compile turns a wildcard pattern into a matcher. It never fails: any
// character other than '*' is quoted before compilation.
func Compile(pattern string) *Pattern {
	parts := strings.Split(pattern, Wildcard)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return &Pattern{
		source: pattern,
		re:     regexp.MustCompile(`(?s)^` + strings.Join(parts, `.*`) + `$`),
	}
}

// Match reports whether the pattern covers all of text.
func (p *Pattern) Match(text string) bool {
	return p.re.MatchString(text)
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	return p.source
}

// Match compiles pattern and matches it against text in one step.
func Match(pattern, text string) bool {
	return Compile(pattern).Match(text)
}
