package utils

import (
	"regexp"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes s match literally inside a LIKE pattern that uses backslash as escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern builds a LIKE pattern matching names that contain s anywhere.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}

// MatchLike evaluates a SQL LIKE pattern against s case-sensitively, rune by rune.
// % matches any run, _ matches one rune and \ escapes the next rune. Both inputs are
// expected to be valid UTF-8; invalid bytes in the pattern read as U+FFFD.
func MatchLike(pattern, s string) bool {
	return CompileLike(pattern).MatchString(s)
}

// CompileLike turns a LIKE pattern into an anchored regular expression.
func CompileLike(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(`.*`)
		case r == '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		b.WriteString(regexp.QuoteMeta(`\`))
	}
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}
