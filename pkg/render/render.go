// Package render implements the {{placeholder}} substitution used by message
// templates. It is deliberately dumb: no conditionals, no escaping, no error
// paths. A missing binding leaves the token in place so a half-configured
// template still produces sendable output that is easy to spot.
package render

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// Render substitutes every {{key}} token in text with bindings[key].
// Tokens without a binding are left untouched. Pure and idempotent as long
// as binding values do not themselves contain tokens.
func Render(text string, bindings map[string]string) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := tokenPattern.FindStringSubmatch(token)[1]
		if value, ok := bindings[key]; ok {
			return value
		}
		return token
	})
}

// Placeholders returns the distinct placeholder names in text, in order of
// first appearance.
func Placeholders(text string) []string {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// UnresolvedTokens returns the placeholder names still present in rendered
// output. Non-empty means the caller supplied incomplete bindings.
func UnresolvedTokens(rendered string) []string {
	return Placeholders(rendered)
}
