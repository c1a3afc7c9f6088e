// Package slug derives URL-safe identifiers from human-readable titles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	reSpaces  = regexp.MustCompile(`\s+`)
	reHyphens = regexp.MustCompile(`-+`)
)

// Make converts title into a slug: lower-case, accents folded to their base
// letter, anything other than [a-z0-9], whitespace and hyphens removed,
// whitespace runs replaced by one hyphen, hyphen runs collapsed and
// leading/trailing hyphens trimmed.
//
// Make is idempotent: Make(Make(s)) == Make(s).
func Make(title string) string {
	s := strings.ToLower(foldAccents(title))
	s = reInvalid.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(strings.TrimSpace(s), "-")
	s = reHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	return s != "" && Make(s) == s
}

// foldAccents decomposes s and drops combining marks ("Café" → "Cafe").
func foldAccents(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFKD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
