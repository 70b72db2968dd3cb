package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GenerateSlug converts a display name into a URL-safe slug: lowercase,
// only [a-z0-9] kept, runs of whitespace and hyphens joined by a single
// hyphen, no leading or trailing hyphen. "Men's Clothing & Shoes" becomes
// "mens-clothing-shoes".
func GenerateSlug(name string) string {
	lower := cases.Lower(language.Und).String(name)

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || isSeparatorSpace(r):
			pendingHyphen = true
		default:
			// dropped characters do not split a separator run
		}
	}
	return b.String()
}

// isSeparatorSpace reports whether r is whitespace for slug purposes: the
// Unicode White_Space set plus the byte order mark U+FEFF, minus U+0085.
func isSeparatorSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}
