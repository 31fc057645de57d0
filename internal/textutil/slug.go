// Package textutil provides filename token helpers for building output names.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented characters and strips the combining marks, so
// "Beyoncé" folds to "Beyonce" instead of losing the letter entirely.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug converts an arbitrary track title into a lowercase snake_case token
// safe for filenames. Accents are folded to their base letters, runs of
// non-alphanumeric characters collapse into single underscores, and camelCase
// boundaries are split. Returns "track" when nothing survives.
func Slug(name string) string {
	name = strings.TrimSpace(name)
	if folded, _, err := transform.String(asciiFold, name); err == nil {
		name = folded
	}

	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	var prev rune
	for _, r := range name {
		if !isASCIIAlnum(r) {
			if b.Len() > 0 {
				pendingSep = true
			}
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
			prev = 0
		}
		// Camel boundaries split on the original case: "myTrack" becomes
		// my_track but "HTTP" stays http.
		if isUpper(r) && isLowerOrDigit(prev) {
			b.WriteByte('_')
		}
		b.WriteRune(toLower(r))
		prev = r
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "track"
	}
	return out
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func toLower(r rune) rune {
	if isUpper(r) {
		return r + ('a' - 'A')
	}
	return r
}

func isLowerOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
