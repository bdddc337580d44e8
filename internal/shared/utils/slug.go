package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphen  = regexp.MustCompile(`-+`)
)

// GenerateSlug turns "Sunny Flat, Kraków" into "sunny-flat-krakow".
// Used for image object keys.
func GenerateSlug(input string) string {
	// Step 1: Strip accents
	ascii := RemoveDiacritics(input)

	// Step 2: Lowercase and hyphenate
	hyphenated := strings.ReplaceAll(strings.ToLower(ascii), " ", "-")

	// Step 3: Drop everything outside a-z, 0-9, -
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")
	normalized := multiHyphen.ReplaceAllString(cleaned, "-")

	return strings.Trim(normalized, "-")
}

// RemoveDiacritics decomposes the string and removes combining marks.
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
