// internal/utils/normalize.go
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName folds a product name for legacy name-based lookups:
// lowercase, accents stripped, inner whitespace collapsed. "Medialunas de
// Manteca " and "medialunas de manteca" compare equal.
func NormalizeName(name string) string {
	stripped, _, err := transform.String(accentStripper, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}
