// Package textnorm repairs mis-decoded text and converts between delimited
// text and clean item lists.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// mojibake maps UTF-8 text decoded as Windows-1252 back to the intended runes.
// Longer sequences come first so the replacer prefers them.
var mojibake = strings.NewReplacer(
	"â€¢", "•",
	"â€“", "–",
	"â€”", "—",
	"â€œ", "\"",
	"â€\u009d", "\"",
	"â€˜", "'",
	"â€™", "'",
	"â€¦", "…",
	"Ã¡", "á",
	"Ã©", "é",
	"Ã­", "í",
	"Ã³", "ó",
	"Ãº", "ú",
	"Ã±", "ñ",
	"Ã‘", "Ñ",
	"Ã¼", "ü",
	"Ãœ", "Ü",
	"Â¿", "¿",
	"Â¡", "¡",
	"Â°", "°",
	"Â", "",
)

var stripPrivateUse = runes.Remove(runes.Predicate(func(r rune) bool {
	return r >= 0xF000 && r <= 0xF8FF
}))

// FixEncoding repairs the known mojibake table and drops private-use glyphs
// that some fonts leak into copied text.
func FixEncoding(s string) string {
	if s == "" {
		return s
	}
	out := mojibake.Replace(s)
	if cleaned, _, err := transform.String(stripPrivateUse, out); err == nil {
		out = cleaned
	}
	return out
}

var foldChain = func() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Fold lower-cases s and strips combining accents, so "Educación" and
// "EDUCACION" compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(foldChain(), s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// FoldWords folds s and squeezes internal whitespace.
func FoldWords(s string) string {
	return strings.Join(strings.Fields(Fold(s)), " ")
}
