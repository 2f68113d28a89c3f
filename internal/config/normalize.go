package config

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTerm forma con la que se comparan consultas, sinónimos y etiquetas:
// minúsculas sin espacios en los extremos y, opcionalmente, sin tildes.
func NormalizeTerm(s string, foldAccents bool) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if foldAccents {
		s = FoldAccents(s)
	}
	return s
}

// FoldAccents "eléctrica" -> "electrica"
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
