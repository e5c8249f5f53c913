package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// transliterations covers letters and symbols that carry no combining mark
// and would otherwise survive accent stripping.
var transliterations = strings.NewReplacer(
	"º", "o",
	"ª", "a",
	"°", "o",
	"ß", "ss",
	"æ", "ae",
	"Æ", "AE",
	"œ", "oe",
	"Œ", "OE",
	"ø", "o",
	"Ø", "O",
	"đ", "d",
	"Đ", "D",
	"ł", "l",
	"Ł", "L",
	"–", "-",
	"—", "-",
	"‘", "'",
	"’", "'",
	"“", "\"",
	"”", "\"",
	"\u00a0", " ",
)

// StripAccents removes diacritics: the text is decomposed, combining marks are
// dropped, and the remainder is recomposed.
func StripAccents(value string) string {
	value = transliterations.Replace(value)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// Fold returns value without diacritics and upper-cased, the canonical form
// of every free-text column in the artifact.
func Fold(value string) string {
	return cases.Upper(language.Und).String(StripAccents(value))
}

// CleanCode strips punctuation from an activity code ("47.42-3-00" and
// "47.42-3/00" both become "4742300").
func CleanCode(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(code))
}
