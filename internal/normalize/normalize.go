// Package normalize holds the comparison keys used to match incoming records
// against stored locales and source strings.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// BaseLocale drops a trailing region or script subtag from a locale code, so
// "fr-CA" and "pt_BR" become "fr" and "pt". Single-subtag codes are returned
// trimmed but otherwise unchanged.
func BaseLocale(code string) string {
	code = strings.TrimSpace(code)
	idx := strings.LastIndexAny(code, "-_")
	if idx <= 0 || idx == len(code)-1 {
		return code
	}
	return code[:idx]
}

// SourceString reduces a source string to its matching key: trimmed, case
// folded, NFC composed, with every non-word rune removed.
func SourceString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = norm.NFC.String(cases.Fold().String(s))
	return strings.Map(func(r rune) rune {
		if isWordRune(r) {
			return r
		}
		return -1
	}, s)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
