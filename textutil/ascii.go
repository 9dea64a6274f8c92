// Package textutil provides the filename sanitization the archive
// planner uses when deriving archive-layout directory names from DICOM
// tag values, which may contain arbitrary Unicode.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ConvertToASCII decomposes s, drops combining marks (folding accented
// Latin letters to their plain form), and then drops any remaining
// non-ASCII rune. The result is safe to use as a ZIP directory or file
// name component on any platform the archive might be extracted on.
func ConvertToASCII(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
