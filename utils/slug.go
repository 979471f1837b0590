package utils

import (
	"fmt"
	"hash/crc32"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a URL-safe identifier from a title: accents are folded, everything except
// ASCII letters, digits, '_' and '-' is dropped and whitespace becomes '-'. Titles with no
// ASCII content at all (e.g. Chinese) fall back to "p-" plus the CRC-32 of the title.
func Slugify(title string) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ""
	}

	folded, _, err := transform.String(foldMarks, trimmed)
	if err != nil {
		folded = trimmed
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	pendingDash := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
	}

	if b.Len() == 0 {
		return fmt.Sprintf("p-%08x", crc32.ChecksumIEEE([]byte(trimmed)))
	}
	return b.String()
}
