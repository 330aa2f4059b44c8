// Package textnorm normalizes free text for matching and vectorization.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// titleSuffix matches a trailing " - <digits>" requisition suffix on job titles.
var titleSuffix = regexp.MustCompile(`\s*-\s*\d+$`)

// accentFold decomposes to NFD and drops combining marks, so "café" -> "cafe".
var accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text, strips accents, replaces punctuation with spaces,
// and collapses runs of whitespace. Empty or missing input yields "".
// Pure and idempotent: Normalize(Normalize(t)) == Normalize(t).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	if folded, _, err := transform.String(accentFold, text); err == nil {
		text = folded
	}
	var b strings.Builder
	b.Grow(len(text))
	wasSpace := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			wasSpace = false
		default:
			// Punctuation and whitespace both collapse to a single separator.
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// CleanTitle strips a trailing " - <digits>" suffix from a job title.
// The rest of the title is left untouched, including case.
func CleanTitle(title string) string {
	return titleSuffix.ReplaceAllString(title, "")
}

// Tokenize normalizes text and splits it into words. Returns nil for text
// with no word content.
func Tokenize(text string) []string {
	cleaned := Normalize(text)
	if cleaned == "" {
		return nil
	}
	return strings.Fields(cleaned)
}
