// Package filter holds the listing-level predicates applied before a candidate enters the
// crawl engine.
package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeText folds case and strips combining marks so "Développeur" matches "developpeur".
// Hangul survives since NFC recomposes the syllables.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}

// TitleExcluder rejects titles that contain any of its keywords.
type TitleExcluder struct {
	keywords []string
}

func NewTitleExcluder(keywords []string) *TitleExcluder {
	e := &TitleExcluder{}
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		e.keywords = append(e.keywords, normalizeText(k))
	}
	return e
}

// Excluded reports whether title contains an exclusion keyword.
func (e *TitleExcluder) Excluded(title string) bool {
	text := normalizeText(title)
	for _, k := range e.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
