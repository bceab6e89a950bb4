package store

import (
	"strings"
	"unicode"
)

// fallbackLabel is stored when normalization leaves nothing usable.
const fallbackLabel = "RELATED"

// NormalizeRelationshipLabel turns a free-form relationship phrase into a
// storage label: uppercase, runs of non-alphanumerics collapsed into
// single underscores, trimmed, and prefixed when the result would start
// with a digit. An empty result maps to RELATED.
func NormalizeRelationshipLabel(phrase string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToUpper(strings.TrimSpace(phrase)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}

	label := strings.Trim(b.String(), "_")
	if label == "" {
		return fallbackLabel
	}
	if unicode.IsDigit(rune(label[0])) {
		label = "R_" + label
	}
	return label
}
