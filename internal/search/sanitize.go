package search

import "strings"

// sanitize turns free-form user text into an FTS5 match expression per
// spec.md §4.8's query transformation: trim, double-escape single quotes,
// strip grammar characters, then suffix `*` for prefix matching. The
// second return value is false when the input reduces to nothing
// searchable at any stage.
func sanitize(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	escaped := strings.ReplaceAll(trimmed, "'", "''")

	stripped := stripGrammarChars(escaped)
	if stripped == "" {
		return "", false
	}

	return stripped + "*", true
}

// stripGrammarChars removes characters that carry meaning in the FTS5
// query grammar: quote, colon, and period.
func stripGrammarChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '"', ':', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
