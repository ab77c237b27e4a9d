package store

import "strings"

// classify maps a raw driver error to the spec.md §7 taxonomy by matching
// the well-known SQLite error text. modernc.org/sqlite, like most database/
// sql drivers, does not export a stable sentinel per failure mode, so
// string matching (mirroring internal/utils.IsNotFound's approach) is the
// idiomatic fallback used throughout the corpus.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "malformed"),
		strings.Contains(msg, "disk image is malformed"),
		strings.Contains(msg, "database corrupt"),
		strings.Contains(msg, "missing fts"):
		return newError(ErrKindRecoverableCorruption, op, err)
	case strings.Contains(msg, "constraint failed"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "foreign key constraint"):
		return newError(ErrKindConstraint, op, err)
	default:
		return newError(ErrKindPrepare, op, err)
	}
}
