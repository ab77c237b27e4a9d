package store

// SearchRepository issues prefix full-text probes against files_fts
// (spec.md §4.8). It trusts its caller (internal/search) to have already
// sanitized matchExpr — this layer only binds it as a parameter, never
// concatenates it into the query text.
type SearchRepository struct {
	BaseRepository
}

// NewSearchRepository binds a search repository to db.
func NewSearchRepository(db *DB) *SearchRepository {
	return &SearchRepository{BaseRepository: NewBaseRepository(db)}
}

// Search runs matchExpr (already quote-doubled, grammar-character-stripped,
// and suffixed with `*`) against the name column only, ordered by FTS5's
// built-in bm25 relevance, capped at limit rows. withDuplicateCount adds the
// permitted join-scan extension from spec.md §4.8.
func (r *SearchRepository) Search(matchExpr string, limit int, withDuplicateCount bool) ([]SearchHit, error) {
	dupExpr := "0"
	if withDuplicateCount {
		dupExpr = `(SELECT COUNT(*) - 1 FROM files f2 WHERE f2.name = f.name AND f2.size = f.size)`
	}

	query := `
		SELECT f.id, f.name, f.relative_path, f.size, f.drive_uuid, d.name, ` + dupExpr + `
		FROM files_fts
		JOIN files f ON f.id = files_fts.rowid
		JOIN drives d ON d.uuid = f.drive_uuid
		WHERE files_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`
	rows, err := r.exec().Query(query, "name:"+matchExpr, limit)
	if err != nil {
		return nil, classify("search", err)
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.FileID, &h.Name, &h.RelativePath, &h.Size, &h.VolumeID, &h.VolumeDisplayName, &h.DuplicateCount); err != nil {
			return nil, classify("search", err)
		}
		out = append(out, h)
	}
	return out, classify("search", rows.Err())
}
