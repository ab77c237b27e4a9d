package store

// HashRepository exposes the unhashed working set to the background
// hasher (spec.md §4.6).
type HashRepository struct {
	BaseRepository
}

// NewHashRepository binds a hash repository to db.
func NewHashRepository(db *DB) *HashRepository {
	return &HashRepository{BaseRepository: NewBaseRepository(db)}
}

// Unhashed returns up to limit regular files at or above minSize that have
// no fingerprint yet.
func (r *HashRepository) Unhashed(minSize int64, limit int) ([]*FileEntry, error) {
	rows, err := r.exec().Query(`
		SELECT id, drive_uuid, name, relative_path, size, created_at, modified_at, is_directory, fingerprint
		FROM files
		WHERE is_directory = 0 AND fingerprint IS NULL AND size >= ?
		LIMIT ?
	`, minSize, limit)
	if err != nil {
		return nil, classify("unhashed", err)
	}
	defer rows.Close()

	var out []*FileEntry
	for rows.Next() {
		f, err := scanFileEntry(rows)
		if err != nil {
			return nil, classify("unhashed", err)
		}
		out = append(out, f)
	}
	return out, classify("unhashed", rows.Err())
}

// UnhashedCount reports how many files are still waiting to be hashed —
// the hasher loops until this reaches zero.
func (r *HashRepository) UnhashedCount(minSize int64) (int64, error) {
	var count int64
	err := r.exec().QueryRow(`
		SELECT COUNT(*) FROM files WHERE is_directory = 0 AND fingerprint IS NULL AND size >= ?
	`, minSize).Scan(&count)
	if err != nil {
		return 0, classify("unhashed_count", err)
	}
	return count, nil
}

// HashResult pairs a file id with its computed fingerprint.
type HashResult struct {
	FileID      int64
	Fingerprint string
}

// ApplyHashes writes a batch of computed fingerprints in one transaction.
// A row either ends up with a valid fingerprint or none — partial writes
// are forbidden (spec.md §4.6 resilience).
func (r *HashRepository) ApplyHashes(batch []HashResult) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.BeginTx()
	if err != nil {
		return classify("apply_hashes", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE files SET fingerprint = ? WHERE id = ?`)
	if err != nil {
		return classify("apply_hashes", err)
	}
	defer stmt.Close()

	for _, h := range batch {
		if _, err := stmt.Exec(h.Fingerprint, h.FileID); err != nil {
			return classify("apply_hashes", err)
		}
	}
	return classify("apply_hashes", tx.Commit())
}
