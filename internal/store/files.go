package store

import (
	"database/sql"
	"time"
)

// FileRepository handles the file inventory (spec.md §4.1). Every batch
// method below runs inside exactly one transaction, rolling the whole
// batch back on any row failure — partial application is forbidden.
type FileRepository struct {
	BaseRepository
}

// NewFileRepository binds a file repository to db.
func NewFileRepository(db *DB) *FileRepository {
	return &FileRepository{BaseRepository: NewBaseRepository(db)}
}

// WithTx returns a file repository bound to tx.
func (r *FileRepository) WithTx(tx *Tx) *FileRepository {
	return &FileRepository{BaseRepository: r.BaseRepository.WithTx(tx)}
}

const maxBatchSize = 1000

// InsertEntries atomically upserts a batch by (volume_id, relative_path).
// Batches larger than 1,000 rows are rejected by the caller's contract
// (internal/scanner never emits larger batches); this method itself applies
// whatever it is given inside one transaction.
func (r *FileRepository) InsertEntries(volumeID string, batch []FileEntry) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.BeginTx()
	if err != nil {
		return classify("insert_entries", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO files (drive_uuid, name, relative_path, size, created_at, modified_at, is_directory)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(drive_uuid, relative_path) DO UPDATE SET
			name = excluded.name,
			size = excluded.size,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at,
			is_directory = excluded.is_directory,
			fingerprint = NULL
	`)
	if err != nil {
		return classify("insert_entries", err)
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(volumeID, e.Name, e.RelativePath, e.Size, e.CreatedAt.Unix(), e.ModifiedAt.Unix(), e.IsDirectory); err != nil {
			return classify("insert_entries", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return classify("insert_entries", err)
	}
	return nil
}

// UpdateEntries atomically updates existing rows by id, clearing the
// fingerprint whenever size or modification time changed (spec.md
// invariant 3 / §4.1).
func (r *FileRepository) UpdateEntries(batch []FileEntry) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.BeginTx()
	if err != nil {
		return classify("update_entries", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE files SET
			name = ?,
			size = ?,
			modified_at = ?,
			is_directory = ?,
			fingerprint = CASE WHEN size != ? OR modified_at != ? THEN NULL ELSE fingerprint END
		WHERE id = ?
	`)
	if err != nil {
		return classify("update_entries", err)
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(e.Name, e.Size, e.ModifiedAt.Unix(), e.IsDirectory, e.Size, e.ModifiedAt.Unix(), e.ID); err != nil {
			return classify("update_entries", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return classify("update_entries", err)
	}
	return nil
}

// DeleteEntries batch-deletes files by relative path, cascading to FTS rows
// (via trigger) and thumbnail refs (via foreign key).
func (r *FileRepository) DeleteEntries(volumeID string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	tx, err := r.BeginTx()
	if err != nil {
		return classify("delete_entries", err)
	}
	defer tx.Rollback()

	for _, chunk := range chunkStrings(paths, maxBatchSize) {
		args := make([]interface{}, 0, len(chunk)+1)
		args = append(args, volumeID)
		for _, p := range chunk {
			args = append(args, p)
		}
		q := `DELETE FROM files WHERE drive_uuid = ? AND relative_path IN (` + placeholders(len(chunk)) + `)`
		if _, err := tx.Exec(q, args...); err != nil {
			return classify("delete_entries", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return classify("delete_entries", err)
	}
	return nil
}

// ClearVolume removes every file row for a volume; used before a full
// rescan so stale rows cannot survive a renamed or deleted subtree.
func (r *FileRepository) ClearVolume(volumeID string) error {
	_, err := r.exec().Exec(`DELETE FROM files WHERE drive_uuid = ?`, volumeID)
	return classify("clear_volume", err)
}

// CountByVolume returns the actual row count for a volume, used to reconcile
// against the denormalized Volume.FileCount (spec.md §4.1's consistency
// check, surfaced at GET /api/v1/system/consistency).
func (r *FileRepository) CountByVolume(volumeID string) (int64, error) {
	var count int64
	err := r.exec().QueryRow(`SELECT COUNT(*) FROM files WHERE drive_uuid = ?`, volumeID).Scan(&count)
	return count, classify("count_by_volume", err)
}

// ExistingFile is one row of the delta-reconciliation map.
type ExistingFile struct {
	ID         int64
	ModifiedAt time.Time
}

// ExistingFiles streams (relative_path -> id, modified_at) for delta
// reconciliation. The scanner is the only caller and is permitted to load
// the whole map into memory per spec.md §4.1.
func (r *FileRepository) ExistingFiles(volumeID string) (map[string]ExistingFile, error) {
	rows, err := r.exec().Query(
		`SELECT relative_path, id, modified_at FROM files WHERE drive_uuid = ?`, volumeID,
	)
	if err != nil {
		return nil, classify("existing_files", err)
	}
	defer rows.Close()

	out := make(map[string]ExistingFile)
	for rows.Next() {
		var path string
		var ef ExistingFile
		var modifiedAt int64
		if err := rows.Scan(&path, &ef.ID, &modifiedAt); err != nil {
			return nil, classify("existing_files", err)
		}
		ef.ModifiedAt = time.Unix(modifiedAt, 0).UTC()
		out[path] = ef
	}
	return out, classify("existing_files", rows.Err())
}

// scanFileEntry reads one files row.
func scanFileEntry(row rowScanner) (*FileEntry, error) {
	var f FileEntry
	var createdAt, modifiedAt int64
	var fingerprint sql.NullString
	if err := row.Scan(&f.ID, &f.VolumeID, &f.Name, &f.RelativePath, &f.Size, &createdAt, &modifiedAt, &f.IsDirectory, &fingerprint); err != nil {
		return nil, err
	}
	f.CreatedAt = time.Unix(createdAt, 0).UTC()
	f.ModifiedAt = time.Unix(modifiedAt, 0).UTC()
	if fingerprint.Valid {
		f.Fingerprint = &fingerprint.String
	}
	return &f, nil
}
