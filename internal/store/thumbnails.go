package store

import (
	"database/sql"
	"time"
)

// ThumbnailRepository stores the disk-cache index consulted by
// internal/thumbnails (spec.md §4.7).
type ThumbnailRepository struct {
	BaseRepository
}

// NewThumbnailRepository binds a thumbnail repository to db.
func NewThumbnailRepository(db *DB) *ThumbnailRepository {
	return &ThumbnailRepository{BaseRepository: NewBaseRepository(db)}
}

// MediaWithoutThumbnail returns up to limit non-directory files that have
// no ThumbnailRef yet.
func (r *ThumbnailRepository) MediaWithoutThumbnail(limit int) ([]*FileEntry, error) {
	rows, err := r.exec().Query(`
		SELECT f.id, f.drive_uuid, f.name, f.relative_path, f.size, f.created_at, f.modified_at, f.is_directory, f.fingerprint
		FROM files f
		LEFT JOIN thumbnails t ON t.file_id = f.id
		WHERE f.is_directory = 0 AND t.file_id IS NULL
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, classify("media_without_thumbnail", err)
	}
	defer rows.Close()

	var out []*FileEntry
	for rows.Next() {
		f, err := scanFileEntry(rows)
		if err != nil {
			return nil, classify("media_without_thumbnail", err)
		}
		out = append(out, f)
	}
	return out, classify("media_without_thumbnail", rows.Err())
}

// MediaWithoutThumbnailCount reports the size of that working set.
func (r *ThumbnailRepository) MediaWithoutThumbnailCount() (int64, error) {
	var count int64
	err := r.exec().QueryRow(`
		SELECT COUNT(*) FROM files f
		LEFT JOIN thumbnails t ON t.file_id = f.id
		WHERE f.is_directory = 0 AND t.file_id IS NULL
	`).Scan(&count)
	if err != nil {
		return 0, classify("media_without_thumbnail_count", err)
	}
	return count, nil
}

// GetThumbnail returns the ThumbnailRef for a file, if one exists.
func (r *ThumbnailRepository) GetThumbnail(fileID int64) (*ThumbnailRef, bool, error) {
	var ref ThumbnailRef
	var generatedAt int64
	err := r.exec().QueryRow(`
		SELECT file_id, path, size, generated_at FROM thumbnails WHERE file_id = ?
	`, fileID).Scan(&ref.FileID, &ref.DiskPath, &ref.ByteSize, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify("get_thumbnail", err)
	}
	ref.GeneratedAt = time.Unix(generatedAt, 0).UTC()
	return &ref, true, nil
}

// RecordThumbnail inserts a ThumbnailRef; if the file already has one, that
// row's path, size and generated_at are replaced. Eviction never updates a
// row in place — only insert or delete.
func (r *ThumbnailRepository) RecordThumbnail(ref ThumbnailRef) error {
	_, err := r.exec().Exec(`
		INSERT INTO thumbnails (file_id, path, size, generated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET path = excluded.path, size = excluded.size, generated_at = excluded.generated_at
	`, ref.FileID, ref.DiskPath, ref.ByteSize, ref.GeneratedAt.Unix())
	return classify("record_thumbnail", err)
}

// DeleteThumbnail removes a ThumbnailRef (self-healing when the on-disk
// file has gone missing, or as part of eviction).
func (r *ThumbnailRepository) DeleteThumbnail(fileID int64) error {
	_, err := r.exec().Exec(`DELETE FROM thumbnails WHERE file_id = ?`, fileID)
	return classify("delete_thumbnail", err)
}

// OldestThumbnails returns up to limit ThumbnailRefs ordered by
// generated_at ascending — the eviction candidates.
func (r *ThumbnailRepository) OldestThumbnails(limit int) ([]ThumbnailRef, error) {
	rows, err := r.exec().Query(`
		SELECT file_id, path, size, generated_at FROM thumbnails
		ORDER BY generated_at ASC LIMIT ?
	`, limit)
	if err != nil {
		return nil, classify("oldest_thumbnails", err)
	}
	defer rows.Close()

	var out []ThumbnailRef
	for rows.Next() {
		var ref ThumbnailRef
		var generatedAt int64
		if err := rows.Scan(&ref.FileID, &ref.DiskPath, &ref.ByteSize, &generatedAt); err != nil {
			return nil, classify("oldest_thumbnails", err)
		}
		ref.GeneratedAt = time.Unix(generatedAt, 0).UTC()
		out = append(out, ref)
	}
	return out, classify("oldest_thumbnails", rows.Err())
}

// ThumbnailCacheBytes sums ThumbnailRef.ByteSize over all rows — the
// invariant spec.md §3 ties to true on-disk usage within a bounded lag.
func (r *ThumbnailRepository) ThumbnailCacheBytes() (int64, error) {
	var total sql.NullInt64
	err := r.exec().QueryRow(`SELECT SUM(size) FROM thumbnails`).Scan(&total)
	if err != nil {
		return 0, classify("thumbnail_cache_bytes", err)
	}
	return total.Int64, nil
}
