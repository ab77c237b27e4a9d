package store

import (
	"database/sql"
	"time"
)

// VolumeRepository handles the drive registry (spec.md §4.1).
type VolumeRepository struct {
	BaseRepository
}

// NewVolumeRepository binds a volume repository to db.
func NewVolumeRepository(db *DB) *VolumeRepository {
	return &VolumeRepository{BaseRepository: NewBaseRepository(db)}
}

// WithTx returns a volume repository bound to tx.
func (r *VolumeRepository) WithTx(tx *Tx) *VolumeRepository {
	return &VolumeRepository{BaseRepository: r.BaseRepository.WithTx(tx)}
}

// UpsertVolume creates or updates a drive's registry row. Called on every
// mount event and every scan completion (spec.md §3 "Volume" lifecycle).
func (r *VolumeRepository) UpsertVolume(v *Volume) error {
	_, err := r.exec().Exec(`
		INSERT INTO drives (uuid, name, last_seen, total_capacity, used_capacity, excluded)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			name = excluded.name,
			last_seen = excluded.last_seen,
			total_capacity = excluded.total_capacity,
			used_capacity = excluded.used_capacity
	`, v.ID, v.DisplayName, v.LastSeen.Unix(), v.TotalBytes, v.UsedBytes, v.Excluded)
	if err != nil {
		return classify("upsert_volume", err)
	}
	return nil
}

// GetVolume returns a single drive by uuid, or nil if not registered.
func (r *VolumeRepository) GetVolume(id string) (*Volume, error) {
	row := r.exec().QueryRow(`
		SELECT uuid, name, last_seen, total_capacity, used_capacity, last_scan_date, file_count, excluded
		FROM drives WHERE uuid = ?
	`, id)
	v, err := scanVolume(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get_volume", err)
	}
	return v, nil
}

// ListVolumes returns every registered drive, mounted or not.
func (r *VolumeRepository) ListVolumes() ([]*Volume, error) {
	rows, err := r.exec().Query(`
		SELECT uuid, name, last_seen, total_capacity, used_capacity, last_scan_date, file_count, excluded
		FROM drives ORDER BY last_seen DESC
	`)
	if err != nil {
		return nil, classify("list_volumes", err)
	}
	defer rows.Close()

	var out []*Volume
	for rows.Next() {
		v, err := scanVolumeRows(rows)
		if err != nil {
			return nil, classify("list_volumes", err)
		}
		out = append(out, v)
	}
	return out, classify("list_volumes", rows.Err())
}

// DeleteVolume removes a drive and cascades to its files (and, through the
// files table cascade, their thumbnails).
func (r *VolumeRepository) DeleteVolume(id string) error {
	_, err := r.exec().Exec(`DELETE FROM drives WHERE uuid = ?`, id)
	return classify("delete_volume", err)
}

// SetExcluded toggles whether a drive participates in scanning/watching.
func (r *VolumeRepository) SetExcluded(id string, excluded bool) error {
	_, err := r.exec().Exec(`UPDATE drives SET excluded = ? WHERE uuid = ?`, excluded, id)
	return classify("set_excluded", err)
}

// SetLastScan records scan completion time and the reconciled file count
// (spec.md invariant: Volume.file_count == COUNT(FileEntry) immediately
// after scan completion).
func (r *VolumeRepository) SetLastScan(id string, at time.Time, fileCount int64) error {
	_, err := r.exec().Exec(
		`UPDATE drives SET last_scan_date = ?, file_count = ? WHERE uuid = ?`,
		at.Unix(), fileCount, id,
	)
	return classify("set_last_scan", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVolume(row rowScanner) (*Volume, error) {
	var v Volume
	var lastSeen int64
	var lastScan sql.NullInt64
	if err := row.Scan(&v.ID, &v.DisplayName, &lastSeen, &v.TotalBytes, &v.UsedBytes, &lastScan, &v.FileCount, &v.Excluded); err != nil {
		return nil, err
	}
	v.LastSeen = time.Unix(lastSeen, 0).UTC()
	if lastScan.Valid {
		t := time.Unix(lastScan.Int64, 0).UTC()
		v.LastScan = &t
	}
	return &v, nil
}

func scanVolumeRows(rows *sql.Rows) (*Volume, error) {
	return scanVolume(rows)
}
