package store

import "time"

// Volume is the drive registry entry (spec.md §3 "Volume"). Identity is the
// OS-reported stable volume identifier; it is created on first mount
// observation and never implicitly deleted.
type Volume struct {
	ID            string     `json:"id"`
	DisplayName   string     `json:"display_name"`
	TotalBytes    int64      `json:"total_bytes"`
	UsedBytes     int64      `json:"used_bytes"`
	LastSeen      time.Time  `json:"last_seen"`
	LastScan      *time.Time `json:"last_scan,omitempty"`
	FileCount     int64      `json:"file_count"`
	Excluded      bool       `json:"excluded"`
}

// FileEntry is a single inventory row. Identity is (VolumeID, RelativePath).
type FileEntry struct {
	ID           int64      `json:"id"`
	VolumeID     string     `json:"volume_id"`
	Name         string     `json:"name"`
	RelativePath string     `json:"relative_path"`
	Size         int64      `json:"size"`
	CreatedAt    time.Time  `json:"created_at"`
	ModifiedAt   time.Time  `json:"modified_at"`
	IsDirectory  bool       `json:"is_directory"`
	Fingerprint  *string    `json:"fingerprint,omitempty"`
}

// ThumbnailRef records the on-disk location of a rendered thumbnail.
type ThumbnailRef struct {
	FileID      int64     `json:"file_id"`
	DiskPath    string    `json:"disk_path"`
	ByteSize    int64     `json:"byte_size"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Recognized settings keys (spec.md §6).
const (
	SettingExcludedDirectories = "excluded_directories"
	SettingExcludedExtensions  = "excluded_extensions"
	SettingMinDuplicateSize    = "min_duplicate_file_size"
)

// SearchHit is a single ranked search result row, joined with drive
// connectivity by the caller (internal/search owns that join; this package
// only knows about stored rows).
type SearchHit struct {
	FileID            int64  `json:"file_id"`
	Name              string `json:"name"`
	RelativePath      string `json:"relative_path"`
	Size              int64  `json:"size"`
	VolumeID          string `json:"volume_id"`
	VolumeDisplayName string `json:"volume_display_name"`
	DuplicateCount    int64  `json:"duplicate_count,omitempty"`
}
