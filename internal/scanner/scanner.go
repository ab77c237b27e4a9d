package scanner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/volumedex/volumedex/internal/store"
)

// FileRepository is the subset of internal/store.FileRepository the
// scanner needs; declared here, consumer-side, so tests can substitute a
// fake without importing database/sql.
type FileRepository interface {
	InsertEntries(volumeID string, batch []store.FileEntry) error
	UpdateEntries(batch []store.FileEntry) error
	DeleteEntries(volumeID string, paths []string) error
	ClearVolume(volumeID string) error
	ExistingFiles(volumeID string) (map[string]store.ExistingFile, error)
}

// VolumeRepository is the subset of internal/store.VolumeRepository the
// scanner needs to close out a scan.
type VolumeRepository interface {
	SetLastScan(id string, at time.Time, fileCount int64) error
}

// Scanner walks a mounted volume and reconciles the result with the
// store's inventory (spec.md §4.4).
type Scanner struct {
	files   FileRepository
	volumes VolumeRepository
	config  Config
	logger  *log.Logger
}

// New creates a scanner bound to the given repositories.
func New(files FileRepository, volumes VolumeRepository, config Config, logger *log.Logger) *Scanner {
	return &Scanner{files: files, volumes: volumes, config: config, logger: logger}
}

// ScanFull clears the volume's inventory and reinserts everything observed
// on the walk. progress may be nil.
func (s *Scanner) ScanFull(ctx context.Context, volumeID, rootPath string, progress chan<- ProgressUpdate) (int64, error) {
	if err := s.files.ClearVolume(volumeID); err != nil {
		return 0, fmt.Errorf("clear volume: %w", err)
	}

	batch := make([]store.FileEntry, 0, batchSize)
	processed := 0
	var total int64
	canceled := false

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.files.InsertEntries(volumeID, batch); err != nil {
			return err
		}
		total += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	walkErr := s.walkTree(rootPath, func(entry walkEntry) error {
		batch = append(batch, s.toFileEntry(volumeID, entry))
		processed++
		if processed%progressEvery == 0 {
			reportProgress(progress, processed, entry.relativePath, false)
		}
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
			if ctx.Err() != nil {
				canceled = true
				return errStopWalk
			}
		}
		return nil
	})
	if walkErr != nil && walkErr != errStopWalk {
		return total, fmt.Errorf("walk volume: %w", walkErr)
	}

	if !canceled {
		if err := flush(); err != nil {
			return total, err
		}
	}
	reportProgress(progress, processed, "", true)

	if canceled {
		return total, context.Canceled
	}
	if err := s.volumes.SetLastScan(volumeID, time.Now(), total); err != nil {
		return total, err
	}
	return total, nil
}

// DeltaResult summarizes one delta reconciliation: Observed is the
// current total inventory size for the volume; Changed is the number of
// inserted, updated, or deleted rows, the figure the orchestrator
// accumulates against its optimize threshold (spec.md §4.5).
type DeltaResult struct {
	Observed int64
	Changed  int
}

// ScanDelta reconciles the store's inventory against the walk: new paths
// are inserted, paths whose modification time moved beyond tolerance are
// updated (clearing their fingerprint), and paths no longer observed are
// deleted. progress may be nil.
func (s *Scanner) ScanDelta(ctx context.Context, volumeID, rootPath string, progress chan<- ProgressUpdate) (DeltaResult, error) {
	existing, err := s.files.ExistingFiles(volumeID)
	if err != nil {
		return DeltaResult{}, fmt.Errorf("load existing files: %w", err)
	}

	visited := make(map[string]bool, len(existing))
	insertBatch := make([]store.FileEntry, 0, batchSize)
	updateBatch := make([]store.FileEntry, 0, batchSize)
	processed := 0
	var observed int64
	changed := 0
	canceled := false

	flush := func() error {
		if len(insertBatch) > 0 {
			if err := s.files.InsertEntries(volumeID, insertBatch); err != nil {
				return err
			}
			changed += len(insertBatch)
			insertBatch = insertBatch[:0]
		}
		if len(updateBatch) > 0 {
			if err := s.files.UpdateEntries(updateBatch); err != nil {
				return err
			}
			changed += len(updateBatch)
			updateBatch = updateBatch[:0]
		}
		return nil
	}

	walkErr := s.walkTree(rootPath, func(entry walkEntry) error {
		visited[entry.relativePath] = true
		observed++
		processed++
		if processed%progressEvery == 0 {
			reportProgress(progress, processed, entry.relativePath, false)
		}

		fe := s.toFileEntry(volumeID, entry)
		if prior, ok := existing[entry.relativePath]; ok {
			if entry.modifiedAt.Sub(prior.ModifiedAt).Abs() > s.config.ModifiedTolerance {
				fe.ID = prior.ID
				updateBatch = append(updateBatch, fe)
			}
		} else {
			insertBatch = append(insertBatch, fe)
		}

		if len(insertBatch) >= batchSize || len(updateBatch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
			if ctx.Err() != nil {
				canceled = true
				return errStopWalk
			}
		}
		return nil
	})
	result := DeltaResult{Observed: observed, Changed: changed}
	if walkErr != nil && walkErr != errStopWalk {
		return result, fmt.Errorf("walk volume: %w", walkErr)
	}

	if canceled {
		if err := flush(); err != nil {
			result.Changed = changed
			return result, err
		}
		result.Changed = changed
		reportProgress(progress, processed, "", true)
		return result, context.Canceled
	}
	if err := flush(); err != nil {
		result.Changed = changed
		return result, err
	}
	result.Changed = changed

	var deleted []string
	for path := range existing {
		if !visited[path] {
			deleted = append(deleted, path)
		}
	}
	if err := s.files.DeleteEntries(volumeID, deleted); err != nil {
		return result, err
	}
	result.Changed += len(deleted)

	reportProgress(progress, processed, "", true)

	if err := s.volumes.SetLastScan(volumeID, time.Now(), observed); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Scanner) toFileEntry(volumeID string, entry walkEntry) store.FileEntry {
	return store.FileEntry{
		VolumeID:     volumeID,
		Name:         entry.name,
		RelativePath: entry.relativePath,
		Size:         entry.size,
		CreatedAt:    entry.createdAt,
		ModifiedAt:   entry.modifiedAt,
		IsDirectory:  entry.isDirectory,
	}
}

func reportProgress(progress chan<- ProgressUpdate, processed int, currentPath string, done bool) {
	if progress == nil {
		return
	}
	select {
	case progress <- ProgressUpdate{EntriesProcessed: processed, CurrentPath: currentPath, Done: done}:
	default:
	}
}
