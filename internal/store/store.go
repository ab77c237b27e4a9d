package store

import (
	"log"

	"github.com/volumedex/volumedex/internal/utils"
)

// Store is the single owner of persistence described in spec.md §4.1. It is
// constructed once at startup and passed by reference to every component
// that needs it (spec.md §9 "singletons become owned services").
type Store struct {
	DB         *DB
	Volumes    *VolumeRepository
	Files      *FileRepository
	Hashes     *HashRepository
	Thumbnails *ThumbnailRepository
	Settings   *SettingsRepository
	Search     *SearchRepository

	logger *log.Logger
}

// New opens the index store at config.Path (creating and migrating it on
// first use) and wires its repositories.
func New(config *Config, logger *log.Logger) (*Store, error) {
	db, err := Open(config)
	if err != nil {
		return nil, err
	}
	return &Store{
		DB:         db,
		Volumes:    NewVolumeRepository(db),
		Files:      NewFileRepository(db),
		Hashes:     NewHashRepository(db),
		Thumbnails: NewThumbnailRepository(db),
		Settings:   NewSettingsRepository(db),
		Search:     NewSearchRepository(db),
		logger:     logger,
	}, nil
}

// Close tears the store down.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Health reports index-store connectivity.
func (s *Store) Health() *HealthStatus {
	return s.DB.Health()
}

// Optimize runs SQLite's `PRAGMA optimize`, plus an incremental vacuum
// step. Invoked by the orchestrator after a full scan, or once accumulated
// delta changes cross the configured threshold (spec.md §4.1, default 50).
func (s *Store) Optimize() error {
	if _, err := s.DB.Exec(`PRAGMA optimize`); err != nil {
		return classify("optimize", err)
	}
	if _, err := s.DB.Exec(`PRAGMA incremental_vacuum`); err != nil {
		// Non-fatal: incremental_vacuum requires auto_vacuum=INCREMENTAL,
		// which is not set on every pre-existing database file.
		if s.logger != nil {
			s.logger.Printf("[WARN] optimize: incremental_vacuum skipped: %v", err)
		}
	}
	return nil
}

// Recover attempts repair on a corruption signal (spec.md §7
// "recoverable corruption"): it runs PRAGMA integrity_check, logs any
// result other than "ok", and then runs a VACUUM to rebuild the file
// whatever the check reported. The orchestrator permits
// exactly one retry of the triggering operation after Recover returns nil.
func (s *Store) Recover() error {
	var result string
	if err := s.DB.QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return utils.WrapError(err, "recover: integrity_check")
	}
	if result != "ok" {
		if s.logger != nil {
			s.logger.Printf("[WARN] recover: integrity_check reported: %s", result)
		}
	}
	if _, err := s.DB.Exec(`VACUUM`); err != nil {
		return utils.WrapError(err, "recover: vacuum")
	}
	return nil
}
