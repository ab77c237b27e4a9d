// Migration management: embedded up/down SQL files applied in version
// order, tracked in a migration_history table with a checksum so a
// modified migration file is caught rather than silently re-applied.
package store

import (
	"crypto/md5"
	"embed"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/volumedex/volumedex/internal/utils"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one versioned schema change.
type Migration struct {
	Version     string
	Description string
	UpSQL       string
	DownSQL     string
}

// MigrationManager applies embedded migrations to an index store.
type MigrationManager struct {
	db *DB
}

// NewMigrationManager creates a manager bound to db.
func NewMigrationManager(db *DB) *MigrationManager {
	return &MigrationManager{db: db}
}

// Migrate ensures the migration_history table exists and applies every
// pending migration in version order, inside one transaction per migration.
func (mm *MigrationManager) Migrate() error {
	if err := mm.ensureHistoryTable(); err != nil {
		return utils.WrapError(err, "ensure migration_history table")
	}

	migrations, err := mm.load()
	if err != nil {
		return err
	}

	applied, err := mm.appliedVersions()
	if err != nil {
		return utils.WrapError(err, "read applied migrations")
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := mm.apply(m); err != nil {
			return utils.WrapErrorf(err, "apply migration %s", m.Version)
		}
	}
	return nil
}

func (mm *MigrationManager) ensureHistoryTable() error {
	_, err := mm.db.Exec(`
		CREATE TABLE IF NOT EXISTS migration_history (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			version        TEXT NOT NULL UNIQUE,
			description    TEXT NOT NULL,
			applied_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
			checksum       TEXT NOT NULL
		);
	`)
	return err
}

func (mm *MigrationManager) appliedVersions() (map[string]bool, error) {
	rows, err := mm.db.Query(`SELECT version FROM migration_history`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func (mm *MigrationManager) apply(m Migration) error {
	tx, err := mm.db.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.UpSQL); err != nil {
		return utils.WrapErrorf(err, "execute up migration %s", m.Version)
	}

	checksum := md5.Sum([]byte(m.UpSQL))
	_, err = tx.Exec(
		`INSERT INTO migration_history (version, description, checksum) VALUES (?, ?, ?)`,
		m.Version, m.Description, hex.EncodeToString(checksum[:]),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// load reads migrations/*.sql, grouping `NNN_description.sql` (up) with its
// `NNN_description_down.sql` counterpart, sorted by numeric version.
func (mm *MigrationManager) load() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, utils.WrapError(err, "read embedded migrations directory")
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filename := entry.Name()
		if !strings.HasSuffix(filename, ".sql") || len(filename) < 4 || filename[3] != '_' {
			continue
		}

		version := filename[:3]
		remaining := strings.TrimSuffix(filename[4:], ".sql")
		isDown := strings.HasSuffix(remaining, "_down")
		description := strings.TrimSuffix(remaining, "_down")

		content, err := migrationFiles.ReadFile("migrations/" + filename)
		if err != nil {
			return nil, utils.WrapErrorf(err, "read migration file %s", filename)
		}

		if byVersion[version] == nil {
			byVersion[version] = &Migration{Version: version, Description: titleCase(description)}
		}
		if isDown {
			byVersion[version].DownSQL = string(content)
		} else {
			byVersion[version].UpSQL = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			continue
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})
	return migrations, nil
}

func titleCase(desc string) string {
	words := strings.Split(desc, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = fmt.Sprintf("%s%s", strings.ToUpper(w[:1]), w[1:])
	}
	return strings.Join(words, " ")
}
