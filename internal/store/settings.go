package store

import "database/sql"

// SettingsRepository is the key/value store backing the exclusion lists
// and tunables (spec.md §3 "Setting", §6 recognized keys).
type SettingsRepository struct {
	BaseRepository
}

// NewSettingsRepository binds a settings repository to db.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{BaseRepository: NewBaseRepository(db)}
}

// GetSetting returns a setting's value, or ("", false) if unset. Settings
// are read-through with no cache, so a write is visible to the very next
// read (spec.md §5 "Shared resources").
func (r *SettingsRepository) GetSetting(key string) (string, bool, error) {
	var value string
	err := r.exec().QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, classify("get_setting", err)
	}
	return value, true, nil
}

// SetSetting upserts a setting's value.
func (r *SettingsRepository) SetSetting(key, value string) error {
	_, err := r.exec().Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return classify("set_setting", err)
}
