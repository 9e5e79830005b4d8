package plugin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ConfigStore persists plugin configuration JSON, one row per plugin.
type ConfigStore struct {
	db *sql.DB
}

// NewConfigStore creates a config store over an open database.
func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// Get returns the stored config for a plugin, or nil when none exists.
func (s *ConfigStore) Get(ctx context.Context, pluginID string) (json.RawMessage, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT config FROM plugin_configs WHERE plugin_id = ?`, pluginID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config for %s: %w", pluginID, err)
	}
	return json.RawMessage(raw), nil
}

// Save upserts the config for a plugin.
func (s *ConfigStore) Save(ctx context.Context, pluginID string, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("invalid config JSON for %s", pluginID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plugin_configs (plugin_id, config, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(plugin_id) DO UPDATE SET
			config = excluded.config,
			updated_at = CURRENT_TIMESTAMP`,
		pluginID, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to save config for %s: %w", pluginID, err)
	}
	return nil
}
