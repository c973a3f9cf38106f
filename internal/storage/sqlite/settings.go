package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/storage"
)

const (
	keySettings      = "kiosk_settings"
	keyCachedCatalog = "cached_catalog"
)

func (s *SQLiteStore) putKV(ctx context.Context, key string, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, string(blob),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) getKV(ctx context.Context, key string, v any) error {
	var blob string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&blob)
	if err == sql.ErrNoRows {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(blob), v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// SaveSettings replaces the stored settings blob.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings *models.Settings) error {
	return s.putKV(ctx, keySettings, settings)
}

// LoadSettings returns the stored settings blob.
func (s *SQLiteStore) LoadSettings(ctx context.Context) (*models.Settings, error) {
	settings := &models.Settings{}
	if err := s.getKV(ctx, keySettings, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveCatalog caches the last successfully fetched menu snapshot.
func (s *SQLiteStore) SaveCatalog(ctx context.Context, catalog *models.Catalog) error {
	return s.putKV(ctx, keyCachedCatalog, catalog)
}

// LoadCatalog returns the cached menu snapshot.
func (s *SQLiteStore) LoadCatalog(ctx context.Context) (*models.Catalog, error) {
	catalog := &models.Catalog{}
	if err := s.getKV(ctx, keyCachedCatalog, catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}
