package settings

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps settings in a local SQLite key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath is used when SETTINGS_DB=default.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_ytlive", "settings.db")
}

// OpenSQLite opens (or creates) the SQLite settings database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("settings: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("settings: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("settings: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// initSQLiteSchema creates the options table if it doesn't exist.
func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS options (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) (engine.Settings, error) {
	engine.IncrSettingsRead()
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM options WHERE key IN (?, ?)`, keyAPIKey, keyChannelID)
	if err != nil {
		return engine.Settings{}, fmt.Errorf("settings: load: %w", err)
	}
	defer rows.Close()

	var out engine.Settings
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return engine.Settings{}, fmt.Errorf("settings: scan: %w", err)
		}
		assign(&out, k, v)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, in engine.Settings) error {
	in = in.Trimmed()
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("settings: begin: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO options (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	for _, kv := range pairs(in) {
		if _, err := tx.ExecContext(ctx, upsert, kv[0], kv[1], now); err != nil {
			return fmt.Errorf("settings: save %s: %w", kv[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("settings: commit: %w", err)
	}
	engine.IncrSettingsWrite()
	return nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func assign(out *engine.Settings, key, value string) {
	switch key {
	case keyAPIKey:
		out.APIKey = value
	case keyChannelID:
		out.ChannelID = value
	}
}

func pairs(s engine.Settings) [][2]string {
	return [][2]string{
		{keyAPIKey, s.APIKey},
		{keyChannelID, s.ChannelID},
	}
}
