package settings

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore keeps settings in the embed_options table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("settings postgres connected", slog.String("addr", config.ConnConfig.Host))
	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, e := range entries {
		sqlBytes, err := schemaFS.ReadFile("schema/" + e.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("exec %s: %w", e.Name(), err)
		}
		slog.Debug("settings migration applied", slog.String("file", e.Name()))
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (engine.Settings, error) {
	engine.IncrSettingsRead()
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM embed_options WHERE key = ANY($1)`,
		[]string{keyAPIKey, keyChannelID})
	if err != nil {
		return engine.Settings{}, fmt.Errorf("settings: load: %w", err)
	}

	var (
		out  engine.Settings
		k, v string
	)
	_, err = pgx.ForEachRow(rows, []any{&k, &v}, func() error {
		assign(&out, k, v)
		return nil
	})
	if err != nil {
		return engine.Settings{}, fmt.Errorf("settings: scan: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Save(ctx context.Context, in engine.Settings) error {
	in = in.Trimmed()
	batch := &pgx.Batch{}
	for _, kv := range pairs(in) {
		batch.Queue(`INSERT INTO embed_options (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			kv[0], kv[1])
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	engine.IncrSettingsWrite()
	return nil
}

func (s *PostgresStore) Name() string { return "postgres" }
