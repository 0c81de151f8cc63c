// Package settings persists the channel credentials used by the live embed.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
)

// Field names, also used as option keys by the SQL backends.
const (
	FieldAPIKey    = "api_key"
	FieldChannelID = "channel_id"

	keyAPIKey    = FieldAPIKey
	keyChannelID = FieldChannelID
)

var (
	// ErrReadOnly is returned by Save on stores that cannot persist changes.
	ErrReadOnly = errors.New("settings store is read-only")
	// ErrUnknownField is returned by CheckFields for names other than the Field constants.
	ErrUnknownField = errors.New("unknown settings field")
)

// Store reads and writes the embed settings. Missing values load as empty strings.
type Store interface {
	Load(ctx context.Context) (engine.Settings, error)
	Save(ctx context.Context, s engine.Settings) error
	Name() string
}

// EnvStore serves fixed settings, typically read from the environment.
type EnvStore struct {
	settings engine.Settings
}

// NewEnvStore returns a read-only store holding s.
func NewEnvStore(s engine.Settings) *EnvStore {
	return &EnvStore{settings: s.Trimmed()}
}

func (s *EnvStore) Load(_ context.Context) (engine.Settings, error) {
	engine.IncrSettingsRead()
	return s.settings, nil
}

func (s *EnvStore) Save(_ context.Context, _ engine.Settings) error {
	return ErrReadOnly
}

func (s *EnvStore) Name() string { return "env" }

// Writable reports whether store accepts Save calls.
func Writable(store Store) bool {
	_, ro := store.(*EnvStore)
	return store != nil && !ro
}

// CheckFields validates field names passed to Merge as clearFields.
func CheckFields(names []string) error {
	for _, name := range names {
		if name != FieldAPIKey && name != FieldChannelID {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	return nil
}

// Merge empties the fields named in clearFields, then overlays the non-empty
// fields of update onto current. An empty update field keeps the stored value.
func Merge(current, update engine.Settings, clearFields ...string) engine.Settings {
	for _, name := range clearFields {
		switch name {
		case FieldAPIKey:
			current.APIKey = ""
		case FieldChannelID:
			current.ChannelID = ""
		}
	}
	update = update.Trimmed()
	if update.APIKey != "" {
		current.APIKey = update.APIKey
	}
	if update.ChannelID != "" {
		current.ChannelID = update.ChannelID
	}
	return current
}

// Seed fills fields that are empty in store with the values from defaults.
// Fields already stored are left alone. Read-only stores are skipped.
func Seed(ctx context.Context, store Store, defaults engine.Settings) error {
	defaults = defaults.Trimmed()
	if defaults.APIKey == "" && defaults.ChannelID == "" {
		return nil
	}
	current, err := store.Load(ctx)
	if err != nil {
		return err
	}
	merged := current
	if merged.APIKey == "" {
		merged.APIKey = defaults.APIKey
	}
	if merged.ChannelID == "" {
		merged.ChannelID = defaults.ChannelID
	}
	if merged == current {
		return nil
	}
	if err := store.Save(ctx, merged); err != nil && !errors.Is(err, ErrReadOnly) {
		return err
	}
	return nil
}
