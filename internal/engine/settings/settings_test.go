package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvStoreReadOnly(t *testing.T) {
	ctx := context.Background()
	store := NewEnvStore(engine.Settings{APIKey: " key ", ChannelID: "UC1\n"})

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{APIKey: "key", ChannelID: "UC1"}, got)

	err = store.Save(ctx, engine.Settings{APIKey: "other"})
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Equal(t, "env", store.Name())
	assert.False(t, Writable(store))
	assert.False(t, Writable(nil))
}

func TestMerge(t *testing.T) {
	current := engine.Settings{APIKey: "old-key", ChannelID: "UCold"}

	tests := []struct {
		name   string
		update engine.Settings
		want   engine.Settings
	}{
		{"empty keeps both", engine.Settings{}, current},
		{"blank keeps both", engine.Settings{APIKey: "  ", ChannelID: "\t"}, current},
		{"key only", engine.Settings{APIKey: " new-key "}, engine.Settings{APIKey: "new-key", ChannelID: "UCold"}},
		{"channel only", engine.Settings{ChannelID: "UCnew"}, engine.Settings{APIKey: "old-key", ChannelID: "UCnew"}},
		{"both", engine.Settings{APIKey: "k", ChannelID: "c"}, engine.Settings{APIKey: "k", ChannelID: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(current, tt.update))
		})
	}
}

func TestMergeClearFields(t *testing.T) {
	current := engine.Settings{APIKey: "old-key", ChannelID: "UCold"}

	tests := []struct {
		name   string
		update engine.Settings
		clear  []string
		want   engine.Settings
	}{
		{"clear key", engine.Settings{}, []string{FieldAPIKey}, engine.Settings{ChannelID: "UCold"}},
		{"clear both", engine.Settings{}, []string{FieldAPIKey, FieldChannelID}, engine.Settings{}},
		{"update wins over clear", engine.Settings{ChannelID: "UCnew"}, []string{FieldChannelID}, engine.Settings{APIKey: "old-key", ChannelID: "UCnew"}},
		{"unknown ignored", engine.Settings{}, []string{"other"}, current},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(current, tt.update, tt.clear...))
		})
	}
}

func TestCheckFields(t *testing.T) {
	assert.NoError(t, CheckFields(nil))
	assert.NoError(t, CheckFields([]string{FieldAPIKey, FieldChannelID}))
	assert.ErrorIs(t, CheckFields([]string{FieldAPIKey, "admin_password"}), ErrUnknownField)
}

// memStore is a writable in-memory Store.
type memStore struct {
	s     engine.Settings
	saves int
	err   error
}

func (m *memStore) Load(context.Context) (engine.Settings, error) { return m.s, m.err }
func (m *memStore) Save(_ context.Context, s engine.Settings) error {
	m.saves++
	m.s = s
	return nil
}
func (m *memStore) Name() string { return "mem" }

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("fills empty fields only", func(t *testing.T) {
		m := &memStore{s: engine.Settings{ChannelID: "UCstored"}}
		require.NoError(t, Seed(ctx, m, engine.Settings{APIKey: "env-key", ChannelID: "UCenv"}))
		assert.Equal(t, engine.Settings{APIKey: "env-key", ChannelID: "UCstored"}, m.s)
		assert.Equal(t, 1, m.saves)
	})

	t.Run("complete store untouched", func(t *testing.T) {
		m := &memStore{s: engine.Settings{APIKey: "k", ChannelID: "c"}}
		require.NoError(t, Seed(ctx, m, engine.Settings{APIKey: "env-key", ChannelID: "UCenv"}))
		assert.Zero(t, m.saves)
	})

	t.Run("no defaults", func(t *testing.T) {
		m := &memStore{}
		require.NoError(t, Seed(ctx, m, engine.Settings{}))
		assert.Zero(t, m.saves)
	})

	t.Run("read-only store", func(t *testing.T) {
		require.NoError(t, Seed(ctx, NewEnvStore(engine.Settings{}), engine.Settings{APIKey: "k"}))
	})

	t.Run("load error", func(t *testing.T) {
		m := &memStore{err: errors.New("boom")}
		assert.Error(t, Seed(ctx, m, engine.Settings{APIKey: "k"}))
	})
}
