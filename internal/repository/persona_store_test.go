package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"persona-llm/internal/domain"
)

func samplePersonas() []domain.Persona {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Persona{
		{
			ID: "b", CreatedAt: base.Add(time.Minute), Author: domain.AuthorImported,
			Profile: domain.PersonaProfile{
				Name: "Second", Traits: []string{"Calm"}, DecisionMakingRules: []string{"Wait"},
				RiskTolerance: domain.RiskLow,
				Examples:      []domain.PersonaExample{{Prompt: "hi", Response: "hey"}},
			},
		},
		{
			ID: "a", CreatedAt: base, Author: domain.AuthorUser,
			Profile: domain.PersonaProfile{
				Name: "First", Traits: []string{"Bold"}, DecisionMakingRules: []string{"Act"},
				RiskTolerance: domain.RiskHigh,
			},
		},
	}
}

// exerciseStore comprueba el contrato común: vacío al inicio, orden preservado y reescritura completa.
func exerciseStore(t *testing.T, store PersonaStore) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	want := samplePersonas()
	require.NoError(t, store.Save(ctx, want))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].ID)
	require.Equal(t, "a", got[1].ID)
	require.True(t, want[0].CreatedAt.Equal(got[0].CreatedAt))
	require.Equal(t, want[0].Profile, got[0].Profile)
	require.Equal(t, domain.AuthorImported, got[0].Author)

	require.NoError(t, store.Save(ctx, want[1:]))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].ID)

	require.NoError(t, store.Save(ctx, nil))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryPersonaStore(t *testing.T) {
	exerciseStore(t, NewMemoryPersonaStore())
}

func TestMemoryPersonaStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryPersonaStore(samplePersonas()...)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	got[0].ID = "mutated"

	again, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "b", again[0].ID)
}

func TestMemoryPersonaStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryPersonaStore().Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFilePersonaStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "personas.json")
	exerciseStore(t, NewFilePersonaStore(path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFilePersonaStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFilePersonaStore(path).Load(context.Background())
	require.Error(t, err)
}

func TestRedisPersonaStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisPersonaStore(client, "")
	exerciseStore(t, store)

	require.True(t, mr.Exists(DefaultRedisPersonaKey))
	require.Equal(t, time.Duration(0), mr.TTL(DefaultRedisPersonaKey))
}

func TestRedisPersonaStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.SetError("LOADING")

	_, err := NewRedisPersonaStore(client, "custom:key").Load(context.Background())
	require.Error(t, err)
}
