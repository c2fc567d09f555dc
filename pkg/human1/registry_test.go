package human1

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "human1-sdk/internal/common/errors"
)

func newClockedRegistry() (*Registry, *time.Time) {
	r := NewRegistry()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return r, &now
}

func TestRegistry_Register(t *testing.T) {
	r, now := newClockedRegistry()
	assert.Equal(t, StateUnregistered, r.State())
	assert.True(t, r.LastRegistration().IsZero())

	app := NewApp()
	require.NoError(t, r.Register(app))

	assert.Equal(t, StateRegistered, r.State())
	assert.True(t, r.Has(DefaultAppName))
	got, ok := r.Get(DefaultAppName)
	require.True(t, ok)
	assert.Same(t, app, got)
	assert.Equal(t, *now, r.LastRegistration())
}

func TestRegistry_RejectsNil(t *testing.T) {
	r := NewRegistry()

	err := r.Register(nil)
	assert.True(t, errors.Is(err, ErrInvalidApplication))
	assert.Equal(t, apperrors.ErrCodeInvalidApplication, apperrors.Normalize(err).Code)

	var typedNil *App
	err = r.Register(typedNil)
	assert.True(t, errors.Is(err, ErrInvalidApplication))

	assert.Equal(t, StateUnregistered, r.State())
}

func TestRegistry_Detect(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		app, ok := NewRegistry().Detect()
		assert.False(t, ok)
		assert.Nil(t, app)
	})

	t.Run("default wins over newer named entries", func(t *testing.T) {
		r, _ := newClockedRegistry()
		def, other := NewApp(), NewApp()
		require.NoError(t, r.Register(def))
		require.NoError(t, r.Register(other, WithName("admin")))

		got, ok := r.Detect()
		require.True(t, ok)
		assert.Same(t, def, got)
	})

	t.Run("most recent named entry", func(t *testing.T) {
		r, _ := newClockedRegistry()
		a, b := NewApp(), NewApp()
		require.NoError(t, r.Register(a, WithName("a")))
		require.NoError(t, r.Register(b, WithName("b")))

		got, ok := r.Detect()
		require.True(t, ok)
		assert.Same(t, b, got)
	})
}

func TestRegistry_EntriesAndClear(t *testing.T) {
	r, _ := newClockedRegistry()
	require.NoError(t, r.Register(NewApp(), WithName("b")))
	require.NoError(t, r.Register(NewApp(), WithName("a")))
	require.NoError(t, r.Register(NewApp(), WithName("")))

	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"b", "a", DefaultAppName}, []string{entries[0].Name, entries[1].Name, entries[2].Name})
	assert.True(t, entries[0].RegisteredAt.Before(entries[1].RegisteredAt))

	r.Clear()
	assert.Empty(t, r.Entries())
	assert.Equal(t, StateUnregistered, r.State())
	assert.True(t, r.LastRegistration().IsZero())
}

func TestRegistry_ReplaceByName(t *testing.T) {
	r, _ := newClockedRegistry()
	first, second := NewApp(), NewApp()
	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))

	assert.Len(t, r.Entries(), 1)
	got, _ := r.Get(DefaultAppName)
	assert.Same(t, second, got)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unregistered", StateUnregistered.String())
	assert.Equal(t, "registered", StateRegistered.String())
}
