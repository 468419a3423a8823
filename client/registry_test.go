package client

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRegistry(t *testing.T) {
	t.Run("Claims a free room and reports its owner", func(t *testing.T) {
		// Given: an empty registry and a session
		registry := NewRegistry()
		session := NewSession(testLogger(), registry, Config{MatchID: "12345678"})

		// When: the session claims the room
		err := registry.acquire("12345678", session)

		// Then: the claim holds
		require.NoError(t, err)
		assert.Same(t, session, registry.Lookup("12345678"))
	})

	t.Run("Refuses a second session for the same room", func(t *testing.T) {
		registry := NewRegistry()
		first := NewSession(testLogger(), registry, Config{MatchID: "12345678"})
		second := NewSession(testLogger(), registry, Config{MatchID: "12345678"})

		require.NoError(t, registry.acquire("12345678", first))

		err := registry.acquire("12345678", second)

		assert.ErrorIs(t, err, ErrRoomBusy)
	})

	t.Run("Re-claiming by the owner is a no-op", func(t *testing.T) {
		registry := NewRegistry()
		session := NewSession(testLogger(), registry, Config{MatchID: "12345678"})

		require.NoError(t, registry.acquire("12345678", session))
		assert.NoError(t, registry.acquire("12345678", session))
	})

	t.Run("Release frees the room for the next session", func(t *testing.T) {
		// Given: a claimed room
		registry := NewRegistry()
		first := NewSession(testLogger(), registry, Config{MatchID: "12345678"})
		require.NoError(t, registry.acquire("12345678", first))

		// When: the owner releases it
		registry.release("12345678", first)

		// Then: another session may claim it
		second := NewSession(testLogger(), registry, Config{MatchID: "12345678"})
		assert.NoError(t, registry.acquire("12345678", second))
	})

	t.Run("Release by a non-owner keeps the claim", func(t *testing.T) {
		registry := NewRegistry()
		owner := NewSession(testLogger(), registry, Config{MatchID: "12345678"})
		stranger := NewSession(testLogger(), registry, Config{MatchID: "12345678"})
		require.NoError(t, registry.acquire("12345678", owner))

		registry.release("12345678", stranger)

		assert.Same(t, owner, registry.Lookup("12345678"))
	})

	t.Run("Lookup of an unclaimed room returns nil", func(t *testing.T) {
		assert.Nil(t, NewRegistry().Lookup("missing"))
	})
}
