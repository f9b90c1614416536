package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

func createTestConfig() *engine.PuzzleConfig {
	return &engine.PuzzleConfig{
		Name:        "Test Config",
		Description: "Test puzzle",
		MaxSteps:    10,
		PuzzleState: *engine.MustParseLayout(
			"#####",
			"#P..#",
			"#.#.#",
			"#..T#",
			"#####",
		),
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "test", config)
		require.NoError(t, err)
		assert.Equal(t, "test-session", session.ID)
		assert.Equal(t, "test", session.ConfigID)
		require.NotNil(t, session.Engine)
		assert.Equal(t, engine.Position{Row: 1, Col: 1}, session.Engine.GetPlayerPosition())
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "test", config)
		require.NoError(t, err)
		assert.Len(t, session.ID, sessionIDLength)
		assert.Regexp(t, "^[0-9a-f]+$", session.ID)
	})

	t.Run("duplicate ID is case-insensitive", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "test", config)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("../escape", "test", config)
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})

	t.Run("invalid puzzle", func(t *testing.T) {
		bad := createTestConfig()
		bad.Player = engine.Position{Row: 0, Col: 0}
		_, err := manager.Create("", "bad", bad)
		assert.ErrorIs(t, err, engine.ErrInvalidPuzzle)
	})
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	a, err := manager.Create("a", "test", config)
	require.NoError(t, err)
	b, err := manager.Create("b", "test", config)
	require.NoError(t, err)

	require.True(t, a.Engine.Move(engine.Right))
	assert.Equal(t, engine.Position{Row: 1, Col: 3}, a.Engine.GetPlayerPosition())
	assert.Equal(t, engine.Position{Row: 1, Col: 1}, b.Engine.GetPlayerPosition())
	assert.Equal(t, engine.Position{Row: 1, Col: 1}, config.Player, "config is not mutated")
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("abc", "test", createTestConfig())
	require.NoError(t, err)

	got, err := manager.Get("ABC")
	require.NoError(t, err)
	assert.Same(t, created, got)

	_, err = manager.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()

	first, err := manager.GetOrCreate("x1", "test", createTestConfig())
	require.NoError(t, err)
	second, err := manager.GetOrCreate("x1", "test", createTestConfig())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, manager.Count())
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	_, err := manager.Create("gone", "test", createTestConfig())
	require.NoError(t, err)

	require.NoError(t, manager.Delete("GONE"))
	assert.ErrorIs(t, manager.Delete("gone"), ErrSessionNotFound)
	assert.ErrorIs(t, manager.DeleteFromMemory("gone"), ErrSessionNotFound)
	assert.Zero(t, manager.Count())
}

func TestManager_ListAndCleanup(t *testing.T) {
	manager := NewManager()
	old, err := manager.Create("old", "test", createTestConfig())
	require.NoError(t, err)
	_, err = manager.Create("fresh", "test", createTestConfig())
	require.NoError(t, err)

	assert.Len(t, manager.List(), 2)

	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	assert.Equal(t, 1, manager.CleanupExpiredSessions(time.Hour))

	sessions := manager.List()
	require.Len(t, sessions, 1)
	assert.Equal(t, "fresh", sessions[0].ID)
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, err := manager.Create("touch", "test", createTestConfig())
	require.NoError(t, err)

	session.LastAccessedAt = time.Time{}
	require.NoError(t, manager.UpdateLastAccessed("touch"))
	assert.False(t, session.LastAccessedAt.IsZero())
	assert.ErrorIs(t, manager.UpdateLastAccessed("nope"), ErrSessionNotFound)
}

func TestManager_RunCleanupStopsWithContext(t *testing.T) {
	manager := NewManager()
	session, err := manager.Create("idle", "test", createTestConfig())
	require.NoError(t, err)
	session.LastAccessedAt = time.Now().Add(-time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.RunCleanup(ctx, 5*time.Millisecond, time.Minute)
		close(done)
	}()

	assert.Eventually(t, func() bool { return manager.Count() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", "test", config)
			if assert.NoError(t, err) {
				ids <- session.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[strings.ToLower(id)], "duplicate id %s", id)
		seen[strings.ToLower(id)] = true
	}
	assert.Equal(t, 50, manager.Count())
}
