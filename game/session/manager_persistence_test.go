package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerWithPersistence(t *testing.T) {
	scenarios := newTestScenarios(t)
	persistence, err := NewFilePersistence(t.TempDir(), scenarios)
	require.NoError(t, err)

	manager := NewManagerWithPersistence(persistence)

	t.Run("create auto-saves", func(t *testing.T) {
		session, err := manager.Create("auto1", "duel", createTestScenario())
		require.NoError(t, err)
		assert.True(t, persistence.Exists(session.ID))
	})

	t.Run("save after play", func(t *testing.T) {
		session, err := manager.Get("auto1")
		require.NoError(t, err)
		playOneRound(t, session.Match)
		require.NoError(t, manager.Save("auto1"))

		loaded, err := persistence.Load("auto1")
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Match.Turn())
	})

	t.Run("get falls back to persistence", func(t *testing.T) {
		require.NoError(t, manager.DeleteFromMemory("auto1"))
		assert.Equal(t, 0, manager.Count())

		session, err := manager.Get("AUTO1")
		require.NoError(t, err)
		assert.Equal(t, 2, session.Match.Turn())
		assert.Equal(t, 1, manager.Count())
	})

	t.Run("load persisted sessions on startup", func(t *testing.T) {
		_, err := manager.Create("auto2", "duel", createTestScenario())
		require.NoError(t, err)

		fresh := NewManagerWithPersistence(persistence)
		require.NoError(t, fresh.LoadPersistedSessions())
		assert.Equal(t, 2, fresh.Count())
	})

	t.Run("save all", func(t *testing.T) {
		assert.NoError(t, manager.SaveAllSessions())
	})

	t.Run("delete removes persisted copy", func(t *testing.T) {
		require.NoError(t, manager.Delete("auto2"))
		assert.False(t, persistence.Exists("auto2"))

		// only on disk
		require.NoError(t, manager.DeleteFromMemory("auto1"))
		require.NoError(t, manager.Delete("auto1"))
		assert.False(t, persistence.Exists("auto1"))
		assert.ErrorIs(t, manager.Delete("auto1"), ErrSessionNotFound)
	})
}

func TestManagerWithPersistence_TouchWhileSaving(t *testing.T) {
	persistence, err := NewFilePersistence(t.TempDir(), newTestScenarios(t))
	require.NoError(t, err)
	manager := NewManagerWithPersistence(persistence)

	_, err = manager.Create("busy", "duel", createTestScenario())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, manager.UpdateLastAccessed("busy"))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 20; j++ {
			assert.NoError(t, manager.Save("busy"))
		}
	}()
	wg.Wait()

	assert.True(t, persistence.Exists("busy"))
}
