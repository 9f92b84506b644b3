package session

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/grid-tactics/game/engine"
)

func createTestScenario() *engine.Scenario {
	return &engine.Scenario{
		Name:         "Test Duel",
		Description:  "Test scenario",
		Width:        3,
		Height:       3,
		PlayerSpawns: []engine.Cell{{X: 0, Y: 0}},
		EnemySpawns:  []engine.Cell{{X: 2, Y: 2}},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	scenario := createTestScenario()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "duel", scenario)
		require.NoError(t, err)
		assert.Equal(t, "test-session", session.ID)
		assert.Equal(t, "duel", session.ScenarioID)
		require.NotNil(t, session.Match)
		assert.Equal(t, engine.PlayerTurn, session.Match.CurrentPhase())
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "duel", scenario)
		require.NoError(t, err)
		assert.Len(t, session.ID, 4)
	})

	t.Run("duplicate ID is rejected case-insensitively", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "duel", scenario)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("nil scenario uses the built-in one", func(t *testing.T) {
		session, err := manager.Create("builtin", "", nil)
		require.NoError(t, err)
		assert.Equal(t, engine.DefaultScenario().Name, session.Scenario.Name)
		assert.Equal(t, 10, session.Match.Grid().Width)
	})

	t.Run("invalid scenario", func(t *testing.T) {
		_, err := manager.Create("bad", "", &engine.Scenario{Name: "bad", Width: 0, Height: 2})
		assert.ErrorIs(t, err, engine.ErrInvalidScenario)
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("a/b", "", scenario)
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("AbCd", "duel", createTestScenario())
	require.NoError(t, err)

	for _, id := range []string{"abcd", "ABCD", "AbCd"} {
		got, err := manager.Get(id)
		require.NoError(t, err, id)
		assert.Same(t, created, got)
	}

	_, err = manager.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	scenario := createTestScenario()

	first, err := manager.GetOrCreate("game", "duel", scenario)
	require.NoError(t, err)
	second, err := manager.GetOrCreate("game", "duel", scenario)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, manager.Count())
}

func TestManager_ListAndDelete(t *testing.T) {
	manager := NewManager()
	scenario := createTestScenario()
	for i := 0; i < 3; i++ {
		_, err := manager.Create(fmt.Sprintf("s%d", i), "duel", scenario)
		require.NoError(t, err)
	}
	assert.Len(t, manager.List(), 3)

	require.NoError(t, manager.Delete("S1"))
	assert.Len(t, manager.List(), 2)
	assert.ErrorIs(t, manager.Delete("s1"), ErrSessionNotFound)

	require.NoError(t, manager.DeleteFromMemory("s0"))
	assert.ErrorIs(t, manager.DeleteFromMemory("s0"), ErrSessionNotFound)
	assert.Equal(t, 1, manager.Count())
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, err := manager.Create("touch", "duel", createTestScenario())
	require.NoError(t, err)

	before := session.LastAccessedAt
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, manager.UpdateLastAccessed("TOUCH"))
	assert.True(t, session.LastAccessedAt.After(before))

	assert.ErrorIs(t, manager.UpdateLastAccessed("missing"), ErrSessionNotFound)
}

func TestManager_SaveWithoutPersistence(t *testing.T) {
	manager := NewManager()
	_, err := manager.Create("mem", "duel", createTestScenario())
	require.NoError(t, err)

	assert.NoError(t, manager.Save("mem"))
	assert.NoError(t, manager.SaveAllSessions())
	assert.NoError(t, manager.LoadPersistedSessions())
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager := NewManager()
	scenario := createTestScenario()

	old, err := manager.Create("old", "duel", scenario)
	require.NoError(t, err)
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	_, err = manager.Create("fresh", "duel", scenario)
	require.NoError(t, err)

	assert.Equal(t, 1, manager.CleanupExpiredSessions(time.Hour))
	_, err = manager.Get("old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get("fresh")
	assert.NoError(t, err)
}

func TestManager_ConcurrentCreate(t *testing.T) {
	manager := NewManager()
	scenario := createTestScenario()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := manager.Create(fmt.Sprintf("c%02d", i), "duel", scenario); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, 20, manager.Count())
}

func TestManager_GeneratedIDsAreHex(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 10; i++ {
		id := manager.generateSessionID()
		assert.Len(t, id, 4)
		assert.Equal(t, strings.ToLower(id), id)
	}
}
