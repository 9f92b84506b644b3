package session

import (
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisPersistence(t *testing.T) {
	mr, client := newTestRedis(t)

	persistence, err := NewRedisPersistence(client, "test", 0, newTestScenarios(t))
	require.NoError(t, err)

	manager := NewManager()
	session, err := manager.Create("r1", "duel", createTestScenario())
	require.NoError(t, err)
	playOneRound(t, session.Match)

	require.NoError(t, persistence.Save(session))
	assert.True(t, mr.Exists("test:session:r1"))
	assert.True(t, persistence.Exists("r1"))

	loaded, err := persistence.Load("r1")
	require.NoError(t, err)
	assert.Equal(t, session.Match.State().Units, loaded.Match.State().Units)
	assert.Equal(t, 2, loaded.Match.Turn())

	other, err := manager.Create("r2", "duel", createTestScenario())
	require.NoError(t, err)
	require.NoError(t, persistence.Save(other))
	// a foreign key under another prefix is not listed
	require.NoError(t, mr.Set("other:session:zz", "{}"))

	ids, err := persistence.ListAll()
	require.NoError(t, err)
	sort.Strings(ids)
	assert.Equal(t, []string{"r1", "r2"}, ids)

	require.NoError(t, persistence.Delete("r1"))
	assert.False(t, persistence.Exists("r1"))
	assert.ErrorIs(t, persistence.Delete("r1"), ErrSessionNotFound)

	_, err = persistence.Load("r1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisPersistence_TTL(t *testing.T) {
	mr, client := newTestRedis(t)

	persistence, err := NewRedisPersistence(client, "", time.Minute, newTestScenarios(t))
	require.NoError(t, err)

	session, err := NewManager().Create("ttl1", "duel", createTestScenario())
	require.NoError(t, err)
	require.NoError(t, persistence.Save(session))

	key := DefaultRedisPrefix + ":session:ttl1"
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	assert.False(t, persistence.Exists("ttl1"))
}

func TestRedisPersistence_Unreachable(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	_, err := NewRedisPersistence(client, "test", 0, nil)
	assert.Error(t, err)
}
