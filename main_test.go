package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/grid-tactics/api"
	"github.com/wricardo/grid-tactics/game/session"
	"github.com/wricardo/grid-tactics/transport/mcp"
	"github.com/wricardo/grid-tactics/transport/websocket"
)

func testConfig(t *testing.T) serverConfig {
	t.Helper()
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("configs directory not found")
	}

	cfg := defaultServerConfig()
	cfg.SessionsDir = filepath.Join(t.TempDir(), "sessions")
	return cfg
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Grid Tactics Server", AppName)
}

func TestInitializeServices(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, err := initializeServices(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, gameService)

	scenarios, err := gameService.ListScenarios(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, scenarios)

	info, err := gameService.CreateSession(ctx, "skirmish")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.SessionsDir, info.ID+".json"))
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.ConfigDir = "/non/existent/path"

	_, err := initializeServices(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInitializeServices_UnknownStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = "s3"

	_, err := initializeServices(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown session storage")
}

func TestInitializeServices_Redis(t *testing.T) {
	cfg := testConfig(t)
	mr := miniredis.RunT(t)
	cfg.Storage = storageRedis
	cfg.RedisAddr = mr.Addr()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, err := initializeServices(ctx, cfg)
	require.NoError(t, err)

	info, err := gameService.CreateSession(ctx, "skirmish")
	require.NoError(t, err)
	assert.True(t, mr.Exists(session.DefaultRedisPrefix+":session:"+info.ID))
}

func TestRootCommandFlags(t *testing.T) {
	var got serverConfig
	cmd := newRootCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		got = configFromCommand(c)
		return nil
	}

	err := cmd.Run(context.Background(), []string{"grid-tactics", "--port", "9090", "--storage", "redis", "--session-ttl", "2h"})
	require.NoError(t, err)

	assert.Equal(t, 9090, got.Port)
	assert.Equal(t, "localhost", got.Host)
	assert.Equal(t, "configs", got.ConfigDir)
	assert.Equal(t, storageRedis, got.Storage)
	assert.Equal(t, 2*time.Hour, got.SessionTTL)
	assert.Equal(t, session.DefaultRedisPrefix, got.RedisPrefix)
	assert.False(t, got.NgrokEnabled)
}

func TestRootCommandModes(t *testing.T) {
	cmd := newRootCommand()

	names := map[string]bool{}
	for _, sub := range cmd.Commands {
		names[sub.Name] = true
		for _, alias := range sub.Aliases {
			names[alias] = true
		}
	}

	for _, mode := range []string{"server", "http", "stdio-mcp", "mcp-stdio", "mcp"} {
		assert.True(t, names[mode], "missing mode %s", mode)
	}
}

func TestMCPEndpoint(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, err := initializeServices(ctx, cfg)
	require.NoError(t, err)

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	apiServer := api.NewServer(gameService, hub)
	backend := httptest.NewServer(apiServer)
	defer backend.Close()

	router := newRouter(apiServer, mcp.NewClient(backend.URL))

	t.Run("rejects GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("initialize", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "Grid Tactics")
	})

	t.Run("api still mounted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPruneOrphanedSessions(t *testing.T) {
	dir := t.TempDir()
	persistence, err := session.NewFilePersistence(dir, nil)
	require.NoError(t, err)

	manager := session.NewManagerWithPersistence(persistence)
	kept, err := manager.Create("kept", "", nil)
	require.NoError(t, err)
	gone, err := manager.Create("gone", "", nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, gone.ID+".json")))

	assert.Equal(t, 1, pruneOrphanedSessions(manager, persistence))
	assert.Equal(t, 1, manager.Count())

	_, err = manager.Get(kept.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, pruneOrphanedSessions(manager, persistence))
}
