// Command grid-tactics starts the Grid Tactics match server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, scenario directory, session storage (file or redis),
// debug logging and optional ngrok tunneling.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/grid-tactics/api"
	"github.com/wricardo/grid-tactics/game/config"
	"github.com/wricardo/grid-tactics/game/service"
	"github.com/wricardo/grid-tactics/game/session"
	"github.com/wricardo/grid-tactics/transport/mcp"
	"github.com/wricardo/grid-tactics/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid Tactics Server"
)

const (
	storageFile  = "file"
	storageRedis = "redis"

	externalAPIURL = "http://localhost:8080"
)

// serverConfig is the resolved set of command line options
type serverConfig struct {
	Host        string
	Port        int
	ConfigDir   string
	Storage     string
	SessionsDir string
	RedisAddr   string
	RedisPrefix string
	SessionTTL  time.Duration

	NgrokEnabled bool
	NgrokAuth    string
	NgrokDomain  string
}

func (c serverConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		Host:        "localhost",
		Port:        8080,
		ConfigDir:   "configs",
		Storage:     storageFile,
		SessionsDir: "sessions",
		RedisAddr:   "localhost:6379",
		RedisPrefix: session.DefaultRedisPrefix,
		SessionTTL:  24 * time.Hour,
	}
}

func main() {
	// a missing .env is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("error loading .env file")
	}

	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("grid-tactics exited")
	}
}

func newRootCommand() *cli.Command {
	defaults := defaultServerConfig()

	return &cli.Command{
		Name:    "grid-tactics",
		Usage:   "Turn-based grid tactics server with REST, WebSocket and MCP access",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: defaults.Port, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: defaults.Host, Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: defaults.ConfigDir, Usage: "directory containing scenario files", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging with console output", Sources: cli.EnvVars("DEBUG")},
			&cli.StringFlag{Name: "storage", Value: defaults.Storage, Usage: "session storage backend: file or redis", Sources: cli.EnvVars("SESSION_STORAGE")},
			&cli.StringFlag{Name: "sessions-dir", Value: defaults.SessionsDir, Usage: "directory for file session storage", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "redis-addr", Value: defaults.RedisAddr, Usage: "redis address for redis session storage", Sources: cli.EnvVars("REDIS_ADDR")},
			&cli.StringFlag{Name: "redis-prefix", Value: defaults.RedisPrefix, Usage: "key prefix for redis session storage", Sources: cli.EnvVars("REDIS_PREFIX")},
			&cli.DurationFlag{Name: "session-ttl", Value: defaults.SessionTTL, Usage: "idle time after which sessions are discarded", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with API, WebSocket and MCP endpoint",
				Action:  runServerCommand,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run an MCP stdio server backed by an internal HTTP API",
				Action:  runStdioCommand,
			},
		},
	}
}

func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func configFromCommand(cmd *cli.Command) serverConfig {
	return serverConfig{
		Host:         cmd.String("host"),
		Port:         cmd.Int("port"),
		ConfigDir:    cmd.String("config-dir"),
		Storage:      cmd.String("storage"),
		SessionsDir:  cmd.String("sessions-dir"),
		RedisAddr:    cmd.String("redis-addr"),
		RedisPrefix:  cmd.String("redis-prefix"),
		SessionTTL:   cmd.Duration("session-ttl"),
		NgrokEnabled: cmd.Bool("ngrok"),
		NgrokAuth:    cmd.String("ngrok-auth"),
		NgrokDomain:  cmd.String("ngrok-domain"),
	}
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromCommand(cmd)
	log.Info().Str("version", Version).Str("mode", "server").Msgf("starting %s", AppName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameService, err := initializeServices(ctx, cfg)
	if err != nil {
		return eris.Wrap(err, "failed to initialize services")
	}
	return runHTTPServer(ctx, cfg, gameService)
}

func runStdioCommand(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromCommand(cmd)
	log.Info().Str("version", Version).Str("mode", "stdio-mcp").Msgf("starting %s", AppName)

	gameService, err := initializeServices(ctx, cfg)
	if err != nil {
		return eris.Wrap(err, "failed to initialize services")
	}
	return runStdioMCPWithInternalServer(ctx, gameService)
}

// newRouter combines the REST API with the /mcp endpoint
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		if response == nil {
			// notifications have no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}

		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
	return mux
}

// runHTTPServer serves the API until ctx is cancelled, then shuts down gracefully
func runHTTPServer(ctx context.Context, cfg serverConfig, gameService service.GameService) error {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	addr := cfg.addr()
	apiServer := api.NewServer(gameService, hub)
	router := newRouter(apiServer, mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("api", "http://"+addr+"/api").
			Str("websocket", "ws://"+addr+"/ws?session=<session_id>").
			Str("mcp", "http://"+addr+"/mcp").
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- eris.Wrap(err, "HTTP server failed")
		}
	}()

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg, router)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-serverErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return runErr
}

// runNgrokTunnel exposes handler through ngrok until ctx is cancelled
func runNgrokTunnel(ctx context.Context, cfg serverConfig, handler http.Handler) {
	if cfg.NgrokAuth == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Info().Str("domain", cfg.NgrokDomain).Msg("using custom ngrok domain")
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().
		Str("url", url).
		Str("api", url+"/api").
		Str("mcp", url+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// newPersistence builds the session storage backend selected by cfg.Storage
func newPersistence(ctx context.Context, cfg serverConfig, scenarios service.ScenarioManager) (session.SessionPersistence, error) {
	switch cfg.Storage {
	case storageFile, "":
		return session.NewFilePersistence(cfg.SessionsDir, scenarios)
	case storageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		p, err := session.NewRedisPersistence(client, cfg.RedisPrefix, cfg.SessionTTL, scenarios)
		if err != nil {
			client.Close()
			return nil, err
		}
		go func() {
			<-ctx.Done()
			client.Close()
		}()
		return p, nil
	default:
		return nil, eris.Errorf("unknown session storage %q (expected %s or %s)", cfg.Storage, storageFile, storageRedis)
	}
}

// initializeServices wires the scenario and session managers into the game
// service and starts the background maintenance routines, which stop with ctx.
func initializeServices(ctx context.Context, cfg serverConfig) (service.GameService, error) {
	configManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create config manager")
	}

	persistence, err := newPersistence(ctx, cfg, configManager)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create session persistence")
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted sessions")
	}

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(ctx, sessionManager, cfg.SessionTTL)
	go persistenceSyncRoutine(ctx, sessionManager, persistence)

	log.Info().
		Str("config_dir", cfg.ConfigDir).
		Str("storage", cfg.Storage).
		Int("sessions", sessionManager.Count()).
		Msg("services initialized")

	return gameService, nil
}

// sessionCleanupRoutine drops sessions idle for longer than ttl
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// persistenceSyncRoutine removes sessions from memory once their stored copy
// is gone, e.g. a deleted file or an expired redis key.
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphanedSessions(manager, persistence); pruned > 0 {
				log.Info().Int("pruned", pruned).Msg("persistence sync pruned orphaned sessions")
			}
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Debug().Str("session_id", sess.ID).Msg("pruned session from memory")
		}
	}
	return pruned
}

// runStdioMCPWithInternalServer serves MCP over stdio. It reuses an API at
// localhost:8080 when one answers, otherwise it starts an internal API on a
// random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, gameService service.GameService) error {
	baseURL := externalAPIURL

	probe := &http.Client{Timeout: 2 * time.Second}
	resp, err := probe.Get(externalAPIURL + "/health")
	if err == nil {
		resp.Body.Close()
	}

	if err != nil || resp.StatusCode >= 500 {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return eris.Wrap(err, "failed to get available port")
		}

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("addr", baseURL).Msg("started internal HTTP server for MCP stdio")
	} else {
		log.Info().Str("addr", baseURL).Msg("using external API server for MCP stdio")
	}

	if err := mcp.NewClient(baseURL).ServeStdio(); err != nil {
		return eris.Wrap(err, "MCP stdio server error")
	}
	return nil
}
