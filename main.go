// Command grid-tactics starts the Grid Tactics encounter server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (optionally a .env file) and can be
// overridden with flags. Optional ngrok tunneling exposes the server publicly
// during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/grid-tactics/api"
	"github.com/wricardo/grid-tactics/game/config"
	"github.com/wricardo/grid-tactics/game/minigame"
	"github.com/wricardo/grid-tactics/game/service"
	"github.com/wricardo/grid-tactics/game/session"
	"github.com/wricardo/grid-tactics/pkg/logger"
	"github.com/wricardo/grid-tactics/transport/mcp"
	"github.com/wricardo/grid-tactics/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid Tactics Server"
)

// Config holds the server settings read from the environment.
type Config struct {
	Host            string        `env:"HOST"                     envDefault:"localhost"`
	Port            int           `env:"PORT"                     envDefault:"8080"`
	ScenarioDir     string        `env:"SCENARIO_DIR"`
	DefaultScenario string        `env:"DEFAULT_SCENARIO"`
	SessionTTL      time.Duration `env:"SESSION_TTL"              envDefault:"24h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`
	AutoAI          bool          `env:"AUTO_AI"                  envDefault:"true"`
	NgrokEnabled    bool          `env:"NGROK_ENABLED"`
	NgrokAuthToken  string        `env:"NGROK_AUTHTOKEN"`
	NgrokDomain     string        `env:"NGROK_DOMAIN"`
	APIURL          string        `env:"MCP_API_URL"              envDefault:"http://localhost:8080"`
}

// Addr is the host:port the HTTP server binds to
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides environment values with flags set on the command line
func applyFlags(cmd *cli.Command, cfg *Config) {
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("scenario-dir") {
		cfg.ScenarioDir = cmd.String("scenario-dir")
	}
	if cmd.IsSet("default-scenario") {
		cfg.DefaultScenario = cmd.String("default-scenario")
	}
	if cmd.IsSet("auto-ai") {
		cfg.AutoAI = cmd.Bool("auto-ai")
	}
	if cmd.IsSet("ngrok") {
		cfg.NgrokEnabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.NgrokDomain = cmd.String("ngrok-domain")
	}
	if cmd.IsSet("api-url") {
		cfg.APIURL = cmd.String("api-url")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "grid-tactics",
		Usage:   "turn-based tactical encounter server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (HOST)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP server port (PORT)"},
			&cli.StringFlag{Name: "scenario-dir", Usage: "directory with scenario and job files (SCENARIO_DIR)"},
			&cli.StringFlag{Name: "default-scenario", Usage: "scenario used when a session names none (DEFAULT_SCENARIO)"},
			&cli.BoolFlag{Name: "auto-ai", Usage: "play adversary turns after every party action (AUTO_AI)"},
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel (NGROK_ENABLED)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (NGROK_DOMAIN)"},
			&cli.StringFlag{Name: "api-url", Usage: "external API used by stdio-mcp (MCP_API_URL)"},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "run the HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run an MCP stdio server backed by an external or internal HTTP API",
				Action:  runStdioMCP,
			},
		},
	}
}

func main() {
	envErr := godotenv.Load()

	logger.Init()
	log := logger.Component("main")
	if envErr == nil {
		log.Debug("Loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		log.WithError(envErr).Warn("Error loading .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
}

// resolveConfig merges the environment with command-line flags
func resolveConfig(cmd *cli.Command) (Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Config{}, err
	}
	applyFlags(cmd, &cfg)
	return cfg, nil
}

// initializeServices wires the scenario and session managers into the game
// service.
func initializeServices(cfg Config, opts ...service.Option) (service.GameService, *session.Manager, error) {
	scenarios, err := config.NewManager(cfg.ScenarioDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scenario manager: %w", err)
	}

	if cfg.DefaultScenario != "" {
		if err := scenarios.SetDefault(cfg.DefaultScenario); err != nil {
			return nil, nil, fmt.Errorf("failed to set default scenario: %w", err)
		}
	}

	sessions := session.NewManager(minigame.WithAutoAI(cfg.AutoAI))
	return service.NewGameService(sessions, scenarios, opts...), sessions, nil
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.Component("main")

	hub := websocket.NewHub()
	gameService, sessions, err := initializeServices(cfg, service.WithListener(hub.Notify))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go hub.Run(ctx)
	go sessionCleanupRoutine(ctx, sessions, cfg.CleanupInterval, cfg.SessionTTL)

	addr := cfg.Addr()
	mcpClient := mcp.NewClient("http://" + addr)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub))
	mainRouter.Handle("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(logrus.Fields{
			"addr":      addr,
			"api":       "http://" + addr + "/api",
			"websocket": "ws://" + addr + "/ws?session=<session_id>",
			"mcp":       "http://" + addr + "/mcp",
			"version":   Version,
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runTunnel(ctx, cfg, mainRouter, log)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serveErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")
	return nil
}

// mcpHandler serves MCP JSON-RPC messages posted to /mcp
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runTunnel serves handler through ngrok until ctx is cancelled
func runTunnel(ctx context.Context, cfg Config, handler http.Handler, log *logrus.Entry) {
	if cfg.NgrokAuthToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (set NGROK_AUTHTOKEN)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.WithField("domain", cfg.NgrokDomain).Info("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuthToken))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.WithFields(logrus.Fields{
		"url": url,
		"api": url + "/api",
		"mcp": url + "/mcp",
	}).Info("Ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Error("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(ttl)
		}
	}
}

// apiAvailable reports whether an API server answers the health check
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCP runs an MCP stdio server. It reuses the API at MCP_API_URL when
// one answers; otherwise it starts an internal API on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the protocol
	logger.Log = logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stderr)
	log := logger.Component("main")

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	baseURL := cfg.APIURL
	if apiAvailable(ctx, baseURL) {
		log.WithField("url", baseURL).Info("External API server found, using it for MCP")
	} else {
		log.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		gameService, sessions, err := initializeServices(cfg, service.WithListener(hub.Notify))
		if err != nil {
			listener.Close()
			return err
		}
		go hub.Run(ctx)
		go sessionCleanupRoutine(ctx, sessions, cfg.CleanupInterval, cfg.SessionTTL)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.WithField("url", baseURL).Info("Internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
