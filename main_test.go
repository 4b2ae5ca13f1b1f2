package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/grid-tactics/game/session"
	"github.com/wricardo/grid-tactics/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedAppName := "Grid Tactics Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

// unsetEnv clears keys for the duration of the test
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "HOST", "PORT", "SCENARIO_DIR", "SESSION_TTL", "AUTO_AI", "MCP_API_URL")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.AutoAI)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("AUTO_AI", "false")
	t.Setenv("NGROK_DOMAIN", "tactics.ngrok.app")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.AutoAI)
	assert.Equal(t, "tactics.ngrok.app", cfg.NgrokDomain)

	t.Setenv("PORT", "not-a-port")
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	unsetEnv(t, "HOST", "SCENARIO_DIR")

	var got Config
	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		var err error
		got, err = resolveConfig(cmd)
		return err
	}

	err := app.Run(context.Background(), []string{"grid-tactics", "--port", "7000", "--scenario-dir", "scenarios"})
	require.NoError(t, err)

	assert.Equal(t, 7000, got.Port)
	assert.Equal(t, "localhost", got.Host)
	assert.Equal(t, "scenarios", got.ScenarioDir)
}

func TestNewAppCommands(t *testing.T) {
	app := newApp()

	names := map[string]bool{}
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["stdio-mcp"])
	assert.Equal(t, Version, app.Version)
}

func TestInitializeServices(t *testing.T) {
	gameService, sessions, err := initializeServices(Config{AutoAI: true})
	require.NoError(t, err)
	require.NotNil(t, gameService)
	require.NotNil(t, sessions)

	info, err := gameService.CreateSession(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, 1, sessions.Count())
}

func TestInitializeServices_InvalidScenarioDir(t *testing.T) {
	_, _, err := initializeServices(Config{ScenarioDir: "/non/existent/path"})
	if err == nil {
		t.Error("Expected error for non-existent scenario directory")
	}
}

func TestInitializeServices_UnknownDefault(t *testing.T) {
	_, _, err := initializeServices(Config{DefaultScenario: "no-such-scenario"})
	if err == nil {
		t.Error("Expected error for unknown default scenario")
	}
}

func TestSessionCleanupRoutine(t *testing.T) {
	manager := session.NewManager()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, 10*time.Millisecond, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}

	// Disabled intervals return immediately
	sessionCleanupRoutine(context.Background(), manager, 0, time.Hour)
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://localhost:8080"))

	t.Run("rejects GET", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})

	t.Run("lists tools", func(t *testing.T) {
		body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodPost, "/mcp", body))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), "create_session")
	})
}

func TestAPIAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.True(t, apiAvailable(context.Background(), server.URL))
	assert.False(t, apiAvailable(context.Background(), "http://127.0.0.1:1"))
}
