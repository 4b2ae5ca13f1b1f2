package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/minigame"
	"github.com/wricardo/grid-tactics/game/scenario"
	"github.com/wricardo/grid-tactics/game/service"
)

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func testSnapshot() *minigame.Snapshot {
	pos := engine.Position{X: 1, Y: 1}
	ap := 35
	return &minigame.Snapshot{
		Turn:            2,
		Round:           1,
		Type:            scenario.TypeObstacle,
		Status:          minigame.StatusInProgress,
		ActiveCharacter: 1,
		TurnOrder:       []engine.EntityID{1},
		Entities: []minigame.EntityView{
			{ID: 1, Type: scenario.EntityCharacter, Name: "Kara", Position: &pos, Attributes: &engine.Attributes{Pwr: 3, Mov: 3}, AP: &ap, Player: true},
		},
		Grid: minigame.GridView{Width: 3, Height: 3, Rows: []string{"###", "IK#", "###"}},
	}
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "a1b2", "turn": 3})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/a1b2", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["id"] != "a1b2" {
		t.Errorf("Expected id a1b2, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"Plain body", "Internal Server Error", "API error: 500"},
		{"JSON error", `{"error": "session not found"}`, "session not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil {
				t.Fatal("Expected error for HTTP 500 response")
			}
			if err.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)

		resp := service.SessionInfo{
			ID:           "a1b2",
			ScenarioID:   "warehouse",
			MinigameType: scenario.TypeObstacle,
			State:        testSnapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), toolRequest("create_session", map[string]interface{}{
		"scenario_id": "warehouse",
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Created session: a1b2", "Scenario: warehouse (obstacle)", "IK#"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
	if body["scenario_id"] != "warehouse" {
		t.Errorf("Expected scenario_id to be forwarded, got %v", body)
	}
}

func TestClient_actions(t *testing.T) {
	tests := []struct {
		name     string
		handler  func(*Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args     map[string]interface{}
		expected service.ActionInput
	}{
		{
			name:    "move",
			handler: func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleMove },
			args:    map[string]interface{}{"session_id": "a1b2", "x": float64(2), "y": float64(1), "intent": "step toward the exit"},
			expected: service.ActionInput{
				Kind:   engine.KindMove,
				Target: &engine.Position{X: 2, Y: 1},
			},
		},
		{
			name:     "push",
			handler:  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handlePush },
			args:     map[string]interface{}{"session_id": "a1b2", "target_id": float64(4), "actor_id": float64(2)},
			expected: service.ActionInput{ActorID: 2, Kind: engine.KindPush, TargetID: 4},
		},
		{
			name:     "turn",
			handler:  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleTurn },
			args:     map[string]interface{}{"session_id": "a1b2", "direction": "down-left"},
			expected: service.ActionInput{Kind: engine.KindTurn, Direction: "down-left"},
		},
		{
			name:     "attack",
			handler:  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleAttack },
			args:     map[string]interface{}{"session_id": "a1b2", "target_id": float64(5)},
			expected: service.ActionInput{Kind: engine.KindAttack, TargetID: 5},
		},
		{
			name:     "pass",
			handler:  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handlePass },
			args:     map[string]interface{}{"session_id": "a1b2"},
			expected: service.ActionInput{Kind: engine.KindPass},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.ActionInput
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != "POST" || r.URL.Path != "/api/sessions/a1b2/actions" {
					t.Errorf("Expected POST /api/sessions/a1b2/actions, got %s %s", r.Method, r.URL.Path)
				}
				raw, _ := io.ReadAll(r.Body)
				if strings.Contains(string(raw), "intent") {
					t.Errorf("intent should not be forwarded: %s", raw)
				}
				json.Unmarshal(raw, &got)
				json.NewEncoder(w).Encode(service.ActionResult{Success: true, Message: "done", State: testSnapshot()})
			}))
			defer server.Close()

			client := NewClient(server.URL)
			result, err := tt.handler(client)(context.Background(), toolRequest(tt.name, tt.args))
			if err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}
			if result.IsError {
				t.Fatalf("Unexpected tool error: %s", resultText(t, result))
			}
			if !strings.Contains(resultText(t, result), "✓ done") {
				t.Errorf("Expected success line, got: %s", resultText(t, result))
			}

			if got.Kind != tt.expected.Kind || got.ActorID != tt.expected.ActorID ||
				got.TargetID != tt.expected.TargetID || got.Direction != tt.expected.Direction {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
			if tt.expected.Target != nil && (got.Target == nil || *got.Target != *tt.expected.Target) {
				t.Errorf("Expected target %+v, got %+v", tt.expected.Target, got.Target)
			}
		})
	}
}

func TestClient_resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/a1b2/resolve" {
			t.Errorf("Expected POST /api/sessions/a1b2/resolve, got %s %s", r.Method, r.URL.Path)
		}
		state := testSnapshot()
		state.Mode = engine.ModeBatch
		json.NewEncoder(w).Encode(service.ActionResult{
			Success: true,
			Message: "Resolved 1 planned action(s)",
			Events: []service.GameEvent{
				{Type: service.EventConflict, Message: "Milo's step 1 clashes with Kara (occupancy)"},
			},
			State: state,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleResolve(context.Background(), toolRequest("resolve", map[string]interface{}{"session_id": "a1b2"}))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"✓ Resolved 1 planned action(s)", "» Milo's step 1 clashes with Kara (occupancy)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %s", want, text)
		}
	}
}

func TestClient_actionArgumentErrors(t *testing.T) {
	client := NewClient("http://localhost:1")
	ctx := context.Background()

	cases := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"move":   client.handleMove,
		"push":   client.handlePush,
		"turn":   client.handleTurn,
		"attack": client.handleAttack,
	}
	for name, handler := range cases {
		result, err := handler(ctx, toolRequest(name, map[string]interface{}{"session_id": "a1b2"}))
		if err != nil {
			t.Fatalf("%s returned an error: %v", name, err)
		}
		if !result.IsError {
			t.Errorf("%s without its required arguments should be a tool error", name)
		}
	}
}

func TestClient_validMoves(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewEncoder(w).Encode(service.MovesInfo{
			EntityID: 1,
			Position: engine.Position{X: 2, Y: 1},
			AP:       50,
			Moves:    []engine.Position{{X: 2, Y: 2}, {X: 1, Y: 1}},
			Pushes:   []service.PushInfo{{ObjectID: 2, PushOption: engine.PushOption{Direction: engine.Right, StaminaCost: 7}}},
			Actions:  []engine.ActionRequest{{Kind: engine.KindMove}, {Kind: engine.KindMove}, {Kind: engine.KindPass}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleValidMoves(context.Background(), toolRequest("valid_moves", map[string]interface{}{
		"session_id": "a1b2",
		"entity_id":  float64(1),
	}))
	if err != nil {
		t.Fatal(err)
	}

	if path != "/api/sessions/a1b2/moves/1" {
		t.Errorf("Unexpected path %s", path)
	}
	text := resultText(t, result)
	for _, want := range []string{"Entity #1 at (2,1), AP 50", "Moves: (2,2) (1,1)", "Push: #2 right (stamina 7)", "Legal actions: move, pass"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %s", want, text)
		}
	}
}

func TestClient_history(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		to := engine.Position{X: 2, Y: 2}
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Entries: []minigame.HistoryEntry{
				{Turn: 2, Round: 1, ByAI: true, ExecutionResult: engine.ExecutionResult{Success: true, ActorID: 2, Action: engine.ActionRequest{Kind: engine.KindAttack, TargetID: 1}, Damage: 2}},
				{Turn: 1, Round: 1, ExecutionResult: engine.ExecutionResult{Success: true, ActorID: 1, Action: engine.ActionRequest{Kind: engine.KindMove}, To: &to}},
			},
			TotalEntries: 5,
			Page:         1,
			PageSize:     2,
			TotalPages:   3,
			HasNext:      true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleHistory(context.Background(), toolRequest("history", map[string]interface{}{
		"session_id": "a1b2",
		"page":       float64(1),
		"limit":      float64(2),
	}))
	if err != nil {
		t.Fatal(err)
	}

	if query != "limit=2&page=1" {
		t.Errorf("Unexpected query %q", query)
	}
	text := resultText(t, result)
	for _, want := range []string{"Page 1/3, Total: 5", "Turn 2, round 1: ✓ #2 (AI) attack for 2", "Turn 1, round 1: ✓ #1 move → (2,2)", "More: page=2"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %s", want, text)
		}
	}
}

func TestClient_toolErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleGetState(context.Background(), toolRequest("get_state", map[string]interface{}{"session_id": "zzzz"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("Expected a tool error")
	}
	if !strings.Contains(resultText(t, result), "session not found") {
		t.Errorf("Unexpected error text %s", resultText(t, result))
	}
}

func TestFormatSnapshot(t *testing.T) {
	state := testSnapshot()
	remaining := 8
	state.MaxTurns = 10
	state.TurnsRemaining = &remaining

	result := formatSnapshot(state)

	expectedFields := []string{
		"Round 1, Turn 2 (in_progress)",
		"Turns remaining: 8/10",
		"Active: Kara (#1)",
		"Turn order: Kara (#1)",
		"IK#",
		"- #1 Kara [character] at (1,1) pwr 3 mov 3 AP 35",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatSnapshot_Outcome(t *testing.T) {
	won := testSnapshot()
	won.IsWon, won.IsComplete = true, true
	if !strings.Contains(formatSnapshot(won), "🎉 VICTORY!") {
		t.Errorf("Expected victory banner, got: %s", formatSnapshot(won))
	}

	lost := testSnapshot()
	lost.IsLost, lost.IsComplete = true, true
	if !strings.Contains(formatSnapshot(lost), "💀 DEFEAT") {
		t.Errorf("Expected defeat banner, got: %s", formatSnapshot(lost))
	}

	batch := testSnapshot()
	batch.Mode = engine.ModeBatch
	batch.Plans = []engine.PlannedPath{{CharacterID: 1, Steps: []engine.Position{{X: 2, Y: 1}, {X: 3, Y: 1}}}}
	if text := formatSnapshot(batch); !strings.Contains(text, "Plan Kara (#1): (2,1) → (3,1)") {
		t.Errorf("Expected planned path, got: %s", text)
	}

	if formatSnapshot(nil) != "No state available" {
		t.Error("Expected placeholder for nil state")
	}
}

func TestFormatActionResult(t *testing.T) {
	result := &service.ActionResult{
		Success: false,
		Message: "Kara cannot move: Target is a wall",
		Results: []minigame.HistoryEntry{
			{Turn: 3, ExecutionResult: engine.ExecutionResult{ActorID: 1, Action: engine.ActionRequest{Kind: engine.KindMove}, Error: engine.MsgTargetWall}},
			{Turn: 4, ByAI: true, ExecutionResult: engine.ExecutionResult{Success: true, ActorID: 2, Action: engine.ActionRequest{Kind: engine.KindPass}}},
		},
		Events: []service.GameEvent{
			{Type: service.EventRejected, Message: "ignored"},
			{Type: service.EventRoundComplete, Message: "Round 1 complete", Timestamp: time.Now()},
		},
		State: testSnapshot(),
	}

	text := formatActionResult(result)
	for _, want := range []string{"✗ Action failed: Kara cannot move", "✓ AI #2 pass", "» Round 1 complete"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %s", want, text)
		}
	}
	if strings.Contains(text, "ignored") {
		t.Error("rejected events are summarised by the first line only")
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), toolRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Grid Tactics - Complete Instructions",
		"OBJECTIVE:",
		"MAP LEGEND:",
		"TURN ORDER:",
		"ACTION POINTS:",
		"PUSHING:",
		"ENEMIES:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

func TestClient_HandleMessage(t *testing.T) {
	client := NewClient("http://localhost:8080")

	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	response := client.GetMCPServer().HandleMessage(context.Background(), msg)
	data, err := json.Marshal(response)
	if err != nil {
		t.Fatal(err)
	}

	for _, tool := range []string{"create_session", "get_state", "valid_moves", "move", "push", "turn", "attack", "pass", "run_ai", "resolve", "list_scenarios"} {
		if !strings.Contains(string(data), `"`+tool+`"`) {
			t.Errorf("Expected tool %s to be listed", tool)
		}
	}
}
