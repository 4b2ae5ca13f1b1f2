package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/minigame"
	"github.com/wricardo/grid-tactics/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Tactics",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Tactics - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Lead your party across a walled grid. Obstacle scenarios are won by bringing
every party member into the exit band on the right edge; combat scenarios may
also be won by defeating every enemy.

TURNS:
Characters act one at a time, fastest (highest mov) first. Each has 50 AP per
round: move 15, push 25, attack 20, turn 5. Pass ends the turn.
Batch scenarios (mode "batch") only plan moves, pushes and passes for any
party member; resolve then runs every plan at once as one turn.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage encounters
- get_state: rendered map, turn order and entities
- valid_moves: cells, pushes and actions open to a character
- move / push / turn / attack / pass: act with the character holding the turn
- run_ai: play the active enemy's turn
- resolve: run the planned actions of a batch scenario
- reset: restart the encounter
- history: past actions
- list_scenarios / list_jobs: what can be played
- game_instructions: the full rules

NOTE: The 'intent' parameter on action tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intentProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Brief explanation of the intent behind this action (serves as a rubber duck to help explain your reasoning)",
	}
}

func actorProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Entity ID of the acting character (optional, defaults to the character holding the turn)",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new encounter session with optional scenario selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the scenario to play (optional, e.g. 'warehouse' or 'courier/back-alley')",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active encounter sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Encounter state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_state",
		Description: "Get the current encounter state: rendered map, turn order, AP and entities",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "valid_moves",
		Description: "List the cells a character can move to, the pushes it can make and its legal actions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"entity_id": map[string]interface{}{
					"type":        "integer",
					"description": "Character to inspect (optional, defaults to the character holding the turn)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleValidMoves)

	// Actions
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move a character to a target cell (costs 15 AP)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"actor_id":   actorProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Target column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Target row (0-based)",
				},
				"intent": intentProperty(),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "push",
		Description: "Push an adjacent crate one cell in the direction the character faces (costs 25 AP)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"actor_id":   actorProperty(),
				"target_id": map[string]interface{}{
					"type":        "integer",
					"description": "Entity ID of the crate to push",
				},
				"intent": intentProperty(),
			},
			Required: []string{"session_id", "target_id"},
		},
	}, c.handlePush)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn",
		Description: "Turn a character to face a direction (costs 5 AP)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"actor_id":   actorProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right", "up-left", "up-right", "down-left", "down-right"},
					"description": "Direction to face",
				},
				"intent": intentProperty(),
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "attack",
		Description: "Attack an adjacent enemy for damage equal to the attacker's pwr (costs 20 AP)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"actor_id":   actorProperty(),
				"target_id": map[string]interface{}{
					"type":        "integer",
					"description": "Entity ID of the enemy to attack",
				},
				"intent": intentProperty(),
			},
			Required: []string{"session_id", "target_id"},
		},
	}, c.handleAttack)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pass",
		Description: "End the current character's turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"actor_id":   actorProperty(),
				"intent":     intentProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handlePass)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_ai",
		Description: "Let the computer play the turn of the enemy currently holding the turn",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleRunAI)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "resolve",
		Description: "Execute every planned action of a batch-mode encounter at once; conflicting plans were refused when planned",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleResolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset",
		Description: "Reset the encounter to its initial state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "history",
		Description: "Get the action history for a session, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleHistory)

	// Scenarios
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List available scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_jobs",
		Description: "List jobs, each a group of scenarios played together",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListJobs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive rules and map legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

// intArg reads a numeric argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	scenarioID, _ := args["scenario_id"].(string)

	body := map[string]string{}
	if scenarioID != "" {
		body["scenario_id"] = scenarioID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nScenario: %s (%s)\n", session.ID, session.ScenarioID, session.MinigameType)
	if session.State != nil {
		result += "\n" + formatSnapshot(session.State)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Scenario: %s, Status: %s, Created: %s)\n",
			s.ID, s.ScenarioID, s.Status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state minigame.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&state)), nil
}

func (c *Client) handleValidMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	path := sessionPath(sessionID, "/moves")
	if id, ok := intArg(args, "entity_id"); ok && id > 0 {
		path += fmt.Sprintf("/%d", id)
	}

	var moves service.MovesInfo
	if err := c.apiCall(ctx, "GET", path, nil, &moves); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoves(&moves)), nil
}

// act posts one action. The intent argument is not forwarded.
func (c *Client) act(ctx context.Context, request mcp.CallToolRequest, input service.ActionInput) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	if id, ok := intArg(args, "actor_id"); ok && id > 0 {
		input.ActorID = engine.EntityID(id)
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/actions"), input, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required"), nil
	}
	target := engine.Position{X: x, Y: y}
	return c.act(ctx, request, service.ActionInput{Kind: engine.KindMove, Target: &target})
}

func (c *Client) handlePush(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := intArg(arguments(request), "target_id")
	if !ok {
		return mcp.NewToolResultError("target_id is required"), nil
	}
	return c.act(ctx, request, service.ActionInput{Kind: engine.KindPush, TargetID: engine.EntityID(id)})
}

func (c *Client) handleTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	direction, _ := arguments(request)["direction"].(string)
	if direction == "" {
		return mcp.NewToolResultError("direction is required"), nil
	}
	return c.act(ctx, request, service.ActionInput{Kind: engine.KindTurn, Direction: direction})
}

func (c *Client) handleAttack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := intArg(arguments(request), "target_id")
	if !ok {
		return mcp.NewToolResultError("target_id is required"), nil
	}
	return c.act(ctx, request, service.ActionInput{Kind: engine.KindAttack, TargetID: engine.EntityID(id)})
}

func (c *Client) handlePass(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.act(ctx, request, service.ActionInput{Kind: engine.KindPass})
}

func (c *Client) handleRunAI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/ai"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/resolve"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string             `json:"message"`
		State   *minigame.Snapshot `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.State))), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []service.ScenarioInfo
	if err := c.apiCall(ctx, "GET", "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Scenarios:\n\n")
	for _, s := range scenarios {
		fmt.Fprintf(&b, "• %s - %s [%s]\n  %s\n  Grid: %dx%d, Entities: %d",
			s.ScenarioID, s.Name, s.MinigameType, s.Description, s.Width, s.Height, s.Entities)
		if s.MaxTurns > 0 {
			fmt.Fprintf(&b, ", Turn limit: %d", s.MaxTurns)
		}
		b.WriteString("\n\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var jobs []service.JobInfo
	if err := c.apiCall(ctx, "GET", "/api/jobs", nil, &jobs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Jobs:\n\n")
	for _, j := range jobs {
		fmt.Fprintf(&b, "• %s - %s\n  %s\n  Scenarios: %s\n\n", j.ID, j.Name, j.Description, strings.Join(j.Scenarios, ", "))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Grid Tactics - Complete Instructions

OBJECTIVE:
Bring every party member into the exit band. Combat scenarios that declare
defeatAllEnemies are also won when every enemy is at 0 HP. Some scenarios
have a turn limit, and some are lost if any party member falls.

MAP LEGEND:
• # = wall (the outer ring of every map)
• I = entrance band (left edge), O = exit band (right edge)
• letters = characters, by the first letter of their name
• C = crate, . = open floor

TURN ORDER:
Every character with attributes gets a turn each round, highest mov first,
ties by lower entity ID. Only the character holding the turn may act.

ACTION POINTS:
Each character starts its turn with 50 AP.
• move 15 AP - to any cell the movement pattern of your mov score reaches
• push 25 AP - needs pwr 3 or more, standing behind the crate and facing it
• attack 20 AP - adjacent target only, damage equals your pwr
• turn 5 AP - face one of eight directions
• pass - ends your turn and refills your AP for next round

MOVEMENT:
mov 1 reaches the four orthogonal neighbours; higher mov adds diagonals and
2-cell straight steps. A 2-cell step needs its middle cell free. Use
valid_moves rather than guessing.

PUSHING:
A crate moves one cell in the direction you face into a free cell. Crates up
to pwr x 20 weight can be pushed. The pusher steps into the vacated cell.

ENEMIES:
Enemies chase the nearest party member and attack when adjacent. Call
run_ai when an enemy holds the turn, unless the server plays them
automatically.

STRATEGY:
• Call get_state first and read the map row by row
• Call valid_moves before moving
• Push crates out of corridors before they box you in
• Pass when you have nothing useful left to spend AP on

Good luck!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nScenario: %s (%s)\nType: %s\nStatus: %s\nCreated: %s\nLast accessed: %s\n",
		session.ID, session.ScenarioName, session.ScenarioID, session.MinigameType, session.Status,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.State != nil {
		result += "\n" + formatSnapshot(session.State)
	}
	return result
}

func formatSnapshot(state *minigame.Snapshot) string {
	if state == nil {
		return "No state available"
	}

	var b strings.Builder
	switch {
	case state.IsWon:
		b.WriteString("🎉 VICTORY!\n")
	case state.IsLost:
		b.WriteString("💀 DEFEAT\n")
	}

	fmt.Fprintf(&b, "Round %d, Turn %d (%s)\n", state.Round, state.Turn, state.Status)
	if state.Mode == engine.ModeBatch {
		b.WriteString("Mode: batch (plan, then resolve)\n")
		for _, plan := range state.Plans {
			steps := make([]string, 0, len(plan.Steps))
			for _, s := range plan.Steps {
				steps = append(steps, fmt.Sprintf("(%d,%d)", s.X, s.Y))
			}
			fmt.Fprintf(&b, "Plan %s: %s\n", entityLabel(state, plan.CharacterID), strings.Join(steps, " → "))
		}
	}
	if state.TurnsRemaining != nil {
		fmt.Fprintf(&b, "Turns remaining: %d/%d\n", *state.TurnsRemaining, state.MaxTurns)
	}
	if state.ActiveCharacter != engine.NoEntity {
		fmt.Fprintf(&b, "Active: %s\n", entityLabel(state, state.ActiveCharacter))
	}
	if len(state.TurnOrder) > 0 {
		order := make([]string, 0, len(state.TurnOrder))
		for _, id := range state.TurnOrder {
			order = append(order, entityLabel(state, id))
		}
		fmt.Fprintf(&b, "Turn order: %s\n", strings.Join(order, " → "))
	}

	if len(state.Grid.Rows) > 0 {
		b.WriteString("\nMap:\n")
		for _, row := range state.Grid.Rows {
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}

	if len(state.Entities) > 0 {
		b.WriteString("\nEntities:\n")
		for _, e := range state.Entities {
			b.WriteString(formatEntity(e))
			b.WriteByte('\n')
		}
	}

	if state.LastResult != nil && !state.LastResult.Success && state.LastResult.Error != "" {
		fmt.Fprintf(&b, "\nLast action failed: %s\n", state.LastResult.Error)
	}
	return b.String()
}

func formatEntity(e minigame.EntityView) string {
	parts := []string{fmt.Sprintf("- #%d", e.ID)}
	if e.Name != "" {
		parts = append(parts, e.Name)
	}
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))
	if e.Position != nil {
		parts = append(parts, fmt.Sprintf("at (%d,%d)", e.Position.X, e.Position.Y))
	}
	if e.Facing != nil {
		parts = append(parts, "facing "+engine.DirectionName(*e.Facing))
	}
	if e.Attributes != nil {
		parts = append(parts, fmt.Sprintf("pwr %d mov %d", e.Attributes.Pwr, e.Attributes.Mov))
	}
	if e.Stats != nil {
		parts = append(parts, fmt.Sprintf("HP %d/%d", e.Stats.HP, e.Stats.MaxHP))
	}
	if e.AP != nil {
		parts = append(parts, fmt.Sprintf("AP %d", *e.AP))
	}
	if e.Weight > 0 {
		parts = append(parts, fmt.Sprintf("weight %d", e.Weight))
	}
	return strings.Join(parts, " ")
}

func entityLabel(state *minigame.Snapshot, id engine.EntityID) string {
	for _, e := range state.Entities {
		if e.ID == id && e.Name != "" {
			return fmt.Sprintf("%s (#%d)", e.Name, id)
		}
	}
	return fmt.Sprintf("#%d", id)
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s\n", result.Message)
	} else {
		fmt.Fprintf(&b, "✗ Action failed: %s\n", result.Message)
	}

	// Adversary turns that followed the request
	for _, entry := range result.Results {
		if !entry.ByAI {
			continue
		}
		status := "✓"
		if !entry.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "  %s AI #%d %s", status, entry.ActorID, entry.Action.Kind)
		if entry.Error != "" {
			fmt.Fprintf(&b, " (%s)", entry.Error)
		}
		b.WriteByte('\n')
	}

	for _, ev := range result.Events {
		switch ev.Type {
		case service.EventDefeated, service.EventRoundComplete, service.EventVictory, service.EventDefeat, service.EventConflict:
			fmt.Fprintf(&b, "» %s\n", ev.Message)
		}
	}

	if result.State != nil {
		b.WriteString("\n")
		b.WriteString(formatSnapshot(result.State))
	}
	return b.String()
}

func formatMoves(moves *service.MovesInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entity #%d at (%d,%d), AP %d\n", moves.EntityID, moves.Position.X, moves.Position.Y, moves.AP)

	cells := make([]string, 0, len(moves.Moves))
	for _, p := range moves.Moves {
		cells = append(cells, fmt.Sprintf("(%d,%d)", p.X, p.Y))
	}
	if len(cells) == 0 {
		b.WriteString("Moves: none\n")
	} else {
		fmt.Fprintf(&b, "Moves: %s\n", strings.Join(cells, " "))
	}

	for _, p := range moves.Pushes {
		fmt.Fprintf(&b, "Push: #%d %s (stamina %d)\n", p.ObjectID, engine.DirectionName(p.Direction), p.StaminaCost)
	}

	kinds := map[engine.ActionKind]bool{}
	var legal []string
	for _, a := range moves.Actions {
		if !kinds[a.Kind] {
			kinds[a.Kind] = true
			legal = append(legal, string(a.Kind))
		}
	}
	fmt.Fprintf(&b, "Legal actions: %s\n", strings.Join(legal, ", "))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action History (Page %d/%d, Total: %d):\n\n", history.Page, history.TotalPages, history.TotalEntries)
	for _, e := range history.Entries {
		status := "✓"
		if !e.Success {
			status = "✗"
		}
		who := fmt.Sprintf("#%d", e.ActorID)
		if e.ByAI {
			who += " (AI)"
		}
		fmt.Fprintf(&b, "Turn %d, round %d: %s %s %s", e.Turn, e.Round, status, who, e.Action.Kind)
		if e.To != nil {
			fmt.Fprintf(&b, " → (%d,%d)", e.To.X, e.To.Y)
		}
		if e.Action.Kind == engine.KindAttack && e.Success {
			fmt.Fprintf(&b, " for %d", e.Damage)
		}
		if e.Error != "" {
			fmt.Fprintf(&b, " (%s)", e.Error)
		}
		b.WriteByte('\n')
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore: page=%d\n", history.Page+1)
	}
	return b.String()
}
