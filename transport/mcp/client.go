package mcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rotisserie/eris"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/service"
)

// Client is a thin MCP server whose tools proxy to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Tactics",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Tactics - MCP Interface

Turn-based tactics on a square grid. Every tool proxies to the REST API server.

FLOW:
1. create_session (optionally with a scenario_id from list_scenarios)
2. click_cell on one of your units (P) to select it; legal destinations show as *
3. click_cell on a * cell to move; when all your units acted the enemies (E) reply
4. end_turn passes the rest of your units; advance_enemy steps stepped-AI scenarios

AVAILABLE TOOLS:
- create_session, get_session, list_sessions, list_scenarios
- match_state: board, units and phase
- click_cell / bulk_click: clicks, requires an intent explanation
- deselect, end_turn, advance_enemy, reset_match
- action_history: past actions
- describe_cell: occupant, reachability and threat for one cell
- game_instructions: full rules`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnly(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new match session, optionally on a named scenario",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Scenario ID from list_scenarios (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active match sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(sessionOnly("get_session", "Get details of a specific session"), c.handleGetSession)
	c.mcpServer.AddTool(sessionOnly("match_state", "Get the board, units, phase and selection of a match"), c.handleMatchState)

	// Match operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "click_cell",
		Description: "Click a grid cell: selects your unit, or moves the selected unit to a highlighted cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column, 0 is the left edge",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row, 0 is the top edge",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why you are clicking this cell",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset the match before clicking",
				},
			},
			Required: []string{"session_id", "x", "y", "intent"},
		},
	}, c.handleClickCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_click",
		Description: fmt.Sprintf("Click several cells in order (max %d), e.g. \"0,0 1,0\" selects then moves", service.MaxBulkClicks),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"cells": map[string]interface{}{
					"type":        "string",
					"description": "Space separated x,y pairs",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the plan behind these clicks",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset the match before clicking",
				},
			},
			Required: []string{"session_id", "cells", "intent"},
		},
	}, c.handleBulkClick)

	c.mcpServer.AddTool(sessionOnly("deselect", "Clear the current selection"), c.handleDeselect)
	c.mcpServer.AddTool(sessionOnly("end_turn", "Pass every player unit that has not acted and let the enemies reply"), c.handleEndTurn)
	c.mcpServer.AddTool(sessionOnly("advance_enemy", "Let the next enemy unit act (scenarios with stepped AI)"), c.handleAdvance)
	c.mcpServer.AddTool(sessionOnly("reset_match", "Reset the match to the scenario start"), c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "Get the action history of a match",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Actions per page (default 20)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Order (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleActionHistory)

	// Scenarios and help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List available scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one cell: occupant, whether it is a legal destination and the nearby threat. Pass x,y grid coordinates or px,py world coordinates.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"x":          map[string]interface{}{"type": "integer"},
				"y":          map[string]interface{}{"type": "integer"},
				"px":         map[string]interface{}{"type": "number", "description": "World X, converted to the cell containing it"},
				"py":         map[string]interface{}{"type": "number", "description": "World Y"},
			},
			Required: []string{"session_id"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the tools over stdin/stdout until EOF
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// apiCall performs a REST request; API errors come back as their message
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "failed to encode request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return eris.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return eris.New(msg)
		}
		return eris.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return eris.Wrap(err, "failed to decode response")
		}
	}
	return nil
}

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func boolArg(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

func cellArgs(args map[string]interface{}) (engine.Cell, error) {
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return engine.Cell{}, eris.New("x and y must be integers")
	}
	return engine.Cell{X: x, Y: y}, nil
}

// parseCells reads "x,y x,y ..." (also accepting ';' separators and
// surrounding parentheses)
func parseCells(s string) ([]engine.Cell, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ';' || r == '\n' || r == '\t'
	})
	cells := make([]engine.Cell, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "()")
		parts := strings.Split(f, ",")
		if len(parts) != 2 {
			return nil, eris.Errorf("invalid cell %q, expected x,y", f)
		}
		x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
		y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errX != nil || errY != nil {
			return nil, eris.Errorf("invalid cell %q, expected integers", f)
		}
		cells = append(cells, engine.Cell{X: x, Y: y})
	}
	if len(cells) == 0 {
		return nil, eris.New("no cells given")
	}
	return cells, nil
}

// Handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if id := stringArg(args, "scenario_id"); id != "" {
		body["scenario_id"] = id
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nScenario: %s (%s)\n\n%s",
		session.ID, session.ScenarioName, session.ScenarioID, formatMatchState(session.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions: %d\n", response.Count)
	for _, s := range response.Sessions {
		b.WriteString("- " + formatSessionInfo(s) + "\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session) + "\n\n" + formatMatchState(session.State)), nil
}

func (c *Client) handleMatchState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var state engine.MatchState
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID)+"/state", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMatchState(&state)), nil
}

func (c *Client) handleClickCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	cell, err := cellArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if stringArg(args, "intent") == "" {
		return mcp.NewToolResultError("intent is required: explain why you are clicking this cell"), nil
	}

	body := map[string]interface{}{"x": cell.X, "y": cell.Y, "reset": boolArg(args, "reset")}
	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+url.PathEscape(sessionID)+"/click", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleBulkClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	cells, err := parseCells(stringArg(args, "cells"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if stringArg(args, "intent") == "" {
		return mcp.NewToolResultError("intent is required: explain the plan behind these clicks"), nil
	}

	body := map[string]interface{}{"cells": cells, "reset": boolArg(args, "reset")}
	var result service.BulkClickResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+url.PathEscape(sessionID)+"/bulk-click", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkClickResult(&result)), nil
}

func (c *Client) sessionAction(ctx context.Context, request mcp.CallToolRequest, op string) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+url.PathEscape(sessionID)+"/"+op, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleDeselect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.sessionAction(ctx, request, "deselect")
}

func (c *Client) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.sessionAction(ctx, request, "end-turn")
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.sessionAction(ctx, request, "advance")
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var response struct {
		Message string             `json:"message"`
		State   *engine.MatchState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+url.PathEscape(sessionID)+"/reset", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message + "\n\n" + formatMatchState(response.State)), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok && page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit, ok := intArg(args, "limit"); ok && limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if order := stringArg(args, "order"); order != "" {
		params.Set("order", order)
	}
	path := "/api/sessions/" + url.PathEscape(sessionID) + "/history"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []*service.ScenarioInfo
	if err := c.apiCall(ctx, "GET", "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available scenarios:\n")
	for _, s := range scenarios {
		mode := ""
		if s.StepAI {
			mode = ", stepped AI"
		}
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %d players vs %d enemies%s)\n  %s\n",
			s.ScenarioID, s.Name, s.Width, s.Height, s.Players, s.Enemies, mode, s.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Grid Tactics - Complete Instructions

OBJECTIVE:
Manoeuvre your units (P) on a square grid while enemy units (E) chase them.
There is no win condition; play as long as you like.

COORDINATES:
(x, y) with x the column and y the row, (0,0) top-left. Rows in the board
view are printed top to bottom, so row y is line y of the board.

TURNS:
- Phases alternate: player_turn, then enemy_turn. The turn counter goes up
  each time the player phase begins again.
- Each unit acts at most once per phase. Moving is the only action.
- When every unit of the active faction has acted, the other faction's
  phase begins and its units can act again.

SELECTING AND MOVING:
- Click one of your units to select it. Its legal destinations are the
  empty orthogonally adjacent cells, shown as * on the board.
- Click a * cell to move there. That unit is then done for the phase.
- Clicking another of your units switches the selection. Other clicks do
  nothing. Use deselect to clear the selection.
- A unit that already acted can be selected but has no destinations.
- end_turn passes all of your units that have not acted yet.

ENEMIES:
- Each enemy, lowest ID first, targets the nearest player unit (Manhattan
  distance, ties to the lowest ID) and steps onto the adjacent cell that
  gets strictly closer, trying north, south, east, west in that order.
  If no step gets closer it holds position.
- Enemies never attack; they only close in.
- In stepped-AI scenarios the enemy phase waits for advance_enemy calls.

BOARD LEGEND:
  .  empty        *  legal destination
  P  player unit  p  player unit that already acted
  E  enemy unit   e  enemy unit that already acted

TIPS:
- Use bulk_click with pairs like "0,0 1,0" to select and move in one call.
- describe_cell tells you how exposed a cell is before you move there.
- action_history shows what the enemies did during their phase.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	var state engine.MatchState
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID)+"/state", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cell, err := describeTarget(args, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	description, err := describeCell(&state, cell)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(description), nil
}

// describeTarget picks the cell from x,y, or from px,py in world space
func describeTarget(args map[string]interface{}, state *engine.MatchState) (engine.Cell, error) {
	px, okX := args["px"].(float64)
	py, okY := args["py"].(float64)
	if !okX && !okY {
		return cellArgs(args)
	}
	if !okX || !okY {
		return engine.Cell{}, eris.New("px and py must both be numbers")
	}
	grid := engine.NewGrid(state.Width, state.Height, state.CellSize)
	return grid.CellAt(px, py), nil
}

func describeCell(state *engine.MatchState, cell engine.Cell) (string, error) {
	registry, err := engine.RegistryFromState(state)
	if err != nil {
		return "", err
	}
	grid := registry.Grid()
	if !grid.InBounds(cell) {
		return "", eris.Errorf("cell %s is out of bounds, the grid is %dx%d (x 0-%d, y 0-%d)",
			cell, grid.Width, grid.Height, grid.Width-1, grid.Height-1)
	}

	var b strings.Builder
	cx, cy := grid.Center(cell)
	fmt.Fprintf(&b, "Cell %s, centre at world (%g, %g)\n", cell, cx, cy)

	if id, ok := registry.OccupantAt(cell); ok {
		u, _ := registry.Unit(id)
		status := "ready"
		if u.HasActed {
			status = "already acted"
		}
		fmt.Fprintf(&b, "Occupant: %s unit %d (%s)\n", u.Faction, u.ID, status)
		if u.Faction == engine.Player {
			fmt.Fprintf(&b, "Threat: %s\n", engine.AnalyzeThreat(registry, u.ID))
		}
	} else {
		b.WriteString("Occupant: none\n")
		if enemy, d, found := engine.FindNearestEnemy(registry, cell); found {
			fmt.Fprintf(&b, "Nearest enemy: unit %d at %s, distance %d\n", enemy.ID, enemy.Position, d)
		}
	}

	highlighted := false
	for _, h := range state.Highlights {
		if h == cell {
			highlighted = true
		}
	}
	if highlighted {
		b.WriteString("Legal destination for the selected unit: yes\n")
	} else {
		b.WriteString("Legal destination for the selected unit: no\n")
	}
	fmt.Fprintf(&b, "Free neighbours: %d\n", engine.FreeNeighbours(registry, cell))
	return b.String(), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session %s: %s (%s), created %s, last access %s",
		session.ID, session.ScenarioName, session.ScenarioID,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
}

func formatMatchState(state *engine.MatchState) string {
	if state == nil {
		return "No state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: turn %d, %s\n", state.Scenario, state.Turn, state.Phase)
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	b.WriteString("\nBoard (x right, y down):\n")
	b.WriteString(formatBoard(state.Board))

	b.WriteString("\nUnits:\n")
	for _, u := range state.Units {
		status := "ready"
		if u.HasActed {
			status = "acted"
		}
		fmt.Fprintf(&b, "- %s %d at %s, %s\n", u.Faction, u.ID, u.Position, status)
	}

	if state.Selected != nil {
		fmt.Fprintf(&b, "\nSelected: unit %d, destinations: %s\n", *state.Selected, formatCells(state.Highlights))
	}
	fmt.Fprintf(&b, "Actions: %d total, %d since last reset\n", state.TotalActions, state.CurrentActionsCount)
	return b.String()
}

// formatBoard prefixes rows and columns with their indexes
func formatBoard(board []string) string {
	if len(board) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("   ")
	for x := range board[0] {
		b.WriteString(strconv.Itoa(x % 10))
	}
	b.WriteString("\n")
	for y, row := range board {
		fmt.Fprintf(&b, "%2d %s\n", y, row)
	}
	return b.String()
}

func formatCells(cells []engine.Cell) string {
	if len(cells) == 0 {
		return "none"
	}
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func formatEvents(events []service.GameEvent) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.Message == "" {
			continue
		}
		b.WriteString("- " + ev.Message + "\n")
	}
	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome: %s\n", result.Outcome)
	if events := formatEvents(result.Events); events != "" {
		b.WriteString("Events:\n" + events)
	}
	b.WriteString("\n" + formatMatchState(result.State))
	return b.String()
}

func formatBulkClickResult(result *service.BulkClickResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Clicks executed: %d/%d\n", result.ClicksExecuted, result.RequestedClicks)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d clicks\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on click %d: %s\n", result.StoppedOnClick, result.StoppedReason)
	}
	outcomes := make([]string, len(result.Outcomes))
	for i, o := range result.Outcomes {
		outcomes[i] = string(o)
	}
	fmt.Fprintf(&b, "Outcomes: %s\n", strings.Join(outcomes, ", "))
	fmt.Fprintf(&b, "Turn %d -> %d\n", result.StartTurn, result.EndTurn)
	if events := formatEvents(result.Events); events != "" {
		b.WriteString("Events:\n" + events)
	}
	b.WriteString("\n" + formatMatchState(result.State))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action History (Page %d/%d), total: %d\n\n", history.Page, history.TotalPages, history.TotalActions)

	for _, a := range history.Actions {
		fmt.Fprintf(&b, "%d. turn %d %s unit %d %s %s", a.Number, a.Turn, a.Faction, a.Unit, a.Kind, a.From)
		if a.Kind == engine.ActionMove {
			fmt.Fprintf(&b, " -> %s", a.To)
		}
		if a.Target != nil {
			fmt.Fprintf(&b, " (chasing %s)", *a.Target)
		}
		b.WriteString("\n")
	}
	return b.String()
}
