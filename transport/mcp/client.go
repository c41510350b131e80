package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
	"github.com/wricardo/mcp-training/astar/pathfind/service"
	"github.com/wricardo/mcp-training/astar/render"
)

// Version is reported to MCP clients during initialization
const Version = "1.0.0"

// maxPathPoints caps how many path coordinates are spelled out in tool output
const maxPathPoints = 64

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
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

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"A* Pathfinder",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`A* Pathfinder - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Find the shortest 4-connected path between two cells of a grid with blocked cells.
Coordinates are x,y where x is the row and y the column, both 0-based from the upper left.

AVAILABLE TOOLS:
- find_path: Solve an ad-hoc grid (rows, cols, source, destination, blocked cells)
- solve_scenario: Solve a stored scenario by ID
- list_scenarios: List stored scenarios
- get_scenario: Show a stored scenario without solving it
- list_runs: List recent solves
- get_run: Show the full result of a recent solve
- astar_instructions: Explain the grid model, symbols and result fields`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	pointSchema := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "string",
			"description": description + " as \"x,y\" (row,column)",
		}
	}

	// Solving
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Find the shortest path on an ad-hoc grid with A*",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"rows": map[string]interface{}{
					"type":        "integer",
					"description": "Number of rows",
				},
				"cols": map[string]interface{}{
					"type":        "integer",
					"description": "Number of columns",
				},
				"source":      pointSchema("Start cell"),
				"destination": pointSchema("Goal cell"),
				"blocked": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Impassable cells, each as \"x,y\" (optional)",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Label for the run and its WebSocket channel (optional)",
				},
			},
			Required: []string{"rows", "cols", "source", "destination"},
		},
	}, c.handleFindPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_scenario",
		Description: "Solve a stored scenario",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Scenario ID from list_scenarios",
				},
			},
			Required: []string{"scenario_id"},
		},
	}, c.handleSolveScenario)

	// Scenarios
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List stored scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_scenario",
		Description: "Show a stored scenario and its starting grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Scenario ID from list_scenarios",
				},
			},
			Required: []string{"scenario_id"},
		},
	}, c.handleGetScenario)

	// Runs
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List recent solves, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs to return (optional)",
				},
			},
		},
	}, c.handleListRuns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_run",
		Description: "Show the full result of a recent solve",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID from find_path, solve_scenario or list_runs",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleGetRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "astar_instructions",
		Description: "Explain the grid model, cell symbols and result fields",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
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

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func intArg(args map[string]interface{}, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	}
	return 0, fmt.Errorf("%s must be an integer", key)
}

func pointArg(key string, value interface{}) (engine.Point, error) {
	switch v := value.(type) {
	case string:
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return engine.Point{}, fmt.Errorf("%s: expected \"x,y\", got %q", key, v)
		}
		x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
		y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errX != nil || errY != nil {
			return engine.Point{}, fmt.Errorf("%s: expected \"x,y\", got %q", key, v)
		}
		return engine.Point{X: x, Y: y}, nil
	case map[string]interface{}:
		x, errX := intArg(v, "x")
		y, errY := intArg(v, "y")
		if errX != nil || errY != nil {
			return engine.Point{}, fmt.Errorf("%s: expected {\"x\": n, \"y\": n}", key)
		}
		return engine.Point{X: x, Y: y}, nil
	case nil:
		return engine.Point{}, fmt.Errorf("%s is required", key)
	}
	return engine.Point{}, fmt.Errorf("%s: expected \"x,y\"", key)
}

// scenarioFromArgs builds the find_path request body
func scenarioFromArgs(args map[string]interface{}) (*engine.Scenario, error) {
	rows, err := intArg(args, "rows")
	if err != nil {
		return nil, err
	}
	cols, err := intArg(args, "cols")
	if err != nil {
		return nil, err
	}
	source, err := pointArg("source", args["source"])
	if err != nil {
		return nil, err
	}
	destination, err := pointArg("destination", args["destination"])
	if err != nil {
		return nil, err
	}

	s := &engine.Scenario{
		Rows:        rows,
		Cols:        cols,
		Source:      source,
		Destination: destination,
	}
	s.Name, _ = args["name"].(string)

	if raw, ok := args["blocked"]; ok && raw != nil {
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("blocked must be an array of \"x,y\" strings")
		}
		for i, item := range list {
			p, err := pointArg(fmt.Sprintf("blocked[%d]", i), item)
			if err != nil {
				return nil, err
			}
			s.Blocked = append(s.Blocked, p)
		}
	}
	return s, nil
}

// Tool handlers

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scenario, err := scenarioFromArgs(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", "/api/solve", scenario, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleSolveScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := arguments(request)["scenario_id"].(string)
	if id == "" {
		return mcp.NewToolResultError("scenario_id is required"), nil
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", "/api/scenarios/"+url.PathEscape(id)+"/solve", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []*service.ScenarioInfo
	if err := c.apiCall(ctx, "GET", "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(scenarios) == 0 {
		return mcp.NewToolResultText("No scenarios available"), nil
	}

	var b strings.Builder
	b.WriteString("Available scenarios:\n")
	for _, s := range scenarios {
		fmt.Fprintf(&b, "- %s: %dx%d, %d blocked", s.ScenarioID, s.Rows, s.Cols, s.Blocked)
		if s.Description != "" {
			fmt.Fprintf(&b, " - %s", s.Description)
		}
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := arguments(request)["scenario_id"].(string)
	if id == "" {
		return mcp.NewToolResultError("scenario_id is required"), nil
	}

	var scenario engine.Scenario
	if err := c.apiCall(ctx, "GET", "/api/scenarios/"+url.PathEscape(id), nil, &scenario); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatScenario(id, &scenario)), nil
}

func (c *Client) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/runs"
	if _, ok := arguments(request)["limit"]; ok {
		limit, err := intArg(arguments(request), "limit")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path += "?limit=" + strconv.Itoa(limit)
	}

	var runs []*service.RunSummary
	if err := c.apiCall(ctx, "GET", path, nil, &runs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(runs) == 0 {
		return mcp.NewToolResultText("No runs recorded"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent runs (%d):\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(&b, "- %s [%s] %s %dx%d", r.ID, r.Scenario, r.Status, r.Rows, r.Cols)
		if r.Status == service.StatusFound {
			fmt.Fprintf(&b, " length %d", r.PathLength)
		}
		fmt.Fprintf(&b, ", %d expanded, %s\n", r.Expanded, r.CreatedAt.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := arguments(request)["run_id"].(string)
	if id == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "GET", "/api/runs/"+url.PathEscape(id), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	legend := make([]string, 0, 5)
	for _, s := range []engine.Status{engine.Unvisited, engine.Blocked, engine.Expanded, engine.OnPath, engine.IsDestination} {
		legend = append(legend, fmt.Sprintf("  %s  %s", render.Glyph(s), s))
	}

	instructions := `A* PATHFINDER

GRID MODEL:
- A grid has rows x cols cells. A point is "x,y": x is the row, y the column, both 0-based.
- (0,0) is the upper-left cell. Moves are 4-connected: north, east, south, west. Every step costs 1.
- Blocked cells are impassable. The source and destination can never be blocked.

SEARCH:
- A* with the Manhattan distance to the destination as heuristic, so paths are always shortest.
- Neighbors are offered in the order north, east, south, west; ties in the open set are broken
  first-in first-out, so the same input always yields the same path.
- A search that finds no path is a normal result with status "no_path", not an error.

CELL SYMBOLS IN RENDERED GRIDS:
` + strings.Join(legend, "\n") + `

The source is drawn as part of the path (*). Expanded cells (o) show how much of the grid the
search explored before reaching the destination.

RESULT FIELDS:
- status: "found" or "no_path"
- path_length: steps from source to destination
- expanded: cells finalized before the destination was reached
- run_id: pass to get_run to see the result again

ERRORS:
- Points outside the grid, or blocks on the source or destination, are rejected.
- Grids above the server's cell limit are rejected as too large.

TIPS:
- Use list_scenarios and solve_scenario for stored puzzles.
- Use find_path with a name to group live results on the WebSocket channel /ws?channel=<name>.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSolveResult(r *service.SolveResult) string {
	var b strings.Builder

	if r.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	}
	fmt.Fprintf(&b, "Scenario: %s (%dx%d)\n", r.Scenario, r.Rows, r.Cols)
	fmt.Fprintf(&b, "Source: %s  Destination: %s\n", r.Source, r.Destination)

	if r.Found {
		fmt.Fprintf(&b, "Result: path found, length %d, %d cells expanded\n", r.PathLength, r.Expanded)
		fmt.Fprintf(&b, "Path: %s\n", formatPath(r.Path))
	} else {
		fmt.Fprintf(&b, "Result: no path found, %d cells expanded\n", r.Expanded)
	}

	if len(r.Grid) > 0 {
		b.WriteString("\nGrid:\n")
		b.WriteString(render.Plain(r.Grid))
	}
	return b.String()
}

func formatPath(path []engine.Point) string {
	parts := make([]string, 0, len(path))
	for i, p := range path {
		if i == maxPathPoints {
			parts = append(parts, fmt.Sprintf("... (%d more)", len(path)-i))
			break
		}
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " -> ")
}

func formatScenario(id string, s *engine.Scenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %s\n", id)
	if s.Name != "" && s.Name != id {
		fmt.Fprintf(&b, "Name: %s\n", s.Name)
	}
	if s.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", s.Description)
	}
	fmt.Fprintf(&b, "Size: %dx%d\n", s.Rows, s.Cols)
	fmt.Fprintf(&b, "Source: %s  Destination: %s\n", s.Source, s.Destination)
	fmt.Fprintf(&b, "Blocked cells: %d\n", len(s.Blocked))

	// Draw the starting grid when it builds; invalid files still show their fields
	if grid, err := s.Build(); err == nil {
		b.WriteString("\nGrid:\n")
		b.WriteString(render.Plain(grid))
	}
	return b.String()
}
