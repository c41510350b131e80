// Package mcp provides the Model Context Protocol tools for the A* pathfinder.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions that proxy to the REST API
//   - Text rendering of solve results, including the final grid
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - find_path: Solve an ad-hoc grid
//   - solve_scenario: Solve a stored scenario
//   - list_scenarios: List stored scenarios
//   - get_scenario: Show a stored scenario and its starting grid
//   - list_runs: List recent solves
//   - get_run: Show the result of a recent solve
//   - astar_instructions: Explain coordinates, symbols and result fields
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
//		body, _ := io.ReadAll(r.Body)
//		resp := client.GetMCPServer().HandleMessage(r.Context(), body)
//		json.NewEncoder(w).Encode(resp)
//	})
package mcp
