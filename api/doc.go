// Package api provides HTTP REST API handlers for the A* pathfinder.
//
// The api package implements:
//   - Solve endpoints for ad-hoc and stored scenarios
//   - Scenario listing, loading and saving
//   - Run history backed by the in-memory run registry
//   - Prometheus metrics and a health check
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Solving:
//   - POST /api/solve - Solve the scenario in the request body
//   - POST /api/scenarios/{name}/solve - Solve a stored scenario
//
// Scenarios:
//   - GET /api/scenarios - List stored scenarios
//   - POST /api/scenarios - Save a scenario under its name
//   - GET /api/scenarios/{name} - Get a stored scenario
//
// Runs:
//   - GET /api/runs?limit=N - List recent runs, newest first
//   - GET /api/runs/{id} - Get the full result of a run
//   - DELETE /api/runs/{id} - Forget a run
//
// Other:
//   - GET /health - Health check
//   - GET /metrics - Prometheus metrics
//   - GET /ws?channel={scenario} - Live solve results for a scenario
//
// Request/Response Format:
//
// Scenarios are sent as JSON:
//
//	{
//	  "name": "wall",
//	  "rows": 3, "cols": 3,
//	  "source": {"x": 0, "y": 0},
//	  "destination": {"x": 2, "y": 2},
//	  "blocked": [{"x": 0, "y": 1}, {"x": 1, "y": 1}, {"x": 2, "y": 1}]
//	}
//
// A search that finds no path is not an error: it returns 200 with
// "status": "no_path".
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	server := api.NewServer(pathService, hub, api.WithRateLimit(50, 100))
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// Invalid scenarios and points out of bounds are 400, unknown scenarios
// and runs 404, grids over the cell limit 507 and rate limited requests 429.
package api
