// Command astar finds shortest paths on grids with blocked cells.
//
// Without a subcommand it solves one grid given on the command line:
//
//	astar SIZE SRC DST [BLOCK...]
//
// and prints the grid before and after the search. The exit code is the
// error code of the failure (1 wrong argument count, 2 wrong argument,
// 3 point out of bounds, 4 no path, 6 out of memory).
//
// Subcommands:
//  1. "serve" – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "scenarios" – lists the stored scenarios
//  4. "validate" – checks scenario files
//
// Flags control the scenario directory, color output, debug logging and,
// for serve, host/port, rate limiting and optional ngrok tunneling.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "astar"
)

// main loads .env, runs the command line and exits with its code.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "error", err)
	}

	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}
