package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wricardo/mcp-training/astar/api"
	"github.com/wricardo/mcp-training/astar/pathfind/runs"
	"github.com/wricardo/mcp-training/astar/pathfind/scenario"
	"github.com/wricardo/mcp-training/astar/pathfind/service"
	"github.com/wricardo/mcp-training/astar/transport/mcp"
	"github.com/wricardo/mcp-training/astar/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

// stack holds the wired services shared by serve and mcp
type stack struct {
	scenarios *scenario.Manager
	runs      *runs.Manager
	service   service.PathService
}

// newStack wires the scenario store, run registry and path service
func newStack(cmd *cli.Command) (*stack, error) {
	scenarios, err := scenario.NewManager(cmd.String("scenario-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario manager: %w", err)
	}

	registry := runs.NewManager(int(cmd.Int("run-limit")))

	svc := service.NewPathService(registry, scenarios,
		service.WithMaxCells(int(cmd.Int("max-cells"))),
		service.WithLogger(slog.Default()),
	)

	return &stack{scenarios: scenarios, runs: registry, service: svc}, nil
}

func (s *stack) apiServer(cmd *cli.Command, hub *websocket.Hub) *api.Server {
	limit := rate.Inf
	if perSecond := cmd.Float("rate-limit"); perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return api.NewServer(s.service, hub,
		api.WithRateLimit(limit, int(cmd.Int("rate-burst"))),
		api.WithLogger(slog.Default()),
	)
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "run-limit",
			Value:   runs.DefaultLimit,
			Usage:   "recent runs kept in memory",
			Sources: cli.EnvVars("ASTAR_RUN_LIMIT"),
		},
		&cli.FloatFlag{
			Name:    "rate-limit",
			Usage:   "solve requests per second, 0 for unlimited",
			Sources: cli.EnvVars("ASTAR_RATE_LIMIT"),
		},
		&cli.IntFlag{
			Name:    "rate-burst",
			Value:   20,
			Usage:   "solve request burst",
			Sources: cli.EnvVars("ASTAR_RATE_BURST"),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket, metrics and MCP endpoint",
		Flags: append(runFlags(),
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("ASTAR_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("ASTAR_PORT", "PORT"),
			},
			&cli.DurationFlag{
				Name:    "run-max-age",
				Value:   24 * time.Hour,
				Usage:   "drop runs older than this",
				Sources: cli.EnvVars("ASTAR_RUN_MAX_AGE"),
			},
			&cli.DurationFlag{
				Name:    "cleanup-interval",
				Value:   time.Hour,
				Usage:   "how often expired runs are dropped",
				Sources: cli.EnvVars("ASTAR_CLEANUP_INTERVAL"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		),
		Action: runServe,
	}
}

// runServe starts the HTTP server, the WebSocket hub, the scenario watcher
// and the run cleanup, plus an ngrok tunnel when enabled. Everything stops
// on SIGINT or SIGTERM.
func runServe(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStack(cmd)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cmd.String("host"), strconv.Itoa(int(cmd.Int("port"))))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	addr = listener.Addr().String()

	hub := websocket.NewHub()
	mcpClient := mcp.NewClient("http://" + addr)
	handler := newRouter(st.apiServer(cmd, hub), mcpClient)

	httpServer := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return st.scenarios.Watch(gctx)
	})

	g.Go(func() error {
		cleanupRoutine(gctx, st.runs, cmd.Duration("cleanup-interval"), cmd.Duration("run-max-age"))
		return nil
	})

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", addr)
		slog.Info("endpoints",
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?channel=<scenario>",
			"mcp", "http://"+addr+"/mcp",
			"metrics", "http://"+addr+"/metrics")

		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if cmd.Bool("ngrok") {
		g.Go(func() error {
			return serveNgrok(gctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// newRouter mounts the API at the root and the MCP endpoint at /mcp
func newRouter(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.Handle("/mcp", mcpHandler(mcpClient))
	return router
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
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

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// serveNgrok exposes handler through an ngrok tunnel until ctx ends. A
// missing auth token disables the tunnel without failing the server.
func serveNgrok(ctx context.Context, authToken, domain string, handler http.Handler) error {
	if authToken == "" {
		slog.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return nil
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		slog.Error("failed to start ngrok tunnel", "error", err)
		return nil
	}

	ngrokURL := tun.URL()
	slog.Info("ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"mcp", ngrokURL+"/mcp")

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		tunnelServer.Shutdown(shutdownCtx)
	}()

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("ngrok server error", "error", err)
	}
	slog.Info("ngrok tunnel closed")
	return nil
}

// cleanupRoutine periodically removes runs older than maxAge
func cleanupRoutine(ctx context.Context, registry *runs.Manager, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := registry.CleanupExpired(maxAge); removed > 0 {
				slog.Info("cleaned up expired runs", "removed", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server, reusing an external API or starting an internal one",
		Flags: append(runFlags(),
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "external API server to reuse when it answers",
				Sources: cli.EnvVars("ASTAR_API_URL"),
			},
		),
		Action: runStdioMCP,
	}
}

// runStdioMCP runs an MCP stdio server. It reuses the external API when it
// answers; otherwise it starts an internal HTTP API on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := cmd.String("api-url")
	slog.Info("checking for external API server", "url", baseURL)

	if !apiAvailable(ctx, baseURL) {
		internal, err := startInternalAPI(ctx, cmd)
		if err != nil {
			return err
		}
		baseURL = internal
		slog.Info("MCP stdio server ready (using internal HTTP server)", "url", baseURL)
	} else {
		slog.Info("MCP stdio server ready (using external HTTP server)", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable probes GET /api on baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api", nil)
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

// startInternalAPI serves the API on 127.0.0.1 until ctx ends and returns its URL
func startInternalAPI(ctx context.Context, cmd *cli.Command) (string, error) {
	st, err := newStack(cmd)
	if err != nil {
		return "", err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)
	go st.scenarios.Watch(ctx)

	httpServer := &http.Server{Handler: st.apiServer(cmd, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("internal HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	return "http://" + listener.Addr().String(), nil
}
