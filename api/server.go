package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
	"github.com/wricardo/mcp-training/astar/pathfind/service"
	"github.com/wricardo/mcp-training/astar/transport/websocket"
)

// maxBodyBytes caps request bodies; a scenario with a million blocked cells
// still fits.
const maxBodyBytes = 32 << 20

// Option configures a Server
type Option func(*Server)

// WithRateLimit limits solve requests to r per second with the given burst
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Server) {
		s.limiter = rate.NewLimiter(r, burst)
	}
}

// WithLogger replaces the default slog logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server represents the REST API server
type Server struct {
	service service.PathService
	hub     *websocket.Hub
	router  *mux.Router
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(pathService service.PathService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: pathService,
		hub:     hub,
		router:  mux.NewRouter(),
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("", s.handleIndex).Methods("GET")

	// Solving
	api.Handle("/solve", s.limited(s.handleSolve)).Methods("POST")

	// Scenarios
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios", s.handleSaveScenario).Methods("POST")
	api.HandleFunc("/scenarios/{name}", s.handleGetScenario).Methods("GET")
	api.Handle("/scenarios/{name}/solve", s.limited(s.handleSolveScenario)).Methods("POST")

	// Runs
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the mux router so callers can mount extra handlers
func (s *Server) Router() *mux.Router {
	return s.router
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service and engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrOutOfMemory):
		return http.StatusInsufficientStorage
	case errors.Is(err, engine.ErrInvalidScenario),
		errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, service.ErrInvalidScenarioName):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrScenarioNotFound),
		errors.Is(err, service.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrScenariosUnavailable),
		errors.Is(err, service.ErrRunsUnavailable):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	respondError(w, status, err.Error())
}

// limited rejects requests beyond the configured solve rate
func (s *Server) limited(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	})
}

func decodeScenario(w http.ResponseWriter, r *http.Request) (*engine.Scenario, bool) {
	var scenario engine.Scenario
	if r.Body == nil {
		respondError(w, http.StatusBadRequest, "request body required")
		return nil, false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&scenario); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	return &scenario, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name": "astar",
		"endpoints": []string{
			"POST /api/solve",
			"GET /api/scenarios",
			"POST /api/scenarios",
			"GET /api/scenarios/{name}",
			"POST /api/scenarios/{name}/solve",
			"GET /api/runs",
			"GET /api/runs/{id}",
			"DELETE /api/runs/{id}",
			"GET /ws?channel={scenario}",
		},
	})
}

// Solve Handlers

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	scenario, ok := decodeScenario(w, r)
	if !ok {
		return
	}

	result, err := s.service.Solve(r.Context(), scenario)
	if err != nil {
		recordFailure(err)
		s.respondServiceError(w, err)
		return
	}

	s.publish(result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSolveScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	result, err := s.service.SolveScenario(r.Context(), name)
	if err != nil {
		recordFailure(err)
		s.respondServiceError(w, err)
		return
	}

	s.publish(result)
	respondJSON(w, http.StatusOK, result)
}

// publish records metrics and broadcasts a result to its scenario channel
func (s *Server) publish(result *service.SolveResult) {
	recordResult(result)
	if s.hub != nil {
		s.hub.BroadcastResult(result.Scenario, result)
	}
}

// Scenario Handlers

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.service.ListScenarios(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if scenarios == nil {
		scenarios = []*service.ScenarioInfo{}
	}
	respondJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	scenario, err := s.service.LoadScenario(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, scenario)
}

func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	scenario, ok := decodeScenario(w, r)
	if !ok {
		return
	}
	if scenario.Name == "" {
		respondError(w, http.StatusBadRequest, "scenario name is required")
		return
	}

	if err := s.service.SaveScenario(r.Context(), scenario.Name, scenario); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "Scenario saved",
		"name":    scenario.Name,
	})
}

// Run Handlers

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(runs) {
			runs = runs[:limit]
		}
	}

	respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.service.DeleteRun(r.Context(), id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket feed disabled", http.StatusNotImplemented)
		return
	}

	channel := r.URL.Query().Get("channel")
	if channel == "" {
		channel = service.AdhocScenario
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, channel)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
