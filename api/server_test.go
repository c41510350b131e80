package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
	"github.com/wricardo/mcp-training/astar/pathfind/service"
	"github.com/wricardo/mcp-training/astar/transport/websocket"
)

// MockPathService implements service.PathService for testing
type MockPathService struct {
	// Solving
	SolveFunc         func(ctx context.Context, scenario *engine.Scenario) (*service.SolveResult, error)
	SolveScenarioFunc func(ctx context.Context, name string) (*service.SolveResult, error)

	// Runs
	GetRunFunc    func(ctx context.Context, id string) (*service.SolveResult, error)
	ListRunsFunc  func(ctx context.Context) ([]*service.RunSummary, error)
	DeleteRunFunc func(ctx context.Context, id string) error

	// Scenarios
	ListScenariosFunc func(ctx context.Context) ([]*service.ScenarioInfo, error)
	LoadScenarioFunc  func(ctx context.Context, name string) (*engine.Scenario, error)
	SaveScenarioFunc  func(ctx context.Context, name string, scenario *engine.Scenario) error
}

func (m *MockPathService) Solve(ctx context.Context, scenario *engine.Scenario) (*service.SolveResult, error) {
	if m.SolveFunc != nil {
		return m.SolveFunc(ctx, scenario)
	}
	return &service.SolveResult{Scenario: service.AdhocScenario, Status: service.StatusFound, Found: true}, nil
}

func (m *MockPathService) SolveScenario(ctx context.Context, name string) (*service.SolveResult, error) {
	if m.SolveScenarioFunc != nil {
		return m.SolveScenarioFunc(ctx, name)
	}
	return &service.SolveResult{Scenario: name, Status: service.StatusFound, Found: true}, nil
}

func (m *MockPathService) GetRun(ctx context.Context, id string) (*service.SolveResult, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(ctx, id)
	}
	return &service.SolveResult{RunID: id}, nil
}

func (m *MockPathService) ListRuns(ctx context.Context) ([]*service.RunSummary, error) {
	if m.ListRunsFunc != nil {
		return m.ListRunsFunc(ctx)
	}
	return []*service.RunSummary{}, nil
}

func (m *MockPathService) DeleteRun(ctx context.Context, id string) error {
	if m.DeleteRunFunc != nil {
		return m.DeleteRunFunc(ctx, id)
	}
	return nil
}

func (m *MockPathService) ListScenarios(ctx context.Context) ([]*service.ScenarioInfo, error) {
	if m.ListScenariosFunc != nil {
		return m.ListScenariosFunc(ctx)
	}
	return []*service.ScenarioInfo{}, nil
}

func (m *MockPathService) LoadScenario(ctx context.Context, name string) (*engine.Scenario, error) {
	if m.LoadScenarioFunc != nil {
		return m.LoadScenarioFunc(ctx, name)
	}
	return &engine.Scenario{Name: name, Rows: 3, Cols: 3, Destination: engine.Point{X: 2, Y: 2}}, nil
}

func (m *MockPathService) SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error {
	if m.SaveScenarioFunc != nil {
		return m.SaveScenarioFunc(ctx, name, scenario)
	}
	return nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockPathService, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	return NewServer(mockService, hub, opts...)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func wallScenario() *engine.Scenario {
	return &engine.Scenario{
		Rows:        3,
		Cols:        3,
		Source:      engine.Point{X: 0, Y: 0},
		Destination: engine.Point{X: 2, Y: 2},
		Blocked:     []engine.Point{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
	}
}

// Solve Tests

func TestSolve(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		rawBody        string
		setupMock      func(*MockPathService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "Solve found",
			body: wallScenario(),
			setupMock: func(m *MockPathService) {
				m.SolveFunc = func(ctx context.Context, s *engine.Scenario) (*service.SolveResult, error) {
					if s.Rows != 3 || len(s.Blocked) != 3 {
						t.Errorf("Unexpected scenario %+v", s)
					}
					return &service.SolveResult{RunID: "run-1", Status: service.StatusFound, Found: true, PathLength: 4}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SolveResult
				parseResponse(t, w, &resp)
				if resp.RunID != "run-1" || resp.PathLength != 4 {
					t.Errorf("Unexpected result %+v", resp)
				}
			},
		},
		{
			name: "No path is still 200",
			body: wallScenario(),
			setupMock: func(m *MockPathService) {
				m.SolveFunc = func(ctx context.Context, s *engine.Scenario) (*service.SolveResult, error) {
					return &service.SolveResult{Status: service.StatusNoPath}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SolveResult
				parseResponse(t, w, &resp)
				if resp.Status != service.StatusNoPath || resp.Found {
					t.Errorf("Expected no_path result, got %+v", resp)
				}
			},
		},
		{
			name:           "Malformed body",
			rawBody:        `{"rows": `,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid scenario",
			body: wallScenario(),
			setupMock: func(m *MockPathService) {
				m.SolveFunc = func(ctx context.Context, s *engine.Scenario) (*service.SolveResult, error) {
					return nil, fmt.Errorf("%w: source: %w", engine.ErrInvalidScenario, engine.ErrOutOfBounds)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Grid too large",
			body: wallScenario(),
			setupMock: func(m *MockPathService) {
				m.SolveFunc = func(ctx context.Context, s *engine.Scenario) (*service.SolveResult, error) {
					return nil, fmt.Errorf("failed to build grid: %w", engine.ErrOutOfMemory)
				}
			},
			expectedStatus: http.StatusInsufficientStorage,
		},
		{
			name: "Unexpected error",
			body: wallScenario(),
			setupMock: func(m *MockPathService) {
				m.SolveFunc = func(ctx context.Context, s *engine.Scenario) (*service.SolveResult, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPathService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			var req *http.Request
			if tt.rawBody != "" {
				req = httptest.NewRequest("POST", "/api/solve", strings.NewReader(tt.rawBody))
			} else {
				req = makeRequest("POST", "/api/solve", tt.body)
			}

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestSolveScenario(t *testing.T) {
	mockService := &MockPathService{
		SolveScenarioFunc: func(ctx context.Context, name string) (*service.SolveResult, error) {
			if name == "missing" {
				return nil, fmt.Errorf("scenario '%s': %w", name, service.ErrScenarioNotFound)
			}
			return &service.SolveResult{Scenario: name, Status: service.StatusFound, Found: true}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/scenarios/wall/solve", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.SolveResult
	parseResponse(t, w, &resp)
	if resp.Scenario != "wall" {
		t.Errorf("Expected scenario wall, got %s", resp.Scenario)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/scenarios/missing/solve", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestSolveRateLimit(t *testing.T) {
	server := setupTestServer(t, &MockPathService{}, WithRateLimit(0, 1))

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/solve", wallScenario()))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/solve", wallScenario()))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", w.Code)
	}

	// Non-solve routes are not limited
	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/runs", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected runs to stay available, got %d", w.Code)
	}
}

// Scenario Tests

func TestListScenarios(t *testing.T) {
	mockService := &MockPathService{
		ListScenariosFunc: func(ctx context.Context) ([]*service.ScenarioInfo, error) {
			return []*service.ScenarioInfo{
				{ScenarioID: "open", Rows: 5, Cols: 5},
				{ScenarioID: "wall", Rows: 3, Cols: 3, Blocked: 3},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/scenarios", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp []*service.ScenarioInfo
	parseResponse(t, w, &resp)
	if len(resp) != 2 || resp[1].Blocked != 3 {
		t.Errorf("Unexpected scenarios %+v", resp)
	}
}

func TestListScenarios_Unavailable(t *testing.T) {
	mockService := &MockPathService{
		ListScenariosFunc: func(ctx context.Context) ([]*service.ScenarioInfo, error) {
			return nil, service.ErrScenariosUnavailable
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/scenarios", nil))
	if w.Code != http.StatusNotImplemented {
		t.Errorf("Expected status 501, got %d", w.Code)
	}
}

func TestGetScenario(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		err            error
		expectedStatus int
	}{
		{"found", "/api/scenarios/wall", nil, http.StatusOK},
		{"not found", "/api/scenarios/nope", service.ErrScenarioNotFound, http.StatusNotFound},
		{"invalid name", "/api/scenarios/.env", service.ErrInvalidScenarioName, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPathService{
				LoadScenarioFunc: func(ctx context.Context, name string) (*engine.Scenario, error) {
					if tt.err != nil {
						return nil, fmt.Errorf("scenario '%s': %w", name, tt.err)
					}
					s := wallScenario()
					s.Name = name
					return s, nil
				},
			}
			server := setupTestServer(t, mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", tt.path, nil))
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.err == nil {
				var resp engine.Scenario
				parseResponse(t, w, &resp)
				if resp.Name != "wall" || len(resp.Blocked) != 3 {
					t.Errorf("Unexpected scenario %+v", resp)
				}
			}
		})
	}
}

func TestSaveScenario(t *testing.T) {
	var savedName string
	mockService := &MockPathService{
		SaveScenarioFunc: func(ctx context.Context, name string, s *engine.Scenario) error {
			savedName = name
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	s := wallScenario()
	s.Name = "wall"
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/scenarios", s))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	if savedName != "wall" {
		t.Errorf("Expected scenario saved as wall, got %q", savedName)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/scenarios", wallScenario()))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without a name, got %d", w.Code)
	}
}

// Run Tests

func TestListRuns(t *testing.T) {
	now := time.Now()
	mockService := &MockPathService{
		ListRunsFunc: func(ctx context.Context) ([]*service.RunSummary, error) {
			return []*service.RunSummary{
				{ID: "c", CreatedAt: now},
				{ID: "b", CreatedAt: now.Add(-time.Second)},
				{ID: "a", CreatedAt: now.Add(-2 * time.Second)},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		path           string
		expectedStatus int
		expectedCount  int
	}{
		{"/api/runs", http.StatusOK, 3},
		{"/api/runs?limit=2", http.StatusOK, 2},
		{"/api/runs?limit=10", http.StatusOK, 3},
		{"/api/runs?limit=-1", http.StatusBadRequest, 0},
		{"/api/runs?limit=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", tt.path, nil))
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var resp []*service.RunSummary
			parseResponse(t, w, &resp)
			if len(resp) != tt.expectedCount {
				t.Errorf("Expected %d runs, got %d", tt.expectedCount, len(resp))
			}
			if resp[0].ID != "c" {
				t.Errorf("Expected newest run first, got %s", resp[0].ID)
			}
		})
	}
}

func TestGetAndDeleteRun(t *testing.T) {
	mockService := &MockPathService{
		GetRunFunc: func(ctx context.Context, id string) (*service.SolveResult, error) {
			if id != "known" {
				return nil, fmt.Errorf("run %s: %w", id, service.ErrRunNotFound)
			}
			return &service.SolveResult{RunID: id, Status: service.StatusFound}, nil
		},
		DeleteRunFunc: func(ctx context.Context, id string) error {
			if id != "known" {
				return fmt.Errorf("run %s: %w", id, service.ErrRunNotFound)
			}
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{"GET", "/api/runs/known", http.StatusOK},
		{"GET", "/api/runs/unknown", http.StatusNotFound},
		{"DELETE", "/api/runs/known", http.StatusNoContent},
		{"DELETE", "/api/runs/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// Misc Tests

func TestHealthAndMetrics(t *testing.T) {
	server := setupTestServer(t, &MockPathService{})

	// Produce at least one sample for every metric
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/solve", wallScenario()))

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected health status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected metrics status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "astar_solve_total") {
		t.Error("Expected astar_solve_total in metrics output")
	}
}

func TestIndex(t *testing.T) {
	server := setupTestServer(t, &MockPathService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	parseResponse(t, w, &resp)
	if resp["name"] != "astar" {
		t.Errorf("Unexpected index %v", resp)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := setupTestServer(t, &MockPathService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/solve", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestWebSocketDisabled(t *testing.T) {
	server := NewServer(&MockPathService{}, nil)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/ws?channel=wall", nil))
	if w.Code != http.StatusNotImplemented {
		t.Errorf("Expected status 501, got %d", w.Code)
	}
}
