package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
	"github.com/wricardo/mcp-training/astar/pathfind/service"
)

// MockRunStore implements service.RunStore for testing
type MockRunStore struct {
	runs      map[string]*service.Run
	order     []string
	CreateErr error
}

func NewMockRunStore() *MockRunStore {
	return &MockRunStore{runs: make(map[string]*service.Run)}
}

func (m *MockRunStore) Create(result *service.SolveResult) (*service.Run, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	id := fmt.Sprintf("run_%d", len(m.order)+1)
	run := &service.Run{ID: id, Result: result, CreatedAt: time.Now()}
	m.runs[id] = run
	m.order = append([]string{id}, m.order...)
	return run, nil
}

func (m *MockRunStore) Get(id string) (*service.Run, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, service.ErrRunNotFound
	}
	return run, nil
}

func (m *MockRunStore) List() []*service.Run {
	result := make([]*service.Run, 0, len(m.order))
	for _, id := range m.order {
		if run, ok := m.runs[id]; ok {
			result = append(result, run)
		}
	}
	return result
}

func (m *MockRunStore) Delete(id string) error {
	if _, ok := m.runs[id]; !ok {
		return service.ErrRunNotFound
	}
	delete(m.runs, id)
	return nil
}

// MockScenarioStore implements service.ScenarioStore for testing
type MockScenarioStore struct {
	scenarios map[string]*engine.Scenario
}

func NewMockScenarioStore() *MockScenarioStore {
	return &MockScenarioStore{
		scenarios: map[string]*engine.Scenario{
			"open": {
				Name:        "open",
				Rows:        5,
				Cols:        5,
				Source:      engine.Point{X: 0, Y: 0},
				Destination: engine.Point{X: 4, Y: 4},
			},
			"wall": {
				Name:        "wall",
				Rows:        3,
				Cols:        3,
				Source:      engine.Point{X: 0, Y: 0},
				Destination: engine.Point{X: 2, Y: 2},
				Blocked:     []engine.Point{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
			},
		},
	}
}

func (m *MockScenarioStore) LoadScenario(name string) (*engine.Scenario, error) {
	s, ok := m.scenarios[name]
	if !ok {
		return nil, service.ErrScenarioNotFound
	}
	return s, nil
}

func (m *MockScenarioStore) ListScenarios() ([]*service.ScenarioInfo, error) {
	var infos []*service.ScenarioInfo
	for id, s := range m.scenarios {
		infos = append(infos, &service.ScenarioInfo{ScenarioID: id, Name: s.Name, Rows: s.Rows, Cols: s.Cols})
	}
	return infos, nil
}

func (m *MockScenarioStore) SaveScenario(name string, s *engine.Scenario) error {
	if err := engine.ValidateScenario(s); err != nil {
		return err
	}
	m.scenarios[name] = s
	return nil
}

func newTestService() (service.PathService, *MockRunStore, *MockScenarioStore) {
	runs := NewMockRunStore()
	scenarios := NewMockScenarioStore()
	return service.NewPathService(runs, scenarios), runs, scenarios
}

func TestSolve_Found(t *testing.T) {
	svc, runs, _ := newTestService()

	result, err := svc.Solve(context.Background(), &engine.Scenario{
		Rows:        5,
		Cols:        5,
		Source:      engine.Point{X: 0, Y: 0},
		Destination: engine.Point{X: 4, Y: 4},
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if result.Status != service.StatusFound || !result.Found {
		t.Errorf("Expected found status, got %q", result.Status)
	}
	if result.PathLength != 8 || len(result.Path) != 9 {
		t.Errorf("Expected path length 8, got %d (%d points)", result.PathLength, len(result.Path))
	}
	if result.Scenario != service.AdhocScenario {
		t.Errorf("Expected adhoc scenario name, got %q", result.Scenario)
	}
	if result.Rows != 5 || result.Cols != 5 || result.Grid.Rows() != 5 {
		t.Errorf("Unexpected dimensions %dx%d", result.Rows, result.Cols)
	}
	if result.RunID == "" {
		t.Fatal("Expected run ID to be assigned")
	}
	if _, err := runs.Get(result.RunID); err != nil {
		t.Errorf("Expected run to be recorded: %v", err)
	}
	if eff := result.Efficiency(); eff <= 0 || eff > 1 {
		t.Errorf("Expected efficiency in (0,1], got %f", eff)
	}
}

func TestSolve_NoPathIsResult(t *testing.T) {
	svc, _, _ := newTestService()

	result, err := svc.SolveScenario(context.Background(), "wall")
	if err != nil {
		t.Fatalf("Expected no error for unreachable destination, got %v", err)
	}
	if result.Status != service.StatusNoPath || result.Found {
		t.Errorf("Expected no_path status, got %q", result.Status)
	}
	if result.Expanded != 3 || len(result.Path) != 0 {
		t.Errorf("Unexpected result: expanded=%d path=%v", result.Expanded, result.Path)
	}
	if result.Scenario != "wall" {
		t.Errorf("Expected scenario name wall, got %q", result.Scenario)
	}
	if result.Efficiency() != 0 {
		t.Error("Expected zero efficiency without a path")
	}
}

func TestSolve_Errors(t *testing.T) {
	tests := []struct {
		name     string
		scenario *engine.Scenario
		opts     []service.Option
		wantErr  error
	}{
		{
			name:     "nil scenario",
			scenario: nil,
			wantErr:  engine.ErrInvalidScenario,
		},
		{
			name:     "source outside",
			scenario: &engine.Scenario{Rows: 3, Cols: 3, Source: engine.Point{X: 5, Y: 0}, Destination: engine.Point{X: 1, Y: 1}},
			wantErr:  engine.ErrOutOfBounds,
		},
		{
			name:     "block on destination",
			scenario: &engine.Scenario{Rows: 3, Cols: 3, Destination: engine.Point{X: 1, Y: 1}, Blocked: []engine.Point{{X: 1, Y: 1}}},
			wantErr:  engine.ErrOutOfBounds,
		},
		{
			name:     "too large",
			scenario: &engine.Scenario{Rows: 20, Cols: 20, Destination: engine.Point{X: 19, Y: 19}},
			opts:     []service.Option{service.WithMaxCells(100)},
			wantErr:  engine.ErrOutOfMemory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewPathService(nil, nil, tt.opts...)
			_, err := svc.Solve(context.Background(), tt.scenario)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSolve_CanceledContext(t *testing.T) {
	svc, runs, _ := newTestService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SolveScenario(ctx, "open")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(runs.List()) != 0 {
		t.Error("Expected no run to be recorded")
	}
}

func TestSolve_RecordFailure(t *testing.T) {
	svc, runs, _ := newTestService()
	runs.CreateErr = errors.New("registry full")

	if _, err := svc.SolveScenario(context.Background(), "open"); err == nil {
		t.Error("Expected record failure to surface")
	}
}

func TestSolve_WithoutRunStore(t *testing.T) {
	svc := service.NewPathService(nil, NewMockScenarioStore())

	result, err := svc.SolveScenario(context.Background(), "open")
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if result.RunID != "" {
		t.Errorf("Expected no run ID, got %q", result.RunID)
	}

	runs, err := svc.ListRuns(context.Background())
	if err != nil || len(runs) != 0 {
		t.Errorf("Expected empty run list, got %v, %v", runs, err)
	}
	if _, err := svc.GetRun(context.Background(), "x"); !errors.Is(err, service.ErrRunsUnavailable) {
		t.Errorf("Expected ErrRunsUnavailable, got %v", err)
	}
	if err := svc.DeleteRun(context.Background(), "x"); !errors.Is(err, service.ErrRunsUnavailable) {
		t.Errorf("Expected ErrRunsUnavailable, got %v", err)
	}
}

func TestRuns(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.SolveScenario(ctx, "open")
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	second, err := svc.SolveScenario(ctx, "wall")
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	list, err := svc.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(list))
	}
	if list[0].ID != second.RunID || list[1].ID != first.RunID {
		t.Errorf("Expected newest first, got %s, %s", list[0].ID, list[1].ID)
	}
	if list[0].Status != service.StatusNoPath || list[1].PathLength != 8 {
		t.Errorf("Unexpected summaries: %+v %+v", list[0], list[1])
	}

	got, err := svc.GetRun(ctx, first.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.PathLength != first.PathLength {
		t.Errorf("GetRun returned a different result")
	}

	if err := svc.DeleteRun(ctx, first.RunID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if _, err := svc.GetRun(ctx, first.RunID); !errors.Is(err, service.ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound after delete, got %v", err)
	}
	if err := svc.DeleteRun(ctx, first.RunID); !errors.Is(err, service.ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound on second delete, got %v", err)
	}
}

func TestScenarios(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()

	_, err := svc.LoadScenario(ctx, "missing")
	if !errors.Is(err, service.ErrScenarioNotFound) {
		t.Fatalf("Expected ErrScenarioNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Available scenarios") {
		t.Errorf("Expected available scenarios in message, got %q", err.Error())
	}

	custom := &engine.Scenario{Name: "custom", Rows: 2, Cols: 2, Destination: engine.Point{X: 1, Y: 1}}
	if err := svc.SaveScenario(ctx, "custom", custom); err != nil {
		t.Fatalf("SaveScenario failed: %v", err)
	}
	if _, ok := store.scenarios["custom"]; !ok {
		t.Error("Expected scenario to reach the store")
	}

	bad := &engine.Scenario{Rows: 0, Cols: 2}
	if err := svc.SaveScenario(ctx, "bad", bad); !errors.Is(err, engine.ErrInvalidScenario) {
		t.Errorf("Expected ErrInvalidScenario, got %v", err)
	}

	infos, err := svc.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("ListScenarios failed: %v", err)
	}
	if len(infos) != 3 {
		t.Errorf("Expected 3 scenarios, got %d", len(infos))
	}

	result, err := svc.SolveScenario(ctx, "custom")
	if err != nil {
		t.Fatalf("SolveScenario failed: %v", err)
	}
	if result.PathLength != 2 {
		t.Errorf("Expected path length 2, got %d", result.PathLength)
	}
}

func TestScenarios_Unavailable(t *testing.T) {
	svc := service.NewPathService(nil, nil)
	ctx := context.Background()

	if _, err := svc.ListScenarios(ctx); !errors.Is(err, service.ErrScenariosUnavailable) {
		t.Errorf("Expected ErrScenariosUnavailable, got %v", err)
	}
	if _, err := svc.SolveScenario(ctx, "open"); !errors.Is(err, service.ErrScenariosUnavailable) {
		t.Errorf("Expected ErrScenariosUnavailable, got %v", err)
	}
	if err := svc.SaveScenario(ctx, "x", &engine.Scenario{}); !errors.Is(err, service.ErrScenariosUnavailable) {
		t.Errorf("Expected ErrScenariosUnavailable, got %v", err)
	}
}
