package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
)

var (
	ErrRunNotFound          = errors.New("run not found")
	ErrScenarioNotFound     = errors.New("scenario not found")
	ErrInvalidScenarioName  = errors.New("invalid scenario name")
	ErrScenariosUnavailable = errors.New("no scenario store configured")
	ErrRunsUnavailable      = errors.New("run recording disabled")
)

// PathService defines all path-finding operations
type PathService interface {
	// Solving
	Solve(ctx context.Context, scenario *engine.Scenario) (*SolveResult, error)
	SolveScenario(ctx context.Context, name string) (*SolveResult, error)

	// Runs
	GetRun(ctx context.Context, id string) (*SolveResult, error)
	ListRuns(ctx context.Context) ([]*RunSummary, error)
	DeleteRun(ctx context.Context, id string) error

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, name string) (*engine.Scenario, error)
	SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error
}

// RunStore defines run registry operations
type RunStore interface {
	Create(result *SolveResult) (*Run, error)
	Get(id string) (*Run, error)
	List() []*Run
	Delete(id string) error
}

// ScenarioStore handles scenario loading
type ScenarioStore interface {
	LoadScenario(name string) (*engine.Scenario, error)
	ListScenarios() ([]*ScenarioInfo, error)
	SaveScenario(name string, scenario *engine.Scenario) error
}

// Run is a recorded solve
type Run struct {
	ID        string
	Result    *SolveResult
	CreatedAt time.Time
}
