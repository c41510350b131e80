package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
)

// Option configures a PathService
type Option func(*pathServiceImpl)

// WithMaxCells caps the grid size of every solve
func WithMaxCells(n int) Option {
	return func(s *pathServiceImpl) {
		s.maxCells = n
	}
}

// WithLogger replaces the default slog logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *pathServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// pathServiceImpl implements the PathService interface
type pathServiceImpl struct {
	runs      RunStore
	scenarios ScenarioStore
	maxCells  int
	logger    *slog.Logger
}

// NewPathService creates a new path service. A nil RunStore disables run
// recording; a nil ScenarioStore disables named scenarios.
func NewPathService(runs RunStore, scenarios ScenarioStore, opts ...Option) PathService {
	s := &pathServiceImpl{
		runs:      runs,
		scenarios: scenarios,
		maxCells:  engine.DefaultMaxCells,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve validates the scenario, searches a fresh grid and records the run
func (s *pathServiceImpl) Solve(ctx context.Context, scenario *engine.Scenario) (*SolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := engine.ValidateScenario(scenario); err != nil {
		return nil, err
	}

	start := time.Now()

	grid, err := scenario.Build(engine.WithMaxCells(s.maxCells))
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}

	found, err := grid.Search()
	if err != nil && !errors.Is(err, engine.ErrNoPath) {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	name := scenario.Name
	if name == "" {
		name = AdhocScenario
	}

	result := &SolveResult{
		Scenario:    name,
		Status:      StatusNoPath,
		Found:       found.Found,
		Rows:        grid.Rows(),
		Cols:        grid.Cols(),
		Source:      grid.Source(),
		Destination: grid.Destination(),
		Path:        found.Path,
		PathLength:  found.Length,
		Expanded:    found.Expanded,
		Trace:       found.Trace,
		Grid:        grid.Statuses(),
		Duration:    time.Since(start),
		CreatedAt:   time.Now(),
	}
	if found.Found {
		result.Status = StatusFound
	}

	if s.runs != nil {
		run, err := s.runs.Create(result)
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		result.RunID = run.ID
		result.CreatedAt = run.CreatedAt
	}

	s.logger.Debug("solved scenario",
		"scenario", result.Scenario,
		"run_id", result.RunID,
		"status", result.Status,
		"path_length", result.PathLength,
		"expanded", result.Expanded,
		"duration", result.Duration)

	return result, nil
}

// SolveScenario loads a named scenario and solves it
func (s *pathServiceImpl) SolveScenario(ctx context.Context, name string) (*SolveResult, error) {
	scenario, err := s.LoadScenario(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, scenario)
}

// GetRun returns the full result of a recorded run
func (s *pathServiceImpl) GetRun(ctx context.Context, id string) (*SolveResult, error) {
	if s.runs == nil {
		return nil, ErrRunsUnavailable
	}

	run, err := s.runs.Get(id)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return run.Result, nil
}

// ListRuns returns summaries of recorded runs, newest first
func (s *pathServiceImpl) ListRuns(ctx context.Context) ([]*RunSummary, error) {
	if s.runs == nil {
		return []*RunSummary{}, nil
	}

	list := s.runs.List()
	summaries := make([]*RunSummary, 0, len(list))
	for _, run := range list {
		summaries = append(summaries, &RunSummary{
			ID:         run.ID,
			Scenario:   run.Result.Scenario,
			Status:     run.Result.Status,
			Rows:       run.Result.Rows,
			Cols:       run.Result.Cols,
			PathLength: run.Result.PathLength,
			Expanded:   run.Result.Expanded,
			CreatedAt:  run.CreatedAt,
		})
	}
	return summaries, nil
}

// DeleteRun removes a recorded run
func (s *pathServiceImpl) DeleteRun(ctx context.Context, id string) error {
	if s.runs == nil {
		return ErrRunsUnavailable
	}
	if err := s.runs.Delete(id); err != nil {
		return fmt.Errorf("run %s: %w", id, err)
	}
	return nil
}

// ListScenarios returns every valid stored scenario
func (s *pathServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	if s.scenarios == nil {
		return nil, ErrScenariosUnavailable
	}
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a stored scenario by name
func (s *pathServiceImpl) LoadScenario(ctx context.Context, name string) (*engine.Scenario, error) {
	if s.scenarios == nil {
		return nil, ErrScenariosUnavailable
	}

	scenario, err := s.scenarios.LoadScenario(name)
	if err != nil {
		if errors.Is(err, ErrScenarioNotFound) {
			return nil, s.notFound(name)
		}
		return nil, fmt.Errorf("failed to load scenario %s: %w", name, err)
	}
	return scenario, nil
}

// SaveScenario stores a scenario under name
func (s *pathServiceImpl) SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error {
	if s.scenarios == nil {
		return ErrScenariosUnavailable
	}
	if err := s.scenarios.SaveScenario(name, scenario); err != nil {
		return fmt.Errorf("failed to save scenario %s: %w", name, err)
	}
	s.logger.Info("saved scenario", "name", name)
	return nil
}

// notFound lists the available scenario IDs alongside the error
func (s *pathServiceImpl) notFound(name string) error {
	available, err := s.scenarios.ListScenarios()
	if err != nil || len(available) == 0 {
		return fmt.Errorf("scenario '%s': %w", name, ErrScenarioNotFound)
	}

	ids := make([]string, 0, len(available))
	for _, info := range available {
		ids = append(ids, info.ScenarioID)
	}
	return fmt.Errorf("scenario '%s': %w. Available scenarios: %v", name, ErrScenarioNotFound, ids)
}
