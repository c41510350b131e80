package service

import (
	"time"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
)

const (
	StatusFound  = "found"
	StatusNoPath = "no_path"

	// AdhocScenario names runs whose scenario carries no name.
	AdhocScenario = "adhoc"
)

// SolveResult contains the outcome of one search
type SolveResult struct {
	RunID       string              `json:"run_id,omitempty"`
	Scenario    string              `json:"scenario"`
	Status      string              `json:"status"` // "found" or "no_path"
	Found       bool                `json:"found"`
	Rows        int                 `json:"rows"`
	Cols        int                 `json:"cols"`
	Source      engine.Point        `json:"source"`
	Destination engine.Point        `json:"destination"`
	Path        []engine.Point      `json:"path,omitempty"`
	PathLength  int                 `json:"path_length"`
	Expanded    int                 `json:"expanded"`
	Trace       []engine.Point      `json:"trace,omitempty"`
	Grid        engine.StatusMatrix `json:"grid"`
	Duration    time.Duration       `json:"duration_ns"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Efficiency is the share of expanded cells that ended up on the path.
func (r *SolveResult) Efficiency() float64 {
	if !r.Found || r.Expanded == 0 {
		return 0
	}
	return float64(r.PathLength) / float64(r.Expanded)
}

// RunSummary is the list view of a recorded run
type RunSummary struct {
	ID         string    `json:"id"`
	Scenario   string    `json:"scenario"`
	Status     string    `json:"status"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	PathLength int       `json:"path_length"`
	Expanded   int       `json:"expanded"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScenarioInfo provides information about a stored scenario
type ScenarioInfo struct {
	Filename    string `json:"filename"`
	ScenarioID  string `json:"scenario_id"` // The identifier to use for solving
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Blocked     int    `json:"blocked"`
}
