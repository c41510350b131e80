// Command analyze solves every scenario in a directory and prints
// human-readable search statistics: grid size, obstacle density, path
// length against the Manhattan lower bound, expansions and efficiency.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
	"github.com/wricardo/mcp-training/astar/pathfind/service"
)

// Analysis holds the statistics for one scenario.
type Analysis struct {
	File       string
	Name       string
	Rows, Cols int
	Blocked    int
	Distance   int // Manhattan distance between the endpoints
	Result     *service.SolveResult
}

// Density is the share of blocked cells.
func (a *Analysis) Density() float64 {
	cells := a.Rows * a.Cols
	if cells == 0 {
		return 0
	}
	return float64(a.Blocked) / float64(cells)
}

// Detour is how many steps the path needs beyond the Manhattan distance.
func (a *Analysis) Detour() int {
	if a.Result == nil || !a.Result.Found {
		return 0
	}
	return a.Result.PathLength - a.Distance
}

// Summary counts outcomes across a directory.
type Summary struct {
	Scenarios int
	Found     int
	NoPath    int
	Invalid   int
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "solve every scenario in a directory and print search statistics",
		ArgsUsage: "[DIR]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "scenarios"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			summary, err := analyzeDir(ctx, os.Stdout, dir)
			if err != nil {
				return err
			}
			if summary.Invalid > 0 {
				return cli.Exit("", 2)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// analyzeDir analyzes every scenario file in dir in name order
func analyzeDir(ctx context.Context, w io.Writer, dir string) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	svc := service.NewPathService(nil, nil)
	summary := &Summary{}

	for _, entry := range entries {
		if entry.IsDir() || !engine.IsScenarioFile(entry.Name()) {
			continue
		}
		summary.Scenarios++

		path := filepath.Join(dir, entry.Name())
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", entry.Name())

		analysis, err := analyzeFile(ctx, svc, path)
		if err != nil {
			summary.Invalid++
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}

		if analysis.Result.Found {
			summary.Found++
		} else {
			summary.NoPath++
		}
		fmt.Fprint(w, formatAnalysis(analysis))
	}

	fmt.Fprintf(w, "\n=== Summary ===\n")
	fmt.Fprintf(w, "Scenarios: %d, solved: %d, no path: %d, invalid: %d\n",
		summary.Scenarios, summary.Found, summary.NoPath, summary.Invalid)
	return summary, nil
}

// analyzeFile loads and solves one scenario file
func analyzeFile(ctx context.Context, svc service.PathService, path string) (*Analysis, error) {
	s, err := engine.LoadScenarioFile(path)
	if err != nil {
		return nil, err
	}

	result, err := svc.Solve(ctx, s)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		File:     filepath.Base(path),
		Name:     s.Name,
		Rows:     s.Rows,
		Cols:     s.Cols,
		Blocked:  len(s.Blocked),
		Distance: engine.ManhattanDistance(s.Source, s.Destination),
		Result:   result,
	}, nil
}

func formatAnalysis(a *Analysis) string {
	r := a.Result
	out := fmt.Sprintf("Name: %s\n", a.Name)
	out += fmt.Sprintf("Grid Size: %d x %d\n", a.Rows, a.Cols)
	out += fmt.Sprintf("Blocked: %d (%.1f%%)\n", a.Blocked, a.Density()*100)
	out += fmt.Sprintf("Source: %s  Destination: %s  Manhattan distance: %d\n", r.Source, r.Destination, a.Distance)

	if !r.Found {
		out += fmt.Sprintf("Result: no path (%d cells expanded)\n", r.Expanded)
		return out
	}

	out += fmt.Sprintf("Path Length: %d (detour %d)\n", r.PathLength, a.Detour())
	out += fmt.Sprintf("Expanded: %d\n", r.Expanded)
	out += fmt.Sprintf("Efficiency: %.2f\n", r.Efficiency())
	return out
}
