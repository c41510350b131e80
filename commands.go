package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
	"github.com/wricardo/mcp-training/astar/pathfind/scenario"
	"github.com/wricardo/mcp-training/astar/render"
)

func scenariosCommand() *cli.Command {
	return &cli.Command{
		Name:   "scenarios",
		Usage:  "list the scenarios in the scenario directory",
		Action: listScenarios,
	}
}

func listScenarios(ctx context.Context, cmd *cli.Command) error {
	manager, err := scenario.NewManager(cmd.String("scenario-dir"))
	if err != nil {
		return err
	}

	infos, err := manager.ListScenarios()
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if len(infos) == 0 {
		fmt.Fprintf(out, "No scenarios in %s\n", manager.Dir())
		return nil
	}

	rows := [][]string{{"ID", "SIZE", "BLOCKED", "DESCRIPTION"}}
	for _, info := range infos {
		rows = append(rows, []string{
			info.ScenarioID,
			fmt.Sprintf("%dx%d", info.Rows, info.Cols),
			fmt.Sprintf("%d", info.Blocked),
			info.Description,
		})
	}

	fmt.Fprint(out, formatTable(rows))
	return nil
}

// formatTable left-aligns columns, padding each to its widest cell
func formatTable(rows [][]string) string {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = lipgloss.NewStyle().Width(widths[i]).Render(cell)
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check scenario files, or every file in the scenario directory",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "show",
				Usage: "print the starting grid of each valid scenario",
			},
		},
		Action: validateScenarios,
	}
}

// validateScenarios reports every file and fails when any is invalid
func validateScenarios(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		dir := cmd.String("scenario-dir")
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to read scenario directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && engine.IsScenarioFile(entry.Name()) {
				files = append(files, filepath.Join(dir, entry.Name()))
			}
		}
	}

	out := cmd.Root().Writer
	failed := 0
	for _, file := range files {
		s, err := engine.LoadScenarioFile(file)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%dx%d, %d blocked)\n", file, s.Rows, s.Cols, len(s.Blocked))

		if cmd.Bool("show") {
			grid, err := s.Build(engine.WithMaxCells(int(cmd.Int("max-cells"))))
			if err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %v\n", file, err)
				continue
			}
			fmt.Fprint(out, render.Plain(grid))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d scenario files invalid", engine.ErrInvalidScenario, failed, len(files))
	}
	if len(files) == 0 {
		return errors.New("no scenario files found")
	}
	return nil
}
