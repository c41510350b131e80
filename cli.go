package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/astar/internal/logging"
	"github.com/wricardo/mcp-training/astar/pathfind/engine"
	"github.com/wricardo/mcp-training/astar/pathfind/scenario"
	"github.com/wricardo/mcp-training/astar/pathfind/service"
	"github.com/wricardo/mcp-training/astar/render"
)

// Exit codes
const (
	exitOK          = 0
	exitArgCount    = 1
	exitWrongArg    = 2
	exitOutOfBounds = 3
	exitNoPath      = 4
	exitOutOfMemory = 6

	// exitFailure covers errors outside the grid taxonomy, such as a server
	// that cannot bind its port.
	exitFailure = 1
)

var (
	ErrArgCount      = errors.New("wrong argument count")
	ErrWrongArgument = errors.New("wrong argument")
)

var (
	sizePattern  = regexp.MustCompile(`^([+-]?\d+)x([+-]?\d+)$`)
	pointPattern = regexp.MustCompile(`^([+-]?\d+),([+-]?\d+)$`)
)

const usageText = `astar [OPTIONS] SIZE SRC DST [BLOCK ...]
   astar [OPTIONS] --scenario NAME
   astar COMMAND [OPTIONS]

   SIZE   - INTEGERxINTEGER.
   SRC    - INTEGER,INTEGER. (Starting from upper left)
   DST    - INTEGER,INTEGER. (Starting from upper left)
   BLOCK  - INTEGER,INTEGER. (Starting from upper left)
   or: astar -h -> print this Usage.`

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)

	err := app.Run(ctx, args)
	if err == nil {
		return exitOK
	}

	code, message, usage := classify(err)
	fmt.Fprintln(stderr, message)
	if usage {
		printUsage(stderr, app.String("color"))
	}
	slog.Debug("command failed", "code", code, "error", err)
	return code
}

// classify maps an error to its exit code and message
func classify(err error) (code int, message string, usage bool) {
	switch {
	case errors.Is(err, ErrArgCount):
		return exitArgCount, "Error: Wrong Argument count!", true
	case errors.Is(err, ErrWrongArgument):
		return exitWrongArg, "Error: Wrong Argument(s)!", true
	case errors.Is(err, engine.ErrOutOfBounds):
		return exitOutOfBounds, "Error: Point out of Bounds!", true
	case errors.Is(err, engine.ErrNoPath):
		return exitNoPath, "Error: No path found!", true
	case errors.Is(err, engine.ErrOutOfMemory):
		return exitOutOfMemory, "Error: Out of Memory!", true
	case errors.Is(err, engine.ErrInvalidScenario),
		errors.Is(err, service.ErrScenarioNotFound),
		errors.Is(err, service.ErrInvalidScenarioName):
		return exitWrongArg, "Error: " + err.Error(), false
	}
	return exitFailure, "Error: " + err.Error(), false
}

func printUsage(w io.Writer, color string) {
	mode, _ := render.ParseMode(color)
	fmt.Fprintf(w, "USAGE:  %s\n\n", usageText)
	fmt.Fprintf(w, "        Legend: %s\n", render.New(w, mode).Legend())
}

// newApp builds the command tree writing to stdout and stderr
func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:            AppName,
		Usage:           "A* shortest paths on grids with blocked cells",
		UsageText:       usageText,
		Version:         Version,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the solve result as JSON instead of grids",
			},
			&cli.StringFlag{
				Name:    "scenario",
				Aliases: []string{"s"},
				Usage:   "solve a stored scenario instead of positional arguments",
			},
			&cli.StringFlag{
				Name:    "scenario-dir",
				Aliases: []string{"config-dir"},
				Value:   "scenarios",
				Usage:   "directory containing scenario files",
				Sources: cli.EnvVars("ASTAR_SCENARIO_DIR"),
			},
			&cli.StringFlag{
				Name:    "color",
				Value:   "auto",
				Usage:   "colored grids: auto, always or never",
				Sources: cli.EnvVars("ASTAR_COLOR"),
			},
			&cli.IntFlag{
				Name:    "max-cells",
				Value:   engine.DefaultMaxCells,
				Usage:   "largest grid (rows*cols) accepted",
				Sources: cli.EnvVars("ASTAR_MAX_CELLS"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("ASTAR_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "log format: text or json",
				Sources: cli.EnvVars("ASTAR_LOG_FORMAT"),
			},
		},
		Before: setupLogging,
		OnUsageError: func(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
			return fmt.Errorf("%w: %v", ErrWrongArgument, err)
		},
		// Errors are turned into exit codes by run
		ExitErrHandler: func(ctx context.Context, cmd *cli.Command, err error) {},
		Action:         solveAction,
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			scenariosCommand(),
			validateCommand(),
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	format, err := logging.ParseFormat(cmd.String("log-format"))
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", ErrWrongArgument, err)
	}

	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	logging.Setup(logging.Config{
		Level:   level,
		Format:  format,
		Output:  cmd.Root().ErrWriter,
		Service: AppName,
	})
	return ctx, nil
}

// solveAction is the root command: build one grid, search it and print it
func solveAction(ctx context.Context, cmd *cli.Command) error {
	mode, err := render.ParseMode(cmd.String("color"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrongArgument, err)
	}

	s, err := scenarioFromCommand(cmd)
	if err != nil {
		return err
	}

	maxCells := int(cmd.Int("max-cells"))
	out := cmd.Root().Writer

	if cmd.Bool("json") {
		return solveJSON(ctx, out, s, maxCells)
	}
	return solveText(render.New(out, mode), s, maxCells)
}

// solveText prints the initial grid, a blank line and the searched grid.
// A search without a path prints only the initial grid.
func solveText(r *render.Renderer, s *engine.Scenario, maxCells int) error {
	grid, err := s.Build(engine.WithMaxCells(maxCells))
	if err != nil {
		return err
	}

	if err := r.Print(grid); err != nil {
		return err
	}

	result, err := grid.Search()
	if err != nil {
		return err
	}
	slog.Debug("search finished", "length", result.Length, "expanded", result.Expanded)

	if _, err := io.WriteString(r.Writer(), "\n"); err != nil {
		return err
	}
	return r.Print(grid)
}

// solveJSON prints the SolveResult. A result without a path still exits
// with the no-path code.
func solveJSON(ctx context.Context, out io.Writer, s *engine.Scenario, maxCells int) error {
	svc := service.NewPathService(nil, nil, service.WithMaxCells(maxCells))

	result, err := svc.Solve(ctx, s)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}

	if !result.Found {
		return engine.ErrNoPath
	}
	return nil
}

// scenarioFromCommand reads the grid from --scenario or from the
// positional SIZE SRC DST [BLOCK...] arguments.
func scenarioFromCommand(cmd *cli.Command) (*engine.Scenario, error) {
	args := cmd.Args().Slice()

	if name := cmd.String("scenario"); name != "" {
		if len(args) > 0 {
			return nil, ErrArgCount
		}
		manager, err := scenario.NewManager(cmd.String("scenario-dir"))
		if err != nil {
			return nil, err
		}
		return manager.LoadScenario(name)
	}

	return parseGridArgs(args)
}

// parseGridArgs parses SIZE SRC DST [BLOCK...]. A single argument is a
// wrong argument rather than a wrong count.
func parseGridArgs(args []string) (*engine.Scenario, error) {
	switch {
	case len(args) == 1:
		return nil, fmt.Errorf("%w: %q", ErrWrongArgument, args[0])
	case len(args) < 3:
		return nil, ErrArgCount
	}

	rows, cols, err := parseSize(args[0])
	if err != nil {
		return nil, err
	}
	source, err := parsePoint(args[1])
	if err != nil {
		return nil, err
	}
	destination, err := parsePoint(args[2])
	if err != nil {
		return nil, err
	}

	s := &engine.Scenario{
		Name:        service.AdhocScenario,
		Rows:        rows,
		Cols:        cols,
		Source:      source,
		Destination: destination,
	}
	for _, arg := range args[3:] {
		p, err := parsePoint(arg)
		if err != nil {
			return nil, err
		}
		s.Blocked = append(s.Blocked, p)
	}
	return s, nil
}

// parseSize parses ROWSxCOLS with nothing trailing
func parseSize(arg string) (int, int, error) {
	m := sizePattern.FindStringSubmatch(strings.TrimSpace(arg))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: size %q", ErrWrongArgument, arg)
	}
	rows, errRows := strconv.Atoi(m[1])
	cols, errCols := strconv.Atoi(m[2])
	if errRows != nil || errCols != nil {
		return 0, 0, fmt.Errorf("%w: size %q", ErrWrongArgument, arg)
	}
	return rows, cols, nil
}

// parsePoint parses X,Y with nothing trailing
func parsePoint(arg string) (engine.Point, error) {
	m := pointPattern.FindStringSubmatch(strings.TrimSpace(arg))
	if m == nil {
		return engine.Point{}, fmt.Errorf("%w: point %q", ErrWrongArgument, arg)
	}
	x, errX := strconv.Atoi(m[1])
	y, errY := strconv.Atoi(m[2])
	if errX != nil || errY != nil {
		return engine.Point{}, fmt.Errorf("%w: point %q", ErrWrongArgument, arg)
	}
	return engine.Point{X: x, Y: y}, nil
}
