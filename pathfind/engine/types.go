package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds     = errors.New("point out of bounds")
	ErrNoPath          = errors.New("no path found")
	ErrOutOfMemory     = errors.New("grid too large")
	ErrSearchDone      = errors.New("search already ran on this grid")
	ErrInvalidScenario = errors.New("invalid scenario")
)

const (
	// DefaultMaxCells caps rows*cols for a single grid.
	DefaultMaxCells = 1 << 22
)

// Point is a grid coordinate; X is the row and Y the column.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Add returns p shifted by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Status is the search state of a cell.
type Status int

const (
	Unvisited Status = iota
	Blocked
	Expanded
	OnPath
	IsDestination
)

var statusNames = map[Status]string{
	Unvisited:     "unvisited",
	Blocked:       "blocked",
	Expanded:      "expanded",
	OnPath:        "on_path",
	IsDestination: "destination",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}

// Cell is a single grid cell
type Cell struct {
	Heuristic int    `json:"heuristic"`
	Status    Status `json:"status"`
}

// StatusMatrix is a row-major copy of cell statuses.
type StatusMatrix [][]Status

// Rows returns the number of rows
func (m StatusMatrix) Rows() int { return len(m) }

// Cols returns the number of columns
func (m StatusMatrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Status returns the status at p, Blocked when p is outside the matrix.
func (m StatusMatrix) Status(p Point) Status {
	if p.X < 0 || p.X >= len(m) || p.Y < 0 || p.Y >= len(m[p.X]) {
		return Blocked
	}
	return m[p.X][p.Y]
}

// Count returns how many cells have the given status.
func (m StatusMatrix) Count(status Status) int {
	count := 0
	for _, row := range m {
		for _, s := range row {
			if s == status {
				count++
			}
		}
	}
	return count
}

// Result summarizes one search.
type Result struct {
	Found    bool    `json:"found"`
	Path     []Point `json:"path,omitempty"` // source first, destination last
	Length   int     `json:"length"`         // edges on the path
	Expanded int     `json:"expanded"`       // cells moved to the closed set before the goal
	Trace    []Point `json:"trace,omitempty"`
}
