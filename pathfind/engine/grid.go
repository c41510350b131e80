package engine

import "fmt"

// Option configures grid construction
type Option func(*options)

type options struct {
	maxCells int
}

// WithMaxCells overrides DefaultMaxCells. Non-positive values keep the default.
func WithMaxCells(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxCells = n
		}
	}
}

// Grid is a rectangular field of cells with a source and a destination.
type Grid struct {
	rows, cols  int
	cells       []Cell
	source      Point
	destination Point
	searched    bool
}

// NewGrid allocates a rows x cols grid. Each cell gets its Manhattan distance
// to destination as heuristic and starts Unvisited; the source is marked
// OnPath and the destination IsDestination.
func NewGrid(rows, cols int, source, destination Point, opts ...Option) (*Grid, error) {
	o := options{maxCells: DefaultMaxCells}
	for _, opt := range opts {
		opt(&o)
	}

	if !pointInBounds(source, rows, cols) {
		return nil, fmt.Errorf("source %s outside %dx%d grid: %w", source, rows, cols, ErrOutOfBounds)
	}
	if !pointInBounds(destination, rows, cols) {
		return nil, fmt.Errorf("destination %s outside %dx%d grid: %w", destination, rows, cols, ErrOutOfBounds)
	}

	// rows and cols are positive here; guard the product against overflow.
	if rows > o.maxCells/cols {
		return nil, fmt.Errorf("%dx%d grid exceeds %d cells: %w", rows, cols, o.maxCells, ErrOutOfMemory)
	}

	g := &Grid{
		rows:        rows,
		cols:        cols,
		cells:       make([]Cell, rows*cols),
		source:      source,
		destination: destination,
	}

	for x := 0; x < rows; x++ {
		for y := 0; y < cols; y++ {
			g.cells[x*cols+y] = Cell{
				Heuristic: ManhattanDistance(Point{X: x, Y: y}, destination),
				Status:    Unvisited,
			}
		}
	}

	g.setStatus(source, OnPath)
	g.setStatus(destination, IsDestination)

	return g, nil
}

// Block marks p as impassable. Points outside the grid and the source or
// destination themselves are rejected with ErrOutOfBounds, leaving the grid
// untouched.
func (g *Grid) Block(p Point) error {
	if g.searched {
		return ErrSearchDone
	}
	if !g.InBounds(p) {
		return fmt.Errorf("block %s outside %dx%d grid: %w", p, g.rows, g.cols, ErrOutOfBounds)
	}
	if p == g.source || p == g.destination {
		return fmt.Errorf("block %s collides with an endpoint: %w", p, ErrOutOfBounds)
	}
	g.setStatus(p, Blocked)
	return nil
}

// Rows returns the number of rows
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns
func (g *Grid) Cols() int { return g.cols }

// Source returns the start point
func (g *Grid) Source() Point { return g.source }

// Destination returns the goal point
func (g *Grid) Destination() Point { return g.destination }

// InBounds reports whether p lies inside the grid
func (g *Grid) InBounds(p Point) bool {
	return pointInBounds(p, g.rows, g.cols)
}

// Cell returns the cell at p
func (g *Grid) Cell(p Point) (Cell, bool) {
	if !g.InBounds(p) {
		return Cell{}, false
	}
	return g.cells[g.index(p)], true
}

// Status returns the status at p, Blocked when p is outside the grid.
func (g *Grid) Status(p Point) Status {
	if !g.InBounds(p) {
		return Blocked
	}
	return g.cells[g.index(p)].Status
}

// Statuses returns a copy of every cell status, row by row.
func (g *Grid) Statuses() StatusMatrix {
	m := make(StatusMatrix, g.rows)
	for x := 0; x < g.rows; x++ {
		row := make([]Status, g.cols)
		for y := 0; y < g.cols; y++ {
			row[y] = g.cells[x*g.cols+y].Status
		}
		m[x] = row
	}
	return m
}

func (g *Grid) index(p Point) int {
	return p.X*g.cols + p.Y
}

func (g *Grid) heuristic(p Point) int {
	return g.cells[g.index(p)].Heuristic
}

func (g *Grid) setStatus(p Point, s Status) {
	g.cells[g.index(p)].Status = s
}

func pointInBounds(p Point, rows, cols int) bool {
	return p.X >= 0 && p.X < rows && p.Y >= 0 && p.Y < cols
}
