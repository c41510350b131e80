package engine

import (
	"fmt"

	"github.com/wricardo/mcp-training/astar/pathfind/openset"
)

// directions lists the 4-connected neighbors in visiting order.
var directions = []Point{
	{X: -1, Y: 0}, // North
	{X: 0, Y: 1},  // East
	{X: 1, Y: 0},  // South
	{X: 0, Y: -1}, // West
}

type record = openset.Record[Point]

// Search runs A* from the source to the destination. Expanded cells are
// marked Expanded and, on success, the reconstructed route is marked OnPath.
// When the destination is unreachable ErrNoPath is returned together with a
// Result whose Trace lists every expanded cell.
func (g *Grid) Search() (*Result, error) {
	if g.searched {
		return nil, ErrSearchDone
	}
	g.searched = true

	open := openset.New[Point]()
	closed := openset.NewClosed[Point]()
	defer func() {
		open.Clear()
		closed.Clear()
	}()

	open.Insert(record{
		Coord:  g.source,
		Travel: 0,
		Total:  g.heuristic(g.source),
		Prev:   g.source,
	})

	result := &Result{}

	for {
		current, ok := open.Peek()
		if !ok {
			result.Expanded = len(result.Trace)
			return result, ErrNoPath
		}
		if current.Coord == g.destination {
			closed.Insert(current)
			break
		}

		closed.Insert(current)
		if current.Coord != g.source {
			g.setStatus(current.Coord, Expanded)
		}
		result.Trace = append(result.Trace, current.Coord)
		open.RemoveMin()

		g.offerNeighbors(open, current)
	}

	result.Found = true
	result.Expanded = len(result.Trace)
	result.Path = g.paintPath(closed)
	result.Length = len(result.Path) - 1

	return result, nil
}

// offerNeighbors inserts a candidate for every passable, unexpanded neighbor.
func (g *Grid) offerNeighbors(open *openset.OpenSet[Point], current record) {
	travel := current.Travel + 1
	for _, d := range directions {
		next := current.Coord.Add(d)
		if !g.InBounds(next) {
			continue
		}
		switch g.Status(next) {
		case Unvisited, IsDestination:
		default:
			continue
		}
		open.Insert(record{
			Coord:  next,
			Travel: travel,
			Total:  travel + g.heuristic(next),
			Prev:   current.Coord,
		})
	}
}

// paintPath walks predecessors from the destination back to the source,
// marking every intermediate cell OnPath. It returns the path source first.
func (g *Grid) paintPath(closed *openset.ClosedSet[Point]) []Point {
	entry, ok := closed.Find(g.destination)
	if !ok {
		panic("engine: destination missing from closed set")
	}

	path := []Point{entry.Coord}
	for entry.Coord != g.source {
		prev, ok := closed.Find(entry.Prev)
		if !ok {
			panic(fmt.Sprintf("engine: predecessor %s of %s missing from closed set", entry.Prev, entry.Coord))
		}
		entry = prev
		if entry.Coord != g.source {
			g.setStatus(entry.Coord, OnPath)
		}
		path = append(path, entry.Coord)
	}

	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
