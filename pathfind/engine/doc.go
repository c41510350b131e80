// Package engine provides the A* search core of the pathfinder.
//
// The engine package implements:
//   - The grid model: dimensions, per-cell heuristic and status
//   - Obstacle placement before the search starts
//   - The A* expansion loop over a 4-connected, unweighted grid
//   - Path reconstruction from the closed set of expanded cells
//   - Named scenarios that describe a grid and its obstacles
//
// Core Types:
//
// Grid owns the cells and the source/destination points. Each cell carries a
// Manhattan-distance heuristic, fixed at construction, and a Status that the
// search mutates. Result summarizes one search.
//
// Usage:
//
//	grid, err := engine.NewGrid(5, 5, engine.Point{X: 0, Y: 0}, engine.Point{X: 4, Y: 4})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := grid.Block(engine.Point{X: 2, Y: 2}); err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := grid.Search()
//	if errors.Is(err, engine.ErrNoPath) {
//		// grid statuses still show every expanded cell
//	}
//
// Coordinates:
//
// Point.X is the row index and Point.Y the column index, both starting at
// the upper-left corner. Neighbors are visited north, east, south, west.
//
// A grid runs exactly one search. The open and closed sets live only for the
// duration of Search and are never shared.
package engine
