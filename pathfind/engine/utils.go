package engine

// ManhattanDistance calculates the Manhattan distance between two points
func ManhattanDistance(from, to Point) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
