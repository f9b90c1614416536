package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// TileCounts counts every tile kind on the grid, keyed by tile name
func TileCounts(grid Grid) map[string]int {
	counts := make(map[string]int, len(Tiles)+1)
	for _, row := range grid {
		for _, cell := range row {
			counts[cell.String()]++
		}
	}
	return counts
}

// Interior reports whether pos lies inside the outer ring of the grid
func Interior(grid Grid, pos Position) bool {
	return pos.Row > 0 && pos.Row < grid.Rows()-1 && pos.Col > 0 && pos.Col < grid.Cols()-1
}
