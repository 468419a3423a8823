package board

// Run is a winning sequence: the mark that formed it and the exact cells,
// in scan direction order.
type Run struct {
	Mark  string `json:"mark"`
	Cells []Cell `json:"cells"`
}

// CheckWinner - scans the grid for runLength consecutive identical marks.
// The scan order is fixed so that concurrent winning runs resolve
// deterministically: all horizontal runs in row-major order, then vertical
// runs in column-major order, then down-right diagonals, then down-left
// diagonals. The first run found wins. The grid is not mutated.
func CheckWinner(grid Grid, runLength int) (Run, bool) {
	rows, cols := grid.Rows(), grid.Cols()

	// horizontal, row-major
	for r := 0; r < rows; r++ {
		for c := 0; c+runLength <= cols; c++ {
			if run, ok := runAt(grid, r, c, 0, 1, runLength); ok {
				return run, true
			}
		}
	}

	// vertical, column-major
	for c := 0; c < cols; c++ {
		for r := 0; r+runLength <= rows; r++ {
			if run, ok := runAt(grid, r, c, 1, 0, runLength); ok {
				return run, true
			}
		}
	}

	// down-right diagonals
	for r := 0; r+runLength <= rows; r++ {
		for c := 0; c+runLength <= cols; c++ {
			if run, ok := runAt(grid, r, c, 1, 1, runLength); ok {
				return run, true
			}
		}
	}

	// down-left diagonals
	for r := 0; r+runLength <= rows; r++ {
		for c := runLength - 1; c < cols; c++ {
			if run, ok := runAt(grid, r, c, 1, -1, runLength); ok {
				return run, true
			}
		}
	}

	return Run{}, false
}

// IsDraw - reports whether every cell is occupied and no run of runLength
// exists. An empty or partially filled board is never a draw.
func IsDraw(grid Grid, runLength int) bool {
	for r := range grid {
		for c := range grid[r] {
			if grid[r][c] == EmptyCell {
				return false
			}
		}
	}

	if len(grid) == 0 {
		return false
	}

	_, hasWinner := CheckWinner(grid, runLength)

	return !hasWinner
}

// runAt - checks a single candidate run starting at (r,c) stepping by
// (dr,dc).
func runAt(grid Grid, r, c, dr, dc, runLength int) (Run, bool) {
	mark := grid[r][c]
	if mark == EmptyCell {
		return Run{}, false
	}

	cells := make([]Cell, 0, runLength)
	for i := 0; i < runLength; i++ {
		row, col := r+i*dr, c+i*dc
		if grid[row][col] != mark {
			return Run{}, false
		}
		cells = append(cells, Cell{Row: row, Col: col})
	}

	return Run{Mark: mark, Cells: cells}, true
}
