package board

import "errors"

const EmptyCell = ""

var (
	ErrCellOutOfRange = errors.New("cell is out of range")
	ErrColumnFull     = errors.New("column is full")
	ErrCellOccupied   = errors.New("cell is already occupied")
)

// Cell addresses a single square on the grid, zero-based.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is a rectangular board, row-major. A cell holds a player mark or
// EmptyCell. For gravity games row 0 is the bottom row, so a dropped piece
// lands on the lowest free row index.
type Grid [][]string

// NewGrid - creates an all-empty grid with the given dimensions.
func NewGrid(rows, cols int) Grid {
	grid := make(Grid, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
	}

	return grid
}

func (that Grid) Rows() int {
	return len(that)
}

func (that Grid) Cols() int {
	if len(that) == 0 {
		return 0
	}
	return len(that[0])
}

// Clone - returns a deep copy, so callers can hand out snapshots without
// sharing backing arrays.
func (that Grid) Clone() Grid {
	clone := make(Grid, len(that))
	for r := range that {
		clone[r] = make([]string, len(that[r]))
		copy(clone[r], that[r])
	}

	return clone
}

// Occupied - counts non-empty cells; equals the number of applied moves.
func (that Grid) Occupied() int {
	count := 0
	for r := range that {
		for c := range that[r] {
			if that[r][c] != EmptyCell {
				count++
			}
		}
	}

	return count
}

// ColumnHeight - returns the next free row index of a column, i.e. how many
// pieces already sit in it.
func (that Grid) ColumnHeight(col int) int {
	height := 0
	for r := 0; r < that.Rows(); r++ {
		if that[r][col] == EmptyCell {
			break
		}
		height++
	}

	return height
}

// Drop - places a mark into the lowest free row of a column and returns the
// landing cell. The grid is mutated in place.
func (that Grid) Drop(col int, mark string) (Cell, error) {
	if col < 0 || col >= that.Cols() {
		return Cell{}, ErrCellOutOfRange
	}

	row := that.ColumnHeight(col)
	if row >= that.Rows() {
		return Cell{}, ErrColumnFull
	}

	that[row][col] = mark

	return Cell{Row: row, Col: col}, nil
}

// Place - puts a mark on an exact cell. The grid is mutated in place.
func (that Grid) Place(cell Cell, mark string) error {
	if cell.Row < 0 || cell.Row >= that.Rows() || cell.Col < 0 || cell.Col >= that.Cols() {
		return ErrCellOutOfRange
	}

	if that[cell.Row][cell.Col] != EmptyCell {
		return ErrCellOccupied
	}

	that[cell.Row][cell.Col] = mark

	return nil
}
