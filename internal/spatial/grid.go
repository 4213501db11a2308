// Package spatial provides cache-efficient spatial and ranking data
// structures shared by the simulator's broad-phase queries and the
// leaderboard's Elo-ranked opponent sampling.
package spatial

import "math"

// Grid is a fixed-cell-size broad-phase index used by the projectile system
// to narrow the set of alive cells/units worth a precise swept-segment test.
// Cells are stored in row-major order; entity ids are caller-assigned
// integers (a unit's index in its side's slice), never pointers, so queries
// never allocate beyond the reused scratch buffer.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]int
	scratch     []int
}

// NewGrid builds a grid over a world of the given size. cellSize should be
// close to the largest query radius used against it (projectile radius plus
// unit bounding box in this repo's case).
func NewGrid(worldWidth, worldHeight, cellSize float64, maxEntities int) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(worldWidth / cellSize))
	rows := int(math.Ceil(worldHeight / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]int, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]int, 0, avgPerCell)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]int, 0, 64),
	}
}

// Clear resets every cell's length without releasing backing arrays.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *Grid) clampCell(x, y float64) (col, row int) {
	col = int(x * g.invCellSize)
	row = int(y * g.invCellSize)
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// Insert places entityID at the cell covering (x, y).
func (g *Grid) Insert(entityID int, x, y float64) {
	col, row := g.clampCell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], entityID)
}

// QueryRadius returns entity ids whose cell overlaps a square of the given
// radius around (cx, cy). Callers must still do a precise narrow-phase
// check; the returned slice is reused across calls and must not be retained.
func (g *Grid) QueryRadius(cx, cy, radius float64) []int {
	g.scratch = g.scratch[:0]

	minCol := int((cx - radius) * g.invCellSize)
	maxCol := int((cx + radius) * g.invCellSize)
	minRow := int((cy - radius) * g.invCellSize)
	maxRow := int((cy + radius) * g.invCellSize)

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			g.scratch = append(g.scratch, g.cells[idx]...)
		}
	}
	return g.scratch
}
