package grid

// Occupancy maps every cell to the ID of the rectangle covering it, or ""
// when free. Indexing is [col][row]. Cells of a rectangle that fall off the
// grid are skipped silently; stored layouts may already be off-grid.
// When rectangles overlap, the later one wins the cell.
func Occupancy(existing []Rect) [Cols][Rows]string {
	var cells [Cols][Rows]string
	for _, r := range existing {
		for c := r.Col; c < r.Right(); c++ {
			for w := r.Row; w < r.Bottom(); w++ {
				if c < 0 || w < 0 || c >= Cols || w >= Rows {
					continue
				}
				id := r.ID
				if id == "" {
					id = "#"
				}
				cells[c][w] = id
			}
		}
	}
	return cells
}

// HasCollision reports whether a candidate footprint at pos would overlap
// an existing rectangle or reach outside the grid.
//
// Rectangles are half-open, so a candidate sharing only an edge with an
// existing rectangle does not collide. A candidate with zero width or
// height covers no cells and never collides.
func HasCollision(existing []Rect, pos Position, size Size) bool {
	occupied := Occupancy(existing)
	for c := pos.Col; c < pos.Col+size.Width; c++ {
		for r := pos.Row; r < pos.Row+size.Height; r++ {
			if c < 0 || r < 0 || c >= Cols || r >= Rows {
				return true
			}
			if occupied[c][r] != "" {
				return true
			}
		}
	}
	return false
}

// FreeCells counts the unoccupied cells of the grid.
func FreeCells(existing []Rect) int {
	occupied := Occupancy(existing)
	n := 0
	for c := range occupied {
		for r := range occupied[c] {
			if occupied[c][r] == "" {
				n++
			}
		}
	}
	return n
}
