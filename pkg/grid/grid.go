package grid

import "math"

const (
	// Cols is the number of grid columns.
	Cols = 12

	// Rows is the number of grid rows.
	Rows = 12

	// MinWidth is the fallback component width in cells.
	MinWidth = 2

	// MinHeight is the fallback component height in cells.
	MinHeight = 2
)

// Position is a cell coordinate. Col grows right, Row grows down.
// The JSON names follow the wire format the admin page posts.
type Position struct {
	Col int `json:"x"`
	Row int `json:"y"`
}

// Size is a footprint in cells.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the size covers no cells.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Rect is a placed footprint: the half-open cell rectangle
// [Col, Col+Width) × [Row, Row+Height).
type Rect struct {
	ID string
	Position
	Size
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.Col + r.Width }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Row + r.Height }

// InBounds reports whether every cell of the rectangle lies on the grid.
func (r Rect) InBounds() bool {
	return r.Col >= 0 && r.Row >= 0 && r.Right() <= Cols && r.Bottom() <= Rows
}

// Overlaps reports whether two rectangles share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	if r.Size.Empty() || o.Size.Empty() {
		return false
	}
	return r.Col < o.Right() && o.Col < r.Right() && r.Row < o.Bottom() && o.Row < r.Bottom()
}

// Bounds is a container rectangle in pointer coordinates (pixels).
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MapPointerToCell converts a pointer position into the cell under it.
//
// Width and Height of b must be positive. The result is not clamped: a
// pointer outside the container yields negative or out-of-range cells,
// and callers validate before use.
func MapPointerToCell(x, y float64, b Bounds) Position {
	cellW := b.Width / Cols
	cellH := b.Height / Rows
	return Position{
		Col: int(math.Floor((x - b.Left) / cellW)),
		Row: int(math.Floor((y - b.Top) / cellH)),
	}
}

// Snap rounds fractional cell coordinates to the nearest cell.
func Snap(col, row float64) Position {
	return Position{Col: int(math.Round(col)), Row: int(math.Round(row))}
}
