// Package grid implements the placement arithmetic of the quiz layout builder.
//
// Quiz layouts live on a fixed [Cols]×[Rows] logical surface. Components
// occupy half-open cell rectangles [col, col+width) × [row, row+height).
// Nothing about the grid is persisted: occupancy is recomputed on demand
// from the current component list.
//
// # Core Functions
//
//   - [MapPointerToCell]: pointer pixels relative to a container → cell
//   - [Snap]: fractional cell coordinates → nearest cell
//   - [HasCollision]: would a candidate overlap or leave the grid?
//   - [DefaultSizeFor]: per-kind default footprint
//   - [Policy]: what happens to a candidate that collides
//
// # Usage
//
//	pos := grid.MapPointerToCell(x, y, grid.Bounds{Left: 10, Top: 20, Width: 600, Height: 600})
//	size := grid.DefaultSizeFor(grid.KindTimer)
//	committed, err := grid.PolicyReject.Apply(existing, pos, size)
//	if err != nil {
//	    // COLLISION or OUT_OF_BOUNDS
//	}
package grid
