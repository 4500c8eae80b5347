package grid

import (
	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
)

// Policy decides what happens to a candidate placement that collides with
// the existing layout or reaches outside the grid.
type Policy string

const (
	// PolicyReject refuses colliding and out-of-bounds candidates.
	PolicyReject Policy = "reject"

	// PolicyClamp moves an out-of-bounds candidate back onto the grid,
	// then refuses it if it still overlaps.
	PolicyClamp Policy = "clamp"

	// PolicyAllow commits every candidate as given.
	PolicyAllow Policy = "allow"
)

// DefaultPolicy is the policy used when none is configured.
const DefaultPolicy = PolicyReject

// ParsePolicy converts a configuration string into a Policy.
// The empty string yields DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case "":
		return DefaultPolicy, nil
	case PolicyReject, PolicyClamp, PolicyAllow:
		return p, nil
	default:
		return "", qerrors.New(qerrors.ErrCodeInvalidPolicy, "unknown placement policy %q (want reject, clamp or allow)", s)
	}
}

// Apply checks a candidate against existing and returns the position to
// commit. Rejections carry ErrCodeOutOfBounds or ErrCodeCollision.
func (p Policy) Apply(existing []Rect, pos Position, size Size) (Position, error) {
	switch p {
	case PolicyAllow:
		return pos, nil
	case PolicyClamp:
		if size.Width > Cols || size.Height > Rows {
			return pos, qerrors.New(qerrors.ErrCodeOutOfBounds,
				"%dx%d component does not fit a %dx%d grid", size.Width, size.Height, Cols, Rows)
		}
		pos = Clamp(pos, size)
	case PolicyReject, "":
	default:
		return pos, qerrors.New(qerrors.ErrCodeInvalidPolicy, "unknown placement policy %q", string(p))
	}

	cand := Rect{Position: pos, Size: size}
	if !size.Empty() && !cand.InBounds() {
		return pos, qerrors.New(qerrors.ErrCodeOutOfBounds,
			"%dx%d component at (%d,%d) leaves the %dx%d grid", size.Width, size.Height, pos.Col, pos.Row, Cols, Rows)
	}
	if HasCollision(existing, pos, size) {
		return pos, qerrors.New(qerrors.ErrCodeCollision,
			"%dx%d component at (%d,%d) overlaps %s", size.Width, size.Height, pos.Col, pos.Row, firstOverlap(existing, cand))
	}
	return pos, nil
}

// Clamp shifts pos so a footprint of size lies inside the grid.
// Sizes larger than the grid pin to the origin on that axis.
func Clamp(pos Position, size Size) Position {
	return Position{
		Col: clamp(pos.Col, 0, Cols-size.Width),
		Row: clamp(pos.Row, 0, Rows-size.Height),
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return max(lo, min(v, hi))
}

func firstOverlap(existing []Rect, cand Rect) string {
	for _, r := range existing {
		if r.Overlaps(cand) {
			if r.ID != "" {
				return r.ID
			}
			break
		}
	}
	return "an existing component"
}
