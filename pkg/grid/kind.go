package grid

import "slices"

// Kind is a widget variant that can be placed on the grid.
type Kind string

// Supported kinds.
const (
	KindProgress Kind = "progress"
	KindTimer    Kind = "timer"
	KindQuestion Kind = "question"
	KindImage    Kind = "image"
	KindOptions  Kind = "options"
)

// Kinds lists the supported kinds in palette order.
var Kinds = []Kind{KindProgress, KindTimer, KindQuestion, KindImage, KindOptions}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// Label returns the palette label for k.
func (k Kind) Label() string {
	switch k {
	case KindProgress:
		return "Progress Bar"
	case KindTimer:
		return "Timer"
	case KindQuestion:
		return "Question Text"
	case KindImage:
		return "Image"
	case KindOptions:
		return "Options"
	default:
		return string(k)
	}
}

// DefaultSizeFor returns the footprint given to a newly placed component
// of kind k. Unknown kinds get the MinWidth×MinHeight fallback.
func DefaultSizeFor(k Kind) Size {
	switch k {
	case KindProgress:
		return Size{Width: 12, Height: 1}
	case KindTimer:
		return Size{Width: 2, Height: 1}
	case KindQuestion:
		return Size{Width: 12, Height: 2}
	case KindImage:
		return Size{Width: 6, Height: 4}
	case KindOptions:
		return Size{Width: 12, Height: 4}
	default:
		return Size{Width: MinWidth, Height: MinHeight}
	}
}
