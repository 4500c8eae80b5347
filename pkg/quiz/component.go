package quiz

import (
	"fmt"

	"github.com/google/uuid"

	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/grid"
)

// Align is a horizontal text alignment.
type Align string

// Supported alignments.
const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Style holds the presentation attributes a component may override.
type Style struct {
	Background string `json:"background,omitempty" bson:"background,omitempty"`
	TextColor  string `json:"textColor,omitempty" bson:"text_color,omitempty"`
	Align      Align  `json:"align,omitempty" bson:"align,omitempty"`
}

// Settings is the closed set of per-component options.
type Settings struct {
	Size  *grid.Size `json:"size,omitempty" bson:"size,omitempty"`
	Style *Style     `json:"style,omitempty" bson:"style,omitempty"`
}

// Component is a widget placed on a quiz grid.
type Component struct {
	ID       string        `json:"id" bson:"id"`
	Type     grid.Kind     `json:"type" bson:"type"`
	Position grid.Position `json:"position" bson:"position"`
	Content  string        `json:"content,omitempty" bson:"content,omitempty"`
	Settings Settings      `json:"settings" bson:"settings"`
}

// NewComponent creates a component of kind k at pos with the kind's
// default size.
func NewComponent(k grid.Kind, pos grid.Position) Component {
	size := grid.DefaultSizeFor(k)
	return Component{
		ID:       fmt.Sprintf("%s-%s", k, uuid.NewString()[:8]),
		Type:     k,
		Position: pos,
		Settings: Settings{Size: &size},
	}
}

// EffectiveSize returns the configured size, or the minimum fallback when
// none (or a non-positive one) is set.
func (c Component) EffectiveSize() grid.Size {
	if s := c.Settings.Size; s != nil && !s.Empty() {
		return *s
	}
	return grid.Size{Width: grid.MinWidth, Height: grid.MinHeight}
}

// Rect returns the component's grid footprint.
func (c Component) Rect() grid.Rect {
	return grid.Rect{ID: c.ID, Position: c.Position, Size: c.EffectiveSize()}
}

// Rects returns the grid footprints of comps.
func Rects(comps []Component) []grid.Rect {
	out := make([]grid.Rect, len(comps))
	for i, c := range comps {
		out[i] = c.Rect()
	}
	return out
}

// CloneComponents returns a deep copy of comps. A nil slice clones to an
// empty one.
func CloneComponents(comps []Component) []Component {
	out := make([]Component, len(comps))
	for i, c := range comps {
		if c.Settings.Size != nil {
			s := *c.Settings.Size
			c.Settings.Size = &s
		}
		if c.Settings.Style != nil {
			s := *c.Settings.Style
			c.Settings.Style = &s
		}
		out[i] = c
	}
	return out
}

// ValidateComponents checks a component list before it is committed:
// ids must be well formed and unique, kinds known, alignments supported.
// Placement (bounds and overlap) is the placement policy's concern.
func ValidateComponents(comps []Component) error {
	seen := make(map[string]bool, len(comps))
	for i, c := range comps {
		if err := qerrors.ValidateID(c.ID); err != nil {
			return qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "component %d", i)
		}
		if seen[c.ID] {
			return qerrors.New(qerrors.ErrCodeInvalidInput, "duplicate component id %q", c.ID)
		}
		seen[c.ID] = true
		if !c.Type.Valid() {
			return qerrors.New(qerrors.ErrCodeInvalidKind, "component %q has unknown kind %q", c.ID, c.Type)
		}
		if st := c.Settings.Style; st != nil {
			switch st.Align {
			case "", AlignLeft, AlignCenter, AlignRight:
			default:
				return qerrors.New(qerrors.ErrCodeInvalidInput, "component %q has unknown alignment %q", c.ID, st.Align)
			}
		}
	}
	return nil
}
