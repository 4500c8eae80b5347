// Package quiz defines the quiz layout domain: quizzes, the components
// placed on their grid, and the closed per-component settings.
//
// A Quiz owns an ordered component list that is only ever replaced as a
// whole. Components are not individually addressable for update; the
// editor removes and reinserts instead.
package quiz

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/quizgrid/pkg/cache"
	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/grid"
)

// DefaultTitle is the title given to quizzes created without one.
const DefaultTitle = "New Quiz"

// Quiz is a titled grid layout.
type Quiz struct {
	ID         string      `json:"id" bson:"_id"`
	Title      string      `json:"title" bson:"title"`
	Components []Component `json:"components" bson:"components"`
	CreatedAt  time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time   `json:"updatedAt" bson:"updated_at"`
}

// New returns an empty quiz stamped with now.
func New(id, title string, now time.Time) *Quiz {
	if title == "" {
		title = DefaultTitle
	}
	return &Quiz{
		ID:         id,
		Title:      title,
		Components: []Component{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewID returns a fresh quiz identifier.
func NewID() string { return uuid.NewString() }

// Clone returns a deep copy of q.
func (q *Quiz) Clone() *Quiz {
	if q == nil {
		return nil
	}
	c := *q
	c.Components = CloneComponents(q.Components)
	return &c
}

// Rects returns the grid footprints of the quiz's components.
func (q *Quiz) Rects() []grid.Rect {
	return Rects(q.Components)
}

// Count returns how many components of kind k the quiz holds.
func (q *Quiz) Count(k grid.Kind) int {
	n := 0
	for _, c := range q.Components {
		if c.Type == k {
			n++
		}
	}
	return n
}

// Component returns the component with the given id.
func (q *Quiz) Component(id string) (Component, bool) {
	i := slices.IndexFunc(q.Components, func(c Component) bool { return c.ID == id })
	if i < 0 {
		return Component{}, false
	}
	return q.Components[i], true
}

// Hash returns a content hash of q. Any change to title or layout changes it.
func Hash(q *Quiz) string {
	data, _ := json.Marshal(q)
	return cache.Hash(data)
}

// ParseComponents decodes a JSON component list as posted by the admin page.
// A null or empty body decodes to an empty list.
func ParseComponents(data []byte) ([]Component, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Component{}, nil
	}
	var comps []Component
	if err := json.Unmarshal(data, &comps); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "decode components")
	}
	if comps == nil {
		comps = []Component{}
	}
	return comps, nil
}
