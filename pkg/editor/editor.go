// Package editor implements the admin layout flows on top of a quiz store:
// dropping palette items onto the grid, removing components, and
// committing a whole component list from the admin page.
//
// Every commit passes through the configured [grid.Policy], so with the
// default reject policy a stored layout never contains overlapping or
// out-of-bounds components.
package editor

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/grid"
	"github.com/matzehuels/quizgrid/pkg/observability"
	"github.com/matzehuels/quizgrid/pkg/quiz"
	"github.com/matzehuels/quizgrid/pkg/store"
)

// Drop is a palette item released over the grid: pointer coordinates plus
// the grid's on-screen rectangle, both in the same coordinate space.
type Drop struct {
	X, Y   float64
	Bounds grid.Bounds
}

// Editor serializes read-modify-write cycles on quizzes within a process.
// Writers in other processes sharing the same store still race.
type Editor struct {
	Store  store.Store
	Policy grid.Policy
	Logger *log.Logger

	mu sync.Mutex
}

// New creates an editor. An empty policy means grid.DefaultPolicy; a nil
// logger discards output.
func New(s store.Store, policy grid.Policy, logger *log.Logger) *Editor {
	if policy == "" {
		policy = grid.DefaultPolicy
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Editor{Store: s, Policy: policy, Logger: logger}
}

// List returns every quiz in creation order.
func (e *Editor) List(ctx context.Context) ([]*quiz.Quiz, error) {
	quizzes, err := e.Store.List(ctx)
	if err != nil {
		return nil, storageErr(err, "list quizzes")
	}
	return quizzes, nil
}

// Load returns quiz id or an ErrCodeNotFound error.
func (e *Editor) Load(ctx context.Context, id string) (*quiz.Quiz, error) {
	q, err := e.Store.Get(ctx, id)
	if err != nil {
		return nil, storageErr(err, "load quiz %s", id)
	}
	if q == nil {
		return nil, qerrors.New(qerrors.ErrCodeNotFound, "quiz %q not found", id)
	}
	return q, nil
}

// Create stores a new empty quiz. A blank title becomes quiz.DefaultTitle.
func (e *Editor) Create(ctx context.Context, title string) (*quiz.Quiz, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = quiz.DefaultTitle
	}
	if err := qerrors.ValidateTitle(title); err != nil {
		return nil, err
	}
	q, err := e.Store.Create(ctx, title)
	if err != nil {
		return nil, storageErr(err, "create quiz")
	}
	e.Logger.Debug("created quiz", "id", q.ID, "title", q.Title)
	return q, nil
}

// Delete removes quiz id, failing with ErrCodeNotFound when it is absent.
func (e *Editor) Delete(ctx context.Context, id string) error {
	ok, err := e.Store.Delete(ctx, id)
	if err != nil {
		return storageErr(err, "delete quiz %s", id)
	}
	if !ok {
		return qerrors.New(qerrors.ErrCodeNotFound, "quiz %q not found", id)
	}
	e.Logger.Debug("deleted quiz", "id", id)
	return nil
}

// Place maps a drop onto a cell and places a new component of kind there
// with the kind's default size.
func (e *Editor) Place(ctx context.Context, id string, kind grid.Kind, d Drop) (*quiz.Quiz, quiz.Component, error) {
	return e.PlaceAt(ctx, id, kind, grid.MapPointerToCell(d.X, d.Y, d.Bounds), nil)
}

// PlaceAt places a new component of kind at pos. A nil size means the
// kind's default size.
func (e *Editor) PlaceAt(ctx context.Context, id string, kind grid.Kind, pos grid.Position, size *grid.Size) (*quiz.Quiz, quiz.Component, error) {
	if !kind.Valid() {
		return nil, quiz.Component{}, qerrors.New(qerrors.ErrCodeInvalidKind, "unknown component kind %q", kind)
	}
	comp := quiz.NewComponent(kind, pos)
	if size != nil {
		if size.Empty() {
			return nil, quiz.Component{}, qerrors.New(qerrors.ErrCodeInvalidInput, "component size %dx%d must be positive", size.Width, size.Height)
		}
		s := *size
		comp.Settings.Size = &s
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.Load(ctx, id)
	if err != nil {
		return nil, quiz.Component{}, err
	}

	committed, err := e.Policy.Apply(q.Rects(), pos, comp.EffectiveSize())
	if err != nil {
		e.report(ctx, id, kind, err)
		return nil, quiz.Component{}, err
	}
	comp.Position = committed

	q, err = e.Store.ReplaceComponents(ctx, id, append(q.Components, comp))
	if err != nil {
		return nil, quiz.Component{}, storageErr(err, "save quiz %s", id)
	}
	e.report(ctx, id, kind, nil)
	e.Logger.Debug("placed component", "quiz", id, "component", comp.ID, "col", committed.Col, "row", committed.Row)
	return q, comp, nil
}

// Remove deletes one component from quiz id.
func (e *Editor) Remove(ctx context.Context, id, componentID string) (*quiz.Quiz, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := q.Component(componentID); !ok {
		return nil, qerrors.New(qerrors.ErrCodeNotFound, "quiz %q has no component %q", id, componentID)
	}

	kept := make([]quiz.Component, 0, len(q.Components)-1)
	for _, c := range q.Components {
		if c.ID != componentID {
			kept = append(kept, c)
		}
	}
	q, err = e.Store.ReplaceComponents(ctx, id, kept)
	if err != nil {
		return nil, storageErr(err, "save quiz %s", id)
	}
	e.Logger.Debug("removed component", "quiz", id, "component", componentID)
	return q, nil
}

// Submit replaces the whole component list of quiz id. Components are
// checked in order against the ones before them, so the earlier of two
// overlapping components wins and the later one fails the commit.
func (e *Editor) Submit(ctx context.Context, id string, comps []quiz.Component) (*quiz.Quiz, error) {
	if err := quiz.ValidateComponents(comps); err != nil {
		return nil, err
	}
	placed, err := Arrange(e.Policy, comps)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.Load(ctx, id); err != nil {
		return nil, err
	}
	q, err := e.Store.ReplaceComponents(ctx, id, placed)
	if err != nil {
		return nil, storageErr(err, "save quiz %s", id)
	}
	e.Logger.Debug("submitted layout", "quiz", id, "components", len(placed))
	return q, nil
}

// Arrange runs comps through policy in order and returns a copy with the
// committed positions.
func Arrange(policy grid.Policy, comps []quiz.Component) ([]quiz.Component, error) {
	out := quiz.CloneComponents(comps)
	rects := make([]grid.Rect, 0, len(out))
	for i := range out {
		c := &out[i]
		pos, err := policy.Apply(rects, c.Position, c.EffectiveSize())
		if err != nil {
			return nil, qerrors.New(qerrors.GetCode(err), "component %q: %s", c.ID, qerrors.UserMessage(err))
		}
		c.Position = pos
		rects = append(rects, c.Rect())
	}
	return out, nil
}

func (e *Editor) report(ctx context.Context, id string, kind grid.Kind, err error) {
	reason := ""
	if err != nil {
		reason = string(qerrors.GetCode(err))
	}
	observability.Placement().OnPlacement(ctx, id, string(kind), err == nil, reason)
}

// storageErr gives uncoded backend failures ErrCodeStorage. Coded errors,
// such as an invalid id rejected by the file store, pass through.
func storageErr(err error, format string, args ...any) error {
	if qerrors.GetCode(err) != "" {
		return err
	}
	return qerrors.Wrap(qerrors.ErrCodeStorage, err, format, args...)
}
