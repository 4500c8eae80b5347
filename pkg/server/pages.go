package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/quizgrid/pkg/buildinfo"
	"github.com/matzehuels/quizgrid/pkg/cache"
	"github.com/matzehuels/quizgrid/pkg/editor"
	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/grid"
	"github.com/matzehuels/quizgrid/pkg/observability"
	"github.com/matzehuels/quizgrid/pkg/quiz"
	"github.com/matzehuels/quizgrid/pkg/render"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.Editor.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf strings.Builder
	if err := render.List(&buf, quizzes); err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, []byte(buf.String()))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	q, err := s.Editor.Create(r.Context(), r.FormValue("title"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, q, render.AdminURL(q.ID))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, render.ModeView)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, render.ModeAdmin)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, mode render.Mode) {
	q, err := s.Editor.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := s.page(r.Context(), q, mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// page renders q through the page cache. Cache failures only cost a
// re-render.
func (s *Server) page(ctx context.Context, q *quiz.Quiz, mode render.Mode) ([]byte, error) {
	key := s.Keyer.PageKey(quiz.Hash(q), cache.PageKeyOpts{Mode: string(mode), Version: buildinfo.Version})

	data, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		s.Logger.Warn("page cache read failed", "key", key, "err", err)
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, key)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, key)

	data, err = render.PageBytes(q, mode)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInternal, err, "render quiz %s", q.ID)
	}
	if err := s.Cache.Set(ctx, key, data, cache.TTLPage); err != nil {
		s.Logger.Warn("page cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, key, len(data))
	}
	return data, nil
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	comps, err := quiz.ParseComponents([]byte(r.FormValue("components")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q, err := s.Editor.Submit(r.Context(), id, comps)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, q, render.AdminURL(id))
}

type placed struct {
	Quiz      *quiz.Quiz     `json:"quiz"`
	Component quiz.Component `json:"component"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "parse form"))
		return
	}
	kind := grid.Kind(r.PostForm.Get("kind"))

	var (
		q    *quiz.Quiz
		comp quiz.Component
		err  error
	)
	if r.PostForm.Has("x") {
		var d editor.Drop
		d, err = parseDrop(r)
		if err == nil {
			q, comp, err = s.Editor.Place(r.Context(), id, kind, d)
		}
	} else {
		var pos grid.Position
		pos, err = parseCell(r)
		if err == nil {
			q, comp, err = s.Editor.PlaceAt(r.Context(), id, kind, pos, nil)
		}
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, placed{Quiz: q, Component: comp}, render.AdminURL(id))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q, err := s.Editor.Remove(r.Context(), id, chi.URLParam(r, "cid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, q, render.AdminURL(id))
}

func parseDrop(r *http.Request) (editor.Drop, error) {
	var vals [6]float64
	for i, name := range []string{"x", "y", "left", "top", "width", "height"} {
		v, err := strconv.ParseFloat(r.PostForm.Get(name), 64)
		if err != nil {
			return editor.Drop{}, qerrors.New(qerrors.ErrCodeInvalidInput, "field %q must be a number", name)
		}
		vals[i] = v
	}
	d := editor.Drop{
		X: vals[0], Y: vals[1],
		Bounds: grid.Bounds{Left: vals[2], Top: vals[3], Width: vals[4], Height: vals[5]},
	}
	if err := checkBounds(d.Bounds); err != nil {
		return editor.Drop{}, err
	}
	return d, nil
}

func checkBounds(b grid.Bounds) error {
	if b.Width <= 0 || b.Height <= 0 {
		return qerrors.New(qerrors.ErrCodeInvalidInput, "grid bounds must have a positive size")
	}
	return nil
}

func parseCell(r *http.Request) (grid.Position, error) {
	col, err := strconv.Atoi(r.PostForm.Get("col"))
	if err != nil {
		return grid.Position{}, qerrors.New(qerrors.ErrCodeInvalidInput, "field \"col\" must be an integer")
	}
	row, err := strconv.Atoi(r.PostForm.Get("row"))
	if err != nil {
		return grid.Position{}, qerrors.New(qerrors.ErrCodeInvalidInput, "field \"row\" must be an integer")
	}
	return grid.Position{Col: col, Row: row}, nil
}
