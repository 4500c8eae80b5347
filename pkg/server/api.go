package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/quizgrid/pkg/editor"
	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/grid"
	"github.com/matzehuels/quizgrid/pkg/quiz"
)

type createRequest struct {
	Title string `json:"title"`
}

// placeRequest places one component either at an explicit cell or where a
// pointer was dropped. Type is accepted as an alias of Kind.
type placeRequest struct {
	Kind     grid.Kind      `json:"kind"`
	Type     grid.Kind      `json:"type"`
	Position *grid.Position `json:"position,omitempty"`
	Size     *grid.Size     `json:"size,omitempty"`
	Drop     *dropRequest   `json:"drop,omitempty"`
}

type dropRequest struct {
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Bounds grid.Bounds `json:"bounds"`
}

func (req placeRequest) kind() grid.Kind {
	if req.Kind != "" {
		return req.Kind
	}
	return req.Type
}

func (s *Server) apiList(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.Editor.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if quizzes == nil {
		quizzes = []*quiz.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (s *Server) apiCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	q, err := s.Editor.Create(r.Context(), req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/quizzes/"+q.ID)
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) apiGet(w http.ResponseWriter, r *http.Request) {
	q, err := s.Editor.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) apiDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiReplace(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	comps, err := quiz.ParseComponents(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q, err := s.Editor.Submit(r.Context(), chi.URLParam(r, "id"), comps)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) apiPlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")

	var (
		q    *quiz.Quiz
		comp quiz.Component
		err  error
	)
	switch {
	case req.Drop != nil && req.Position != nil:
		err = qerrors.New(qerrors.ErrCodeInvalidInput, "set either position or drop, not both")
	case req.Drop != nil:
		d := editor.Drop{X: req.Drop.X, Y: req.Drop.Y, Bounds: req.Drop.Bounds}
		if err = checkBounds(d.Bounds); err == nil {
			q, comp, err = s.Editor.Place(r.Context(), id, req.kind(), d)
		}
	case req.Position != nil:
		q, comp, err = s.Editor.PlaceAt(r.Context(), id, req.kind(), *req.Position, req.Size)
	default:
		err = qerrors.New(qerrors.ErrCodeInvalidInput, "position or drop is required")
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, placed{Quiz: q, Component: comp})
}

// decodeJSON reads a JSON object into v. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}
