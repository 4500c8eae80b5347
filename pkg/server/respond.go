package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/observability"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    qerrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, status int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(page)
}

// wantsJSON reports whether r is an API call or asked for JSON.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// fail maps err to a status through its error code. Internal failures
// are logged and reported without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := qerrors.GetCode(err)
	if code == "" {
		code = qerrors.ErrCodeInternal
	}
	status := qerrors.HTTPStatus(code)
	msg := qerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = http.StatusText(status)
	}

	if wantsJSON(r) {
		writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
		return
	}
	http.Error(w, msg, status)
}

// done answers a successful form post: JSON callers get v, browsers are
// redirected to location.
func done(w http.ResponseWriter, r *http.Request, status int, v any, location string) {
	if wantsJSON(r) {
		writeJSON(w, status, v)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed.Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
