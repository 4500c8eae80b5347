package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/quizgrid/pkg/cache"
	"github.com/matzehuels/quizgrid/pkg/config"
	"github.com/matzehuels/quizgrid/pkg/editor"
	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/grid"
	"github.com/matzehuels/quizgrid/pkg/observability"
	"github.com/matzehuels/quizgrid/pkg/quiz"
	"github.com/matzehuels/quizgrid/pkg/store"
)

func newTestServer(t *testing.T, c cache.Cache) *Server {
	t.Helper()
	return New(editor.New(store.NewMemory(), grid.PolicyReject, nil), c, nil, nil)
}

func do(t *testing.T, s *Server, method, path string, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

var (
	formHeader = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	jsonForm   = map[string]string{"Content-Type": "application/x-www-form-urlencoded", "Accept": "application/json"}
	jsonBody   = map[string]string{"Content-Type": "application/json"}
)

func createQuiz(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/quiz/new", "", formHeader)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /quiz/new status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	id, ok := strings.CutPrefix(loc, "/quiz/admin/")
	if !ok || id == "" {
		t.Fatalf("Location = %q, want /quiz/admin/{id}", loc)
	}
	return id
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestPlaceTimerThenView(t *testing.T) {
	s := newTestServer(t, nil)
	id := createQuiz(t, s)

	form := url.Values{"kind": {"timer"}, "col": {"0"}, "row": {"0"}}
	rec := do(t, s, http.MethodPost, "/quiz/admin/"+id+"/place", form.Encode(), formHeader)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("place status = %d, want 303: %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/quiz/"+id, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("view status = %d, want 200", rec.Code)
	}
	page := rec.Body.String()
	if n := strings.Count(page, `data-kind="timer"`); n != 1 {
		t.Errorf("timer widgets = %d, want 1", n)
	}
	if strings.Contains(page, "data-delete") {
		t.Error("viewer page shows a delete control")
	}
	if !strings.Contains(page, "30:00") {
		t.Error("viewer page missing timer text")
	}
}

func TestListPage(t *testing.T) {
	s := newTestServer(t, nil)
	id := createQuiz(t, s)

	rec := do(t, s, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{quiz.DefaultTitle, "/quiz/" + id, "/quiz/admin/" + id} {
		if !strings.Contains(body, want) {
			t.Errorf("list page missing %q", want)
		}
	}
}

func TestMissingQuiz(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/quiz/nope", "/quiz/admin/nope"} {
		if rec := do(t, s, http.MethodGet, path, "", nil); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
	form := url.Values{"components": {"[]"}}
	if rec := do(t, s, http.MethodPost, "/quiz/admin/nope", form.Encode(), formHeader); rec.Code != http.StatusNotFound {
		t.Errorf("submit status = %d, want 404", rec.Code)
	}
}

func TestPlaceCollision(t *testing.T) {
	s := newTestServer(t, nil)
	id := createQuiz(t, s)
	path := "/quiz/admin/" + id + "/place"
	form := url.Values{"kind": {"image"}, "col": {"0"}, "row": {"0"}}.Encode()

	rec := do(t, s, http.MethodPost, path, form, jsonForm)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first place status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var got placed
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Component.Type != grid.KindImage || len(got.Quiz.Components) != 1 {
		t.Errorf("placed = %+v", got)
	}

	rec = do(t, s, http.MethodPost, path, form, jsonForm)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second place status = %d, want 409", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != qerrors.ErrCodeCollision {
		t.Errorf("error code = %s, want COLLISION", e.Code)
	}
}

func TestPlaceDrop(t *testing.T) {
	s := newTestServer(t, nil)
	id := createQuiz(t, s)
	path := "/quiz/admin/" + id + "/place"

	form := url.Values{
		"kind": {"timer"}, "x": {"1150"}, "y": {"550"},
		"left": {"0"}, "top": {"0"}, "width": {"1200"}, "height": {"600"},
	}
	rec := do(t, s, http.MethodPost, path, form.Encode(), jsonForm)
	if rec.Code != http.StatusConflict {
		t.Fatalf("drop at bottom-right status = %d, want 409 (timer leaves the grid)", rec.Code)
	}

	form.Set("x", "650")
	form.Set("y", "10")
	rec = do(t, s, http.MethodPost, path, form.Encode(), jsonForm)
	if rec.Code != http.StatusCreated {
		t.Fatalf("drop status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var got placed
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Component.Position != (grid.Position{Col: 6, Row: 0}) {
		t.Errorf("Position = %+v, want {6 0}", got.Component.Position)
	}

	tests := []struct {
		name string
		form url.Values
	}{
		{"zero width", url.Values{"kind": {"timer"}, "x": {"1"}, "y": {"1"}, "left": {"0"}, "top": {"0"}, "width": {"0"}, "height": {"10"}}},
		{"not a number", url.Values{"kind": {"timer"}, "x": {"one"}, "y": {"1"}, "left": {"0"}, "top": {"0"}, "width": {"10"}, "height": {"10"}}},
		{"bad col", url.Values{"kind": {"timer"}, "col": {"a"}, "row": {"0"}}},
		{"bad kind", url.Values{"kind": {"chart"}, "col": {"4"}, "row": {"4"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, path, tt.form.Encode(), jsonForm)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestRemoveAndSubmit(t *testing.T) {
	s := newTestServer(t, nil)
	id := createQuiz(t, s)
	admin := "/quiz/admin/" + id

	rec := do(t, s, http.MethodPost, admin+"/place", url.Values{"kind": {"timer"}, "col": {"0"}, "row": {"0"}}.Encode(), jsonForm)
	var got placed
	json.Unmarshal(rec.Body.Bytes(), &got)
	cid := got.Component.ID

	rec = do(t, s, http.MethodGet, admin, "", nil)
	if !strings.Contains(rec.Body.String(), `data-delete="`+cid+`"`) {
		t.Fatalf("admin page missing delete control for %s", cid)
	}

	rec = do(t, s, http.MethodPost, admin+"/components/"+cid+"/delete", "", formHeader)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("remove status = %d, want 303", rec.Code)
	}
	rec = do(t, s, http.MethodPost, admin+"/components/"+cid+"/delete", "", formHeader)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", rec.Code)
	}

	comps := `[{"id":"q-1","type":"question","position":{"x":0,"y":0},"content":"Two plus two?","settings":{"size":{"width":12,"height":2}}}]`
	rec = do(t, s, http.MethodPost, admin, url.Values{"components": {comps}}.Encode(), formHeader)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("submit status = %d, want 303: %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodGet, "/quiz/"+id, "", nil)
	if !strings.Contains(rec.Body.String(), "Two plus two?") {
		t.Error("submitted question not rendered")
	}

	rec = do(t, s, http.MethodPost, admin, url.Values{"components": {"{not json"}}.Encode(), formHeader)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON submit status = %d, want 400", rec.Code)
	}
}

func TestAPI(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/quizzes", `{"title":"Geography"}`, jsonBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var q quiz.Quiz
	if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
		t.Fatal(err)
	}
	if q.Title != "Geography" || rec.Header().Get("Location") != "/api/quizzes/"+q.ID {
		t.Errorf("created = %+v, Location = %q", q, rec.Header().Get("Location"))
	}

	rec = do(t, s, http.MethodPost, "/api/quizzes/"+q.ID+"/components", `{"type":"options","position":{"x":0,"y":8}}`, jsonBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place status = %d: %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/api/quizzes/"+q.ID, "", nil)
	var fetched quiz.Quiz
	json.Unmarshal(rec.Body.Bytes(), &fetched)
	if len(fetched.Components) != 1 || fetched.Components[0].Type != grid.KindOptions {
		t.Errorf("fetched components = %+v", fetched.Components)
	}

	overlap := `[{"id":"a","type":"timer","position":{"x":0,"y":0}},{"id":"b","type":"timer","position":{"x":1,"y":0}}]`
	rec = do(t, s, http.MethodPut, "/api/quizzes/"+q.ID+"/components", overlap, jsonBody)
	if rec.Code != http.StatusConflict {
		t.Errorf("overlapping replace status = %d, want 409", rec.Code)
	}

	rec = do(t, s, http.MethodPut, "/api/quizzes/"+q.ID+"/components", `[]`, jsonBody)
	if rec.Code != http.StatusOK {
		t.Errorf("replace status = %d, want 200", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/quizzes", "", nil)
	var list []quiz.Quiz
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Errorf("len(list) = %d, want 1", len(list))
	}

	if rec = do(t, s, http.MethodDelete, "/api/quizzes/"+q.ID, "", nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = do(t, s, http.MethodDelete, "/api/quizzes/"+q.ID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != qerrors.ErrCodeNotFound {
		t.Errorf("error code = %s, want NOT_FOUND", e.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/quizzes", `{"name":"x"}`, jsonBody)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}
}

func TestAPIPlace(t *testing.T) {
	s := newTestServer(t, nil)
	id := createQuiz(t, s)
	path := "/api/quizzes/" + id + "/components"

	tests := []struct {
		name   string
		body   string
		status int
		want   grid.Position
	}{
		{"kind and position", `{"kind":"timer","position":{"x":0,"y":0}}`, http.StatusCreated, grid.Position{Col: 0, Row: 0}},
		{"type alias", `{"type":"timer","position":{"x":2,"y":0}}`, http.StatusCreated, grid.Position{Col: 2, Row: 0}},
		{"explicit size", `{"kind":"image","position":{"x":0,"y":4},"size":{"width":3,"height":3}}`, http.StatusCreated, grid.Position{Col: 0, Row: 4}},
		{"drop", `{"kind":"timer","drop":{"x":650,"y":10,"bounds":{"left":0,"top":0,"width":1200,"height":1200}}}`, http.StatusCreated, grid.Position{Col: 6, Row: 0}},
		{"drop collides", `{"kind":"timer","drop":{"x":650,"y":10,"bounds":{"left":0,"top":0,"width":1200,"height":1200}}}`, http.StatusConflict, grid.Position{}},
		{"drop outside", `{"kind":"timer","drop":{"x":-5,"y":10,"bounds":{"left":0,"top":0,"width":1200,"height":1200}}}`, http.StatusConflict, grid.Position{}},
		{"zero bounds", `{"kind":"timer","drop":{"x":5,"y":5,"bounds":{"left":0,"top":0,"width":0,"height":100}}}`, http.StatusBadRequest, grid.Position{}},
		{"no target", `{"kind":"timer"}`, http.StatusBadRequest, grid.Position{}},
		{"both targets", `{"kind":"timer","position":{"x":8,"y":8},"drop":{"x":5,"y":5,"bounds":{"width":10,"height":10}}}`, http.StatusBadRequest, grid.Position{}},
		{"unknown kind", `{"kind":"chart","position":{"x":8,"y":8}}`, http.StatusBadRequest, grid.Position{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, path, tt.body, jsonBody)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if tt.status != http.StatusCreated {
				return
			}
			var got placed
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got.Component.Position != tt.want {
				t.Errorf("position = %+v, want %+v", got.Component.Position, tt.want)
			}
		})
	}
}

func TestAPIEmptyList(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/quizzes", "", nil)
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body)
	}
}

type cacheCounter struct {
	mu                sync.Mutex
	hits, misses, set int
}

func (c *cacheCounter) OnCacheHit(context.Context, string)  { c.mu.Lock(); c.hits++; c.mu.Unlock() }
func (c *cacheCounter) OnCacheMiss(context.Context, string) { c.mu.Lock(); c.misses++; c.mu.Unlock() }
func (c *cacheCounter) OnCacheSet(context.Context, string, int) {
	c.mu.Lock()
	c.set++
	c.mu.Unlock()
}

func TestPageCache(t *testing.T) {
	counter := &cacheCounter{}
	observability.SetCacheHooks(counter)
	t.Cleanup(observability.Reset)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, fc)
	id := createQuiz(t, s)

	first := do(t, s, http.MethodGet, "/quiz/"+id, "", nil).Body.String()
	second := do(t, s, http.MethodGet, "/quiz/"+id, "", nil).Body.String()
	if first != second {
		t.Error("cached page differs from rendered page")
	}
	if counter.hits != 1 || counter.misses != 1 || counter.set != 1 {
		t.Errorf("hits/misses/sets = %d/%d/%d, want 1/1/1", counter.hits, counter.misses, counter.set)
	}

	do(t, s, http.MethodPost, "/quiz/admin/"+id+"/place", url.Values{"kind": {"timer"}, "col": {"0"}, "row": {"0"}}.Encode(), formHeader)
	third := do(t, s, http.MethodGet, "/quiz/"+id, "", nil).Body.String()
	if !strings.Contains(third, `data-kind="timer"`) {
		t.Error("stale page served after placement")
	}
	if counter.misses != 2 {
		t.Errorf("misses = %d, want 2", counter.misses)
	}
}

func TestServeShutsDown(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln, config.Default().Server) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
