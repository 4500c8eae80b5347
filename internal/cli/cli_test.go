package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/grid"
	"github.com/matzehuels/quizgrid/pkg/observability"
	"github.com/matzehuels/quizgrid/pkg/quiz"
)

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

var idLine = regexp.MustCompile(`ID\s+(\S+)`)

func TestQuizCommands(t *testing.T) {
	dir := t.TempDir()
	store := []string{"--store", "file", "--dsn", dir}

	out, err := run(t, append(store, "quiz", "create", "Capital", "Cities")...)
	if err != nil {
		t.Fatalf("quiz create: %v", err)
	}
	if !strings.Contains(out, `Created "Capital Cities"`) {
		t.Errorf("create output = %q", out)
	}
	m := idLine.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no quiz id in %q", out)
	}
	id := m[1]

	out, err = run(t, append(store, "quiz", "place", id, "timer", "0", "0")...)
	if err != nil {
		t.Fatalf("quiz place: %v", err)
	}
	if !strings.Contains(out, "Placed Timer at (0,0)") {
		t.Errorf("place output = %q", out)
	}

	_, err = run(t, append(store, "quiz", "place", id, "timer", "1", "0")...)
	if !qerrors.Is(err, qerrors.ErrCodeCollision) {
		t.Errorf("overlapping place error = %v, want COLLISION", err)
	}
	out, err = run(t, append(store, "quiz", "place", "--policy", "clamp", id, "image", "10", "0")...)
	if err != nil {
		t.Fatalf("clamped place: %v", err)
	}
	if !strings.Contains(out, "Placed Image at (6,0)") {
		t.Errorf("clamped place output = %q", out)
	}

	out, err = run(t, append(store, "quiz", "list")...)
	if err != nil {
		t.Fatalf("quiz list: %v", err)
	}
	if !strings.Contains(out, "Capital Cities") || !strings.Contains(out, id) {
		t.Errorf("list output = %q", out)
	}

	out, err = run(t, append(store, "quiz", "show", id)...)
	if err != nil {
		t.Fatalf("quiz show: %v", err)
	}
	for _, want := range []string{"Capital Cities", "Timer×1", "Image×1", "118 of 144"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	layout := filepath.Join(t.TempDir(), "layout.json")
	if _, err := run(t, append(store, "quiz", "export", id, "-o", layout)...); err != nil {
		t.Fatalf("quiz export: %v", err)
	}
	out, err = run(t, append(store, "quiz", "import", layout)...)
	if err != nil {
		t.Fatalf("quiz import: %v", err)
	}
	if !strings.Contains(out, `Imported "Capital Cities" with 2 components`) {
		t.Errorf("import output = %q", out)
	}
	out, _ = run(t, append(store, "quiz", "list")...)
	if n := strings.Count(out, "Capital Cities"); n != 2 {
		t.Errorf("quizzes titled Capital Cities = %d, want 2", n)
	}

	if _, err := run(t, append(store, "quiz", "delete", id)...); err != nil {
		t.Fatalf("quiz delete: %v", err)
	}
	if _, err := run(t, append(store, "quiz", "show", id)...); !qerrors.Is(err, qerrors.ErrCodeNotFound) {
		t.Errorf("show after delete error = %v, want NOT_FOUND", err)
	}
}

func TestQuizPlaceArgs(t *testing.T) {
	store := []string{"--store", "file", "--dsn", t.TempDir()}
	if _, err := run(t, append(store, "quiz", "place", "x", "timer", "a", "0")...); err == nil {
		t.Error("non-numeric col accepted")
	}
	if _, err := run(t, append(store, "quiz", "place", "--policy", "overlap", "x", "timer", "0", "0")...); !qerrors.Is(err, qerrors.ErrCodeInvalidPolicy) {
		t.Errorf("bad policy error = %v, want INVALID_POLICY", err)
	}
}

func TestMemoryStoreWarning(t *testing.T) {
	out, err := run(t, "quiz", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "memory store") || !strings.Contains(out, "No quizzes") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigCommands(t *testing.T) {
	out, err := run(t, "-c", "/etc/quizgrid.toml", "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "/etc/quizgrid.toml" {
		t.Errorf("config path = %q", out)
	}

	out, err = run(t, "--store", "sqlite", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[server]", `addr = ":8080"`, `backend = "sqlite"`, `policy = "reject"`} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "--store", "cassandra", "config", "show"); !qerrors.Is(err, qerrors.ErrCodeInvalidConfig) {
		t.Errorf("bad store error = %v, want INVALID_CONFIG", err)
	}
}

func TestCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/qg-cache")
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "/tmp/qg-cache/quizgrid" {
		t.Errorf("cache path = %q", out)
	}
}

func TestPreviewModel(t *testing.T) {
	q := quiz.New("q1", "Preview", time.Unix(0, 0))
	a := quiz.NewComponent(grid.KindQuestion, grid.Position{})
	b := quiz.NewComponent(grid.KindTimer, grid.Position{Col: 0, Row: 2})
	q.Components = []quiz.Component{a, b}

	var m tea.Model = NewPreviewModel(q)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	pm := m.(PreviewModel)
	if pm.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1 (clamped to last component)", pm.Cursor)
	}
	if sel, _ := pm.Selected(); sel.ID != b.ID {
		t.Errorf("Selected() = %s, want %s", sel.ID, b.ID)
	}
	view := pm.View()
	if !strings.Contains(view, "Preview") || !strings.Contains(view, "▸ Timer") {
		t.Errorf("View() = %q", view)
	}

	_, cmd := pm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q should quit")
	}
}
