package render

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/quizgrid/pkg/grid"
	"github.com/matzehuels/quizgrid/pkg/quiz"
)

func sampleQuiz() *quiz.Quiz {
	q := quiz.New("q1", "Capitals <b>", time.Unix(0, 0))
	timer := quiz.NewComponent(grid.KindTimer, grid.Position{Col: 10, Row: 0})
	timer.ID = "timer-1"
	question := quiz.NewComponent(grid.KindQuestion, grid.Position{Col: 0, Row: 1})
	question.ID = "question-1"
	opts := quiz.NewComponent(grid.KindOptions, grid.Position{Col: 0, Row: 3})
	opts.ID = "options-1"
	q.Components = []quiz.Component{timer, question, opts}
	return q
}

func TestPageView(t *testing.T) {
	out, err := PageBytes(sampleQuiz(), ModeView)
	if err != nil {
		t.Fatalf("PageBytes() error: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		"Capitals &lt;b&gt;",
		TimerText,
		DefaultQuestion,
		"Paris", "London", "Berlin", "Madrid",
		"grid-column: 11 / span 2; grid-row: 1 / span 1;",
		"grid-column: 1 / span 12; grid-row: 2 / span 2;",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("view page missing %q", want)
		}
	}
	for _, unwanted := range []string{"data-delete", `class="palette"`, "<textarea"} {
		if strings.Contains(html, unwanted) {
			t.Errorf("view page contains admin element %q", unwanted)
		}
	}
	if n := strings.Count(html, `data-kind="timer"`); n != 1 {
		t.Errorf("timer widgets = %d, want 1", n)
	}
}

func TestPageAdmin(t *testing.T) {
	out, err := PageBytes(sampleQuiz(), ModeAdmin)
	if err != nil {
		t.Fatalf("PageBytes() error: %v", err)
	}
	html := string(out)

	if n := strings.Count(html, "data-delete="); n != 3 {
		t.Errorf("delete controls = %d, want 3", n)
	}
	if !strings.Contains(html, `action="/quiz/admin/q1/components/timer-1/delete"`) {
		t.Error("missing delete route for timer-1")
	}
	for _, k := range grid.Kinds {
		if !strings.Contains(html, k.Label()) {
			t.Errorf("palette missing %q", k.Label())
		}
	}
	if !strings.Contains(html, `name="components"`) {
		t.Error("missing components field")
	}
	if !regexp.MustCompile(`fetch\("[^"]*q1[^"]*place"`).MatchString(html) {
		t.Error("drop script does not post to the place route")
	}
}

func TestWidgetContent(t *testing.T) {
	q := quiz.New("q2", "Custom", time.Unix(0, 0))
	question := quiz.NewComponent(grid.KindQuestion, grid.Position{})
	question.Content = "Largest planet?"
	img := quiz.NewComponent(grid.KindImage, grid.Position{Row: 2})
	progress := quiz.NewComponent(grid.KindProgress, grid.Position{Row: 6})
	unknown := quiz.Component{ID: "mystery", Type: "chart", Position: grid.Position{Row: 7}}
	q.Components = []quiz.Component{question, img, progress, unknown}

	out, err := PageBytes(q, ModeView)
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	if !strings.Contains(html, "Largest planet?") || strings.Contains(html, DefaultQuestion) {
		t.Error("question content not used")
	}
	if !strings.Contains(html, `class="placeholder" data-kind="image"`) {
		t.Error("missing image placeholder")
	}
	if !strings.Contains(html, "width: 50%") {
		t.Error("progress bar not at 50%")
	}
	if !strings.Contains(html, `data-component="mystery"`) {
		t.Error("unknown kind should still render a cell")
	}
}

func TestCellStyle(t *testing.T) {
	c := quiz.NewComponent(grid.KindImage, grid.Position{Col: 2, Row: 3})
	c.Settings.Style = &quiz.Style{Background: "#ff0000", TextColor: "red;}</style>", Align: quiz.AlignCenter}

	got := string(cellStyle(c))
	want := "grid-column: 3 / span 6; grid-row: 4 / span 4; background: #ff0000; text-align: center;"
	if got != want {
		t.Errorf("cellStyle() = %q, want %q", got, want)
	}
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	if err := List(&buf, []*quiz.Quiz{quiz.New("a", "Sample Quiz 1", time.Now())}); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{"Sample Quiz 1", `href="/quiz/a"`, `href="/quiz/admin/a"`, `action="/quiz/new"`} {
		if !strings.Contains(html, want) {
			t.Errorf("list page missing %q", want)
		}
	}

	buf.Reset()
	if err := List(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No quizzes yet.") {
		t.Error("empty list page missing placeholder")
	}
}

func TestTerminal(t *testing.T) {
	out := Terminal(sampleQuiz(), 2+grid.Cols)
	lines := strings.Split(out, "\n")
	if len(lines) != grid.Rows+2 {
		t.Fatalf("lines = %d, want %d", len(lines), grid.Rows+2)
	}
	first := lines[1]
	if !strings.Contains(first, "··········Tt") {
		t.Errorf("row 0 = %q, want timer in the last two columns", first)
	}
	if !strings.Contains(lines[2], "Qqqqqqqqqqqq") {
		t.Errorf("row 1 = %q, want question across the row", lines[2])
	}

	legend := Legend(sampleQuiz())
	for _, want := range []string{"Timer×1", "Question Text×1", "Options×1"} {
		if !strings.Contains(legend, want) {
			t.Errorf("Legend() = %q, missing %q", legend, want)
		}
	}
}

func TestTerminalHighlightKeepsGlyphs(t *testing.T) {
	q := sampleQuiz()
	if got, want := TerminalHighlight(q, 2+grid.Cols, "timer-1"), Terminal(q, 2+grid.Cols); got != want {
		t.Errorf("highlight changed glyphs without a color profile:\n%s\nvs\n%s", got, want)
	}
}
