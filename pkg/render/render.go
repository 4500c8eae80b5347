// Package render turns quizzes into HTML pages and terminal previews.
//
// Pages come in two modes over the same canvas: [ModeView] shows the
// widgets only, [ModeAdmin] adds the component palette, a delete control
// per widget, and the drop script that posts placements back to the
// server. The canvas is a CSS grid of [grid.Cols] columns; a component at
// (col,row) with size w×h occupies
//
//	grid-column: col+1 / span w; grid-row: row+1 / span h
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/matzehuels/quizgrid/pkg/grid"
	"github.com/matzehuels/quizgrid/pkg/quiz"
)

// Mode selects how a quiz page is rendered.
type Mode string

const (
	ModeView  Mode = "view"
	ModeAdmin Mode = "admin"
)

// Fixed widget content.
const (
	DefaultQuestion = "What is the capital of France?"
	TimerText       = "30:00"
	ProgressPercent = 50
)

// DefaultOptions are the answers every options widget shows.
var DefaultOptions = []string{"Paris", "London", "Berlin", "Madrid"}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"viewURL":   ViewURL,
	"adminURL":  AdminURL,
	"placeURL":  PlaceURL,
	"deleteURL": DeleteURL,
}).ParseFS(templateFS, "templates/*.html"))

// URL helpers shared with the HTTP router.
func ViewURL(id string) string  { return "/quiz/" + id }
func AdminURL(id string) string { return "/quiz/admin/" + id }
func PlaceURL(id string) string { return AdminURL(id) + "/place" }
func DeleteURL(id, componentID string) string {
	return AdminURL(id) + "/components/" + componentID + "/delete"
}

type paletteItem struct {
	Kind  grid.Kind
	Label string
}

type widget struct {
	ID       string
	Kind     grid.Kind
	Label    string
	Style    template.CSS
	Content  string
	Options  []string
	Progress int
	Timer    string
}

type pageData struct {
	Quiz       *quiz.Quiz
	Admin      bool
	Widgets    []widget
	Palette    []paletteItem
	Components string
	Cols, Rows int
}

type listData struct {
	Quizzes []*quiz.Quiz
}

// List writes the quiz index page.
func List(w io.Writer, quizzes []*quiz.Quiz) error {
	return templates.ExecuteTemplate(w, "list.html", listData{Quizzes: quizzes})
}

// Page writes the page for q in mode.
func Page(w io.Writer, q *quiz.Quiz, mode Mode) error {
	data := pageData{
		Quiz:    q,
		Admin:   mode == ModeAdmin,
		Widgets: make([]widget, 0, len(q.Components)),
		Cols:    grid.Cols,
		Rows:    grid.Rows,
	}
	for _, c := range q.Components {
		data.Widgets = append(data.Widgets, newWidget(c))
	}
	if data.Admin {
		for _, k := range grid.Kinds {
			data.Palette = append(data.Palette, paletteItem{Kind: k, Label: k.Label()})
		}
		comps, err := json.MarshalIndent(quiz.CloneComponents(q.Components), "", "  ")
		if err != nil {
			return fmt.Errorf("encode components: %w", err)
		}
		data.Components = string(comps)
	}
	return templates.ExecuteTemplate(w, "quiz.html", data)
}

// PageBytes renders a page into memory.
func PageBytes(q *quiz.Quiz, mode Mode) ([]byte, error) {
	var buf bytes.Buffer
	if err := Page(&buf, q, mode); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newWidget(c quiz.Component) widget {
	w := widget{
		ID:    c.ID,
		Kind:  c.Type,
		Label: c.Type.Label(),
		Style: cellStyle(c),
	}
	switch c.Type {
	case grid.KindProgress:
		w.Progress = ProgressPercent
	case grid.KindTimer:
		w.Timer = TimerText
	case grid.KindQuestion:
		w.Content = c.Content
		if w.Content == "" {
			w.Content = DefaultQuestion
		}
	case grid.KindImage:
		w.Content = c.Content
	case grid.KindOptions:
		w.Options = DefaultOptions
	}
	return w
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{1,32}|(rgb|rgba|hsl|hsla)\([0-9.,% ]{1,40}\))$`)

// cellStyle places c on the canvas and applies its style overrides.
// Colors that do not look like CSS colors are dropped.
func cellStyle(c quiz.Component) template.CSS {
	size := c.EffectiveSize()
	var b strings.Builder
	fmt.Fprintf(&b, "grid-column: %d / span %d; grid-row: %d / span %d;",
		c.Position.Col+1, size.Width, c.Position.Row+1, size.Height)
	if st := c.Settings.Style; st != nil {
		if colorPattern.MatchString(st.Background) {
			fmt.Fprintf(&b, " background: %s;", st.Background)
		}
		if colorPattern.MatchString(st.TextColor) {
			fmt.Fprintf(&b, " color: %s;", st.TextColor)
		}
		switch st.Align {
		case quiz.AlignLeft, quiz.AlignCenter, quiz.AlignRight:
			fmt.Fprintf(&b, " text-align: %s;", st.Align)
		}
	}
	return template.CSS(b.String())
}
