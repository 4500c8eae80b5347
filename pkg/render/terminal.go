package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/quizgrid/pkg/grid"
	"github.com/matzehuels/quizgrid/pkg/quiz"
)

// KindColors are the terminal colors used per component kind.
var KindColors = map[grid.Kind]lipgloss.Color{
	grid.KindProgress: lipgloss.Color("63"),
	grid.KindTimer:    lipgloss.Color("214"),
	grid.KindQuestion: lipgloss.Color("36"),
	grid.KindImage:    lipgloss.Color("168"),
	grid.KindOptions:  lipgloss.Color("75"),
}

// EmptyCell marks a free cell in terminal output.
const EmptyCell = "·"

var (
	styleEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

// Terminal draws the occupancy of q as a Cols×Rows character grid that
// fits in width terminal columns. Each cell shows the first letter of
// the kind covering it; the top-left cell of a component is upper case.
func Terminal(q *quiz.Quiz, width int) string {
	return TerminalHighlight(q, width, "")
}

// TerminalHighlight is Terminal with the cells of component id reversed.
func TerminalHighlight(q *quiz.Quiz, width int, id string) string {
	cellW := max(1, (width-2)/grid.Cols)
	occ := grid.Occupancy(q.Rects())

	kinds := make(map[string]grid.Kind, len(q.Components))
	origins := make(map[grid.Position]bool, len(q.Components))
	for _, c := range q.Components {
		kinds[c.ID] = c.Type
		origins[c.Position] = true
	}

	var b strings.Builder
	for row := range grid.Rows {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := range grid.Cols {
			cell := occ[col][row]
			if cell == "" {
				b.WriteString(styleEmpty.Render(pad(EmptyCell, cellW)))
				continue
			}
			k := kinds[cell]
			glyph := "?"
			if k != "" {
				glyph = string(k[0])
			}
			if origins[grid.Position{Col: col, Row: row}] {
				glyph = strings.ToUpper(glyph)
			}
			style := lipgloss.NewStyle().Foreground(KindColors[k]).Bold(true).Reverse(id != "" && cell == id)
			b.WriteString(style.Render(pad(glyph, cellW)))
		}
	}
	return styleBorder.Render(b.String())
}

// Legend lists the kinds present in q with their counts.
func Legend(q *quiz.Quiz) string {
	var parts []string
	for _, k := range grid.Kinds {
		n := q.Count(k)
		if n == 0 {
			continue
		}
		style := lipgloss.NewStyle().Foreground(KindColors[k])
		parts = append(parts, style.Render(fmt.Sprintf("%s %s×%d", strings.ToUpper(string(k[0])), k.Label(), n)))
	}
	if len(parts) == 0 {
		return styleEmpty.Render("empty layout")
	}
	return strings.Join(parts, "  ")
}

func pad(s string, w int) string {
	if w <= 1 {
		return s
	}
	return s + strings.Repeat(" ", w-1)
}
