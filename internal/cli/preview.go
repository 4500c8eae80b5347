package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/quizgrid/pkg/editor"
	"github.com/matzehuels/quizgrid/pkg/quiz"
	"github.com/matzehuels/quizgrid/pkg/render"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

func (c *CLI) previewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <id>",
		Short: "Browse a quiz layout in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd, "", func(ed *editor.Editor) error {
				q, err := ed.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = tea.NewProgram(NewPreviewModel(q), tea.WithContext(cmd.Context())).Run()
				return err
			})
		},
	}
}

// PreviewModel is the read-only bubbletea model behind `quizgrid preview`.
// The cursor walks the component list and highlights the selected
// component on the grid.
type PreviewModel struct {
	Quiz   *quiz.Quiz
	Cursor int
	Width  int
}

// NewPreviewModel creates a preview of q.
func NewPreviewModel(q *quiz.Quiz) PreviewModel {
	return PreviewModel{Quiz: q, Width: previewWidth}
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Quiz.Components)-1 {
				m.Cursor++
			}
		}
	case tea.WindowSizeMsg:
		m.Width = min(msg.Width, previewWidth)
	}
	return m, nil
}

// Selected returns the highlighted component, if any.
func (m PreviewModel) Selected() (quiz.Component, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Quiz.Components) {
		return quiz.Component{}, false
	}
	return m.Quiz.Components[m.Cursor], true
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Quiz.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select component  q quit"))
	b.WriteString("\n\n")

	selected := ""
	if c, ok := m.Selected(); ok {
		selected = c.ID
	}
	b.WriteString(render.TerminalHighlight(m.Quiz, m.Width, selected))
	b.WriteString("\n")
	b.WriteString(render.Legend(m.Quiz))
	b.WriteString("\n\n")

	if len(m.Quiz.Components) == 0 {
		b.WriteString(listDimStyle.Render("  no components placed"))
		b.WriteString("\n")
		return b.String()
	}
	for i, c := range m.Quiz.Components {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		size := c.EffectiveSize()
		line := fmt.Sprintf("%s%-14s (%2d,%2d) %2d×%-2d %s",
			cursor, c.Type.Label(), c.Position.Col, c.Position.Row, size.Width, size.Height, listDimStyle.Render(c.ID))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
