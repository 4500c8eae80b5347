package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/quizgrid/pkg/config"
	"github.com/matzehuels/quizgrid/pkg/editor"
	"github.com/matzehuels/quizgrid/pkg/grid"
	quizio "github.com/matzehuels/quizgrid/pkg/io"
	"github.com/matzehuels/quizgrid/pkg/quiz"
	"github.com/matzehuels/quizgrid/pkg/render"
	"github.com/matzehuels/quizgrid/pkg/store"
)

// previewWidth is the terminal width used for non-interactive grid output.
const previewWidth = 2 + grid.Cols*3

func (c *CLI) quizCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Manage quizzes in the configured store",
	}

	cmd.AddCommand(c.quizListCommand())
	cmd.AddCommand(c.quizCreateCommand())
	cmd.AddCommand(c.quizShowCommand())
	cmd.AddCommand(c.quizDeleteCommand())
	cmd.AddCommand(c.quizPlaceCommand())
	cmd.AddCommand(c.quizExportCommand())
	cmd.AddCommand(c.quizImportCommand())

	return cmd
}

// withEditor runs fn against an editor on the configured store and closes
// the store afterwards.
func (c *CLI) withEditor(cmd *cobra.Command, policy string, fn func(*editor.Editor) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	warnEphemeral(cfg)
	ed, err := c.newEditor(cmd.Context(), cfg, policy)
	if err != nil {
		return err
	}
	defer ed.Store.Close()
	return fn(ed)
}

func warnEphemeral(cfg config.Config) {
	if cfg.Store.Backend == store.BackendMemory {
		printWarning("memory store: changes are lost when the command exits (use --store file)")
	}
}

func (c *CLI) quizListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List quizzes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd, "", func(ed *editor.Editor) error {
				quizzes, err := ed.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(quizzes) == 0 {
					printInfo("No quizzes")
					return nil
				}
				fmt.Fprintln(stdout, quizTable(quizzes))
				return nil
			})
		},
	}
}

func quizTable(quizzes []*quiz.Quiz) string {
	rows := make([][]string, 0, len(quizzes))
	for _, q := range quizzes {
		rows = append(rows, []string{
			q.ID,
			q.Title,
			strconv.Itoa(len(q.Components)),
			q.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Components", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func (c *CLI) quizCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create [title]",
		Short: "Create an empty quiz",
		Long:  `Create an empty quiz. Without a title the quiz is called "New Quiz".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd, "", func(ed *editor.Editor) error {
				q, err := ed.Create(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				printSuccess("Created %q", q.Title)
				printKeyValue("ID", q.ID)
				printNextStep("Add a component", fmt.Sprintf("%s quiz place %s timer 0 0", appName, q.ID))
				return nil
			})
		},
	}
}

func (c *CLI) quizShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a quiz and its layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd, "", func(ed *editor.Editor) error {
				q, err := ed.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printQuiz(q)
				return nil
			})
		},
	}
}

func printQuiz(q *quiz.Quiz) {
	fmt.Fprintln(stdout, StyleTitle.Render(q.Title))
	printKeyValue("ID", q.ID)
	printKeyValue("Created", q.CreatedAt.Local().Format(time.DateTime))
	printKeyValue("Updated", q.UpdatedAt.Local().Format(time.DateTime))
	printKeyValue("Free cells", fmt.Sprintf("%d of %d", grid.FreeCells(q.Rects()), grid.Cols*grid.Rows))
	fmt.Fprintln(stdout, render.Terminal(q, previewWidth))
	fmt.Fprintln(stdout, render.Legend(q))
	for _, comp := range q.Components {
		size := comp.EffectiveSize()
		printDetail("%s  %s at (%d,%d) %d×%d", comp.ID, comp.Type.Label(), comp.Position.Col, comp.Position.Row, size.Width, size.Height)
	}
}

func (c *CLI) quizDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd, "", func(ed *editor.Editor) error {
				if err := ed.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) quizPlaceCommand() *cobra.Command {
	var (
		policy        string
		width, height int
	)

	cmd := &cobra.Command{
		Use:   "place <id> <kind> <col> <row>",
		Short: "Place a component on a quiz grid",
		Long: `Place a component of the given kind with its top-left corner at (col, row).

Kinds: progress, timer, question, image, options. Columns and rows count
from 0 to 11. The placement policy decides what happens on overlap.`,
		Args: cobra.ExactArgs(4),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 1 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			kinds := make([]string, len(grid.Kinds))
			for i, k := range grid.Kinds {
				kinds[i] = string(k)
			}
			return kinds, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("col %q: not an integer", args[2])
			}
			row, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("row %q: not an integer", args[3])
			}
			var size *grid.Size
			if width > 0 || height > 0 {
				def := grid.DefaultSizeFor(grid.Kind(args[1]))
				size = &grid.Size{Width: orDefault(width, def.Width), Height: orDefault(height, def.Height)}
			}

			return c.withEditor(cmd, policy, func(ed *editor.Editor) error {
				_, comp, err := ed.PlaceAt(cmd.Context(), args[0], grid.Kind(args[1]), grid.Position{Col: col, Row: row}, size)
				if err != nil {
					return err
				}
				s := comp.EffectiveSize()
				printSuccess("Placed %s at (%d,%d)", comp.Type.Label(), comp.Position.Col, comp.Position.Row)
				printDetail("%s  %d×%d", comp.ID, s.Width, s.Height)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "placement policy: reject, clamp or allow")
	cmd.Flags().IntVar(&width, "width", 0, "width in cells (default: kind default)")
	cmd.Flags().IntVar(&height, "height", 0, "height in cells (default: kind default)")
	return cmd
}

// orDefault returns v when set, otherwise def.
func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func (c *CLI) quizExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a quiz layout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd, "", func(ed *editor.Editor) error {
				q, err := ed.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == "" {
					return quizio.WriteJSON(q, stdout)
				}
				if err := quizio.ExportJSON(q, output); err != nil {
					return err
				}
				printSuccess("Exported %q", q.Title)
				printDetail("File: %s", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) quizImportCommand() *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a quiz from an exported layout",
		Long: `Create a new quiz from a layout file written by "quizgrid quiz export".

The components are committed through the placement policy; when the
layout is refused the new quiz is removed again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := quizio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			return c.withEditor(cmd, policy, func(ed *editor.Editor) error {
				ctx := cmd.Context()
				q, err := ed.Create(ctx, layout.Title)
				if err != nil {
					return err
				}
				if _, err := ed.Submit(ctx, q.ID, layout.Components); err != nil {
					if derr := ed.Delete(ctx, q.ID); derr != nil {
						c.Logger.Warn("remove partially imported quiz", "id", q.ID, "err", derr)
					}
					return err
				}
				printSuccess("Imported %q with %d components", q.Title, len(layout.Components))
				printKeyValue("ID", q.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&policy, "policy", "", "placement policy: reject, clamp or allow")
	return cmd
}
