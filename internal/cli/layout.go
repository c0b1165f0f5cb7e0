package cli

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shelfspace/pkg/shelf"
	"github.com/matzehuels/shelfspace/pkg/store"
)

// layoutCommand creates the layout command for printing the settled shelf.
func (c *CLI) layoutCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the settled shelf layout",
		Long: `Print where every item sits on the shelf.

Items without a stored position are placed the way the shelf places them
on load. Use --json for the raw layout including widths and the shelf count.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	return cmd
}

// layoutOutput is the JSON form of the layout command.
type layoutOutput struct {
	ShelfCount int          `json:"shelfCount"`
	Height     float64      `json:"height"`
	Layout     shelf.Layout `json:"layout"`
}

func (c *CLI) runLayout(ctx context.Context, asJSON bool) error {
	sess, _, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	st := sess.State()
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(layoutOutput{
			ShelfCount: st.ShelfCount,
			Height:     sess.Geometry().Height(st.ShelfCount),
			Layout:     st.Settled,
		})
	}

	lib := sess.Library()
	printInfo("%s", StyleTitle.Render(lib.Title))
	fmt.Fprintln(stdout, layoutTable(st.Settled, lib))
	printDetail("%d shelves, %d items, %d archived", st.ShelfCount, len(st.Settled), len(lib.ArchivedBooks)+len(lib.ArchivedOrnaments))
	return nil
}

// layoutTable renders a layout as a table, one row per item in shelf order.
func layoutTable(l shelf.Layout, lib *store.Library) string {
	rows := make([][]string, 0, len(l))
	for _, e := range sortedByShelf(l) {
		name := e.ID
		if e.Kind == shelf.KindBook {
			if b, ok := lib.Book(e.ID); ok {
				name = b.Title
			}
		} else if e.Variant != "" {
			name = e.Variant
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Shelf),
			strconv.FormatFloat(e.X, 'f', -1, 64),
			strconv.FormatFloat(e.Width, 'f', -1, 64),
			string(e.Kind),
			e.ID,
			name,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Shelf", "X", "Width", "Kind", "ID", "Title").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col <= 2:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case rows[row][3] == string(shelf.KindOrnament):
				return styleOrnament
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// sortedByShelf returns a copy of l ordered by shelf, then x.
func sortedByShelf(l shelf.Layout) shelf.Layout {
	out := l.Clone()
	slices.SortStableFunc(out, func(a, b shelf.Entry) int {
		if a.Shelf != b.Shelf {
			return cmp.Compare(a.Shelf, b.Shelf)
		}
		return cmp.Compare(a.X, b.X)
	})
	return out
}
