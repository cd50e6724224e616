package table

import (
	"fmt"
	"io"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderOptions controls terminal rendering of a grid.
type RenderOptions struct {
	// Emphasis renders COLUMN_HEADER cells bold using ANSI escapes.
	Emphasis bool
	// Title is printed above the table when non-empty.
	Title string
}

// Format renders the grid as a box-drawn text table.
func Format(g Grid, opts RenderOptions) string {
	t := prettytable.NewWriter()
	for _, row := range g.Slots {
		r := make(prettytable.Row, len(row))
		for c, s := range row {
			cell := s.Text()
			if opts.Emphasis && s.Header() {
				cell = text.Bold.Sprint(cell)
			}
			r[c] = cell
		}
		t.AppendRow(r)
	}
	if opts.Title == "" {
		return t.Render()
	}
	// go-pretty wraps titles to the table width.
	return opts.Title + "\n" + t.Render()
}

// Render writes the formatted grid followed by a newline.
func Render(w io.Writer, g Grid, opts RenderOptions) error {
	_, err := fmt.Fprintln(w, Format(g, opts))
	return err
}
