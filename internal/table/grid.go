// Package table rebuilds dense 2-D grids from the sparse cell lists produced
// by the extraction service.
package table

import (
	"fmt"
	"strings"

	"docoverlay/internal/document"
)

// Empty is the placeholder text for a grid position with no cell.
const Empty = "-"

// Slot is one grid position. Cell is nil for an empty position.
type Slot struct {
	Cell *document.TableCell
}

// IsEmpty reports whether no cell occupies the slot.
func (s Slot) IsEmpty() bool { return s.Cell == nil }

// Text returns the cell text, or Empty.
func (s Slot) Text() string {
	if s.Cell == nil {
		return Empty
	}
	return s.Cell.Text
}

// Header reports whether the cell should render with header emphasis.
func (s Slot) Header() bool {
	return s.Cell != nil && s.Cell.IsColumnHeader()
}

// Grid is a rectangular [rows][cols] table with 0-based storage.
type Grid struct {
	Slots [][]Slot
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g.Slots) }

// Cols returns the number of columns.
func (g Grid) Cols() int {
	if len(g.Slots) == 0 {
		return 0
	}
	return len(g.Slots[0])
}

// At returns the slot at 1-based (row, col); out-of-range positions are empty.
func (g Grid) At(row, col int) Slot {
	if row < 1 || row > g.Rows() || col < 1 || col > g.Cols() {
		return Slot{}
	}
	return g.Slots[row-1][col-1]
}

// Texts returns the rendered text of every slot.
func (g Grid) Texts() [][]string {
	out := make([][]string, len(g.Slots))
	for r, row := range g.Slots {
		out[r] = make([]string, len(row))
		for c, s := range row {
			out[r][c] = s.Text()
		}
	}
	return out
}

// Markdown renders the grid as a pipe table with a separator after the first row.
func (g Grid) Markdown() string {
	var b strings.Builder
	for r, row := range g.Texts() {
		b.WriteString("| " + strings.Join(row, " | ") + " |")
		if r == 0 {
			sep := make([]string, len(row))
			for i := range sep {
				sep[i] = "---"
			}
			b.WriteString("\n| " + strings.Join(sep, " | ") + " |")
		}
		if r < g.Rows()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func bounds(cells []document.TableCell) (maxRow, maxCol int) {
	for _, c := range cells {
		maxRow = max(maxRow, c.RowIndex)
		maxCol = max(maxCol, c.ColumnIndex)
	}
	return maxRow, maxCol
}

func newGrid(rows, cols int) Grid {
	slots := make([][]Slot, rows)
	for r := range slots {
		slots[r] = make([]Slot, cols)
	}
	return Grid{Slots: slots}
}

// Reconstruct builds a maxRow x maxCol grid. Each position receives the first
// cell, in source order, whose indices match; unmatched positions stay empty.
// O(rows*cols*cells); see ReconstructIndexed for large tables.
func Reconstruct(cells []document.TableCell) Grid {
	maxRow, maxCol := bounds(cells)
	g := newGrid(maxRow, maxCol)
	for row := 1; row <= maxRow; row++ {
		for col := 1; col <= maxCol; col++ {
			for i := range cells {
				if cells[i].RowIndex == row && cells[i].ColumnIndex == col {
					g.Slots[row-1][col-1] = Slot{Cell: &cells[i]}
					break
				}
			}
		}
	}
	return g
}

type key struct{ row, col int }

// ReconstructIndexed returns the same grid as Reconstruct in O(rows*cols)
// by indexing cells on (row, col), keeping the first occurrence.
func ReconstructIndexed(cells []document.TableCell) Grid {
	index := make(map[key]int, len(cells))
	for i, c := range cells {
		k := key{c.RowIndex, c.ColumnIndex}
		if _, ok := index[k]; !ok {
			index[k] = i
		}
	}
	maxRow, maxCol := bounds(cells)
	g := newGrid(maxRow, maxCol)
	for row := 1; row <= maxRow; row++ {
		for col := 1; col <= maxCol; col++ {
			if i, ok := index[key{row, col}]; ok {
				g.Slots[row-1][col-1] = Slot{Cell: &cells[i]}
			}
		}
	}
	return g
}

// Duplicate describes a coordinate claimed by more than one cell.
type Duplicate struct {
	Row, Col int
	Texts    []string // all claimants in source order; the first one is kept
}

func (d Duplicate) String() string {
	return fmt.Sprintf("(%d,%d) claimed by %d cells %q", d.Row, d.Col, len(d.Texts), d.Texts)
}

// Duplicates lists coordinates shared by several cells. Reconstruction keeps
// the first one; the others are reported here, never merged.
func Duplicates(cells []document.TableCell) []Duplicate {
	seen := make(map[key]int)
	var dups []Duplicate
	for _, c := range cells {
		k := key{c.RowIndex, c.ColumnIndex}
		if i, ok := seen[k]; ok {
			if i < 0 {
				dups = append(dups, Duplicate{Row: k.row, Col: k.col, Texts: []string{firstText(cells, k), c.Text}})
				seen[k] = len(dups) - 1
			} else {
				dups[i].Texts = append(dups[i].Texts, c.Text)
			}
			continue
		}
		seen[k] = -1
	}
	return dups
}

func firstText(cells []document.TableCell, k key) string {
	for _, c := range cells {
		if c.RowIndex == k.row && c.ColumnIndex == k.col {
			return c.Text
		}
	}
	return ""
}

// Flatten turns the service's row sequence into one source-ordered cell list.
func Flatten(rows [][]document.TableCell) []document.TableCell {
	var cells []document.TableCell
	for _, row := range rows {
		cells = append(cells, row...)
	}
	return cells
}

// FromItem reconstructs the grid of a table item.
func FromItem(item document.LayoutItem) Grid {
	return ReconstructIndexed(Flatten(item.TableData))
}
