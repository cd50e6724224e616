package panels

import (
	"fmt"
	"image/color"

	"docoverlay/internal/app"
	"docoverlay/internal/table"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	cellWidth  = 120
	cellHeight = 36
)

// TablesPanel shows each table item of the current document as a grid.
type TablesPanel struct {
	session   *app.Session
	window    fyne.Window
	cards     *fyne.Container
	empty     *widget.Label
	container fyne.CanvasObject
}

// NewTablesPanel creates a tables panel for s.
func NewTablesPanel(s *app.Session) *TablesPanel {
	tp := &TablesPanel{
		session: s,
		cards:   container.NewVBox(),
		empty:   widget.NewLabel("No tables in this document"),
	}
	tp.container = container.NewVScroll(container.NewVBox(tp.empty, tp.cards))
	return tp
}

// Container returns the panel container.
func (tp *TablesPanel) Container() fyne.CanvasObject {
	return tp.container
}

// SetWindow sets the window whose clipboard receives copied tables.
func (tp *TablesPanel) SetWindow(w fyne.Window) {
	tp.window = w
}

// Sync rebuilds the cards from the session's current items.
func (tp *TablesPanel) Sync() {
	views := tp.session.Tables()
	tp.cards.RemoveAll()
	for n, tv := range views {
		tp.cards.Add(tp.card(n+1, tv))
	}
	if len(views) == 0 {
		tp.empty.Show()
	} else {
		tp.empty.Hide()
	}
	tp.cards.Refresh()
}

func (tp *TablesPanel) card(n int, tv app.TableView) fyne.CanvasObject {
	grid := tv.Grid
	t := newGridTable(grid)

	copyBtn := widget.NewButton("Copy as Markdown", func() {
		if tp.window != nil {
			tp.window.Clipboard().SetContent(grid.Markdown())
		}
	})
	selectBtn := widget.NewButton("Highlight", func() {
		v := tp.session.Viewer()
		if err := v.GoToPage(tv.Page); err != nil {
			return
		}
		if !v.Selection().IsSelected(tv.Index) {
			v.ClickItem(tv.Index)
		}
	})

	title := fmt.Sprintf("Table %d", n)
	subtitle := fmt.Sprintf("Page %d, %d x %d", tv.Page, grid.Rows(), grid.Cols())
	body := container.NewBorder(nil, container.NewHBox(selectBtn, copyBtn), nil, nil, t)
	return widget.NewCard(title, subtitle, body)
}

// newGridTable builds a read-only table widget over g, sized to show up to
// three columns and eight rows. Column header cells are bold.
func newGridTable(g table.Grid) fyne.CanvasObject {
	t := widget.NewTable(
		func() (int, int) { return g.Rows(), g.Cols() },
		func() fyne.CanvasObject {
			l := widget.NewLabel("cell")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			l := obj.(*widget.Label)
			slot := g.At(id.Row+1, id.Col+1)
			l.TextStyle = fyne.TextStyle{Bold: slot.Header()}
			l.SetText(slot.Text())
		},
	)
	for c := 0; c < g.Cols(); c++ {
		t.SetColumnWidth(c, cellWidth)
	}
	rows := g.Rows()
	if rows > 8 {
		rows = 8
	}
	spacer := fynecanvas.NewRectangle(color.Transparent)
	spacer.SetMinSize(fyne.NewSize(cellWidth*float32(min(g.Cols(), 3)), cellHeight*float32(rows)))
	return container.NewStack(spacer, t)
}
