package panels

import (
	"fmt"
	"image/color"
	"strings"

	"docoverlay/internal/document"
	"docoverlay/internal/selection"
	"docoverlay/internal/viewer"
	"docoverlay/pkg/colorutil"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const snippetLen = 60

// ItemsPanel lists the extracted items. Hovering a row highlights the item
// on the canvas and clicking toggles its selection.
type ItemsPanel struct {
	viewer    *viewer.Viewer
	list      *widget.List
	summary   *widget.Label
	container fyne.CanvasObject

	items []document.LayoutItem
	sel   selection.Selection
}

// NewItemsPanel creates an items panel bound to v.
func NewItemsPanel(v *viewer.Viewer) *ItemsPanel {
	ip := &ItemsPanel{viewer: v}
	ip.summary = widget.NewLabel("No items")

	ip.list = widget.NewList(
		func() int { return len(ip.items) },
		func() fyne.CanvasObject { return newItemRow(ip) },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(ip.items) {
				return
			}
			obj.(*itemRow).bind(int(id), ip.items[id], ip.sel)
		},
	)

	v.On(viewer.EventDocumentChanged, func(interface{}) { ip.sync() })
	v.On(viewer.EventSelectionChanged, func(interface{}) { ip.sync() })
	v.On(viewer.EventItemsChanged, func(interface{}) { ip.sync() })
	v.On(viewer.EventBitmapReady, func(interface{}) { ip.sync() })

	ip.container = container.NewBorder(ip.summary, nil, nil, nil, ip.list)
	return ip
}

// Container returns the panel container.
func (ip *ItemsPanel) Container() fyne.CanvasObject {
	return ip.container
}

// Sync reloads the items from the viewer.
func (ip *ItemsPanel) Sync() { ip.sync() }

func (ip *ItemsPanel) sync() {
	ip.items = ip.viewer.Items()
	ip.sel = ip.viewer.Selection()
	ip.summary.SetText(summarize(ip.items, ip.viewer.Page().Current))
	ip.list.Refresh()
}

func (ip *ItemsPanel) click(index int) {
	if index < 0 || index >= len(ip.items) {
		return
	}
	// An item on another page is brought into view before it is selected.
	if page := ip.items[index].Page; page != ip.viewer.Page().Current {
		if err := ip.viewer.GoToPage(page); err != nil {
			return
		}
	}
	ip.viewer.ClickItem(index)
}

// summarize reports how many items there are and how many are on page.
func summarize(items []document.LayoutItem, page int) string {
	if len(items) == 0 {
		return "No items"
	}
	return fmt.Sprintf("%d items, %d on page %d", len(items), len(document.ItemsOnPage(items, page)), page)
}

// Describe formats one item for the list: its page, type, confidence and a
// snippet of its text or the size of its table.
func Describe(it document.LayoutItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "p%d %s", it.Page, strings.TrimPrefix(it.Type, "Layout "))
	if it.Confidence != nil {
		fmt.Fprintf(&b, " %.0f%%", *it.Confidence)
	}
	switch {
	case it.IsTable():
		rows, cols := len(it.TableData), 0
		for _, r := range it.TableData {
			for _, c := range r {
				if c.ColumnIndex > cols {
					cols = c.ColumnIndex
				}
			}
		}
		fmt.Fprintf(&b, " [%dx%d table]", rows, cols)
	case it.Text != "":
		b.WriteString(" ")
		b.WriteString(snippet(it.Text, snippetLen))
	}
	if it.BoundingBox() == nil {
		b.WriteString(" (no box)")
	}
	return b.String()
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// itemRow is one list row with a tinted background for the selected and
// hovered states.
type itemRow struct {
	widget.BaseWidget
	panel *ItemsPanel
	index int
	bg    *fynecanvas.Rectangle
	label *widget.Label
}

var (
	_ fyne.Tappable     = (*itemRow)(nil)
	_ desktop.Hoverable = (*itemRow)(nil)
)

func newItemRow(ip *ItemsPanel) *itemRow {
	r := &itemRow{
		panel: ip,
		index: -1,
		bg:    fynecanvas.NewRectangle(color.Transparent),
		label: widget.NewLabel("Item"),
	}
	r.label.Truncation = fyne.TextTruncateEllipsis
	r.ExtendBaseWidget(r)
	return r
}

func (r *itemRow) bind(index int, it document.LayoutItem, sel selection.Selection) {
	r.index = index
	r.label.SetText(Describe(it))
	r.bg.FillColor = rowColor(sel.IsSelected(index), sel.IsHovered(index))
	r.bg.Refresh()
}

// rowColor mirrors the overlay stroke colors at low opacity.
func rowColor(selected, hovered bool) color.Color {
	switch {
	case selected:
		return colorutil.Tint(colorutil.Indigo, 0x50)
	case hovered:
		return colorutil.Tint(colorutil.Green, 0x50)
	}
	return color.Transparent
}

func (r *itemRow) Tapped(*fyne.PointEvent) {
	r.panel.click(r.index)
}

func (r *itemRow) MouseIn(*desktop.MouseEvent) {
	if r.index >= 0 {
		r.panel.viewer.HoverItem(selection.Index(r.index))
	}
}

func (r *itemRow) MouseMoved(*desktop.MouseEvent) {}

func (r *itemRow) MouseOut() {
	r.panel.viewer.HoverItem(nil)
}

func (r *itemRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(r.bg, r.label))
}
