// Package overlay computes and draws the highlight outlines for the selected
// and hovered layout items of the current page.
package overlay

import (
	"image"
	"image/color"
	"sort"

	"docoverlay/internal/document"
	"docoverlay/internal/selection"
	"docoverlay/internal/viewport"
	"docoverlay/pkg/colorutil"
	"docoverlay/pkg/geometry"
)

// LineWidth is the outline thickness in surface pixels.
const LineWidth = 2

// Style describes how an outline is stroked. Fill is never used.
type Style struct {
	Color color.RGBA
	Width int
}

var (
	// SelectedStyle is used for the selected item, hovered or not.
	SelectedStyle = Style{Color: colorutil.Indigo, Width: LineWidth}
	// HoveredStyle is used for an item that is only hovered.
	HoveredStyle = Style{Color: colorutil.Green, Width: LineWidth}
)

// StyleFor returns the style for an item given its state. The second result is
// false when the item is neither selected nor hovered and must not be drawn.
// Selection takes priority over hover.
func StyleFor(selected, hovered bool) (Style, bool) {
	switch {
	case selected:
		return SelectedStyle, true
	case hovered:
		return HoveredStyle, true
	default:
		return Style{}, false
	}
}

// Command is one outline to stroke, in surface pixels.
type Command struct {
	Index int
	Rect  geometry.Rect
	Style Style
}

// Commands returns one command per item that lives on page, has a valid
// bounding box, and is selected or hovered. Items with missing or malformed
// geometry are skipped. The selected outline sorts last so it is drawn on top.
func Commands(items []document.LayoutItem, page int, sel selection.Selection, draw geometry.Size) []Command {
	var cmds []Command
	for i, item := range items {
		if item.Page != page {
			continue
		}
		style, ok := StyleFor(sel.IsSelected(i), sel.IsHovered(i))
		if !ok {
			continue
		}
		r, err := viewport.MapRect(item.BoundingBox(), draw, viewport.DefaultPadding)
		if err != nil {
			continue
		}
		cmds = append(cmds, Command{Index: i, Rect: r, Style: style})
	}
	sort.SliceStable(cmds, func(a, b int) bool {
		return !sel.IsSelected(cmds[a].Index) && sel.IsSelected(cmds[b].Index)
	})
	return cmds
}

// Draw strokes every command onto dst. Strokes are clipped to dst's bounds.
func Draw(dst *image.RGBA, cmds []Command) error {
	if dst == nil {
		return document.ErrMissingCanvasSurface
	}
	for _, cmd := range cmds {
		strokeRect(dst, cmd.Rect.ToInt().Image(), cmd.Style)
	}
	return nil
}

// strokeRect draws the border of r Width pixels thick, centered on its edges
// the way a 2D canvas strokes a path.
func strokeRect(dst *image.RGBA, r image.Rectangle, style Style) {
	if r.Empty() {
		return
	}
	bounds := dst.Bounds()
	w := max(1, style.Width)
	out := w / 2
	y1, y2 := r.Min.Y-out, r.Max.Y-1+out
	x1, x2 := r.Min.X-out, r.Max.X-1+out

	set := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			dst.SetRGBA(x, y, style.Color)
		}
	}

	for t := -out; t < w-out; t++ {
		for x := x1; x <= x2; x++ {
			set(x, r.Min.Y+t)
			set(x, r.Max.Y-1-t)
		}
		for y := y1; y <= y2; y++ {
			set(r.Min.X+t, y)
			set(r.Max.X-1-t, y)
		}
	}
}

// HitTest returns the index of the item on page whose padded box contains p,
// preferring the smallest box when several overlap. Items carrying a polygon
// must also contain p inside that polygon.
func HitTest(items []document.LayoutItem, page int, draw geometry.Size, p geometry.Point2D) (int, bool) {
	best, bestArea := -1, 0.0
	for i, item := range items {
		if item.Page != page {
			continue
		}
		r, err := viewport.MapRect(item.BoundingBox(), draw, viewport.DefaultPadding)
		if err != nil || !r.Contains(p) {
			continue
		}
		if outline := item.Geometry.Outline(); outline != nil {
			frac := geometry.Point2D{X: p.X / draw.Width, Y: p.Y / draw.Height}
			if !geometry.PointInPolygon(frac, outline) {
				continue
			}
		}
		if best < 0 || r.Area() < bestArea {
			best, bestArea = i, r.Area()
		}
	}
	return best, best >= 0
}
