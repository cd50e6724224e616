package viewer

import (
	"docoverlay/internal/overlay"
	"docoverlay/internal/viewport"
	"docoverlay/pkg/geometry"
)

// ZoomIn steps the zoom up, clamped at viewport.MaxZoom.
func (v *Viewer) ZoomIn() { v.setZoom(func(z viewport.Zoom) viewport.Zoom { return z.In() }) }

// ZoomOut steps the zoom down, clamped at viewport.MinZoom.
func (v *Viewer) ZoomOut() { v.setZoom(func(z viewport.Zoom) viewport.Zoom { return z.Out() }) }

// ResetZoom restores a zoom of 1.
func (v *Viewer) ResetZoom() { v.setZoom(func(z viewport.Zoom) viewport.Zoom { return z.Reset() }) }

// SetZoom replaces the zoom, for restoring a saved level.
func (v *Viewer) SetZoom(z viewport.Zoom) { v.setZoom(func(viewport.Zoom) viewport.Zoom { return z }) }

func (v *Viewer) setZoom(next func(viewport.Zoom) viewport.Zoom) {
	v.mu.Lock()
	defer v.unlock()
	z := next(v.zoom)
	if z == v.zoom {
		return
	}
	v.zoom = z
	v.queue(EventZoomChanged, z)
}

// NextPage advances one page; a no-op on the last page.
func (v *Viewer) NextPage() bool {
	v.mu.Lock()
	defer v.unlock()
	return v.pages.Next()
}

// PreviousPage goes back one page; a no-op on the first page.
func (v *Viewer) PreviousPage() bool {
	v.mu.Lock()
	defer v.unlock()
	return v.pages.Previous()
}

// GoToPage jumps to page, returning document.ErrPageOutOfRange when it is
// outside [1, total].
func (v *Viewer) GoToPage(page int) error {
	v.mu.Lock()
	defer v.unlock()
	return v.pages.Go(page)
}

// ClickItem toggles the selection of item index.
func (v *Viewer) ClickItem(index int) {
	v.mu.Lock()
	defer v.unlock()
	v.sel.ToggleSelect(index)
}

// HoverItem sets or, with nil, clears the hovered item.
func (v *Viewer) HoverItem(index *int) {
	v.mu.Lock()
	defer v.unlock()
	v.sel.SetHovered(index)
}

// ItemAt returns the item under a point given in widget coordinates, where
// the draw rect is placed at offset inside the widget.
func (v *Viewer) ItemAt(container geometry.Size, offset, p geometry.Point2D) (int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.itemAtLocked(container, offset, p)
}

func (v *Viewer) itemAtLocked(container geometry.Size, offset, p geometry.Point2D) (int, bool) {
	draw := v.drawSizeLocked(container)
	t, err := viewport.NewTransform(draw, offset)
	if err != nil {
		return -1, false
	}
	n := t.ToNormalized(p)
	surface := geometry.Point2D{X: n.X * draw.Width, Y: n.Y * draw.Height}
	return overlay.HitTest(v.items, v.pages.Current(), draw, surface)
}

// ClickCanvas toggles the selection of the item under p. It reports whether
// an item was hit.
func (v *Viewer) ClickCanvas(container geometry.Size, offset, p geometry.Point2D) bool {
	v.mu.Lock()
	defer v.unlock()
	i, ok := v.itemAtLocked(container, offset, p)
	if ok {
		v.sel.ToggleSelect(i)
	}
	return ok
}

// HoverCanvas sets the hovered item to the one under p, or clears it.
func (v *Viewer) HoverCanvas(container geometry.Size, offset, p geometry.Point2D) {
	v.mu.Lock()
	defer v.unlock()
	if i, ok := v.itemAtLocked(container, offset, p); ok {
		v.sel.SetHovered(&i)
	} else {
		v.sel.SetHovered(nil)
	}
}
