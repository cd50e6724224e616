// Package canvas provides the document canvas: the current page of a viewer
// with its highlighted items, zoomable with the mouse wheel.
package canvas

import (
	"image"
	"sync"

	"docoverlay/internal/viewer"
	"docoverlay/internal/viewport"
	"docoverlay/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	placeholderText = "Choose a PDF or image to begin"
	loadingText     = "Rendering page..."
)

// DocumentCanvas displays a viewer. It renders on demand and caches the last
// frame until the viewer reports a change.
type DocumentCanvas struct {
	widget.BaseWidget

	viewer *viewer.Viewer

	mu        sync.Mutex
	view      fyne.Size
	container geometry.Size // host container the page is fitted into
	draw      geometry.Size
	frame     *image.RGBA

	raster  *fynecanvas.Raster
	content *pageContent
	scroll  *zoomScroll
	status  *widget.Label
}

// zoomScroll is a scroll container that uses the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *DocumentCanvas
}

func newZoomScroll(content fyne.CanvasObject, dc *DocumentCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: dc}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	zs.canvas.wheel(ev.Scrolled.DY)
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// pageContent hosts the raster centered inside the scroll viewport and turns
// pointer events into viewer intents.
type pageContent struct {
	widget.BaseWidget
	canvas *DocumentCanvas
}

var (
	_ fyne.Tappable     = (*pageContent)(nil)
	_ fyne.Scrollable   = (*pageContent)(nil)
	_ desktop.Hoverable = (*pageContent)(nil)
)

func newPageContent(dc *DocumentCanvas) *pageContent {
	pc := &pageContent{canvas: dc}
	pc.ExtendBaseWidget(pc)
	return pc
}

func (pc *pageContent) CreateRenderer() fyne.WidgetRenderer {
	return &pageContentRenderer{content: pc}
}

func (pc *pageContent) MinSize() fyne.Size {
	return toFyne(pc.canvas.drawSize())
}

func (pc *pageContent) Tapped(ev *fyne.PointEvent) {
	// Fyne can deliver taps just outside the widget.
	size := pc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}
	pc.canvas.click(ev.Position, size)
}

func (pc *pageContent) Scrolled(ev *fyne.ScrollEvent) {
	pc.canvas.wheel(ev.Scrolled.DY)
}

func (pc *pageContent) MouseIn(ev *desktop.MouseEvent) {
	pc.canvas.hover(ev.Position, pc.Size())
}

func (pc *pageContent) MouseMoved(ev *desktop.MouseEvent) {
	pc.canvas.hover(ev.Position, pc.Size())
}

func (pc *pageContent) MouseOut() {
	pc.canvas.viewer.HoverItem(nil)
}

type pageContentRenderer struct {
	content *pageContent
}

func (r *pageContentRenderer) Layout(size fyne.Size) {
	dc := r.content.canvas
	draw := dc.drawSize()
	off := viewport.CenterOffset(draw, fromFyne(size))
	dc.raster.Move(fyne.NewPos(float32(off.X), float32(off.Y)))
	dc.raster.Resize(toFyne(draw))
}

func (r *pageContentRenderer) MinSize() fyne.Size {
	return r.content.MinSize()
}

func (r *pageContentRenderer) Refresh() {
	r.Layout(r.content.Size())
	r.content.canvas.raster.Refresh()
}

func (r *pageContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.canvas.raster}
}

func (r *pageContentRenderer) Destroy() {}

// NewDocumentCanvas creates a canvas bound to v.
func NewDocumentCanvas(v *viewer.Viewer) *DocumentCanvas {
	dc := &DocumentCanvas{
		viewer: v,
		status: widget.NewLabel(placeholderText),
	}
	dc.status.Alignment = fyne.TextAlignCenter
	dc.status.Wrapping = fyne.TextWrapWord

	dc.raster = fynecanvas.NewRaster(dc.render)
	dc.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	dc.content = newPageContent(dc)
	dc.scroll = newZoomScroll(dc.content, dc)

	v.On(viewer.EventBitmapReady, func(interface{}) { dc.invalidate(true) })
	v.On(viewer.EventZoomChanged, func(interface{}) { dc.invalidate(true) })
	v.On(viewer.EventSelectionChanged, func(interface{}) { dc.invalidate(false) })
	v.On(viewer.EventItemsChanged, func(interface{}) { dc.invalidate(false) })
	v.On(viewer.EventDocumentChanged, func(interface{}) {
		dc.scroll.scroll.ScrollToTop()
		dc.invalidate(true)
	})
	v.On(viewer.EventPageChanged, func(interface{}) { dc.scroll.scroll.ScrollToTop() })
	v.On(viewer.EventLoadingChanged, func(interface{}) { dc.updateStatus() })
	v.On(viewer.EventError, func(interface{}) { dc.invalidate(true) })

	dc.ExtendBaseWidget(dc)
	return dc
}

// Viewer returns the bound viewer.
func (dc *DocumentCanvas) Viewer() *viewer.Viewer { return dc.viewer }

// Frame returns the last rendered page, or nil.
func (dc *DocumentCanvas) Frame() *image.RGBA {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.frame
}

// HostContainer returns the container the page is currently fitted into.
func (dc *DocumentCanvas) HostContainer() geometry.Size {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.container
}

// render is the raster generator.
func (dc *DocumentCanvas) render(w, h int) image.Image {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.frame == nil {
		frame, err := dc.viewer.Render(dc.container)
		if err != nil {
			return image.NewRGBA(image.Rect(0, 0, 1, 1))
		}
		dc.frame = frame
	}
	return dc.frame
}

// invalidate drops the cached frame. resize also recomputes the draw rect,
// which changes with the bitmap and the zoom.
func (dc *DocumentCanvas) invalidate(resize bool) {
	dc.mu.Lock()
	dc.frame = nil
	if resize {
		dc.draw = dc.viewer.DrawSize(dc.container)
	}
	dc.mu.Unlock()

	if resize {
		dc.content.Refresh()
		dc.clampScroll()
		dc.scroll.Refresh()
	}
	dc.raster.Refresh()
	dc.updateStatus()
}

// clampScroll keeps the scroll offset inside the page after a zoom out.
func (dc *DocumentCanvas) clampScroll() {
	sc := dc.scroll.scroll
	cur := geometry.Point2D{X: float64(sc.Offset.X), Y: float64(sc.Offset.Y)}
	off := viewport.ClampScroll(cur, dc.drawSize(), fromFyne(sc.Size()))
	sc.Offset = fyne.NewPos(float32(off.X), float32(off.Y))
}

func (dc *DocumentCanvas) setViewSize(size fyne.Size) {
	dc.mu.Lock()
	if size == dc.view {
		dc.mu.Unlock()
		return
	}
	dc.view = size
	dc.container = viewport.HostContainer(float64(size.Width))
	dc.mu.Unlock()
	dc.invalidate(true)
}

func (dc *DocumentCanvas) drawSize() geometry.Size {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.draw
}

func (dc *DocumentCanvas) updateStatus() {
	var text string
	switch {
	case dc.viewer.Err() != nil:
		text = dc.viewer.Err().Error()
	case dc.viewer.Loading():
		text = loadingText
	case dc.viewer.Document() == nil:
		text = placeholderText
	}
	dc.status.SetText(text)
	if text == "" {
		dc.status.Hide()
	} else {
		dc.status.Show()
	}
}

func (dc *DocumentCanvas) wheel(dy float32) {
	if dy > 0 {
		dc.viewer.ZoomIn()
	} else if dy < 0 {
		dc.viewer.ZoomOut()
	}
}

// click and hover take positions relative to the page content, whose size
// may exceed the draw rect when the page is centered.
func (dc *DocumentCanvas) click(pos fyne.Position, content fyne.Size) bool {
	cont, off := dc.placement(content)
	return dc.viewer.ClickCanvas(cont, off, geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)})
}

func (dc *DocumentCanvas) hover(pos fyne.Position, content fyne.Size) {
	cont, off := dc.placement(content)
	dc.viewer.HoverCanvas(cont, off, geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)})
}

func (dc *DocumentCanvas) placement(content fyne.Size) (geometry.Size, geometry.Point2D) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.container, viewport.CenterOffset(dc.draw, fromFyne(content))
}

// CreateRenderer implements fyne.Widget.
func (dc *DocumentCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &documentCanvasRenderer{canvas: dc}
}

type documentCanvasRenderer struct {
	canvas *DocumentCanvas
}

func (r *documentCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
	r.canvas.status.Resize(fyne.NewSize(size.Width, r.canvas.status.MinSize().Height))
	r.canvas.status.Move(fyne.NewPos(0, (size.Height-r.canvas.status.MinSize().Height)/2))
	r.canvas.setViewSize(size)
}

func (r *documentCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *documentCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *documentCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll, r.canvas.status}
}

func (r *documentCanvasRenderer) Destroy() {}

func toFyne(s geometry.Size) fyne.Size {
	return fyne.NewSize(float32(s.Width), float32(s.Height))
}

func fromFyne(s fyne.Size) geometry.Size {
	return geometry.NewSize(float64(s.Width), float64(s.Height))
}
