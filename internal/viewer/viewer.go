// Package viewer composes rasterization, viewport mapping, the annotation
// overlay, selection and pagination into one document viewer engine.
//
// Rasterization is the only asynchronous step. Every request carries a
// generation number and a completion is applied only if its generation is
// still the latest; anything else is discarded.
package viewer

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"

	"docoverlay/internal/document"
	"docoverlay/internal/overlay"
	"docoverlay/internal/pagination"
	"docoverlay/internal/raster"
	"docoverlay/internal/selection"
	"docoverlay/internal/viewport"
	"docoverlay/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// Rasterizer renders one page of a document.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc *document.Document, page int) (*raster.Bitmap, error)
}

// Viewer is safe for concurrent use.
type Viewer struct {
	mu  sync.RWMutex
	lmu sync.RWMutex

	rasterizer Rasterizer
	scaler     xdraw.Scaler

	doc    *document.Document
	items  []document.LayoutItem
	sel    *selection.Coordinator
	pages  *pagination.Controller
	zoom   viewport.Zoom
	bitmap *raster.Bitmap
	err    error

	loading    bool
	generation uint64
	rasterPage int
	cancel     context.CancelFunc

	ctx      context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup

	pending   []event
	listeners map[EventType][]EventListener
}

// New creates an empty viewer: no document, no items, zoom 1, page 1 of 1.
func New(r Rasterizer) *Viewer {
	ctx, cancel := context.WithCancel(context.Background())
	v := &Viewer{
		rasterizer: r,
		scaler:     xdraw.CatmullRom,
		sel:        selection.New(),
		pages:      pagination.New(),
		zoom:       viewport.NewZoom(),
		rasterPage: 1,
		ctx:        ctx,
		shutdown:   cancel,
		listeners:  make(map[EventType][]EventListener),
	}
	v.sel.OnChange(func(s selection.Selection) {
		v.queue(EventSelectionChanged, s)
	})
	v.pages.OnChange(func(st pagination.State) {
		v.queue(EventPageChanged, st)
		if v.doc != nil && st.Current != v.rasterPage {
			v.requestLocked(st.Current)
		}
	})
	return v
}

// SetScaler replaces the bitmap scaler used by Render.
func (v *Viewer) SetScaler(s xdraw.Scaler) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scaler = s
}

// SetDocument replaces the document and its items. Selection and pagination
// reset, the error and bitmap are cleared, and page 1 is rasterized.
// A nil document clears the viewer.
func (v *Viewer) SetDocument(doc *document.Document, items []document.LayoutItem) {
	v.mu.Lock()
	defer v.unlock()

	v.doc = doc
	v.items = items
	v.err = nil
	v.bitmap = nil
	v.rasterPage = 1
	v.sel.ResetOnDocumentChange()
	v.pages.Reset()
	v.queue(EventDocumentChanged, doc)

	if doc == nil {
		v.generation++
		v.stopLocked()
		return
	}
	v.requestLocked(1)
}

// SetItems replaces the items of the current document and clears the error.
// A selection that no longer points at an item is cleared.
func (v *Viewer) SetItems(items []document.LayoutItem) {
	v.mu.Lock()
	defer v.unlock()
	v.setItemsLocked(items)
}

// SetItemsFor is SetItems for results computed from doc. It reports false and
// leaves the viewer untouched when another document has been opened since.
func (v *Viewer) SetItemsFor(doc *document.Document, items []document.LayoutItem) bool {
	v.mu.Lock()
	defer v.unlock()
	if doc == nil || v.doc != doc {
		return false
	}
	v.setItemsLocked(items)
	return true
}

func (v *Viewer) setItemsLocked(items []document.LayoutItem) {
	v.items = items
	v.err = nil
	s := v.sel.Snapshot()
	if (s.Selected != nil && *s.Selected >= len(items)) || (s.Hovered != nil && *s.Hovered >= len(items)) {
		v.sel.ResetOnDocumentChange()
	}
	v.queue(EventItemsChanged, items)
}

// requestLocked starts rasterizing page of the current document.
func (v *Viewer) requestLocked(page int) {
	v.generation++
	gen := v.generation
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(v.ctx)
	v.cancel = cancel
	v.rasterPage = page
	v.bitmap = nil
	v.setLoadingLocked(true)

	doc := v.doc
	log.Printf("viewer: rasterizing %s page %d (generation %d)", doc.Name, page, gen)
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		bmp, err := v.rasterizer.Rasterize(ctx, doc, page)
		v.complete(gen, bmp, err)
	}()
}

func (v *Viewer) complete(gen uint64, bmp *raster.Bitmap, err error) {
	v.mu.Lock()
	defer v.unlock()

	if gen != v.generation {
		log.Printf("viewer: discarding stale result of generation %d", gen)
		return
	}
	v.stopLocked()

	if err != nil {
		if errors.Is(err, context.Canceled) && v.ctx.Err() != nil {
			return
		}
		log.Printf("viewer: rasterize %s page %d: %v", v.doc.Name, v.rasterPage, err)
		v.bitmap = nil
		v.err = err
		v.queue(EventError, err)
		return
	}
	log.Printf("viewer: page %d of %s ready (%dx%d)", bmp.Page, v.doc.Name, bmp.Image.Bounds().Dx(), bmp.Image.Bounds().Dy())
	v.bitmap = bmp
	v.err = nil
	v.pages.SetTotal(bmp.TotalPages)
	v.queue(EventBitmapReady, bmp)
}

// stopLocked ends the outstanding request, if any.
func (v *Viewer) stopLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.setLoadingLocked(false)
}

func (v *Viewer) setLoadingLocked(loading bool) {
	if v.loading == loading {
		return
	}
	v.loading = loading
	v.queue(EventLoadingChanged, loading)
}

// Wait blocks until every started rasterization has resolved.
func (v *Viewer) Wait() {
	v.wg.Wait()
}

// Close cancels outstanding work and waits for it.
func (v *Viewer) Close() {
	v.shutdown()
	v.wg.Wait()
}

// Document returns the current document, or nil.
func (v *Viewer) Document() *document.Document {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.doc
}

// Items returns the current layout items.
func (v *Viewer) Items() []document.LayoutItem {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.items
}

// Selection returns a snapshot of the selection.
func (v *Viewer) Selection() selection.Selection {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sel.Snapshot()
}

// Page returns the pagination state.
func (v *Viewer) Page() pagination.State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pages.State()
}

// Zoom returns the zoom factor.
func (v *Viewer) Zoom() viewport.Zoom {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoom
}

// Loading reports whether a rasterization is outstanding.
func (v *Viewer) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

// Err returns the last rasterization error, or nil.
func (v *Viewer) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// Bitmap returns the current page bitmap, or nil while loading or on error.
func (v *Viewer) Bitmap() *raster.Bitmap {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bitmap
}

// DrawSize returns the draw rect of the current bitmap in container at the
// current zoom, or a zero size when there is no bitmap.
func (v *Viewer) DrawSize(container geometry.Size) geometry.Size {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.drawSizeLocked(container)
}

func (v *Viewer) drawSizeLocked(container geometry.Size) geometry.Size {
	return viewport.ComputeDrawRect(v.bitmap.Size(), container, v.zoom.Value())
}

// Render scales the bitmap to its draw rect inside container and strokes the
// overlay for the current page and selection.
func (v *Viewer) Render(container geometry.Size) (*image.RGBA, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.bitmap == nil || v.bitmap.Image == nil {
		return nil, document.ErrMissingCanvasSurface
	}
	draw := v.drawSizeLocked(container)
	w, h := draw.Pixels()
	if w == 0 || h == 0 {
		return nil, document.ErrMissingCanvasSurface
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	src := v.bitmap.Image
	v.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	cmds := overlay.Commands(v.items, v.pages.Current(), v.sel.Snapshot(), draw)
	if err := overlay.Draw(dst, cmds); err != nil {
		return nil, err
	}
	return dst, nil
}
