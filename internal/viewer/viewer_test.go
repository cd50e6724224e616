package viewer

import (
	"context"
	"image"
	"image/draw"
	"sync"
	"testing"

	"docoverlay/internal/document"
	"docoverlay/internal/pagination"
	"docoverlay/internal/raster"
	"docoverlay/internal/selection"
	"docoverlay/internal/viewport"
	"docoverlay/pkg/colorutil"
	"docoverlay/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRasterizer returns white bitmaps whose width is 100*len(doc.Name).
// Documents named in gates block until the gate is closed.
type fakeRasterizer struct {
	mu    sync.Mutex
	total int
	gates map[string]chan struct{}
	calls []int
}

func newFake(total int) *fakeRasterizer {
	return &fakeRasterizer{total: total, gates: map[string]chan struct{}{}}
}

func (f *fakeRasterizer) gate(name string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[name] = ch
	return ch
}

func (f *fakeRasterizer) Rasterize(_ context.Context, doc *document.Document, page int) (*raster.Bitmap, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	gate := f.gates[doc.Name]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if doc.MediaType == document.MediaUnknown {
		return nil, document.ErrUnsupportedFormat
	}
	if page < 1 || page > f.total {
		return nil, document.PageError(page, f.total)
	}
	img := image.NewRGBA(image.Rect(0, 0, 100*len(doc.Name), 200))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorutil.White), image.Point{}, draw.Src)
	return &raster.Bitmap{Image: img, Page: page, TotalPages: f.total}, nil
}

func pdf(name string) *document.Document {
	return &document.Document{Name: name, MediaType: document.MediaPDF}
}

func box(page int, l, t, w, h float64) document.LayoutItem {
	return document.LayoutItem{
		Type:     document.TypeLayoutText,
		Page:     page,
		Geometry: &document.Geometry{BoundingBox: document.Rect(l, t, w, h)},
	}
}

func TestSetDocumentRasterizesFirstPage(t *testing.T) {
	v := New(newFake(3))
	defer v.Close()

	v.SetDocument(pdf("a"), nil)
	v.Wait()

	require.NoError(t, v.Err())
	require.NotNil(t, v.Bitmap())
	assert.Equal(t, 1, v.Bitmap().Page)
	assert.Equal(t, pagination.State{Current: 1, Total: 3}, v.Page())
	assert.False(t, v.Loading())
}

func TestStaleRasterIsDiscarded(t *testing.T) {
	fake := newFake(1)
	v := New(fake)
	defer v.Close()

	slow := fake.gate("slow")
	v.SetDocument(pdf("slow"), nil)
	assert.True(t, v.Loading())

	v.SetDocument(pdf("b"), nil)
	close(slow)
	v.Wait()

	require.NotNil(t, v.Bitmap())
	assert.Equal(t, 100, v.Bitmap().Image.Bounds().Dx(), "bitmap belongs to the latest document")
	assert.False(t, v.Loading())
}

func TestSetDocumentResetsState(t *testing.T) {
	v := New(newFake(3))
	defer v.Close()

	items := []document.LayoutItem{box(1, 0.1, 0.1, 0.2, 0.2)}
	v.SetDocument(pdf("a"), items)
	v.Wait()
	v.ClickItem(0)
	v.HoverItem(selection.Index(0))
	require.True(t, v.NextPage())
	v.Wait()

	v.SetDocument(pdf("b"), nil)
	assert.Equal(t, selection.Selection{}, v.Selection())
	assert.Equal(t, 1, v.Page().Current)
	v.Wait()
	assert.Equal(t, 3, v.Page().Total)
}

func TestPagination(t *testing.T) {
	fake := newFake(2)
	v := New(fake)
	defer v.Close()

	v.SetDocument(pdf("a"), nil)
	v.Wait()

	assert.False(t, v.PreviousPage())
	assert.True(t, v.NextPage())
	v.Wait()
	assert.Equal(t, 2, v.Bitmap().Page)
	assert.False(t, v.NextPage())

	assert.ErrorIs(t, v.GoToPage(3), document.ErrPageOutOfRange)
	require.NoError(t, v.GoToPage(1))
	v.Wait()
	assert.Equal(t, 1, v.Bitmap().Page)
	assert.Equal(t, []int{1, 2, 1}, fake.calls)
}

func TestZoomDoesNotRasterize(t *testing.T) {
	fake := newFake(1)
	v := New(fake)
	defer v.Close()

	var zooms []float64
	v.On(EventZoomChanged, func(data interface{}) {
		zooms = append(zooms, data.(viewport.Zoom).Value())
	})

	v.SetDocument(pdf("a"), nil)
	v.Wait()
	v.ZoomIn()
	v.ZoomIn()
	v.ZoomOut()
	v.ResetZoom()
	v.ResetZoom() // unchanged
	v.Wait()

	assert.Equal(t, []float64{1.25, 1.5, 1.25, 1}, zooms)
	assert.Equal(t, []int{1}, fake.calls)
}

func TestErrorClearsBitmap(t *testing.T) {
	v := New(newFake(1))
	defer v.Close()

	var got []error
	v.On(EventError, func(data interface{}) { got = append(got, data.(error)) })

	v.SetDocument(&document.Document{Name: "x.txt"}, nil)
	v.Wait()

	assert.ErrorIs(t, v.Err(), document.ErrUnsupportedFormat)
	assert.Nil(t, v.Bitmap())
	require.Len(t, got, 1)

	_, err := v.Render(geometry.NewSize(800, 1000))
	assert.ErrorIs(t, err, document.ErrMissingCanvasSurface)

	v.SetDocument(pdf("a"), nil)
	v.Wait()
	assert.NoError(t, v.Err())
}

func TestRenderDrawsSelection(t *testing.T) {
	v := New(newFake(1))
	defer v.Close()

	// Bitmap is 100x200; in 800x1000 it letterboxes to 500x1000.
	items := []document.LayoutItem{
		box(1, 0.2, 0.2, 0.2, 0.2),
		box(1, 0.6, 0.6, 0.1, 0.1),
	}
	v.SetDocument(pdf("a"), items)
	v.Wait()
	v.ClickItem(0)
	v.HoverItem(selection.Index(1))

	container := geometry.NewSize(800, 1000)
	img, err := v.Render(container)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 500, 1000), img.Bounds())
	assert.Equal(t, colorutil.Indigo, img.RGBAAt(98, 198))
	assert.Equal(t, colorutil.Green, img.RGBAAt(298, 598))
	bg := img.RGBAAt(150, 300)
	assert.GreaterOrEqual(t, bg.R, uint8(250), "interior keeps the page pixels")
	assert.GreaterOrEqual(t, bg.B, uint8(250))

	v.ZoomIn()
	img, err = v.Render(container)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 625, 1250), img.Bounds())
}

func TestClickCanvasTogglesHit(t *testing.T) {
	v := New(newFake(1))
	defer v.Close()

	v.SetDocument(pdf("a"), []document.LayoutItem{box(1, 0.2, 0.2, 0.2, 0.2)})
	v.Wait()

	container := geometry.NewSize(800, 1000)
	offset := geometry.NewPoint2D(150, 0)
	inside := geometry.NewPoint2D(150+150, 300)

	assert.True(t, v.ClickCanvas(container, offset, inside))
	assert.True(t, v.Selection().IsSelected(0))
	assert.True(t, v.ClickCanvas(container, offset, inside))
	assert.Nil(t, v.Selection().Selected)

	assert.False(t, v.ClickCanvas(container, offset, geometry.NewPoint2D(10, 10)))

	v.HoverCanvas(container, offset, inside)
	assert.True(t, v.Selection().IsHovered(0))
	v.HoverCanvas(container, offset, geometry.NewPoint2D(10, 10))
	assert.Nil(t, v.Selection().Hovered)
}

func TestEventsAreDelivered(t *testing.T) {
	v := New(newFake(2))
	defer v.Close()

	var mu sync.Mutex
	seen := map[EventType]int{}
	for _, typ := range []EventType{
		EventSelectionChanged, EventPageChanged, EventLoadingChanged,
		EventBitmapReady, EventDocumentChanged,
	} {
		typ := typ
		v.On(typ, func(interface{}) {
			mu.Lock()
			seen[typ]++
			mu.Unlock()
		})
	}

	v.SetDocument(pdf("a"), []document.LayoutItem{box(1, 0, 0, 0.5, 0.5)})
	v.Wait()
	v.ClickItem(0)
	v.NextPage()
	v.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, seen[EventDocumentChanged])
	assert.Equal(t, 1, seen[EventSelectionChanged])
	assert.Equal(t, 2, seen[EventBitmapReady])
	assert.Equal(t, 4, seen[EventLoadingChanged])
	assert.Equal(t, 2, seen[EventPageChanged], "total set, then page 2")
}

func TestSetItemsClearsDanglingSelection(t *testing.T) {
	v := New(newFake(1))
	defer v.Close()

	v.SetDocument(pdf("a"), []document.LayoutItem{box(1, 0, 0, 1, 1), box(1, 0, 0, 1, 1)})
	v.Wait()
	v.ClickItem(1)
	v.SetItems([]document.LayoutItem{box(1, 0, 0, 1, 1)})
	assert.Nil(t, v.Selection().Selected)
	assert.Len(t, v.Items(), 1)
}

func TestSetZoomRestoresSavedLevel(t *testing.T) {
	v := New(newFake(1))
	defer v.Close()

	var events int
	v.On(EventZoomChanged, func(interface{}) { events++ })
	v.SetZoom(viewport.ZoomFromValue(1.75))
	assert.Equal(t, 175, v.Zoom().Percent())
	v.SetZoom(viewport.ZoomFromValue(1.75))
	assert.Equal(t, 1, events)
}

func TestSetItemsEmitsItemsChanged(t *testing.T) {
	v := New(newFake(1))
	defer v.Close()

	v.SetDocument(pdf("a"), []document.LayoutItem{box(1, 0.1, 0.1, 0.2, 0.2)})
	v.Wait()
	v.ClickItem(0)

	var got [][]document.LayoutItem
	v.On(EventItemsChanged, func(data interface{}) { got = append(got, data.([]document.LayoutItem)) })

	moved := []document.LayoutItem{box(1, 0.5, 0.5, 0.2, 0.2)}
	v.SetItems(moved)
	require.Len(t, got, 1)
	assert.Equal(t, moved, got[0])
	assert.True(t, v.Selection().IsSelected(0))
}

func TestSetItemsForIgnoresReplacedDocument(t *testing.T) {
	v := New(newFake(1))
	defer v.Close()

	a, b := pdf("a"), pdf("b")
	v.SetDocument(a, nil)
	v.SetDocument(b, nil)
	v.Wait()

	var events int
	v.On(EventItemsChanged, func(interface{}) { events++ })

	assert.False(t, v.SetItemsFor(a, []document.LayoutItem{box(1, 0, 0, 1, 1)}))
	assert.Empty(t, v.Items())
	assert.Zero(t, events)

	assert.True(t, v.SetItemsFor(b, []document.LayoutItem{box(1, 0, 0, 1, 1)}))
	assert.Len(t, v.Items(), 1)
	assert.Equal(t, 1, events)
}
