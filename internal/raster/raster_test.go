package raster

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"docoverlay/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePDF struct {
	pages int
	calls []int
	dpi   int
}

func (f *fakePDF) RenderPage(_ context.Context, _ []byte, page, dpi int) (*image.RGBA, int, error) {
	f.calls = append(f.calls, page)
	f.dpi = dpi
	if page < 1 || page > f.pages {
		return nil, f.pages, document.PageError(page, f.pages)
	}
	return image.NewRGBA(image.Rect(0, 0, 1224, 1584)), f.pages, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pdfDoc() *document.Document {
	return &document.Document{Name: "a.pdf", MediaType: document.MediaPDF, Data: []byte("%PDF-1.7")}
}

func TestRasterizeImage(t *testing.T) {
	doc := document.New("scan.png", pngBytes(t, 40, 30))
	require.Equal(t, document.MediaImage, doc.MediaType)

	bmp, err := New(nil).Rasterize(context.Background(), doc, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, bmp.Page)
	assert.Equal(t, 1, bmp.TotalPages)
	assert.Equal(t, 40.0, bmp.Size().Width)
	assert.Equal(t, 30.0, bmp.Size().Height)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, bmp.Image.RGBAAt(0, 0))
}

func TestRasterizeImageOnlyPageOne(t *testing.T) {
	doc := document.New("scan.png", pngBytes(t, 4, 4))
	_, err := New(nil).Rasterize(context.Background(), doc, 2)
	assert.ErrorIs(t, err, document.ErrPageOutOfRange)
}

func TestRasterizeCorruptImage(t *testing.T) {
	data := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0xff}, 32)...)
	doc := &document.Document{Name: "bad.png", MediaType: document.MediaImage, Data: data}
	_, err := New(nil).Rasterize(context.Background(), doc, 1)
	assert.ErrorIs(t, err, document.ErrDecode)
}

func TestRasterizeUnsupported(t *testing.T) {
	r := New(&fakePDF{pages: 1})
	doc := &document.Document{Name: "notes.txt", MediaType: document.MediaUnknown, Data: []byte("hi")}
	_, err := r.Rasterize(context.Background(), doc, 1)
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)

	_, err = r.Rasterize(context.Background(), nil, 1)
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)

	_, err = New(nil).Rasterize(context.Background(), pdfDoc(), 1)
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}

func TestRasterizePDF(t *testing.T) {
	fake := &fakePDF{pages: 3}
	bmp, err := New(fake).Rasterize(context.Background(), pdfDoc(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, bmp.Page)
	assert.Equal(t, 3, bmp.TotalPages)
	assert.Equal(t, RenderDPI, fake.dpi)
	assert.Equal(t, []int{2}, fake.calls)
}

func TestRasterizePDFOutOfRange(t *testing.T) {
	fake := &fakePDF{pages: 3}
	r := New(fake)

	_, err := r.Rasterize(context.Background(), pdfDoc(), 4)
	assert.ErrorIs(t, err, document.ErrPageOutOfRange)

	_, err = r.Rasterize(context.Background(), pdfDoc(), 0)
	assert.ErrorIs(t, err, document.ErrPageOutOfRange)
	assert.Equal(t, []int{4}, fake.calls, "page 0 never reaches the renderer")
}

func TestRasterizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := &fakePDF{pages: 1}
	_, err := New(fake).Rasterize(ctx, pdfDoc(), 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.calls)
}

func TestToRGBAAnchorsOrigin(t *testing.T) {
	src := image.NewGray(image.Rect(10, 10, 14, 12))
	out := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 4, 2), out.Bounds())

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.Same(t, rgba, ToRGBA(rgba))
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "png", FormatOf(pngBytes(t, 1, 1)))
	assert.Equal(t, "", FormatOf([]byte("nope")))
}
