// Package raster converts a document page into an RGBA bitmap at its natural
// resolution. PDF pages are rendered by a PDFRenderer; raster images are
// decoded directly and always have exactly one page.
package raster

import (
	"context"
	"fmt"
	"image"

	"docoverlay/internal/document"
	"docoverlay/pkg/geometry"
)

// RenderDPI is the fixed PDF render resolution: scale factor 2 over the
// 72 DPI user space. On-screen zoom never changes it.
const RenderDPI = 144

// Bitmap is a rasterized page.
type Bitmap struct {
	Image      *image.RGBA
	Page       int
	TotalPages int
}

// Size returns the natural size of the bitmap in pixels.
func (b *Bitmap) Size() geometry.Size {
	if b == nil || b.Image == nil {
		return geometry.Size{}
	}
	r := b.Image.Bounds()
	return geometry.NewSize(float64(r.Dx()), float64(r.Dy()))
}

// PDFRenderer renders one 1-based page of a PDF payload at dpi and reports
// the document's page count. Out-of-range pages return
// document.ErrPageOutOfRange; unreadable payloads return document.ErrDecode.
type PDFRenderer interface {
	RenderPage(ctx context.Context, data []byte, page, dpi int) (img *image.RGBA, totalPages int, err error)
}

// Rasterizer dispatches on the document media type.
type Rasterizer struct {
	pdf PDFRenderer
	dpi int
}

// New creates a rasterizer. pdf may be nil, in which case PDF documents are
// reported as unsupported.
func New(pdf PDFRenderer) *Rasterizer {
	return &Rasterizer{pdf: pdf, dpi: RenderDPI}
}

// Rasterize renders page (1-based) of doc.
func (r *Rasterizer) Rasterize(ctx context.Context, doc *document.Document, page int) (*Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("no document: %w", document.ErrUnsupportedFormat)
	}

	var (
		bmp *Bitmap
		err error
	)
	switch doc.MediaType {
	case document.MediaPDF:
		bmp, err = r.rasterizePDF(ctx, doc, page)
	case document.MediaImage:
		bmp, err = rasterizeImage(doc, page)
	default:
		return nil, fmt.Errorf("%s: %w", doc.Name, document.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return bmp, nil
}

func (r *Rasterizer) rasterizePDF(ctx context.Context, doc *document.Document, page int) (*Bitmap, error) {
	if r.pdf == nil {
		return nil, fmt.Errorf("%s: no PDF renderer configured: %w", doc.Name, document.ErrUnsupportedFormat)
	}
	if page < 1 {
		return nil, document.PageError(page, 0)
	}
	img, total, err := r.pdf.RenderPage(ctx, doc.Data, page, r.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s page %d: %w", doc.Name, page, err)
	}
	return &Bitmap{Image: img, Page: page, TotalPages: total}, nil
}

func rasterizeImage(doc *document.Document, page int) (*Bitmap, error) {
	if page != 1 {
		return nil, document.PageError(page, 1)
	}
	img, err := Decode(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Name, err)
	}
	return &Bitmap{Image: img, Page: 1, TotalPages: 1}, nil
}
