package raster

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"sync"
	"time"

	"docoverlay/internal/document"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// instanceTimeout bounds how long a render waits for a free PDFium worker.
const instanceTimeout = 30 * time.Second

// PDFium renders PDF pages with PDFium compiled to WebAssembly.
// Create one per process and Close it at shutdown.
type PDFium struct {
	mu   sync.Mutex
	pool pdfium.Pool
}

// NewPDFium starts a single-worker PDFium pool.
func NewPDFium() (*PDFium, error) {
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start pdfium: %w", err)
	}
	return &PDFium{pool: pool}, nil
}

// Close shuts the worker pool down.
func (p *PDFium) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return nil
	}
	err := p.pool.Close()
	p.pool = nil
	return err
}

// RenderPage implements PDFRenderer.
func (p *PDFium) RenderPage(ctx context.Context, data []byte, page, dpi int) (*image.RGBA, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return nil, 0, fmt.Errorf("pdfium pool closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	instance, err := p.pool.GetInstance(instanceTimeout)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get pdfium instance: %w", err)
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		return nil, 0, fmt.Errorf("%v: %w", err, document.ErrDecode)
	}
	defer func() {
		if _, err := instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document}); err != nil {
			log.Printf("pdfium: failed to close document: %v", err)
		}
	}()

	count, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count pages: %v: %w", err, document.ErrDecode)
	}
	total := count.PageCount
	if page < 1 || page > total {
		return nil, total, document.PageError(page, total)
	}

	rendered, err := instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: dpi,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{Document: doc.Document, Index: page - 1},
		},
	})
	if err != nil {
		return nil, total, fmt.Errorf("%v: %w", err, document.ErrDecode)
	}
	defer rendered.Cleanup()

	// The image buffer belongs to the worker and is released by Cleanup.
	src := rendered.Result.Image
	out := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out, total, nil
}
