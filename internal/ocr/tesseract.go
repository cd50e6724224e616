// Package ocr extracts layout items offline by running rasterized pages
// through the Tesseract engine.
package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"

	"docoverlay/internal/document"
	"docoverlay/internal/extract"
	"docoverlay/internal/raster"

	"github.com/otiai10/gosseract/v2"
)

// Line is one recognized text line in page pixels.
type Line struct {
	Text       string
	Box        image.Rectangle
	Confidence float64 // percent
}

// Engine wraps a Tesseract client. It is not safe for concurrent use.
type Engine struct {
	client   *gosseract.Client
	binarize bool
	level    gosseract.PageIteratorLevel
}

// NewEngine creates an engine for lang, e.g. "eng".
func NewEngine(lang string) (*Engine, error) {
	if lang == "" {
		lang = "eng"
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	// Whole pages: let Tesseract find the blocks.
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	return &Engine{client: client, binarize: true, level: gosseract.RIL_TEXTLINE}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// SetBinarize enables or disables Otsu binarization before recognition.
func (e *Engine) SetBinarize(enabled bool) {
	e.binarize = enabled
}

// SetWordLevel reports words instead of lines.
func (e *Engine) SetWordLevel(words bool) {
	if words {
		e.level = gosseract.RIL_WORD
	} else {
		e.level = gosseract.RIL_TEXTLINE
	}
}

// Recognize returns the text lines found in img.
func (e *Engine) Recognize(img image.Image) ([]Line, error) {
	png, err := preprocess(img, e.binarize)
	if err != nil {
		return nil, err
	}
	if err := e.client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(e.level)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	var lines []Line
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		lines = append(lines, Line{Text: text, Box: box.Box, Confidence: box.Confidence})
	}
	return lines, nil
}

// Rasterizer renders one page of a document.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc *document.Document, page int) (*raster.Bitmap, error)
}

// Extractor implements extract.Extractor on top of an Engine.
type Extractor struct {
	mu         sync.Mutex
	engine     *Engine
	rasterizer Rasterizer
	// MinConfidence drops lines below this percentage.
	MinConfidence float64
}

var _ extract.Extractor = (*Extractor)(nil)

// NewExtractor creates an extractor that rasterizes with r and recognizes with engine.
func NewExtractor(engine *Engine, r Rasterizer) *Extractor {
	return &Extractor{engine: engine, rasterizer: r}
}

// Extract recognizes every page of doc and returns normalized "Layout Text" items.
func (x *Extractor) Extract(ctx context.Context, doc *document.Document) ([]document.LayoutItem, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	var items []document.LayoutItem
	total := 1
	for page := 1; page <= total; page++ {
		bmp, err := x.rasterizer.Rasterize(ctx, doc, page)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize page %d: %w", page, err)
		}
		total = bmp.TotalPages

		lines, err := x.engine.Recognize(bmp.Image)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		size := bmp.Image.Bounds().Size()
		for _, l := range lines {
			if l.Confidence < x.MinConfidence {
				continue
			}
			if item, ok := extract.TextItem(l.Text, l.Confidence, l.Box, page, size); ok {
				items = append(items, item)
			}
		}
		log.Printf("ocr: %s page %d/%d: %d lines", doc.Name, page, total, len(lines))
	}
	return document.Normalize(items), nil
}

// Close releases the engine.
func (x *Extractor) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.engine.Close()
}
