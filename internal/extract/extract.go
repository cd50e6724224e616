// Package extract obtains layout items for a document, either from the remote
// extraction service or from a local OCR engine.
package extract

import (
	"context"
	"image"
	"strings"

	"docoverlay/internal/document"
)

// Extractor produces the layout items of a document.
type Extractor interface {
	Extract(ctx context.Context, doc *document.Document) ([]document.LayoutItem, error)
}

// TokenSource returns a bearer token for each request, or "" for none.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// TextItem converts a pixel box found on a page of the given size into a
// normalized "Layout Text" item. Confidence is a percentage, the scale the
// extraction service reports. Boxes are clipped to the page.
func TextItem(text string, confidence float64, box image.Rectangle, page int, size image.Point) (document.LayoutItem, bool) {
	text = strings.Join(strings.Fields(text), " ")
	box = box.Intersect(image.Rect(0, 0, size.X, size.Y))
	if text == "" || box.Empty() || size.X <= 0 || size.Y <= 0 {
		return document.LayoutItem{}, false
	}
	w, h := float64(size.X), float64(size.Y)
	return document.LayoutItem{
		Type:       document.TypeLayoutText,
		Page:       page,
		Confidence: &confidence,
		Text:       text,
		Geometry: &document.Geometry{
			BoundingBox: document.Rect(
				float64(box.Min.X)/w,
				float64(box.Min.Y)/h,
				float64(box.Dx())/w,
				float64(box.Dy())/h,
			),
		},
	}, true
}
