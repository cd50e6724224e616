// Package backend builds the process-wide rasterizer and the extraction
// backend selected by the settings.
package backend

import (
	"fmt"
	"log"
	"os"

	"docoverlay/internal/app"
	"docoverlay/internal/extract"
	"docoverlay/internal/ocr"
	"docoverlay/internal/raster"
)

// TokenEnv names the environment variable holding the service bearer token.
const TokenEnv = "DOCOVERLAY_TOKEN"

// Rasterizer returns a rasterizer backed by PDFium. When PDFium cannot start
// the rasterizer still handles images and the returned close func is a no-op.
func Rasterizer() (*raster.Rasterizer, func()) {
	pdf, err := raster.NewPDFium()
	if err != nil {
		log.Printf("backend: PDF support disabled: %v", err)
		return raster.New(nil), func() {}
	}
	return raster.New(pdf), func() {
		if err := pdf.Close(); err != nil {
			log.Printf("backend: failed to close PDFium: %v", err)
		}
	}
}

// Token reads the bearer token from the environment.
func Token() extract.TokenSource {
	if tok := os.Getenv(TokenEnv); tok != "" {
		return extract.StaticToken(tok)
	}
	return nil
}

// Factory returns a function building the extractor for a settings value.
// Tesseract extractors rasterize with r and must be closed by the caller.
func Factory(r *raster.Rasterizer) func(app.Settings) (extract.Extractor, error) {
	return func(s app.Settings) (extract.Extractor, error) {
		s, err := s.Validate()
		if err != nil {
			return nil, err
		}
		switch s.Extractor {
		case app.ExtractorTesseract:
			engine, err := ocr.NewEngine(s.OCRLanguage)
			if err != nil {
				return nil, fmt.Errorf("failed to start Tesseract: %w", err)
			}
			return ocr.NewExtractor(engine, r), nil
		default:
			return extract.NewHTTP(s.ServiceURL, Token()), nil
		}
	}
}
