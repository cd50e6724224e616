// Package document provides the document and layout-item model shared by the
// rasterizer, the overlay and the extraction adapters.
package document

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MediaType is the declared kind of a document payload.
type MediaType int

const (
	MediaUnknown MediaType = iota
	MediaPDF
	MediaImage
)

func (m MediaType) String() string {
	switch m {
	case MediaPDF:
		return "pdf"
	case MediaImage:
		return "image"
	default:
		return "unknown"
	}
}

// ParseMediaType maps "pdf"/"image" back to a MediaType.
func ParseMediaType(s string) MediaType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf", "application/pdf":
		return MediaPDF
	case "image":
		return MediaImage
	}
	if strings.HasPrefix(strings.ToLower(s), "image/") {
		return MediaImage
	}
	return MediaUnknown
}

// Document is an opaque binary payload plus its declared media type.
// It is never modified after creation; a new selection replaces it wholesale.
type Document struct {
	Name      string
	MediaType MediaType
	Data      []byte
}

// New creates a document, detecting the media type from content and name.
func New(name string, data []byte) *Document {
	return &Document{
		Name:      name,
		MediaType: DetectMediaType(name, data),
		Data:      data,
	}
}

// Load reads a document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return New(filepath.Base(path), data), nil
}

// ContentType returns the MIME type used when uploading the document.
func (d *Document) ContentType() string {
	if d.MediaType == MediaPDF {
		return "application/pdf"
	}
	if isTIFF(d.Data) {
		return "image/tiff"
	}
	return http.DetectContentType(d.Data)
}

var pdfMagic = []byte("%PDF-")

// DetectMediaType sniffs the payload and falls back to the file extension.
func DetectMediaType(name string, data []byte) MediaType {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.Contains(head, pdfMagic) {
		return MediaPDF
	}
	if isTIFF(data) {
		return MediaImage
	}
	if len(data) > 0 {
		if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") {
			return MediaImage
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MediaPDF
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return MediaImage
	}
	return MediaUnknown
}

func isTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))
}

// SupportedExtensions returns the file extensions accepted by the open dialog.
func SupportedExtensions() []string {
	return []string{".pdf", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}

// IsSupportedFile checks if the given path has a supported extension.
func IsSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions() {
		if ext == e {
			return true
		}
	}
	return false
}
