package document

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the rasterizer, the overlay and the viewer.
// Callers wrap these with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	ErrUnsupportedFormat    = errors.New("unsupported document format")
	ErrPageOutOfRange       = errors.New("page out of range")
	ErrDecode               = errors.New("failed to decode document")
	ErrMissingCanvasSurface = errors.New("drawing surface unavailable")
	ErrMalformedGeometry    = errors.New("malformed geometry")
)

// ServiceError is returned when the extraction service answers with an
// explicit error status.
type ServiceError struct {
	Status  string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("extraction service returned status %q", e.Status)
	}
	return fmt.Sprintf("extraction service: %s", e.Message)
}

// PageError reports a page number outside [1, total].
func PageError(page, total int) error {
	return fmt.Errorf("page %d of %d: %w", page, total, ErrPageOutOfRange)
}
