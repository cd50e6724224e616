package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"docoverlay/internal/extract"
)

// Extraction backends.
const (
	ExtractorService   = "service"
	ExtractorTesseract = "tesseract"
)

// Preference keys for the extraction settings.
const (
	KeyServiceURL  = "service_url"
	KeyExtractor   = "extractor"
	KeyOCRLanguage = "ocr_language"
)

const defaultOCRLanguage = "eng"

// ErrInvalidSettings marks a rejected settings value.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings selects and configures the extraction backend.
type Settings struct {
	Extractor   string
	ServiceURL  string
	OCRLanguage string
}

// DefaultSettings uses the local extraction service.
func DefaultSettings() Settings {
	return Settings{
		Extractor:   ExtractorService,
		ServiceURL:  extract.DefaultBaseURL,
		OCRLanguage: defaultOCRLanguage,
	}
}

// LoadSettings reads the settings from p, filling defaults for unset keys.
func LoadSettings(p Preferences) Settings {
	s := DefaultSettings()
	if p == nil {
		return s
	}
	if v := p.String(KeyExtractor); v != "" {
		s.Extractor = v
	}
	if v := p.String(KeyServiceURL); v != "" {
		s.ServiceURL = v
	}
	if v := p.String(KeyOCRLanguage); v != "" {
		s.OCRLanguage = v
	}
	return s
}

// Validate normalizes s and checks every field.
func (s Settings) Validate() (Settings, error) {
	s.Extractor = strings.ToLower(strings.TrimSpace(s.Extractor))
	s.ServiceURL = strings.TrimRight(strings.TrimSpace(s.ServiceURL), "/")
	s.OCRLanguage = strings.TrimSpace(s.OCRLanguage)

	switch s.Extractor {
	case ExtractorService:
		u, err := url.Parse(s.ServiceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return s, fmt.Errorf("%w: service URL %q must be an http or https address", ErrInvalidSettings, s.ServiceURL)
		}
	case ExtractorTesseract:
		if s.OCRLanguage == "" {
			return s, fmt.Errorf("%w: OCR language is required", ErrInvalidSettings)
		}
	default:
		return s, fmt.Errorf("%w: unknown extractor %q", ErrInvalidSettings, s.Extractor)
	}
	return s, nil
}

// Save validates s and writes it to p.
func (s Settings) Save(p Preferences) (Settings, error) {
	s, err := s.Validate()
	if err != nil {
		return s, err
	}
	p.SetString(KeyExtractor, s.Extractor)
	p.SetString(KeyServiceURL, s.ServiceURL)
	p.SetString(KeyOCRLanguage, s.OCRLanguage)
	if err := p.Save(); err != nil {
		return s, fmt.Errorf("failed to save settings: %w", err)
	}
	return s, nil
}
