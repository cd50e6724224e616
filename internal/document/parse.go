package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// UploadResponse is the envelope returned by the extraction service's upload endpoint.
type UploadResponse struct {
	Message struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Data    []LayoutItem `json:"data"`
	} `json:"message"`
}

// ParseItems decodes a bare JSON array of layout items.
func ParseItems(data []byte) ([]LayoutItem, error) {
	var items []LayoutItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse layout items: %w", err)
	}
	return items, nil
}

// ParseUploadResponse decodes the service envelope and returns its items.
// An "error" status becomes a *ServiceError.
func ParseUploadResponse(data []byte) ([]LayoutItem, error) {
	var resp UploadResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	if resp.Message.Status == "error" {
		return nil, &ServiceError{Status: resp.Message.Status, Message: resp.Message.Message}
	}
	if resp.Message.Data == nil {
		return []LayoutItem{}, nil
	}
	return resp.Message.Data, nil
}

// ParseAny accepts either a bare array or the upload envelope.
func ParseAny(data []byte) ([]LayoutItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return ParseItems(trimmed)
	}
	return ParseUploadResponse(trimmed)
}

// LoadItems reads layout items from a JSON file in either format.
func LoadItems(path string) ([]LayoutItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return ParseAny(data)
}

// SaveItems writes layout items as an indented JSON array.
func SaveItems(path string, items []LayoutItem) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
