package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"docoverlay/internal/document"
)

// DefaultBaseURL is the address of a locally running extraction service.
const DefaultBaseURL = "http://127.0.0.1:8000"

const uploadPath = "/api/v1/upload"

// maxResponseSize caps the response body read from the service.
const maxResponseSize = 64 << 20

// HTTPExtractor uploads documents to the extraction service.
type HTTPExtractor struct {
	BaseURL string
	Client  *http.Client
	Token   TokenSource
}

// NewHTTP creates an extractor for the service at baseURL.
func NewHTTP(baseURL string, token TokenSource) *HTTPExtractor {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPExtractor{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 5 * time.Minute},
		Token:   token,
	}
}

// Extract posts doc as the multipart field "file" and returns the items of
// the response envelope, normalized.
func (e *HTTPExtractor) Extract(ctx context.Context, doc *document.Document) ([]document.LayoutItem, error) {
	if doc == nil {
		return nil, fmt.Errorf("no document to extract")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, doc.Name))
	h.Set("Content-Type", doc.ContentType())
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+uploadPath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := e.do(req)
	if err != nil {
		return nil, err
	}
	items, err := document.ParseUploadResponse(data)
	if err != nil {
		return nil, err
	}
	return document.Normalize(items), nil
}

// Processed lists the result files the service has stored.
func (e *HTTPExtractor) Processed(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+uploadPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	data, err := e.do(req)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}
	return resp.Data, nil
}

// FetchProcessed downloads one stored result file by name.
func (e *HTTPExtractor) FetchProcessed(ctx context.Context, name string) ([]document.LayoutItem, error) {
	u := e.BaseURL + uploadPath + "?" + url.Values{"filename": {name}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	data, err := e.do(req)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	items, err := document.ParseAny(resp.Data)
	if err != nil {
		return nil, err
	}
	return document.Normalize(items), nil
}

func (e *HTTPExtractor) do(req *http.Request) ([]byte, error) {
	if e.Token != nil {
		token, err := e.Token(req.Context())
		if err != nil {
			return nil, fmt.Errorf("failed to get access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	req.Header.Set("Accept", "application/json")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &document.ServiceError{Status: resp.Status, Message: detail(data)}
	}
	return data, nil
}

// detail pulls the "detail" field from an error body, falling back to the raw text.
func detail(body []byte) string {
	var v struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &v) == nil && v.Detail != "" {
		return v.Detail
	}
	return strings.TrimSpace(string(body))
}
