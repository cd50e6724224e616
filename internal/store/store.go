// Package store keeps the history of opened documents together with their
// extraction results.
package store

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"docoverlay/internal/document"
)

// ErrNotFound is returned for an unknown record id.
var ErrNotFound = errors.New("record not found")

// Record is one stored document. FileData is base64 in JSON.
type Record struct {
	ID               string                `json:"id"`
	FileName         string                `json:"fileName"`
	UploadedAt       time.Time             `json:"uploadedAt"`
	MediaType        string                `json:"mediaType"`
	FileData         []byte                `json:"fileData"`
	ExtractionResult []document.LayoutItem `json:"extractionResult"`
}

// NewRecord builds a record for doc with a fresh id.
func NewRecord(doc *document.Document, items []document.LayoutItem, now time.Time) *Record {
	return &Record{
		ID:               NewID(now),
		FileName:         doc.Name,
		UploadedAt:       now,
		MediaType:        doc.MediaType.String(),
		FileData:         doc.Data,
		ExtractionResult: items,
	}
}

// Document rebuilds the stored document.
func (r *Record) Document() *document.Document {
	mt := document.ParseMediaType(r.MediaType)
	if mt == document.MediaUnknown {
		mt = document.DetectMediaType(r.FileName, r.FileData)
	}
	return &document.Document{Name: r.FileName, MediaType: mt, Data: r.FileData}
}

func (r *Record) clone() *Record {
	c := *r
	c.ExtractionResult = append([]document.LayoutItem(nil), r.ExtractionResult...)
	return &c
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns "<unix-ms>-<7 base36 chars>".
func NewID(now time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('-')
	for i := 0; i < 7; i++ {
		b.WriteByte(idAlphabet[rand.Intn(len(idAlphabet))])
	}
	return b.String()
}

// ValidID reports whether id is safe to use as a file name.
func ValidID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, c := range id {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

// Repository stores records keyed by id.
type Repository interface {
	Put(r *Record) error
	Get(id string) (*Record, error)
	Delete(id string) error
	// List returns every record, newest first.
	List() ([]*Record, error)
}

func checkID(id string) error {
	if !ValidID(id) {
		return fmt.Errorf("invalid record id %q: %w", id, ErrNotFound)
	}
	return nil
}

func sortNewestFirst(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UploadedAt.Equal(records[j].UploadedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})
}
