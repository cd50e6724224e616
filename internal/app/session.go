// Package app binds the viewer engine to extraction, the document history and
// user preferences, and provides the application theme and file watching.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"docoverlay/internal/document"
	"docoverlay/internal/extract"
	"docoverlay/internal/store"
	"docoverlay/internal/table"
	"docoverlay/internal/viewer"
)

// ErrNoDocument is returned when extraction is requested with nothing open.
var ErrNoDocument = errors.New("please choose a PDF or image first")

// Preference keys owned by the session.
const (
	KeyLastDocument = "last_document_id"
	KeyLastDir      = "last_dir"
)

// Preferences is the subset of the preference store the session needs.
type Preferences interface {
	String(key string) string
	SetString(key, val string)
	Save() error
}

// Session is the host-side state around one viewer.
type Session struct {
	mu         sync.Mutex
	viewer     *viewer.Viewer
	extractor  extract.Extractor
	repo       store.Repository
	prefs      Preferences
	recordID   string
	extracting bool

	onHistory    []func([]*store.Record)
	onExtracting []func(bool)

	now func() time.Time
}

// NewSession creates a session. extractor and prefs may be nil.
func NewSession(v *viewer.Viewer, extractor extract.Extractor, repo store.Repository, prefs Preferences) *Session {
	if repo == nil {
		repo = store.NewMemory()
	}
	return &Session{viewer: v, extractor: extractor, repo: repo, prefs: prefs, now: time.Now}
}

// Viewer returns the bound viewer.
func (s *Session) Viewer() *viewer.Viewer { return s.viewer }

// SetExtractor replaces the extraction backend.
func (s *Session) SetExtractor(ex extract.Extractor) {
	s.mu.Lock()
	s.extractor = ex
	s.mu.Unlock()
}

// OnHistoryChanged registers a listener called with the full history after
// every store write or delete.
func (s *Session) OnHistoryChanged(fn func([]*store.Record)) {
	s.mu.Lock()
	s.onHistory = append(s.onHistory, fn)
	s.mu.Unlock()
}

// OnExtracting registers a listener for the extraction busy flag.
func (s *Session) OnExtracting(fn func(bool)) {
	s.mu.Lock()
	s.onExtracting = append(s.onExtracting, fn)
	s.mu.Unlock()
}

// Open loads a document from disk and shows it without items.
func (s *Session) Open(path string) error {
	if !document.IsSupportedFile(path) {
		return fmt.Errorf("%s: %w", path, document.ErrUnsupportedFormat)
	}
	doc, err := document.Load(path)
	if err != nil {
		return err
	}
	log.Printf("session: opened %s (%s, %d bytes)", doc.Name, doc.MediaType, len(doc.Data))
	s.OpenDocument(doc)
	return nil
}

// OpenDocument shows doc without items. It is not yet part of the history.
func (s *Session) OpenDocument(doc *document.Document) {
	s.mu.Lock()
	s.recordID = ""
	s.mu.Unlock()
	s.viewer.SetDocument(doc, nil)
}

// LoadItemsFile replaces the items of the current document with a JSON file
// in either the bare-array or the upload-envelope format.
func (s *Session) LoadItemsFile(path string) error {
	items, err := document.LoadItems(path)
	if err != nil {
		return err
	}
	s.viewer.SetItems(document.Normalize(items))
	return nil
}

// Extracting reports whether an extraction is running.
func (s *Session) Extracting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extracting
}

func (s *Session) setExtracting(busy bool) {
	s.mu.Lock()
	s.extracting = busy
	listeners := slices.Clone(s.onExtracting)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(busy)
	}
}

// Extract runs the extractor on the current document, shows the items and
// saves the document into the history. On failure the items are cleared.
// When another document was opened meanwhile the result is only saved.
func (s *Session) Extract(ctx context.Context) ([]document.LayoutItem, error) {
	doc := s.viewer.Document()
	if doc == nil {
		return nil, ErrNoDocument
	}
	s.mu.Lock()
	ex := s.extractor
	s.mu.Unlock()
	if ex == nil {
		return nil, fmt.Errorf("no extractor configured")
	}

	s.setExtracting(true)
	defer s.setExtracting(false)

	start := time.Now()
	items, err := ex.Extract(ctx, doc)
	if err != nil {
		s.viewer.SetItemsFor(doc, nil)
		return nil, fmt.Errorf("failed to extract %s: %w", doc.Name, err)
	}
	log.Printf("session: extracted %d items from %s in %s", len(items), doc.Name, time.Since(start).Round(time.Millisecond))
	shown := s.viewer.SetItemsFor(doc, items)
	if !shown {
		log.Printf("session: %s is no longer open, keeping its items in the history only", doc.Name)
	}

	rec := store.NewRecord(doc, items, s.now())
	if err := s.repo.Put(rec); err != nil {
		// The items are shown even when the history write fails.
		log.Printf("session: failed to save %s to history: %v", doc.Name, err)
		return items, nil
	}
	if shown {
		s.mu.Lock()
		s.recordID = rec.ID
		s.mu.Unlock()
		s.remember(rec.ID)
	}
	s.notifyHistory()
	return items, nil
}

// History lists stored documents, newest first.
func (s *Session) History() ([]*store.Record, error) {
	return s.repo.List()
}

// RecordID returns the history id of the shown document, or "".
func (s *Session) RecordID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordID
}

// LoadRecord shows a stored document with its stored items.
func (s *Session) LoadRecord(id string) error {
	rec, err := s.repo.Get(id)
	if err != nil {
		return fmt.Errorf("failed to load history entry %s: %w", id, err)
	}
	s.mu.Lock()
	s.recordID = rec.ID
	s.mu.Unlock()
	s.viewer.SetDocument(rec.Document(), rec.ExtractionResult)
	s.remember(rec.ID)
	return nil
}

// DeleteRecord removes a stored document. The current view is left as is.
func (s *Session) DeleteRecord(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete history entry %s: %w", id, err)
	}
	s.mu.Lock()
	if s.recordID == id {
		s.recordID = ""
	}
	s.mu.Unlock()
	if s.prefs != nil && s.prefs.String(KeyLastDocument) == id {
		s.remember("")
	}
	s.notifyHistory()
	return nil
}

// RestoreLast reopens the document shown when the application last ran.
// A missing entry is forgotten silently.
func (s *Session) RestoreLast() error {
	if s.prefs == nil {
		return nil
	}
	id := s.prefs.String(KeyLastDocument)
	if id == "" {
		return nil
	}
	err := s.LoadRecord(id)
	if errors.Is(err, store.ErrNotFound) {
		s.remember("")
		return nil
	}
	return err
}

func (s *Session) remember(id string) {
	if s.prefs == nil {
		return
	}
	s.prefs.SetString(KeyLastDocument, id)
	if err := s.prefs.Save(); err != nil {
		log.Printf("session: failed to save preferences: %v", err)
	}
}

func (s *Session) notifyHistory() {
	s.mu.Lock()
	listeners := slices.Clone(s.onHistory)
	s.mu.Unlock()
	if len(listeners) == 0 {
		return
	}
	records, err := s.repo.List()
	if err != nil {
		log.Printf("session: failed to list history: %v", err)
		return
	}
	for _, fn := range listeners {
		fn(records)
	}
}

// TableView is one reconstructed table of the current document.
type TableView struct {
	Index int // position in the item list
	Page  int
	Grid  table.Grid
}

// Tables reconstructs every table item of the current document.
func (s *Session) Tables() []TableView {
	var out []TableView
	for i, it := range s.viewer.Items() {
		if !it.IsTable() {
			continue
		}
		if dups := table.Duplicates(table.Flatten(it.TableData)); len(dups) > 0 {
			for _, d := range dups {
				log.Printf("session: table %d: %s", i, d)
			}
		}
		out = append(out, TableView{Index: i, Page: it.Page, Grid: table.FromItem(it)})
	}
	return out
}
