package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docoverlay/internal/document"
	"docoverlay/internal/raster"
	"docoverlay/internal/store"
	"docoverlay/internal/viewer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPrefs struct {
	values map[string]string
	saves  int
}

func newPrefs() *memPrefs { return &memPrefs{values: map[string]string{}} }

func (p *memPrefs) String(key string) string { return p.values[key] }
func (p *memPrefs) SetString(key, val string) { p.values[key] = val }
func (p *memPrefs) Save() error { p.saves++; return nil }

type fakeExtractor struct {
	items []document.LayoutItem
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, *document.Document) ([]document.LayoutItem, error) {
	f.calls++
	return f.items, f.err
}

func pngDoc(t *testing.T) *document.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 20, 10))))
	return document.New("scan.png", buf.Bytes())
}

func tableItem() document.LayoutItem {
	return document.LayoutItem{
		Type: document.TypeTable,
		Page: 1,
		TableData: [][]document.TableCell{{
			{Text: "A", RowIndex: 1, ColumnIndex: 1},
			{Text: "B", RowIndex: 1, ColumnIndex: 2},
		}, {
			{Text: "C", RowIndex: 2, ColumnIndex: 1},
		}},
	}
}

func newSession(t *testing.T, ex *fakeExtractor) (*Session, *memPrefs, store.Repository) {
	t.Helper()
	v := viewer.New(raster.New(nil))
	t.Cleanup(v.Close)
	prefs := newPrefs()
	repo := store.NewMemory()
	return NewSession(v, ex, repo, prefs), prefs, repo
}

func TestExtractSavesHistory(t *testing.T) {
	ex := &fakeExtractor{items: []document.LayoutItem{tableItem()}}
	s, prefs, repo := newSession(t, ex)

	var histories [][]*store.Record
	s.OnHistoryChanged(func(r []*store.Record) { histories = append(histories, r) })
	var busy []bool
	s.OnExtracting(func(b bool) { busy = append(busy, b) })

	s.OpenDocument(pngDoc(t))
	s.Viewer().Wait()
	items, err := s.Extract(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.Equal(t, []bool{true, false}, busy)
	assert.Len(t, s.Viewer().Items(), 1)
	require.NotEmpty(t, s.RecordID())
	assert.Equal(t, s.RecordID(), prefs.values[KeyLastDocument])

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "scan.png", list[0].FileName)
	require.Len(t, histories, 1)

	tables := s.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"A", "B"}, {"C", "-"}}, tables[0].Grid.Texts())
}

func TestExtractWithoutDocument(t *testing.T) {
	ex := &fakeExtractor{}
	s, _, _ := newSession(t, ex)
	_, err := s.Extract(context.Background())
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.Zero(t, ex.calls)
}

func TestExtractFailureClearsItems(t *testing.T) {
	ex := &fakeExtractor{err: &document.ServiceError{Status: "error", Message: "boom"}}
	s, _, repo := newSession(t, ex)
	s.Viewer().SetDocument(pngDoc(t), []document.LayoutItem{tableItem()})
	s.Viewer().Wait()

	_, err := s.Extract(context.Background())
	var se *document.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Empty(t, s.Viewer().Items())

	list, _ := repo.List()
	assert.Empty(t, list)
}

func TestLoadAndDeleteRecord(t *testing.T) {
	s, prefs, repo := newSession(t, &fakeExtractor{})
	rec := store.NewRecord(pngDoc(t), []document.LayoutItem{tableItem()}, time.Now())
	require.NoError(t, repo.Put(rec))

	require.NoError(t, s.LoadRecord(rec.ID))
	s.Viewer().Wait()
	assert.Equal(t, "scan.png", s.Viewer().Document().Name)
	assert.Len(t, s.Viewer().Items(), 1)
	assert.NotNil(t, s.Viewer().Bitmap())
	assert.Equal(t, rec.ID, prefs.values[KeyLastDocument])

	require.NoError(t, s.DeleteRecord(rec.ID))
	assert.Empty(t, s.RecordID())
	assert.Empty(t, prefs.values[KeyLastDocument])
	assert.Equal(t, "scan.png", s.Viewer().Document().Name, "view is kept")

	assert.ErrorIs(t, s.LoadRecord(rec.ID), store.ErrNotFound)
}

func TestRestoreLast(t *testing.T) {
	s, prefs, repo := newSession(t, &fakeExtractor{})
	require.NoError(t, s.RestoreLast())

	prefs.values[KeyLastDocument] = "1-missing"
	require.NoError(t, s.RestoreLast())
	assert.Empty(t, prefs.values[KeyLastDocument])

	rec := store.NewRecord(pngDoc(t), nil, time.Now())
	require.NoError(t, repo.Put(rec))
	prefs.values[KeyLastDocument] = rec.ID
	require.NoError(t, s.RestoreLast())
	assert.Equal(t, rec.ID, s.RecordID())
}

func TestOpenRejectsUnsupported(t *testing.T) {
	s, _, _ := newSession(t, &fakeExtractor{})
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0644))
	assert.ErrorIs(t, s.Open(path), document.ErrUnsupportedFormat)
}

func TestOpenAndLoadItemsFile(t *testing.T) {
	s, _, _ := newSession(t, &fakeExtractor{})
	dir := t.TempDir()
	docPath := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(docPath, pngDoc(t).Data, 0644))
	itemsPath := filepath.Join(dir, "items.json")
	require.NoError(t, document.SaveItems(itemsPath, []document.LayoutItem{tableItem()}))

	require.NoError(t, s.Open(docPath))
	s.Viewer().Wait()
	require.NoError(t, s.LoadItemsFile(itemsPath))
	assert.Len(t, s.Viewer().Items(), 1)
	assert.Empty(t, s.RecordID())
}

// gatedExtractor signals started and blocks until release is closed.
type gatedExtractor struct {
	started chan struct{}
	release chan struct{}
	items   []document.LayoutItem
}

func (g *gatedExtractor) Extract(ctx context.Context, _ *document.Document) ([]document.LayoutItem, error) {
	close(g.started)
	<-g.release
	return g.items, nil
}

func TestExtractResultStaysWithItsDocument(t *testing.T) {
	v := viewer.New(raster.New(nil))
	t.Cleanup(v.Close)
	repo := store.NewMemory()
	prefs := newPrefs()
	ex := &gatedExtractor{
		started: make(chan struct{}),
		release: make(chan struct{}),
		items:   []document.LayoutItem{{Type: document.TypeLayoutText, Page: 1, Text: "from a"}},
	}
	s := NewSession(v, ex, repo, prefs)

	a := pngDoc(t)
	b := document.New("other.png", a.Data)
	s.OpenDocument(a)

	done := make(chan error, 1)
	go func() {
		_, err := s.Extract(context.Background())
		done <- err
	}()
	<-ex.started
	s.OpenDocument(b)
	close(ex.release)
	require.NoError(t, <-done)
	v.Wait()

	assert.Same(t, b, v.Document())
	assert.Empty(t, v.Items(), "items of scan.png must not be drawn over other.png")
	assert.Empty(t, s.RecordID())
	assert.Empty(t, prefs.values[KeyLastDocument])

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "scan.png", list[0].FileName)
	assert.Len(t, list[0].ExtractionResult, 1)
}
