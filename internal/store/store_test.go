package store

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"docoverlay/internal/document"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDFormat(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewID(now)
	assert.Regexp(t, regexp.MustCompile(`^1700000000123-[0-9a-z]{7}$`), id)
	assert.True(t, ValidID(id))
	assert.False(t, ValidID("../etc/passwd"))
	assert.False(t, ValidID(""))
}

func sample(name string, at time.Time) *Record {
	doc := &document.Document{Name: name, MediaType: document.MediaPDF, Data: []byte("%PDF-1.4 body")}
	items := []document.LayoutItem{{
		Type:     document.TypeLayoutText,
		Page:     1,
		Text:     "hello",
		Geometry: &document.Geometry{BoundingBox: document.Rect(0.1, 0.2, 0.3, 0.4)},
	}}
	return NewRecord(doc, items, at)
}

func repos(t *testing.T) map[string]Repository {
	fr, err := OpenDir(filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	return map[string]Repository{"memory": NewMemory(), "file": fr}
}

func TestRepositoryContract(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			older := sample("old.pdf", base)
			newer := sample("new.pdf", base.Add(time.Hour))
			require.NoError(t, repo.Put(older))
			require.NoError(t, repo.Put(newer))

			got, err := repo.Get(older.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(older, got, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, document.MediaPDF, got.Document().MediaType)

			list, err := repo.List()
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "new.pdf", list[0].FileName)

			require.NoError(t, repo.Delete(newer.ID))
			_, err = repo.Get(newer.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, repo.Delete(newer.ID), ErrNotFound)
		})
	}
}

func TestMemoryStoresCopies(t *testing.T) {
	repo := NewMemory()
	r := sample("a.pdf", time.Now())
	require.NoError(t, repo.Put(r))
	r.ExtractionResult[0].Text = "mutated"

	got, err := repo.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.ExtractionResult[0].Text)
}

func TestFileRepositorySkipsCorruptFiles(t *testing.T) {
	repo, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, repo.Put(sample("a.pdf", time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "notes.txt"), []byte("x"), 0644))

	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileRepositoryRejectsBadID(t *testing.T) {
	repo, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	r := sample("a.pdf", time.Now())
	r.ID = "../escape"
	assert.Error(t, repo.Put(r))
	_, err = repo.Get("../escape")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordDocumentFallsBackToSniffing(t *testing.T) {
	r := &Record{FileName: "scan.pdf", FileData: []byte("%PDF-1.7")}
	assert.Equal(t, document.MediaPDF, r.Document().MediaType)
}
