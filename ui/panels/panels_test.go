package panels

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"docoverlay/internal/document"
	"docoverlay/internal/raster"
	"docoverlay/internal/store"
	"docoverlay/internal/viewer"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conf(v float64) *float64 { return &v }

func TestDescribe(t *testing.T) {
	text := document.LayoutItem{
		Type:       document.TypeLayoutText,
		Page:       2,
		Confidence: conf(97.4),
		Text:       "Invoice\n  total   due",
		Geometry:   &document.Geometry{BoundingBox: document.Rect(0, 0, 1, 1)},
	}
	assert.Equal(t, "p2 Text 97% Invoice total due", Describe(text))

	tbl := document.LayoutItem{
		Type: document.TypeTable,
		Page: 1,
		TableData: [][]document.TableCell{
			{{Text: "A", RowIndex: 1, ColumnIndex: 1}, {Text: "B", RowIndex: 1, ColumnIndex: 3}},
			{{Text: "C", RowIndex: 2, ColumnIndex: 1}},
		},
	}
	assert.Equal(t, "p1 Table [2x3 table] (no box)", Describe(tbl))
}

func TestSnippetTruncates(t *testing.T) {
	long := strings.Repeat("é", 80)
	s := snippet(long, 10)
	assert.Equal(t, strings.Repeat("é", 7)+"...", s)
	assert.Equal(t, "short", snippet("short", 10))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "No items", summarize(nil, 1))
	items := []document.LayoutItem{{Page: 1}, {Page: 2}, {Page: 1}}
	assert.Equal(t, "3 items, 2 on page 1", summarize(items, 1))
}

func TestRowColor(t *testing.T) {
	assert.Equal(t, color.Transparent, rowColor(false, false))
	assert.Equal(t, color.NRGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0x50}, rowColor(true, true))
	assert.Equal(t, color.NRGBA{R: 0x22, G: 0xC5, B: 0x5E, A: 0x50}, rowColor(false, true))
}

func TestHistoryLabel(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := &store.Record{FileName: "scan.pdf", UploadedAt: now.Add(-90 * time.Minute), ExtractionResult: make([]document.LayoutItem, 4)}
	assert.Equal(t, "scan.pdf (4 items, 1h ago)", HistoryLabel(rec, now))

	rec.UploadedAt = now.Add(-10 * time.Second)
	assert.Equal(t, "scan.pdf (4 items, just now)", HistoryLabel(rec, now))
	rec.UploadedAt = now.Add(-72 * time.Hour)
	assert.Equal(t, "scan.pdf (4 items, 3d ago)", HistoryLabel(rec, now))
}

func TestItemsPanelClickAndHover(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	v := viewer.New(raster.New(nil))
	defer v.Close()

	ip := NewItemsPanel(v)
	items := []document.LayoutItem{
		{Type: document.TypeLayoutText, Page: 1, Text: "one"},
		{Type: document.TypeLayoutText, Page: 1, Text: "two"},
	}
	v.SetDocument(nil, items)
	ip.Sync()
	assert.Equal(t, "2 items, 2 on page 1", ip.summary.Text)

	ip.click(1)
	sel := v.Selection()
	require.NotNil(t, sel.Selected)
	assert.Equal(t, 1, *sel.Selected)

	ip.click(5)
	assert.Equal(t, 1, *v.Selection().Selected, "out of range is ignored")

	row := newItemRow(ip)
	row.bind(0, items[0], v.Selection())
	row.MouseIn(nil)
	require.NotNil(t, v.Selection().Hovered)
	assert.Equal(t, 0, *v.Selection().Hovered)
	row.MouseOut()
	assert.Nil(t, v.Selection().Hovered)
}
