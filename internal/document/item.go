package document

import (
	"encoding/json"
	"fmt"
	"math"

	"docoverlay/pkg/geometry"
)

// ColumnHeader is the entity type marking a table header cell.
const ColumnHeader = "COLUMN_HEADER"

// Item types produced by the extraction service that the viewer treats specially.
const (
	TypeTable       = "Table"
	TypeLayoutTable = "Layout Table"
	TypeLayoutText  = "Layout Text"
)

// NormalizedRect is a rectangle in page fractions, origin top-left.
// Fields are pointers so that a missing coordinate is distinguishable from 0.
type NormalizedRect struct {
	Left   *float64 `json:"Left,omitempty"`
	Top    *float64 `json:"Top,omitempty"`
	Width  *float64 `json:"Width,omitempty"`
	Height *float64 `json:"Height,omitempty"`
}

// Rect builds a fully populated NormalizedRect.
func Rect(left, top, width, height float64) *NormalizedRect {
	return &NormalizedRect{Left: &left, Top: &top, Width: &width, Height: &height}
}

// Complete reports whether all four coordinates are present.
func (r *NormalizedRect) Complete() bool {
	return r != nil && r.Left != nil && r.Top != nil && r.Width != nil && r.Height != nil
}

// Validate checks presence and the [0,1] range of every coordinate.
func (r *NormalizedRect) Validate() error {
	if !r.Complete() {
		return fmt.Errorf("bounding box has missing fields: %w", ErrMalformedGeometry)
	}
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"Left", *r.Left}, {"Top", *r.Top}, {"Width", *r.Width}, {"Height", *r.Height},
	} {
		if math.IsNaN(v.val) || v.val < 0 || v.val > 1 {
			return fmt.Errorf("bounding box %s=%v outside [0,1]: %w", v.name, v.val, ErrMalformedGeometry)
		}
	}
	return nil
}

// Value returns the rectangle as a plain geometry.Rect in page fractions.
// Callers must Validate first; missing fields read as zero.
func (r *NormalizedRect) Value() geometry.Rect {
	if r == nil {
		return geometry.Rect{}
	}
	return geometry.Rect{X: deref(r.Left), Y: deref(r.Top), Width: deref(r.Width), Height: deref(r.Height)}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// PolygonPoint is one vertex of an extraction polygon, in page fractions.
type PolygonPoint struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

// Geometry carries the optional location of an item.
type Geometry struct {
	BoundingBox *NormalizedRect `json:"BoundingBox,omitempty"`
	Polygon     []PolygonPoint  `json:"Polygon,omitempty"`
}

// Outline returns the polygon as page-fraction points, or nil when it has
// fewer than three vertices.
func (g *Geometry) Outline() []geometry.Point2D {
	if g == nil || len(g.Polygon) < 3 {
		return nil
	}
	pts := make([]geometry.Point2D, len(g.Polygon))
	for i, v := range g.Polygon {
		pts[i] = geometry.Point2D{X: v.X, Y: v.Y}
	}
	return pts
}

// TableCell is one cell of a table item, with 1-based indices.
type TableCell struct {
	Text        string    `json:"text"`
	RowIndex    int       `json:"rowIndex"`
	ColumnIndex int       `json:"columnIndex"`
	RowSpan     int       `json:"rowSpan,omitempty"`
	ColumnSpan  int       `json:"columnSpan,omitempty"`
	Confidence  *float64  `json:"confidence,omitempty"`
	Geometry    *Geometry `json:"geometry,omitempty"`
	EntityTypes []string  `json:"entityTypes,omitempty"`
}

// IsColumnHeader reports whether the cell is tagged COLUMN_HEADER.
func (c TableCell) IsColumnHeader() bool {
	for _, t := range c.EntityTypes {
		if t == ColumnHeader {
			return true
		}
	}
	return false
}

// LayoutItem is one extracted semantic unit. The viewer treats it as read-only.
type LayoutItem struct {
	Type       string        `json:"type"`
	Page       int           `json:"page"`
	Confidence *float64      `json:"confidence,omitempty"`
	Geometry   *Geometry     `json:"geometry,omitempty"`
	Text       string        `json:"text,omitempty"`
	TableData  [][]TableCell `json:"table_data,omitempty"`
}

// UnmarshalJSON accepts both "table_data" and "tableData" for the cell rows.
func (it *LayoutItem) UnmarshalJSON(data []byte) error {
	type plain LayoutItem
	var aux struct {
		plain
		TableDataCamel [][]TableCell `json:"tableData"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*it = LayoutItem(aux.plain)
	if it.TableData == nil {
		it.TableData = aux.TableDataCamel
	}
	// The service omits the page for single-page input.
	if it.Page == 0 {
		it.Page = 1
	}
	return nil
}

// BoundingBox returns the item's box, or nil when geometry is absent.
func (it LayoutItem) BoundingBox() *NormalizedRect {
	if it.Geometry == nil {
		return nil
	}
	return it.Geometry.BoundingBox
}

// IsTable reports whether the item carries table cells.
func (it LayoutItem) IsTable() bool {
	return len(it.TableData) > 0
}

// Cells flattens the table rows into a single source-ordered slice.
func (it LayoutItem) Cells() []TableCell {
	var cells []TableCell
	for _, row := range it.TableData {
		cells = append(cells, row...)
	}
	return cells
}
