package overlay

import (
	"image"
	"image/color"
	"testing"

	"docoverlay/internal/document"
	"docoverlay/internal/selection"
	"docoverlay/pkg/colorutil"
	"docoverlay/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(page int, box *document.NormalizedRect) document.LayoutItem {
	it := document.LayoutItem{Type: document.TypeLayoutText, Page: page}
	if box != nil {
		it.Geometry = &document.Geometry{BoundingBox: box}
	}
	return it
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		name              string
		selected, hovered bool
		want              Style
		drawn             bool
	}{
		{"selected", true, false, SelectedStyle, true},
		{"selected and hovered", true, true, SelectedStyle, true},
		{"hovered", false, true, HoveredStyle, true},
		{"idle", false, false, Style{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, drawn := StyleFor(tt.selected, tt.hovered)
			assert.Equal(t, tt.drawn, drawn)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, colorutil.Indigo, SelectedStyle.Color)
	assert.Equal(t, colorutil.Green, HoveredStyle.Color)
}

func TestCommandsMapping(t *testing.T) {
	items := []document.LayoutItem{item(1, document.Rect(0.1, 0.2, 0.3, 0.05))}
	sel := selection.Selection{Selected: selection.Index(0)}

	cmds := Commands(items, 1, sel, geometry.NewSize(800, 1000))
	require.Len(t, cmds, 1)
	r := cmds[0].Rect
	assert.InDelta(t, 78, r.X, 1e-9)
	assert.InDelta(t, 198, r.Y, 1e-9)
	assert.InDelta(t, 244, r.Width, 1e-9)
	assert.InDelta(t, 54, r.Height, 1e-9)
	assert.Equal(t, SelectedStyle, cmds[0].Style)
}

func TestCommandsFiltering(t *testing.T) {
	box := document.Rect(0.1, 0.1, 0.2, 0.2)
	bad := document.Rect(0.1, 0.1, 1.5, 0.2)
	items := []document.LayoutItem{
		item(1, box),
		item(2, box), // other page
		item(1, nil), // missing geometry
		item(1, bad), // malformed
		item(1, box),
		item(1, box), // idle
	}
	draw := geometry.NewSize(100, 100)

	for _, i := range []int{1, 2, 3} {
		sel := selection.Selection{Selected: selection.Index(i)}
		assert.Empty(t, Commands(items, 1, sel, draw), "index %d", i)
	}

	sel := selection.Selection{Selected: selection.Index(0), Hovered: selection.Index(4)}
	cmds := Commands(items, 1, sel, draw)
	require.Len(t, cmds, 2)
	assert.Equal(t, 4, cmds[0].Index)
	assert.Equal(t, HoveredStyle, cmds[0].Style)
	assert.Equal(t, 0, cmds[1].Index, "selected outline drawn last")
}

func TestCommandsSameIndexOnce(t *testing.T) {
	items := []document.LayoutItem{item(1, document.Rect(0, 0, 0.5, 0.5))}
	sel := selection.Selection{Selected: selection.Index(0), Hovered: selection.Index(0)}
	cmds := Commands(items, 1, sel, geometry.NewSize(10, 10))
	require.Len(t, cmds, 1)
	assert.Equal(t, SelectedStyle, cmds[0].Style)
}

func TestDrawMissingSurface(t *testing.T) {
	assert.ErrorIs(t, Draw(nil, nil), document.ErrMissingCanvasSurface)
}

func TestDrawOutline(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	cmd := Command{Rect: geometry.NewRect(5, 5, 10, 10), Style: SelectedStyle}
	require.NoError(t, Draw(dst, []Command{cmd}))

	in := colorutil.Indigo
	none := color.RGBA{}
	// The 2px line straddles each edge: one pixel outside, one inside.
	assert.Equal(t, in, dst.RGBAAt(4, 4))
	assert.Equal(t, in, dst.RGBAAt(5, 5))
	assert.Equal(t, in, dst.RGBAAt(15, 15))
	assert.Equal(t, in, dst.RGBAAt(14, 10))
	assert.Equal(t, in, dst.RGBAAt(10, 4))
	assert.Equal(t, none, dst.RGBAAt(6, 6), "interior is not filled")
	assert.Equal(t, none, dst.RGBAAt(13, 10))
	assert.Equal(t, none, dst.RGBAAt(16, 16))
	assert.Equal(t, none, dst.RGBAAt(3, 3))
}

func TestDrawClipsToBounds(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	cmd := Command{Rect: geometry.NewRect(-5, -5, 30, 30), Style: HoveredStyle}
	assert.NotPanics(t, func() { require.NoError(t, Draw(dst, []Command{cmd})) })
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(0, 0))
}

func TestHitTestPrefersSmallest(t *testing.T) {
	items := []document.LayoutItem{
		item(1, document.Rect(0, 0, 1, 1)),
		item(1, document.Rect(0.4, 0.4, 0.2, 0.2)),
		item(2, document.Rect(0.45, 0.45, 0.1, 0.1)),
		item(1, nil),
	}
	draw := geometry.NewSize(100, 100)

	i, ok := HitTest(items, 1, draw, geometry.NewPoint2D(50, 50))
	require.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = HitTest(items, 1, draw, geometry.NewPoint2D(10, 10))
	require.True(t, ok)
	assert.Equal(t, 0, i)

	_, ok = HitTest(items, 3, draw, geometry.NewPoint2D(50, 50))
	assert.False(t, ok)
}

func TestHitTestHonorsPolygon(t *testing.T) {
	tri := item(1, document.Rect(0, 0, 1, 1))
	tri.Geometry.Polygon = []document.PolygonPoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	items := []document.LayoutItem{tri}
	draw := geometry.NewSize(100, 100)

	_, ok := HitTest(items, 1, draw, geometry.NewPoint2D(10, 10))
	assert.True(t, ok)

	_, ok = HitTest(items, 1, draw, geometry.NewPoint2D(80, 80))
	assert.False(t, ok)
}
