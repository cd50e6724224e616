package viewport

import (
	"fmt"
	"math"

	"docoverlay/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// Transform maps normalized page coordinates to surface pixels:
// the draw-rect scale followed by a translation (centering or scroll offset).
// It keeps the homogeneous 3x3 matrix and its inverse.
type Transform struct {
	fwd *mat.Dense
	inv *mat.Dense
}

// NewTransform builds the transform for a draw size placed at offset on the surface.
func NewTransform(draw geometry.Size, offset geometry.Point2D) (*Transform, error) {
	if draw.Empty() {
		return nil, fmt.Errorf("empty draw size %vx%v", draw.Width, draw.Height)
	}
	fwd := mat.NewDense(3, 3, []float64{
		draw.Width, 0, offset.X,
		0, draw.Height, offset.Y,
		0, 0, 1,
	})
	var inv mat.Dense
	if err := inv.Inverse(fwd); err != nil {
		return nil, fmt.Errorf("failed to invert viewport transform: %w", err)
	}
	return &Transform{fwd: fwd, inv: &inv}, nil
}

func apply(m *mat.Dense, p geometry.Point2D) geometry.Point2D {
	v := mat.NewVecDense(3, []float64{p.X, p.Y, 1})
	var out mat.VecDense
	out.MulVec(m, v)
	w := out.AtVec(2)
	return geometry.Point2D{X: out.AtVec(0) / w, Y: out.AtVec(1) / w}
}

// ToSurface maps a normalized page point to surface pixels.
func (t *Transform) ToSurface(p geometry.Point2D) geometry.Point2D {
	return apply(t.fwd, p)
}

// ToNormalized maps a surface pixel back to normalized page coordinates.
func (t *Transform) ToNormalized(p geometry.Point2D) geometry.Point2D {
	return apply(t.inv, p)
}

// CenterOffset returns the offset that centers draw inside view on any axis
// where it is smaller, and 0 elsewhere.
func CenterOffset(draw, view geometry.Size) geometry.Point2D {
	var off geometry.Point2D
	if draw.Width < view.Width {
		off.X = math.Floor((view.Width - draw.Width) / 2)
	}
	if draw.Height < view.Height {
		off.Y = math.Floor((view.Height - draw.Height) / 2)
	}
	return off
}

// ClampScroll limits a scroll position so the view never leaves the draw rect.
func ClampScroll(scroll geometry.Point2D, draw, view geometry.Size) geometry.Point2D {
	maxX := math.Max(0, draw.Width-view.Width)
	maxY := math.Max(0, draw.Height-view.Height)
	return geometry.Point2D{
		X: math.Min(math.Max(scroll.X, 0), maxX),
		Y: math.Min(math.Max(scroll.Y, 0), maxY),
	}
}
