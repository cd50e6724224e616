package viewport

import (
	"docoverlay/internal/document"
	"docoverlay/pkg/geometry"
)

// DefaultPadding is the outward growth applied to every highlighted box so
// thin borders are not hidden under glyphs.
const DefaultPadding = 2.0

// Host container of the page layout: the client width minus
// 20px padding each side, and a fixed height.
const (
	HostHorizontalPadding = 40
	HostContainerHeight   = 1000
)

// HostContainer returns the container size for a given client width.
func HostContainer(clientWidth float64) geometry.Size {
	w := clientWidth - HostHorizontalPadding
	if w < 0 {
		w = 0
	}
	return geometry.NewSize(w, HostContainerHeight)
}

// ComputeDrawRect fits the natural size inside the container preserving the
// aspect ratio (the binding axis fills the container), then scales both
// dimensions by zoom. Degenerate input yields a zero size.
func ComputeDrawRect(natural, container geometry.Size, zoom float64) geometry.Size {
	if natural.Empty() || container.Empty() || zoom <= 0 {
		return geometry.Size{}
	}

	imageAspect := natural.AspectRatio()
	containerAspect := container.AspectRatio()

	var base geometry.Size
	if imageAspect > containerAspect {
		base = geometry.Size{Width: container.Width, Height: container.Width / imageAspect}
	} else {
		base = geometry.Size{Width: container.Height * imageAspect, Height: container.Height}
	}
	return base.Scale(zoom)
}

// MapRect converts a normalized rectangle into pixels on a surface of the
// given draw size, grown by padding on all sides.
func MapRect(rect *document.NormalizedRect, draw geometry.Size, padding float64) (geometry.Rect, error) {
	if err := rect.Validate(); err != nil {
		return geometry.Rect{}, err
	}
	r := rect.Value()
	px := geometry.Rect{
		X:      r.X * draw.Width,
		Y:      r.Y * draw.Height,
		Width:  r.Width * draw.Width,
		Height: r.Height * draw.Height,
	}
	return px.Expand(padding), nil
}
