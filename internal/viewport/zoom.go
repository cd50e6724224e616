// Package viewport maps page geometry onto the drawing surface: zoom steps,
// letterbox fitting, normalized-to-pixel rectangles and the inverse transform
// used for hit-testing.
package viewport

import (
	"fmt"
	"math"
)

const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.25

	// zoom is stored in quarter steps so repeated In/Out never drifts off the grid.
	minSteps = int(MinZoom / ZoomStep)
	maxSteps = int(MaxZoom / ZoomStep)
	oneSteps = int(1 / ZoomStep)
)

// Zoom is a bounded zoom factor in [MinZoom, MaxZoom], changed in ZoomStep increments.
// The zero value is not valid; use NewZoom.
type Zoom struct {
	steps int
}

// NewZoom returns a zoom factor of 1.0.
func NewZoom() Zoom {
	return Zoom{steps: oneSteps}
}

// ZoomFromValue snaps v to the nearest step inside the allowed range.
// NaN and infinities give NewZoom.
func ZoomFromValue(v float64) Zoom {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NewZoom()
	}
	v = math.Min(math.Max(v, MinZoom), MaxZoom)
	steps := int(v/ZoomStep + 0.5)
	return Zoom{steps: clampSteps(steps)}
}

func clampSteps(s int) int {
	if s < minSteps {
		return minSteps
	}
	if s > maxSteps {
		return maxSteps
	}
	return s
}

// Value returns the zoom factor.
func (z Zoom) Value() float64 {
	if z.steps == 0 {
		return 1
	}
	return float64(z.steps) * ZoomStep
}

// In returns the next larger zoom, clamped at MaxZoom.
func (z Zoom) In() Zoom {
	return Zoom{steps: clampSteps(z.normalized() + 1)}
}

// Out returns the next smaller zoom, clamped at MinZoom.
func (z Zoom) Out() Zoom {
	return Zoom{steps: clampSteps(z.normalized() - 1)}
}

// Reset returns a zoom of 1.0.
func (z Zoom) Reset() Zoom {
	return NewZoom()
}

// CanZoomIn reports whether In would change the value.
func (z Zoom) CanZoomIn() bool {
	return z.normalized() < maxSteps
}

// CanZoomOut reports whether Out would change the value.
func (z Zoom) CanZoomOut() bool {
	return z.normalized() > minSteps
}

// Percent returns the zoom as a rounded percentage, e.g. 125.
func (z Zoom) Percent() int {
	return int(z.Value()*100 + 0.5)
}

func (z Zoom) String() string {
	return fmt.Sprintf("%d%%", z.Percent())
}

func (z Zoom) normalized() int {
	if z.steps == 0 {
		return oneSteps
	}
	return z.steps
}
