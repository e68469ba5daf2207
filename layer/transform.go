package layer

import (
	"math"

	strata "github.com/strata-editor/strata"
)

// Transform math between layer-local and document coordinates.
//
// The composed layer-to-document operation is: translate the local point
// to be relative to the layer center, scale, rotate, then translate to the
// layer's document position. Untransformed layers (no rotation, unit
// scale) reduce to a plain offset translation and skip the trigonometry.

// LayerToDoc maps a layer-local point to document space.
func (l *Layer) LayerToDoc(x, y float64) (float64, float64) {
	if !l.HasTransform() {
		return x + float64(l.offsetX), y + float64(l.offsetY)
	}
	cx := float64(l.width) / 2
	cy := float64(l.height) / 2
	px := (x - cx) * l.scaleX
	py := (y - cy) * l.scaleY
	rad := l.rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)
	rx := px*cos - py*sin
	ry := px*sin + py*cos
	return rx + cx + float64(l.offsetX), ry + cy + float64(l.offsetY)
}

// DocToLayer maps a document-space point to layer-local space. It is the
// exact inverse of LayerToDoc: inverse rotation, then division by the
// scale factors, which are guaranteed non-zero.
func (l *Layer) DocToLayer(x, y float64) (float64, float64) {
	if !l.HasTransform() {
		return x - float64(l.offsetX), y - float64(l.offsetY)
	}
	cx := float64(l.width) / 2
	cy := float64(l.height) / 2
	px := x - cx - float64(l.offsetX)
	py := y - cy - float64(l.offsetY)
	rad := -l.rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)
	rx := px*cos - py*sin
	ry := px*sin + py*cos
	return rx/l.scaleX + cx, ry/l.scaleY + cy
}

// TransformMatrix returns the affine matrix equivalent to LayerToDoc, or
// the identity when no transform is active.
func (l *Layer) TransformMatrix() strata.Matrix {
	if !l.HasTransform() {
		return strata.Identity()
	}
	cx := float64(l.width) / 2
	cy := float64(l.height) / 2
	m := strata.Translate(float64(l.offsetX)+cx, float64(l.offsetY)+cy)
	m = m.Multiply(strata.Rotate(l.rotation * math.Pi / 180))
	m = m.Multiply(strata.Scale(l.scaleX, l.scaleY))
	return m.Multiply(strata.Translate(-cx, -cy))
}

// DocumentBounds returns the axis-aligned document-space bounding box of
// the transformed layer rectangle. Floors and ceils conservatively so the
// box never clips transformed content. Degenerate (zero-size) layers
// yield a zero-size box at the layer offset.
func (l *Layer) DocumentBounds() strata.Rect {
	if l.width == 0 || l.height == 0 {
		return strata.Rect{X: l.offsetX, Y: l.offsetY}
	}
	if !l.HasTransform() {
		return strata.Rect{X: l.offsetX, Y: l.offsetY, Width: l.width, Height: l.height}
	}

	w := float64(l.width)
	h := float64(l.height)
	xs := make([]float64, 0, 4)
	ys := make([]float64, 0, 4)
	for _, c := range [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		x, y := l.LayerToDoc(c[0], c[1])
		xs = append(xs, x)
		ys = append(ys, y)
	}

	// The epsilon snaps float noise from the trigonometry (a quarter
	// turn lands at 25±3e-15) so near-integer corners don't bloat the
	// box by a full pixel.
	const eps = 1e-9
	minX := math.Floor(min4(xs) + eps)
	minY := math.Floor(min4(ys) + eps)
	maxX := math.Ceil(max4(xs) - eps)
	maxY := math.Ceil(max4(ys) - eps)

	return strata.Rect{
		X:      int(minX),
		Y:      int(minY),
		Width:  int(maxX - minX),
		Height: int(maxY - minY),
	}
}

func min4(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func max4(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
