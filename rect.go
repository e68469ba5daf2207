package strata

import "image"

// Rect is an axis-aligned rectangle in integer document coordinates.
// A rectangle with zero width or height is valid and represents an empty
// (degenerate) region anchored at (X, Y).
type Rect struct {
	X, Y          int
	Width, Height int
}

// RectOf is a convenience function to create a Rect.
func RectOf(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// MaxX returns the exclusive right edge.
func (r Rect) MaxX() int { return r.X + r.Width }

// MaxY returns the exclusive bottom edge.
func (r Rect) MaxY() int { return r.Y + r.Height }

// IsEmpty returns true if the rectangle covers no pixels.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rectangle enclosing both r and s.
// An empty rectangle does not contribute to the result.
func (r Rect) Union(s Rect) Rect {
	if r.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return r
	}
	minX := minInt(r.X, s.X)
	minY := minInt(r.Y, s.Y)
	maxX := maxInt(r.MaxX(), s.MaxX())
	maxY := maxInt(r.MaxY(), s.MaxY())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Intersect returns the overlap of r and s, or an empty rectangle.
func (r Rect) Intersect(s Rect) Rect {
	minX := maxInt(r.X, s.X)
	minY := maxInt(r.Y, s.Y)
	maxX := minInt(r.MaxX(), s.MaxX())
	maxY := minInt(r.MaxY(), s.MaxY())
	if maxX <= minX || maxY <= minY {
		return Rect{X: minX, Y: minY}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Contains returns true if the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Expand grows the rectangle outward by the given per-side amounts.
func (r Rect) Expand(left, top, right, bottom int) Rect {
	return Rect{
		X:      r.X - left,
		Y:      r.Y - top,
		Width:  r.Width + left + right,
		Height: r.Height + top + bottom,
	}
}

// ToImageRect converts to a stdlib image.Rectangle.
func (r Rect) ToImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.MaxX(), r.MaxY())
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
