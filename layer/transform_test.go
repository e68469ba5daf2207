package layer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	strata "github.com/strata-editor/strata"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestLayerToDocUntransformed(t *testing.T) {
	l := NewRaster("bg", 100, 50)
	l.SetOffset(10, 20)

	x, y := l.LayerToDoc(5, 7)
	if x != 15 || y != 27 {
		t.Errorf("LayerToDoc(5, 7) = (%v, %v), want (15, 27)", x, y)
	}

	x, y = l.DocToLayer(15, 27)
	if x != 5 || y != 7 {
		t.Errorf("DocToLayer(15, 27) = (%v, %v), want (5, 7)", x, y)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tests := []struct {
		name           string
		rotation       float64
		scaleX, scaleY float64
		offX, offY     int
	}{
		{"rotation only", 37, 1, 1, 0, 0},
		{"scale only", 0, 2, 0.5, 0, 0},
		{"rotation and scale", -63, 1.5, 3, 12, -8},
		{"mirror scale", 90, -1, 1, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewRaster("l", 80, 60)
			l.SetOffset(tt.offX, tt.offY)
			l.SetRotation(tt.rotation)
			l.SetScale(tt.scaleX, tt.scaleY)

			for _, p := range [][2]float64{{0, 0}, {80, 60}, {13.5, 41.25}, {40, 30}} {
				dx, dy := l.LayerToDoc(p[0], p[1])
				lx, ly := l.DocToLayer(dx, dy)
				if !almostEqual(lx, p[0]) || !almostEqual(ly, p[1]) {
					t.Errorf("round trip (%v, %v) -> (%v, %v) -> (%v, %v)",
						p[0], p[1], dx, dy, lx, ly)
				}
			}
		})
	}
}

func TestTransformRotatesAroundCenter(t *testing.T) {
	l := NewRaster("l", 100, 50)
	l.SetRotation(123)

	// The center is the rotation pivot and must stay fixed.
	x, y := l.LayerToDoc(50, 25)
	if !almostEqual(x, 50) || !almostEqual(y, 25) {
		t.Errorf("center moved to (%v, %v)", x, y)
	}
}

func TestTransformMatrixMatchesLayerToDoc(t *testing.T) {
	l := NewRaster("l", 64, 48)
	l.SetOffset(-7, 22)
	l.SetRotation(31)
	l.SetScale(1.25, 0.8)

	m := l.TransformMatrix()
	for _, p := range [][2]float64{{0, 0}, {64, 0}, {0, 48}, {64, 48}, {10, 10}} {
		wx, wy := l.LayerToDoc(p[0], p[1])
		gx, gy := m.Apply(p[0], p[1])
		if !almostEqual(gx, wx) || !almostEqual(gy, wy) {
			t.Errorf("matrix(%v, %v) = (%v, %v), want (%v, %v)", p[0], p[1], gx, gy, wx, wy)
		}
	}
}

func TestTransformMatrixIdentityWhenUntransformed(t *testing.T) {
	l := NewRaster("l", 64, 48)
	l.SetOffset(100, 200)
	if !l.TransformMatrix().IsIdentity() {
		t.Errorf("untransformed layer's matrix is not identity")
	}
}

// The inverse mapping must agree with a general-purpose linear algebra
// inversion of the same affine matrix.
func TestDocToLayerAgainstGonum(t *testing.T) {
	l := NewRaster("l", 90, 70)
	l.SetOffset(14, -3)
	l.SetRotation(-48)
	l.SetScale(0.6, 2.2)

	m := l.TransformMatrix()
	a := mat.NewDense(3, 3, []float64{
		m.A, m.B, m.C,
		m.D, m.E, m.F,
		0, 0, 1,
	})
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		t.Fatalf("gonum inverse: %v", err)
	}

	for _, p := range [][2]float64{{0, 0}, {45, 35}, {90, 70}, {-20, 100}} {
		wx := inv.At(0, 0)*p[0] + inv.At(0, 1)*p[1] + inv.At(0, 2)
		wy := inv.At(1, 0)*p[0] + inv.At(1, 1)*p[1] + inv.At(1, 2)
		gx, gy := l.DocToLayer(p[0], p[1])
		if !almostEqual(gx, wx) || !almostEqual(gy, wy) {
			t.Errorf("DocToLayer(%v, %v) = (%v, %v), gonum says (%v, %v)", p[0], p[1], gx, gy, wx, wy)
		}
	}
}

func TestDocumentBoundsUntransformed(t *testing.T) {
	l := NewRaster("l", 100, 50)
	l.SetOffset(10, 20)

	want := strata.Rect{X: 10, Y: 20, Width: 100, Height: 50}
	if got := l.DocumentBounds(); got != want {
		t.Errorf("DocumentBounds() = %+v, want %+v", got, want)
	}
}

func TestDocumentBoundsQuarterTurn(t *testing.T) {
	// A 100x50 layer rotated 90 degrees about its center spans a 50x100
	// box centered at the same point.
	l := NewRaster("l", 100, 50)
	l.SetRotation(90)

	got := l.DocumentBounds()
	want := strata.Rect{X: 25, Y: -25, Width: 50, Height: 100}
	if got != want {
		t.Errorf("DocumentBounds() = %+v, want %+v", got, want)
	}
}

func TestDocumentBoundsContainsAllCorners(t *testing.T) {
	l := NewRaster("l", 100, 50)
	l.SetRotation(33)
	l.SetScale(1.7, 0.9)
	l.SetOffset(-15, 40)

	b := l.DocumentBounds()
	for _, c := range [][2]float64{{0, 0}, {100, 0}, {0, 50}, {100, 50}} {
		x, y := l.LayerToDoc(c[0], c[1])
		if x < float64(b.X)-epsilon || x > float64(b.MaxX())+epsilon ||
			y < float64(b.Y)-epsilon || y > float64(b.MaxY())+epsilon {
			t.Errorf("corner (%v, %v) maps to (%v, %v) outside bounds %+v", c[0], c[1], x, y, b)
		}
	}
}

func TestDocumentBoundsDegenerate(t *testing.T) {
	l := NewRaster("empty", 0, 0)
	l.SetOffset(30, 40)
	l.SetRotation(45) // must not matter for a zero-size layer

	want := strata.Rect{X: 30, Y: 40}
	if got := l.DocumentBounds(); got != want {
		t.Errorf("DocumentBounds() = %+v, want %+v", got, want)
	}
}
