package strata

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const matrixEps = 1e-9

func TestMatrixIdentity(t *testing.T) {
	m := Identity()
	if !m.IsIdentity() {
		t.Fatalf("Identity().IsIdentity() = false")
	}
	x, y := m.Apply(12.5, -3)
	if x != 12.5 || y != -3 {
		t.Errorf("Identity().Apply(12.5, -3) = (%v, %v)", x, y)
	}
}

func TestMatrixApply(t *testing.T) {
	tests := []struct {
		name   string
		m      Matrix
		x, y   float64
		wx, wy float64
	}{
		{"translate", Translate(10, 20), 1, 2, 11, 22},
		{"scale", Scale(2, 3), 4, 5, 8, 15},
		{"flip x", Scale(-1, 1), 4, 5, -4, 5},
		{"rotate 90", Rotate(math.Pi / 2), 1, 0, 0, 1},
		{"rotate 180", Rotate(math.Pi), 1, 0, -1, 0},
		{"rotate at center", RotateAt(math.Pi, 5, 5), 0, 0, 10, 10},
		{"scale at center", ScaleAt(2, 2, 10, 10), 5, 5, 0, 0},
		{"compose", Translate(10, 0).Multiply(Scale(2, 2)), 3, 4, 16, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.m.Apply(tt.x, tt.y)
			if math.Abs(x-tt.wx) > matrixEps || math.Abs(y-tt.wy) > matrixEps {
				t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)",
					tt.x, tt.y, x, y, tt.wx, tt.wy)
			}
		})
	}
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"translate", Translate(-7, 13)},
		{"scale", Scale(0.5, 4)},
		{"rotate", Rotate(0.7)},
		{"composed", Translate(10, 20).Multiply(Rotate(1.1)).Multiply(Scale(2, 0.25))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Invert()
			if !ok {
				t.Fatalf("Invert() reported singular matrix")
			}
			x, y := inv.Apply(tt.m.Apply(3.5, -8))
			if math.Abs(x-3.5) > matrixEps || math.Abs(y+8) > matrixEps {
				t.Errorf("inverse round trip = (%v, %v), want (3.5, -8)", x, y)
			}
		})
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Errorf("Invert() of singular matrix reported success")
	}
}

// TestMatrixInvertAgainstGonum cross-checks the closed-form affine inverse
// against gonum's general matrix inverse.
func TestMatrixInvertAgainstGonum(t *testing.T) {
	m := Translate(42, -17).Multiply(Rotate(0.35)).Multiply(Scale(1.5, 0.75))
	inv, ok := m.Invert()
	if !ok {
		t.Fatalf("Invert() reported singular matrix")
	}

	dense := mat.NewDense(3, 3, []float64{
		m.A, m.B, m.C,
		m.D, m.E, m.F,
		0, 0, 1,
	})
	var ref mat.Dense
	if err := ref.Inverse(dense); err != nil {
		t.Fatalf("gonum Inverse: %v", err)
	}

	got := [6]float64{inv.A, inv.B, inv.C, inv.D, inv.E, inv.F}
	want := [6]float64{
		ref.At(0, 0), ref.At(0, 1), ref.At(0, 2),
		ref.At(1, 0), ref.At(1, 1), ref.At(1, 2),
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("coefficient %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMatrixCoefficients(t *testing.T) {
	m := Matrix{A: 1, B: 2, C: 3, D: 4, E: 5, F: 6}
	want := [6]float64{1, 4, 2, 5, 3, 6}
	if got := m.Coefficients(); got != want {
		t.Errorf("Coefficients() = %v, want %v", got, want)
	}
}
