package strata

import "testing"

func TestRectUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"disjoint", RectOf(0, 0, 10, 10), RectOf(20, 20, 5, 5), RectOf(0, 0, 25, 25)},
		{"contained", RectOf(0, 0, 100, 100), RectOf(10, 10, 5, 5), RectOf(0, 0, 100, 100)},
		{"empty left", Rect{X: 7, Y: 9}, RectOf(1, 2, 3, 4), RectOf(1, 2, 3, 4)},
		{"empty right", RectOf(1, 2, 3, 4), Rect{}, RectOf(1, 2, 3, 4)},
		{"negative origin", RectOf(-10, -10, 5, 5), RectOf(0, 0, 5, 5), RectOf(-10, -10, 15, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Union(tt.b); got != tt.want {
				t.Errorf("Union() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Rect
		wantEmpty bool
		want      Rect
	}{
		{"overlap", RectOf(0, 0, 10, 10), RectOf(5, 5, 10, 10), false, RectOf(5, 5, 5, 5)},
		{"disjoint", RectOf(0, 0, 5, 5), RectOf(10, 10, 5, 5), true, Rect{}},
		{"touching edges", RectOf(0, 0, 5, 5), RectOf(5, 0, 5, 5), true, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if got.IsEmpty() != tt.wantEmpty {
				t.Fatalf("Intersect().IsEmpty() = %v, want %v", got.IsEmpty(), tt.wantEmpty)
			}
			if !tt.wantEmpty && got != tt.want {
				t.Errorf("Intersect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectExpand(t *testing.T) {
	r := RectOf(10, 20, 30, 40).Expand(1, 2, 3, 4)
	want := RectOf(9, 18, 34, 46)
	if r != want {
		t.Errorf("Expand() = %+v, want %+v", r, want)
	}
}

func TestRectZeroSizeIsEmptyButAnchored(t *testing.T) {
	r := Rect{X: 10, Y: 20}
	if !r.IsEmpty() {
		t.Errorf("zero-size rect should be empty")
	}
	if r.X != 10 || r.Y != 20 {
		t.Errorf("empty rect lost its anchor: %+v", r)
	}
}
