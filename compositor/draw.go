package compositor

import (
	"math"

	strata "github.com/strata-editor/strata"
	"github.com/strata-editor/strata/internal/blend"
)

// drawPixmap blends src into dst at (ox, oy) with the given opacity and
// mode. Pixels are premultiplied for the blend and stored back straight.
func drawPixmap(dst, src *strata.Pixmap, ox, oy int, opacity float64, mode blend.Mode) {
	if opacity <= 0 {
		return
	}
	blendFn := blend.FuncFor(mode)

	x0 := maxInt(0, -ox)
	y0 := maxInt(0, -oy)
	x1 := minInt(src.Width(), dst.Width()-ox)
	y1 := minInt(src.Height(), dst.Height()-oy)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s := src.GetPixel(x, y)
			sa := s.A * opacity
			if sa == 0 && mode == blend.SourceOver {
				continue
			}
			blendPixel(dst, x+ox, y+oy, s, sa, blendFn)
		}
	}
}

// drawTransformed blends src into dst through an arbitrary affine matrix,
// inverse-mapping each destination pixel and sampling src bilinearly.
func drawTransformed(dst, src *strata.Pixmap, m strata.Matrix, opacity float64, mode blend.Mode) {
	if opacity <= 0 {
		return
	}
	inv, ok := m.Invert()
	if !ok {
		return
	}
	blendFn := blend.FuncFor(mode)

	// Destination span: the transformed source corners, clipped to dst.
	w := float64(src.Width())
	h := float64(src.Height())
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, cpt := range [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		x, y := m.Apply(cpt[0], cpt[1])
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	x0 := maxInt(0, int(math.Floor(minX)))
	y0 := maxInt(0, int(math.Floor(minY)))
	x1 := minInt(dst.Width(), int(math.Ceil(maxX))+1)
	y1 := minInt(dst.Height(), int(math.Ceil(maxY))+1)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			// Sample at the pixel center.
			sx, sy := inv.Apply(float64(x)+0.5, float64(y)+0.5)
			s, inside := sampleBilinear(src, sx-0.5, sy-0.5)
			if !inside {
				continue
			}
			sa := s.A * opacity
			if sa == 0 && mode == blend.SourceOver {
				continue
			}
			blendPixel(dst, x, y, s, sa, blendFn)
		}
	}
}

// blendPixel blends a single straight-alpha source sample (with its alpha
// already scaled by the draw opacity) onto dst at (x, y).
func blendPixel(dst *strata.Pixmap, x, y int, s strata.RGBA, sa float64, blendFn blend.Func) {
	d := dst.GetPixel(x, y)

	saB := byte(sa*255 + 0.5)
	daB := byte(d.A*255 + 0.5)
	sr := premul(s.R, saB)
	sg := premul(s.G, saB)
	sb := premul(s.B, saB)
	dr := premul(d.R, daB)
	dg := premul(d.G, daB)
	db := premul(d.B, daB)

	rr, rg, rb, ra := blendFn(sr, sg, sb, saB, dr, dg, db, daB)
	if ra == 0 {
		dst.SetPixel(x, y, strata.Transparent)
		return
	}
	dst.SetPixel(x, y, strata.RGBA{
		R: float64(rr) / float64(ra),
		G: float64(rg) / float64(ra),
		B: float64(rb) / float64(ra),
		A: float64(ra) / 255,
	})
}

// sampleBilinear samples src at a fractional position with premultiplied
// interpolation, returning a straight-alpha color. Positions more than a
// pixel outside the source report inside=false.
func sampleBilinear(src *strata.Pixmap, x, y float64) (strata.RGBA, bool) {
	if x < -1 || y < -1 || x > float64(src.Width()) || y > float64(src.Height()) {
		return strata.Transparent, false
	}
	fx := math.Floor(x)
	fy := math.Floor(y)
	tx := x - fx
	ty := y - fy
	ix := int(fx)
	iy := int(fy)

	var r, g, b, a float64
	for dy := 0; dy <= 1; dy++ {
		for dx := 0; dx <= 1; dx++ {
			wgt := weight(tx, dx) * weight(ty, dy)
			if wgt == 0 {
				continue
			}
			p := src.GetPixel(ix+dx, iy+dy) // out of range reads transparent
			r += p.R * p.A * wgt
			g += p.G * p.A * wgt
			b += p.B * p.A * wgt
			a += p.A * wgt
		}
	}
	if a <= 0 {
		return strata.Transparent, true
	}
	return strata.RGBA{R: r / a, G: g / a, B: b / a, A: a}, true
}

func weight(t float64, side int) float64 {
	if side == 0 {
		return 1 - t
	}
	return t
}

func premul(c float64, a byte) byte {
	return byte(c*float64(a) + 0.5)
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
