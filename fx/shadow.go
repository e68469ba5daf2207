package fx

import (
	"math"

	"github.com/anthonynsimon/bild/blur"

	strata "github.com/strata-editor/strata"
	"github.com/strata-editor/strata/layer"
)

// renderBehind renders one behind-phase effect from the content's alpha
// silhouette. Drop shadow and outer glow share the pipeline: colorize the
// silhouette, Gaussian-blur it, and position it relative to the layer's
// local origin. Only the shadow shifts by its offset parameters.
func renderBehind(content *strata.Pixmap, e *layer.Effect) EffectLayer {
	blurRadius := e.Params["blur"]
	margin := int(math.Ceil(3 * blurRadius))

	var dx, dy int
	if e.Type == layer.EffectDropShadow {
		dx = int(math.Round(e.Params["dx"]))
		dy = int(math.Round(e.Params["dy"]))
	}

	tint := strata.RGBA{
		R: clamp01(e.Params["r"]),
		G: clamp01(e.Params["g"]),
		B: clamp01(e.Params["b"]),
		A: 1,
	}

	silhouette := colorizeSilhouette(content, tint, margin)
	if blurRadius > 0 {
		silhouette = strata.FromImage(blur.Gaussian(silhouette.NRGBA(), blurRadius))
	}

	return EffectLayer{
		Surface: silhouette,
		OffsetX: dx - margin,
		OffsetY: dy - margin,
		Opacity: e.Opacity,
		Mode:    e.Mode,
	}
}

// colorizeSilhouette copies the source alpha channel into a tinted image
// with the given transparent margin on every side, leaving room for the
// blur to spread.
func colorizeSilhouette(src *strata.Pixmap, tint strata.RGBA, margin int) *strata.Pixmap {
	out := strata.NewPixmap(src.Width()+2*margin, src.Height()+2*margin)
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			a := src.GetPixel(x, y).A
			if a == 0 {
				continue
			}
			out.SetPixel(x+margin, y+margin, strata.RGBA{R: tint.R, G: tint.G, B: tint.B, A: a})
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
