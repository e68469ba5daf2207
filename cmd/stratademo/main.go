// Command stratademo composites a demo document headlessly and writes the
// result to a PNG: a few raster layers with effects and filters, a
// blended group, and a procedurally rasterized scalable layer.
package main

import (
	"context"
	"flag"
	"log"
	"math"

	strata "github.com/strata-editor/strata"
	"github.com/strata-editor/strata/compositor"
	"github.com/strata-editor/strata/config"
	"github.com/strata-editor/strata/document"
	"github.com/strata-editor/strata/layer"
)

// layerOptions translates the engine configuration into layer
// construction options.
func layerOptions(cfg config.Config) []layer.Option {
	return []layer.Option{
		layer.WithMaxDimension(cfg.MaxLayerDim),
		layer.WithRegenRatios(cfg.HiResUpscaleRatio, cfg.HiResDownscaleRatio),
	}
}

func main() {
	var (
		width  = flag.Int("width", 640, "document width")
		height = flag.Int("height", 480, "document height")
		zoom   = flag.Float64("zoom", 1, "viewport zoom factor")
		output = flag.String("output", "strata.png", "output file")
	)
	flag.Parse()

	doc := buildDemoDocument(*width, *height, config.Default())

	comp := compositor.New(doc, *width, *height,
		compositor.WithBackground(strata.RGB(0.96, 0.96, 0.94)))
	comp.SetZoom(*zoom)
	comp.CenterCanvas()

	if _, err := comp.RenderIfNeeded(context.Background()); err != nil {
		log.Fatalf("render: %v", err)
	}
	if err := comp.Display().SavePNG(*output); err != nil {
		log.Fatalf("save: %v", err)
	}
	log.Printf("demo saved to %s (%dx%d, %d layers)\n", *output, *width, *height, doc.Len())
}

func buildDemoDocument(w, h int, cfg config.Config) *document.Document {
	doc := document.New(w, h, document.WithImageCacheCapacity(cfg.ImageCacheEntries))
	opts := layerOptions(cfg)

	// A soft vertical gradient as the bottom layer.
	bg := layer.NewRaster("gradient", w, h, opts...)
	for y := 0; y < h; y++ {
		t := float64(y) / float64(h)
		c := strata.RGB(0.15+t*0.3, 0.25+t*0.3, 0.5+t*0.2)
		bg.Surface().FillRect(strata.RectOf(0, y, w, 1), c)
	}
	doc.Add(bg, -1)

	// A shadowed card with a blurred copy behind it, grouped.
	card := layer.NewRaster("card", 220, 140, opts...)
	card.Surface().Clear(strata.RGB(1, 1, 0.95))
	card.SetOffset(60, 80)
	card.AddEffect(layer.NewDropShadow(6, 8, 4), -1)
	doc.Add(card, -1)

	glow := layer.NewRaster("badge", 80, 80, opts...)
	drawDisc(glow.Surface(), strata.RGB(1, 0.45, 0.1))
	glow.SetOffset(220, 60)
	glow.AddEffect(layer.NewOuterGlow(5), -1)
	doc.Add(glow, -1)

	if g, err := doc.Group("panel", []string{card.ID(), glow.ID()}); err == nil {
		g.SetOpacity(0.95)
	}

	// A rotated, filtered swatch.
	swatch := layer.NewRaster("swatch", 120, 120, opts...)
	drawDisc(swatch.Surface(), strata.RGB(0.2, 0.8, 0.4))
	swatch.SetOffset(w-240, h-220)
	swatch.SetRotation(30)
	swatch.SetBlendMode("multiply")
	swatch.AddFilter(layer.NewBlurFilter(2), -1)
	doc.Add(swatch, -1)

	// Scalable content rasterized on demand: a procedural sine ribbon.
	ribbon := layer.NewScalable("ribbon", w, 120, "ribbon", ribbonRasterizer{}, opts...)
	ribbon.SetOffset(0, h-140)
	doc.Add(ribbon, -1)

	return doc
}

func drawDisc(pm *strata.Pixmap, c strata.RGBA) {
	cx := float64(pm.Width()) / 2
	cy := float64(pm.Height()) / 2
	r := math.Min(cx, cy) - 1
	for y := 0; y < pm.Height(); y++ {
		for x := 0; x < pm.Width(); x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if d > r {
				continue
			}
			a := math.Min(1, r-d)
			pm.SetPixel(x, y, strata.RGBA{R: c.R, G: c.G, B: c.B, A: a})
		}
	}
}

// ribbonRasterizer draws a translucent sine ribbon at whatever resolution
// the compositor asks for, standing in for a real vector backend.
type ribbonRasterizer struct{}

func (ribbonRasterizer) Rasterize(_ context.Context, _ string, w, h int) (*strata.Pixmap, error) {
	pm := strata.NewPixmap(w, h)
	mid := float64(h) / 2
	amp := float64(h) / 3
	for x := 0; x < w; x++ {
		t := float64(x) / float64(w)
		yc := mid + amp*math.Sin(t*4*math.Pi)
		for y := 0; y < h; y++ {
			d := math.Abs(float64(y) - yc)
			band := float64(h) / 8
			if d > band {
				continue
			}
			a := (1 - d/band) * 0.85
			pm.SetPixel(x, y, strata.RGBA{R: 0.95, G: 0.85, B: 0.2, A: a})
		}
	}
	return pm, nil
}
