// Command stratapad is a minimal interactive viewer: it opens a demo
// document in a window with drag-to-pan, wheel zoom, and a poll loop that
// re-renders only when the compositor reports dirty state.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	strata "github.com/strata-editor/strata"
	"github.com/strata-editor/strata/compositor"
	"github.com/strata-editor/strata/config"
	"github.com/strata-editor/strata/document"
	"github.com/strata-editor/strata/layer"
)

const zoomStep = 1.25

func main() {
	var (
		width    = flag.Int("width", 800, "document width")
		height   = flag.Int("height", 600, "document height")
		cfgPath  = flag.String("config", "strata.toml", "config file")
		snapshot = flag.String("open", "", "document snapshot to open (JSON)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	doc, err := openDocument(*snapshot, *width, *height, cfg)
	if err != nil {
		log.Fatalf("open: %v", err)
	}

	a := app.New()
	w := a.NewWindow("stratapad")

	comp := compositor.New(doc, *width, *height, compositor.FromConfig(cfg))
	vp := newViewport(comp)
	comp.SetPostRender(vp.Refresh)

	zoomIn := widget.NewButton("+", func() { comp.SetZoom(comp.Zoom() * zoomStep) })
	zoomOut := widget.NewButton("-", func() { comp.SetZoom(comp.Zoom() / zoomStep) })
	fit := widget.NewButton("Fit", func() { comp.FitToViewport() })
	bar := container.NewHBox(zoomIn, zoomOut, fit)

	w.SetContent(container.NewBorder(bar, nil, nil, nil, vp))
	w.Resize(fyne.NewSize(float32(*width), float32(*height)+40))

	// Poll loop: cheap when clean. The post-render hook refreshes the
	// raster whenever a pass actually happened.
	go func() {
		ctx := context.Background()
		ticker := time.NewTicker(33 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := comp.RenderIfNeeded(ctx); err != nil {
				strata.Logger().Error("render failed", "error", err)
			}
		}
	}()

	comp.FitToViewport()
	w.ShowAndRun()
}

func openDocument(path string, w, h int, cfg config.Config) (*document.Document, error) {
	if path == "" {
		return demoDocument(w, h, cfg), nil
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return document.DecodeSnapshot(data,
		document.WithImageCacheCapacity(cfg.ImageCacheEntries))
}

func demoDocument(w, h int, cfg config.Config) *document.Document {
	doc := document.New(w, h, document.WithImageCacheCapacity(cfg.ImageCacheEntries))
	opts := []layer.Option{
		layer.WithMaxDimension(cfg.MaxLayerDim),
		layer.WithRegenRatios(cfg.HiResUpscaleRatio, cfg.HiResDownscaleRatio),
	}

	paper := layer.NewRaster("paper", w, h, opts...)
	paper.Surface().Clear(strata.RGB(0.98, 0.97, 0.94))
	doc.Add(paper, -1)

	box := layer.NewRaster("box", 240, 160, opts...)
	box.Surface().Clear(strata.RGB(0.86, 0.3, 0.25))
	box.SetOffset(120, 120)
	box.SetRotation(8)
	box.AddEffect(layer.NewDropShadow(5, 7, 3), -1)
	doc.Add(box, -1)
	doc.SetActiveLayer(box.ID())

	return doc
}
