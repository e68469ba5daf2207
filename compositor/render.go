package compositor

import (
	"context"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	strata "github.com/strata-editor/strata"
	"github.com/strata-editor/strata/internal/blend"
	"github.com/strata-editor/strata/layer"
)

// checkerboard cell colors.
var (
	checkerLight  = strata.RGB(1, 1, 1)
	checkerDark   = strata.RGB(0.8, 0.8, 0.8)
	pageGray      = strata.RGB(0.35, 0.35, 0.35)
	borderGray    = strata.RGB(0.2, 0.2, 0.2)
	selectionBlue = strata.RGBA{R: 0.25, G: 0.55, B: 1, A: 1}
)

// render runs one full pass:
//
//  1. clear the composite and paint the background
//  2. walk the hierarchy back to front, compositing each visible layer
//     (isolated groups through an offscreen buffer, scalable layers
//     eligible for hi-res direct display deferred)
//  3. blit the composite into the display with the pan/zoom transform
//  4. draw deferred hi-res layers directly at display resolution
//  5. draw the preview layer and the viewport overlays
func (c *Compositor) render(ctx context.Context) error {
	if c.canvas.Width() != c.doc.Width() || c.canvas.Height() != c.doc.Height() {
		c.canvas = strata.NewPixmap(c.doc.Width(), c.doc.Height())
	}

	c.paintBackground()

	var deferred []*layer.Layer
	if err := c.compositeInto(ctx, c.canvas, nil, 1, &deferred); err != nil {
		return err
	}

	c.blitToDisplay()

	for _, l := range deferred {
		c.drawHiResDirect(l)
		c.stats.LayersDeferred++
	}

	if c.preview != nil {
		c.drawPreview()
	}
	c.drawOverlays()
	return nil
}

func (c *Compositor) paintBackground() {
	if !c.checkerboard {
		c.canvas.Clear(c.background)
		return
	}
	size := c.checkerSize
	for y := 0; y < c.canvas.Height(); y++ {
		for x := 0; x < c.canvas.Width(); x++ {
			if (x/size+y/size)%2 == 0 {
				c.canvas.SetPixel(x, y, checkerLight)
			} else {
				c.canvas.SetPixel(x, y, checkerDark)
			}
		}
	}
}

// compositeInto draws the children of parent (nil for the top level) into
// dst, back to front. opacityMul carries the accumulated opacity of
// passthrough ancestors.
func (c *Compositor) compositeInto(ctx context.Context, dst *strata.Pixmap, parent *layer.Layer, opacityMul float64, deferred *[]*layer.Layer) error {
	for _, l := range c.doc.ChildrenOf(parent) {
		if !l.Visible() {
			continue
		}

		if l.Kind() == layer.KindGroup {
			if l.Passthrough() {
				// Passthrough groups blend children directly with
				// what is already on dst; opacity still attenuates.
				if err := c.compositeInto(ctx, dst, l, opacityMul*l.Opacity(), deferred); err != nil {
					return err
				}
				continue
			}
			// Isolated group: children composite against transparency
			// at full opacity; the finished buffer blends as a unit
			// with the group's opacity and mode.
			buf := strata.NewPixmap(dst.Width(), dst.Height())
			if err := c.compositeInto(ctx, buf, l, 1, deferred); err != nil {
				return err
			}
			mode, _ := blend.ParseMode(l.BlendMode())
			drawPixmap(dst, buf, 0, 0, opacityMul*l.Opacity(), mode)
			continue
		}

		if l.Kind() == layer.KindScalable {
			l.SetDisplayScale(c.zoom * c.dpr)
			if err := l.EnsureFresh(ctx); err != nil {
				return fmt.Errorf("compositor: %w", err)
			}
			// Only top-level content can bypass the composite; inside
			// an isolated group the buffer is the unit of blending.
			if dst == c.canvas && c.canDefer(l) {
				*deferred = append(*deferred, l)
				continue
			}
		}

		if err := c.compositeLayer(l, dst, opacityMul*l.Opacity()); err != nil {
			return err
		}
	}
	return nil
}

// compositeLayer draws one non-group layer: behind-phase effect pieces
// first, each with its own opacity and mode, then the content with the
// layer's opacity and mode.
func (c *Compositor) compositeLayer(l *layer.Layer, dst *strata.Pixmap, opacity float64) error {
	rendered, err := c.fx.RenderLayer(l)
	if err != nil {
		// A failed effect render degrades to the raw surface rather
		// than dropping the layer from the composite.
		strata.Logger().Warn("effect render failed, drawing raw surface",
			"layer", l.Name(), "error", err)
		c.stats.EffectFallbacks++
		surface := l.Surface()
		if surface == nil {
			return nil
		}
		mode, _ := blend.ParseMode(l.BlendMode())
		c.drawLayerPixels(dst, l, surface, 0, 0, opacity, mode)
		c.stats.LayersComposited++
		return nil
	}

	for _, piece := range rendered.Behind {
		mode, _ := blend.ParseMode(piece.Mode)
		c.drawLayerPixels(dst, l, piece.Surface, piece.OffsetX, piece.OffsetY, opacity*piece.Opacity, mode)
	}

	mode, _ := blend.ParseMode(l.BlendMode())
	c.drawLayerPixels(dst, l, rendered.Content, 0, 0, opacity, mode)
	c.stats.LayersComposited++
	return nil
}

// drawLayerPixels draws src, positioned at (localX, localY) in the
// layer's local space, through the layer's transform into dst.
func (c *Compositor) drawLayerPixels(dst *strata.Pixmap, l *layer.Layer, src *strata.Pixmap, localX, localY int, opacity float64, mode blend.Mode) {
	if src == nil || opacity <= 0 {
		return
	}
	if !l.HasTransform() {
		ox, oy := l.Offset()
		drawPixmap(dst, src, ox+localX, oy+localY, opacity, mode)
		return
	}
	m := l.TransformMatrix().Multiply(strata.Translate(float64(localX), float64(localY)))
	drawTransformed(dst, src, m, opacity, mode)
}

// canDefer reports whether a scalable layer can skip the document
// composite and draw directly to the display from its hi-res surface.
// That is only safe when the display is actually upscaled, a sharper
// rasterization exists, and nothing visible draws on top of the layer.
func (c *Compositor) canDefer(l *layer.Layer) bool {
	if c.zoom <= 1 || l.HiResSurface() == nil || l.RenderScale() <= 1 {
		return false
	}
	if l.HasTransform() || l.HasEffects() || l.HasFilters() || l.Opacity() < 1 || l.FillOpacity() < 1 {
		return false
	}
	if mode, _ := blend.ParseMode(l.BlendMode()); mode != blend.SourceOver {
		return false
	}
	if l.Parent() != nil {
		return false
	}
	if c.preview != nil {
		return false
	}
	layers := c.doc.Layers()
	for i := c.doc.Index(l.ID()) + 1; i < len(layers); i++ {
		if layers[i].Kind() != layer.KindGroup && c.doc.IsEffectivelyVisible(layers[i]) {
			return false
		}
	}
	return true
}

// blitToDisplay paints the page background and scales the document
// composite into the display with the pan/zoom transform. Upscaling uses
// nearest neighbor so document pixels stay crisp; downscaling uses
// Catmull-Rom to avoid aliasing.
func (c *Compositor) blitToDisplay() {
	c.display.Clear(pageGray)

	dr := c.documentDisplayRect()
	var scaler xdraw.Scaler = xdraw.NearestNeighbor
	if c.zoom < 1 {
		scaler = xdraw.CatmullRom
	}
	scaler.Scale(c.display.NRGBA(), dr, c.canvas.NRGBA(), c.canvas.Bounds(), xdraw.Over, nil)
}

// documentDisplayRect is the document rectangle in display pixels.
func (c *Compositor) documentDisplayRect() image.Rectangle {
	x0 := int(c.panX*c.dpr + 0.5)
	y0 := int(c.panY*c.dpr + 0.5)
	x1 := int((c.panX+float64(c.doc.Width())*c.zoom)*c.dpr + 0.5)
	y1 := int((c.panY+float64(c.doc.Height())*c.zoom)*c.dpr + 0.5)
	return image.Rect(x0, y0, x1, y1)
}

// drawHiResDirect scales a deferred layer's hi-res surface straight into
// the display, bypassing the document-resolution composite.
func (c *Compositor) drawHiResDirect(l *layer.Layer) {
	hi := l.HiResSurface()
	if hi == nil {
		return
	}
	ox, oy := l.Offset()
	x0 := int((c.panX+float64(ox)*c.zoom)*c.dpr + 0.5)
	y0 := int((c.panY+float64(oy)*c.zoom)*c.dpr + 0.5)
	x1 := int((c.panX+float64(ox+l.Width())*c.zoom)*c.dpr + 0.5)
	y1 := int((c.panY+float64(oy+l.Height())*c.zoom)*c.dpr + 0.5)
	dr := image.Rect(x0, y0, x1, y1)

	// The hi-res surface usually lands near 1:1; Catmull-Rom keeps it
	// smooth either way.
	xdraw.CatmullRom.Scale(c.display.NRGBA(), dr, hi.NRGBA(), hi.Bounds(), xdraw.Over, nil)
}

// drawPreview draws the preview layer into the display on top of
// everything, honoring its transform, opacity, and mode.
func (c *Compositor) drawPreview() {
	l := c.preview
	surface := l.Surface()
	if surface == nil || !l.Visible() {
		return
	}
	mode, _ := blend.ParseMode(l.BlendMode())

	// Compose document-to-display on top of the layer transform.
	var m strata.Matrix
	if l.HasTransform() {
		m = l.TransformMatrix()
	} else {
		ox, oy := l.Offset()
		m = strata.Translate(float64(ox), float64(oy))
	}
	view := strata.Translate(c.panX*c.dpr, c.panY*c.dpr).
		Multiply(strata.Scale(c.zoom*c.dpr, c.zoom*c.dpr))
	drawTransformed(c.display, surface, view.Multiply(m), l.Opacity(), mode)
}

// drawOverlays draws the document border and the active layer's document
// bounds into the display.
func (c *Compositor) drawOverlays() {
	dr := c.documentDisplayRect()
	c.display.StrokeRect(strata.RectOf(dr.Min.X-1, dr.Min.Y-1, dr.Dx()+2, dr.Dy()+2), borderGray)

	active := c.doc.ActiveLayer()
	if active == nil || active.Kind() == layer.KindGroup {
		return
	}
	b := active.DocumentBounds()
	x0 := int((c.panX+float64(b.X)*c.zoom)*c.dpr + 0.5)
	y0 := int((c.panY+float64(b.Y)*c.zoom)*c.dpr + 0.5)
	x1 := int((c.panX+float64(b.MaxX())*c.zoom)*c.dpr + 0.5)
	y1 := int((c.panY+float64(b.MaxY())*c.zoom)*c.dpr + 0.5)
	c.display.StrokeRect(strata.RectOf(x0, y0, x1-x0, y1-y0), selectionBlue)
}
