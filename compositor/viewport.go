package compositor

import "github.com/strata-editor/strata/layer"

// Viewport state: the display shows the document canvas scaled by zoom
// and shifted by the pan offset, all in logical viewport pixels. The
// device pixel ratio multiplies on top when pixels hit the display.
//
// Every mutation bumps the overlay version so the next RenderIfNeeded
// pass redraws even though no document pixel changed.

// Zoom returns the current zoom factor.
func (c *Compositor) Zoom() float64 { return c.zoom }

// Pan returns the current pan offset in viewport pixels.
func (c *Compositor) Pan() (float64, float64) { return c.panX, c.panY }

// ViewportSize returns the logical viewport size.
func (c *Compositor) ViewportSize() (int, int) { return c.viewW, c.viewH }

// DevicePixelRatio returns the display scaling factor.
func (c *Compositor) DevicePixelRatio() float64 { return c.dpr }

// SetZoom sets the zoom factor, clamped to the configured range, keeping
// the viewport center fixed.
func (c *Compositor) SetZoom(z float64) {
	c.ZoomAt(float64(c.viewW)/2, float64(c.viewH)/2, z)
}

// ZoomAt sets the zoom factor, clamped to the configured range, keeping
// the canvas point under the given viewport position stationary on
// screen.
func (c *Compositor) ZoomAt(screenX, screenY, z float64) {
	z = c.clampZoom(z)
	if z == c.zoom {
		return
	}
	// The canvas point under the cursor must stay put:
	// screen = canvas*zoom + pan, so pan' = screen - canvas*zoom'.
	cx := (screenX - c.panX) / c.zoom
	cy := (screenY - c.panY) / c.zoom
	c.zoom = z
	c.panX = screenX - cx*z
	c.panY = screenY - cy*z
	c.overlayVersion++
}

// PanBy shifts the viewport by (dx, dy) viewport pixels.
func (c *Compositor) PanBy(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	c.panX += dx
	c.panY += dy
	c.overlayVersion++
}

// SetPan sets the pan offset directly.
func (c *Compositor) SetPan(x, y float64) {
	c.panX = x
	c.panY = y
	c.overlayVersion++
}

// CenterCanvas positions the document centered in the viewport at the
// current zoom.
func (c *Compositor) CenterCanvas() {
	c.panX = (float64(c.viewW) - float64(c.doc.Width())*c.zoom) / 2
	c.panY = (float64(c.viewH) - float64(c.doc.Height())*c.zoom) / 2
	c.overlayVersion++
}

// FitToViewport zooms so the whole document is visible with the
// configured margin, capped at 100% so small documents are not blown up,
// then centers it.
func (c *Compositor) FitToViewport() {
	availW := float64(c.viewW - 2*c.fitMargin)
	availH := float64(c.viewH - 2*c.fitMargin)
	if availW <= 0 || availH <= 0 || c.doc.Width() == 0 || c.doc.Height() == 0 {
		return
	}
	fit := availW / float64(c.doc.Width())
	if v := availH / float64(c.doc.Height()); v < fit {
		fit = v
	}
	if fit > 1 {
		fit = 1
	}
	c.zoom = c.clampZoom(fit)
	c.CenterCanvas()
}

// ScreenToCanvas maps a viewport position to document coordinates.
func (c *Compositor) ScreenToCanvas(x, y float64) (float64, float64) {
	return (x - c.panX) / c.zoom, (y - c.panY) / c.zoom
}

// CanvasToScreen maps a document position to viewport coordinates.
func (c *Compositor) CanvasToScreen(x, y float64) (float64, float64) {
	return x*c.zoom + c.panX, y*c.zoom + c.panY
}

// Resize changes the document canvas size. The composite buffer is
// reallocated on the next render pass; the structural version bump makes
// that pass happen.
func (c *Compositor) Resize(docW, docH int) {
	c.doc.Resize(docW, docH)
}

// ResizeDisplay updates the logical viewport size.
func (c *Compositor) ResizeDisplay(w, h int) {
	if w <= 0 || h <= 0 || (w == c.viewW && h == c.viewH) {
		return
	}
	c.viewW = w
	c.viewH = h
	c.allocDisplay()
	c.overlayVersion++
}

// SetDevicePixelRatio updates the display scaling factor.
func (c *Compositor) SetDevicePixelRatio(dpr float64) {
	if dpr <= 0 || dpr == c.dpr {
		return
	}
	c.dpr = dpr
	c.allocDisplay()
	c.overlayVersion++
}

// SetPreviewLayer installs a layer drawn above the whole composite,
// typically an in-progress stroke or a drag ghost. The layer is not part
// of the document; its counters are not polled, so callers re-set it (or
// call RequestRender) after mutating it. Passing nil clears the preview.
func (c *Compositor) SetPreviewLayer(l *layer.Layer) {
	c.preview = l
	c.overlayVersion++
}

// ClearPreviewLayer removes the preview layer.
func (c *Compositor) ClearPreviewLayer() { c.SetPreviewLayer(nil) }

func (c *Compositor) clampZoom(z float64) float64 {
	if z < c.minZoom {
		return c.minZoom
	}
	if z > c.maxZoom {
		return c.maxZoom
	}
	return z
}
