// Package compositor flattens a document's layer stack into displayable
// pixels. It keeps a document-space composite and a display-space pixmap,
// re-rendering only when the document's composite version or the viewport
// state has moved since the last pass.
package compositor

import (
	"context"

	strata "github.com/strata-editor/strata"
	"github.com/strata-editor/strata/config"
	"github.com/strata-editor/strata/document"
	"github.com/strata-editor/strata/fx"
	"github.com/strata-editor/strata/layer"
)

// EffectRenderer renders a layer's filter and effect stacks. *fx.Renderer
// is the production implementation.
type EffectRenderer interface {
	RenderLayer(l *layer.Layer) (*fx.RenderedLayer, error)
}

// RenderStats counts work done across render passes.
type RenderStats struct {
	// Renders is the number of completed render passes.
	Renders uint64

	// LayersComposited counts layers drawn into the document composite,
	// summed over all passes.
	LayersComposited uint64

	// LayersDeferred counts scalable layers skipped in the composite
	// and drawn directly to the display at hi-res instead.
	LayersDeferred uint64

	// EffectFallbacks counts layers whose effect render failed and were
	// drawn raw instead.
	EffectFallbacks uint64
}

// Compositor renders one document into a display pixmap.
type Compositor struct {
	doc *document.Document
	fx  EffectRenderer

	// Document-space composite at canvas resolution.
	canvas *strata.Pixmap

	// Display-space output at viewport resolution times the device
	// pixel ratio.
	display *strata.Pixmap

	viewW, viewH int
	dpr          float64
	zoom         float64
	panX, panY   float64

	minZoom, maxZoom float64
	fitMargin        int

	checkerboard bool
	checkerSize  int
	background   strata.RGBA

	preview        *layer.Layer
	overlayVersion uint64
	postRender     func()

	// Last rendered state for the poll check.
	rendered      bool
	lastComposite uint64
	lastOverlay   uint64
	requested     bool

	stats RenderStats
}

// Option configures a compositor.
type Option func(*Compositor)

// WithEffectRenderer overrides the effect renderer.
func WithEffectRenderer(r EffectRenderer) Option {
	return func(c *Compositor) { c.fx = r }
}

// WithBackground sets a solid canvas background and disables the
// checkerboard.
func WithBackground(bg strata.RGBA) Option {
	return func(c *Compositor) {
		c.background = bg
		c.checkerboard = false
	}
}

// WithCheckerboard enables the transparency checkerboard with the given
// cell size.
func WithCheckerboard(size int) Option {
	return func(c *Compositor) {
		c.checkerboard = true
		if size > 0 {
			c.checkerSize = size
		}
	}
}

// WithZoomLimits overrides the zoom clamp range.
func WithZoomLimits(min, max float64) Option {
	return func(c *Compositor) {
		if min > 0 && max >= min {
			c.minZoom = min
			c.maxZoom = max
		}
	}
}

// FromConfig applies the relevant settings of a loaded configuration.
func FromConfig(cfg config.Config) Option {
	return func(c *Compositor) {
		c.minZoom = cfg.MinZoom
		c.maxZoom = cfg.MaxZoom
		c.fitMargin = cfg.FitMargin
		c.checkerboard = cfg.Checkerboard
		if cfg.CheckerSize > 0 {
			c.checkerSize = cfg.CheckerSize
		}
		if bg, err := cfg.ParseBackgroundColor(); err == nil {
			c.background = bg
		}
	}
}

// New creates a compositor for doc with the given viewport size.
func New(doc *document.Document, viewW, viewH int, opts ...Option) *Compositor {
	def := config.Default()
	c := &Compositor{
		doc:          doc,
		fx:           fx.NewRenderer(),
		viewW:        viewW,
		viewH:        viewH,
		dpr:          1,
		zoom:         1,
		minZoom:      def.MinZoom,
		maxZoom:      def.MaxZoom,
		fitMargin:    def.FitMargin,
		checkerboard: def.Checkerboard,
		checkerSize:  def.CheckerSize,
		background:   strata.White,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.canvas = strata.NewPixmap(doc.Width(), doc.Height())
	c.allocDisplay()
	return c
}

func (c *Compositor) allocDisplay() {
	w := int(float64(c.viewW)*c.dpr + 0.5)
	h := int(float64(c.viewH)*c.dpr + 0.5)
	c.display = strata.NewPixmap(w, h)
}

// Display returns the last rendered display pixmap. The compositor reuses
// the backing memory across passes; callers that hold frames copy it.
func (c *Compositor) Display() *strata.Pixmap { return c.display }

// Canvas returns the document-space composite of the last pass.
func (c *Compositor) Canvas() *strata.Pixmap { return c.canvas }

// Stats returns the accumulated render counters.
func (c *Compositor) Stats() RenderStats { return c.stats }

// CompositeVersion is the version of everything that affects document
// pixels: the hierarchy version plus the sum of all per-layer change
// counters. Any layer mutation or structural change moves it.
func (c *Compositor) CompositeVersion() uint64 {
	return c.doc.StructuralVersion() + c.doc.SumChangeCounters()
}

// RequestRender forces the next RenderIfNeeded call to render even when
// no version has moved.
func (c *Compositor) RequestRender() { c.requested = true }

// SetPostRender installs a callback invoked after every completed render
// pass, typically to push the display pixmap to the screen. Passing nil
// removes it.
func (c *Compositor) SetPostRender(fn func()) { c.postRender = fn }

// RenderIfNeeded renders when the composite version, the overlay version,
// or an explicit request demands it. Returns whether a render happened.
// Calling it repeatedly with an unchanged document is cheap and
// idempotent; this is the body of the editor's poll loop.
func (c *Compositor) RenderIfNeeded(ctx context.Context) (bool, error) {
	cv := c.CompositeVersion()
	if c.rendered && !c.requested && cv == c.lastComposite && c.overlayVersion == c.lastOverlay {
		return false, nil
	}
	if err := c.render(ctx); err != nil {
		return false, err
	}
	// Re-read: rasterizing scalable content during the pass bumps
	// change counters, and those bumps are part of this render.
	c.lastComposite = c.CompositeVersion()
	c.lastOverlay = c.overlayVersion
	c.rendered = true
	c.requested = false
	c.stats.Renders++
	if c.postRender != nil {
		c.postRender()
	}
	return true, nil
}
