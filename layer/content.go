package layer

import (
	"context"
	"fmt"
	"math"

	strata "github.com/strata-editor/strata"
)

// Rasterizer produces pixels for scalable layer content. The engine treats
// the source string as opaque; the collaborator that owns the content
// format (vector scene, markup, text) interprets it. width and height are
// the requested output resolution in pixels.
type Rasterizer interface {
	Rasterize(ctx context.Context, source string, width, height int) (*strata.Pixmap, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(ctx context.Context, source string, width, height int) (*strata.Pixmap, error)

// Rasterize calls f.
func (f RasterizerFunc) Rasterize(ctx context.Context, source string, width, height int) (*strata.Pixmap, error) {
	return f(ctx, source, width, height)
}

// Hi-res regeneration thresholds. The hi-res surface is regenerated only
// when the wanted scale drifts far enough from the rendered scale, so
// small zoom adjustments reuse the existing rasterization.
const (
	defaultUpscaleRatio   = 1.2
	defaultDownscaleRatio = 0.5
)

// scalableState carries the rasterization caches of a scalable layer: the
// document-resolution base surface plus an optional hi-res surface used
// for crisp display above 100% zoom.
type scalableState struct {
	rasterizer Rasterizer

	base       *strata.Pixmap
	baseStale  bool
	hiRes      *strata.Pixmap
	hiResStale bool

	renderScale float64 // scale the current hiRes was rasterized at
	wantScale   float64 // scale the display currently needs

	upRatio   float64
	downRatio float64
}

func newScalableState() *scalableState {
	return &scalableState{
		baseStale: true,
		wantScale: 1,
		upRatio:   defaultUpscaleRatio,
		downRatio: defaultDownscaleRatio,
	}
}

// SetRasterizer attaches the content rasterizer. Needed after decoding a
// snapshot, since rasterizers do not serialize.
func (l *Layer) SetRasterizer(r Rasterizer) {
	if l.scalable != nil {
		l.scalable.rasterizer = r
	}
}

// Source returns the active frame's content source for scalable layers,
// empty otherwise.
func (l *Layer) Source() string {
	if l.kind != KindScalable {
		return ""
	}
	if f := l.ActiveFrame(); f != nil {
		if sf, ok := f.Payload.(*ScalableFrame); ok {
			return sf.Source
		}
	}
	return ""
}

// SetSource replaces the active frame's content source and marks both
// rasterizations stale. No-op for non-scalable layers.
func (l *Layer) SetSource(source string) {
	if l.kind != KindScalable {
		return
	}
	f := l.ActiveFrame()
	if f == nil {
		return
	}
	sf, ok := f.Payload.(*ScalableFrame)
	if !ok || sf.Source == source {
		return
	}
	sf.Source = source
	l.scalable.baseStale = true
	l.scalable.hiResStale = true
	l.InvalidateImageCache()
}

// RenderScale returns the scale factor the current hi-res surface was
// rasterized at, or 1 when none exists.
func (l *Layer) RenderScale() float64 {
	if l.kind != KindScalable || l.scalable.hiRes == nil {
		return 1
	}
	return l.scalable.renderScale
}

// HiResSurface returns the hi-res rasterization, or nil when none is
// current. The surface is renderScale times the layer's base resolution.
func (l *Layer) HiResSurface() *strata.Pixmap {
	if l.kind != KindScalable || l.scalable.hiResStale {
		return nil
	}
	return l.scalable.hiRes
}

// SetDisplayScale tells a scalable layer what effective on-screen scale
// the display needs. The hi-res surface is only flagged for regeneration
// when the wanted scale grows more than 20% above or shrinks more than 50%
// below the rendered scale, bounding rasterization churn during zoom.
// No-op for non-scalable layers.
func (l *Layer) SetDisplayScale(scale float64) {
	if l.kind != KindScalable || scale <= 0 {
		return
	}
	s := l.scalable
	if scale < 1 {
		scale = 1
	}
	s.wantScale = scale
	if s.hiRes == nil || s.renderScale == 0 {
		if scale > 1 {
			s.hiResStale = true
		}
		return
	}
	if scale > s.renderScale*s.upRatio || scale < s.renderScale*s.downRatio {
		s.hiResStale = true
	}
}

// EnsureFresh regenerates any stale rasterization of a scalable layer:
// the base surface at document resolution, and the hi-res surface at the
// wanted display scale when that scale exceeds 1. No-op for other kinds.
//
// Panics if no rasterizer is attached; rasterizing without one is a
// programming error, not a runtime condition.
func (l *Layer) EnsureFresh(ctx context.Context) error {
	if l.kind != KindScalable {
		return nil
	}
	s := l.scalable
	if s.rasterizer == nil {
		panic("layer: scalable layer has no rasterizer")
	}
	src := l.Source()

	if s.base == nil || s.baseStale {
		pm, err := s.rasterizer.Rasterize(ctx, src, l.width, l.height)
		if err != nil {
			return fmt.Errorf("rasterize %q at base resolution: %w", l.name, err)
		}
		s.base = pm
		s.baseStale = false
		l.contentVersion++
		l.markChanged()
	}

	if s.wantScale > 1 && (s.hiRes == nil || s.hiResStale) {
		w := int(math.Ceil(float64(l.width) * s.wantScale))
		h := int(math.Ceil(float64(l.height) * s.wantScale))
		pm, err := s.rasterizer.Rasterize(ctx, src, w, h)
		if err != nil {
			return fmt.Errorf("rasterize %q at scale %.2f: %w", l.name, s.wantScale, err)
		}
		s.hiRes = pm
		s.renderScale = s.wantScale
		s.hiResStale = false
		l.markChanged()
	}

	return nil
}
