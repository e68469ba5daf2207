// Package layer models a single document layer: its geometry, appearance,
// non-destructive effect and filter stacks, multi-frame data, and the
// version counters that drive the compositor's dirty tracking.
//
// A Layer is one concrete type holding a closed set of content kinds
// (raster, scalable, group) dispatched by tag rather than by a type
// hierarchy. Groups carry no geometry, effects, or frames of their own;
// they only establish hierarchy and an opacity/blend multiplier for their
// descendants.
package layer

import (
	"time"

	"github.com/lithammer/shortuuid/v3"

	strata "github.com/strata-editor/strata"
)

// Kind identifies the content kind of a layer.
type Kind uint8

// Layer kind constants.
const (
	// KindRaster is a pixel layer: each frame owns a raster surface.
	KindRaster Kind = iota

	// KindScalable is procedurally generated content (vector, markup,
	// text) rasterized on demand at a requested resolution.
	KindScalable

	// KindGroup is a container layer establishing hierarchy only.
	KindGroup
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindRaster:
		return "Raster"
	case KindScalable:
		return "Scalable"
	case KindGroup:
		return "Group"
	default:
		return "Unknown"
	}
}

// kindTags maps kinds to their serialized tags. The set is closed: decoding
// dispatches over kindDecoders in codec.go rather than a runtime registry.
var kindTags = map[Kind]string{
	KindRaster:   "raster",
	KindScalable: "scalable",
	KindGroup:    "group",
}

// DefaultMaxDimension bounds layer width and height when no option
// overrides it; it matches config.Default().MaxLayerDim.
const DefaultMaxDimension = 8192

// Layer is a single layer of the document.
type Layer struct {
	id   string
	name string
	kind Kind

	// Geometry. A layer "has a transform" iff rotation != 0 or
	// scale != (1, 1); that flag gates a fast path everywhere geometry
	// is used.
	width, height    int
	offsetX, offsetY int
	rotation         float64 // degrees
	scaleX, scaleY   float64

	// Appearance.
	opacity     float64
	fillOpacity float64
	blendMode   string
	visible     bool
	locked      bool
	parent      *Layer // enclosing group, nil at top level
	passthrough bool   // groups only

	// Non-destructive stacks. Filters apply upstream of effects.
	effects []*Effect
	filters []*Filter

	// Multi-frame data. Groups are frame-less (one implicit frame).
	frames []*Frame
	active int

	scalable *scalableState // non-nil iff kind == KindScalable

	maxDim int

	// Cache/version state. changeCounter is the single global dirty
	// signal: every cache invalidation cascades into it.
	contentVersion     uint64
	effectCacheVersion uint64
	filterCacheVersion uint64
	changeCounter      uint64
	lastChange         time.Time
	encodedImage       []byte // cached encoded PNG, nil when stale
}

// Option configures a layer during creation.
type Option func(*Layer)

// WithMaxDimension overrides the maximum layer width/height.
func WithMaxDimension(n int) Option {
	return func(l *Layer) {
		if n > 0 {
			l.maxDim = n
		}
	}
}

// WithRegenRatios overrides the hi-res regeneration thresholds for
// scalable layers (see SetDisplayScale).
func WithRegenRatios(up, down float64) Option {
	return func(l *Layer) {
		if l.scalable != nil && up > 1 && down > 0 && down < 1 {
			l.scalable.upRatio = up
			l.scalable.downRatio = down
		}
	}
}

func newLayer(kind Kind, name string, w, h int, opts []Option) *Layer {
	l := &Layer{
		id:          shortuuid.New(),
		name:        name,
		kind:        kind,
		scaleX:      1,
		scaleY:      1,
		opacity:     1,
		fillOpacity: 1,
		blendMode:   "normal",
		visible:     true,
		maxDim:      DefaultMaxDimension,
		lastChange:  time.Now(),
	}
	if kind == KindScalable {
		l.scalable = newScalableState()
	}
	for _, opt := range opts {
		opt(l)
	}
	l.width = clampDim(w, l.maxDim)
	l.height = clampDim(h, l.maxDim)
	return l
}

// NewRaster creates a raster layer with an initial empty frame.
func NewRaster(name string, w, h int, opts ...Option) *Layer {
	l := newLayer(KindRaster, name, w, h, opts)
	l.frames = []*Frame{{Payload: &RasterFrame{Surface: strata.NewPixmap(l.width, l.height)}}}
	return l
}

// NewScalable creates a scalable-content layer with an initial frame
// holding the given source. The rasterizer produces the layer's raster
// surfaces; it must be non-nil before the first EnsureFresh call.
func NewScalable(name string, w, h int, source string, r Rasterizer, opts ...Option) *Layer {
	l := newLayer(KindScalable, name, w, h, opts)
	l.scalable.rasterizer = r
	l.frames = []*Frame{{Payload: &ScalableFrame{Source: source}}}
	return l
}

// NewGroup creates a group layer. Groups have no geometry, effects, or
// frames; position and size are irrelevant.
func NewGroup(name string, opts ...Option) *Layer {
	return newLayer(KindGroup, name, 0, 0, opts)
}

// ID returns the layer's identity.
func (l *Layer) ID() string { return l.id }

// Name returns the display name.
func (l *Layer) Name() string { return l.name }

// SetName updates the display name.
func (l *Layer) SetName(name string) { l.name = name }

// Kind returns the layer's content kind.
func (l *Layer) Kind() Kind { return l.kind }

// Width returns the layer width in pixels.
func (l *Layer) Width() int { return l.width }

// Height returns the layer height in pixels.
func (l *Layer) Height() int { return l.height }

// Offset returns the layer's document-space offset.
func (l *Layer) Offset() (int, int) { return l.offsetX, l.offsetY }

// Rotation returns the rotation in degrees.
func (l *Layer) Rotation() float64 { return l.rotation }

// Scale returns the (scaleX, scaleY) factors.
func (l *Layer) Scale() (float64, float64) { return l.scaleX, l.scaleY }

// HasTransform reports whether rotation or scaling is active.
// Untransformed layers take an integer-translation fast path.
func (l *Layer) HasTransform() bool {
	return l.rotation != 0 || l.scaleX != 1 || l.scaleY != 1
}

// SetSize resizes the layer. Dimensions are clamped to [0, max]; zero size
// is the valid "empty" state.
func (l *Layer) SetSize(w, h int) {
	w = clampDim(w, l.maxDim)
	h = clampDim(h, l.maxDim)
	if w == l.width && h == l.height {
		return
	}
	l.width = w
	l.height = h
	l.markChanged()
}

// SetOffset moves the layer in document space.
func (l *Layer) SetOffset(x, y int) {
	if x == l.offsetX && y == l.offsetY {
		return
	}
	l.offsetX = x
	l.offsetY = y
	l.markChanged()
}

// SetRotation sets the rotation in degrees.
func (l *Layer) SetRotation(deg float64) {
	if deg == l.rotation {
		return
	}
	l.rotation = deg
	l.markChanged()
}

// SetScale sets the scale factors. Zero components are ignored; scale is
// always non-zero.
func (l *Layer) SetScale(sx, sy float64) {
	if sx == 0 || sy == 0 {
		return
	}
	if sx == l.scaleX && sy == l.scaleY {
		return
	}
	l.scaleX = sx
	l.scaleY = sy
	l.markChanged()
}

// Opacity returns the layer opacity in [0, 1].
func (l *Layer) Opacity() float64 { return l.opacity }

// SetOpacity sets the layer opacity, clamped to [0, 1].
func (l *Layer) SetOpacity(o float64) {
	l.opacity = clamp01(o)
	l.markChanged()
}

// FillOpacity returns the kind-dependent fill opacity in [0, 1].
func (l *Layer) FillOpacity() float64 { return l.fillOpacity }

// SetFillOpacity sets the fill opacity, clamped to [0, 1].
func (l *Layer) SetFillOpacity(o float64) {
	l.fillOpacity = clamp01(o)
	l.markChanged()
}

// BlendMode returns the opaque blend-mode key.
func (l *Layer) BlendMode() string { return l.blendMode }

// SetBlendMode sets the opaque blend-mode key. The engine never interprets
// the string; the compositor resolves it to a native operator.
func (l *Layer) SetBlendMode(mode string) {
	if mode == l.blendMode {
		return
	}
	l.blendMode = mode
	l.markChanged()
}

// Visible returns the layer's own visibility flag.
func (l *Layer) Visible() bool { return l.visible }

// SetVisible sets the layer's own visibility flag.
func (l *Layer) SetVisible(v bool) {
	if v == l.visible {
		return
	}
	l.visible = v
	l.markChanged()
}

// Locked returns the locked flag.
func (l *Layer) Locked() bool { return l.locked }

// SetLocked sets the locked flag.
func (l *Layer) SetLocked(v bool) { l.locked = v }

// Parent returns the enclosing group, or nil.
func (l *Layer) Parent() *Layer { return l.parent }

// SetParent sets the enclosing group. Passing a non-group panics: wiring a
// layer under a non-container is a programming error.
func (l *Layer) SetParent(g *Layer) {
	if g != nil && g.kind != KindGroup {
		panic("layer: parent must be a group layer")
	}
	l.parent = g
}

// Passthrough reports whether a group blends its children directly with
// the content below rather than isolating them into a buffer first.
// Always false for non-groups.
func (l *Layer) Passthrough() bool { return l.passthrough }

// SetPassthrough sets the group passthrough flag. No-op for non-groups.
func (l *Layer) SetPassthrough(v bool) {
	if l.kind != KindGroup || v == l.passthrough {
		return
	}
	l.passthrough = v
	l.markChanged()
}

// ChangeCounter returns the monotonic per-layer dirty counter.
func (l *Layer) ChangeCounter() uint64 { return l.changeCounter }

// ContentVersion returns the content cache version.
func (l *Layer) ContentVersion() uint64 { return l.contentVersion }

// EffectCacheVersion returns the effect cache version.
func (l *Layer) EffectCacheVersion() uint64 { return l.effectCacheVersion }

// FilterCacheVersion returns the filter cache version.
func (l *Layer) FilterCacheVersion() uint64 { return l.filterCacheVersion }

// LastChange returns the timestamp of the last MarkChanged-class mutation.
func (l *Layer) LastChange() time.Time { return l.lastChange }

// MarkChanged bumps the change counter and refreshes the last-change
// timestamp: the general-purpose "something visible changed" signal.
func (l *Layer) MarkChanged() { l.markChanged() }

// Touch bumps the change counter without updating the timestamp. Cheap
// signal for high-frequency operations such as per-sample painting.
func (l *Layer) Touch() { l.changeCounter++ }

func (l *Layer) markChanged() {
	l.changeCounter++
	l.lastChange = time.Now()
}

// InvalidateImageCache clears the cached encoded image and bumps the
// content version (cascading into the change counter).
func (l *Layer) InvalidateImageCache() {
	l.encodedImage = nil
	l.contentVersion++
	l.markChanged()
}

// invalidateEffectCache bumps the effect cache version and cascades into
// the change counter.
func (l *Layer) invalidateEffectCache() {
	l.effectCacheVersion++
	l.markChanged()
}

// invalidateFilterCache bumps the filter cache version and cascades into
// the effect cache: effects consume filtered output.
func (l *Layer) invalidateFilterCache() {
	l.filterCacheVersion++
	l.invalidateEffectCache()
}

// EncodedImage returns the cached encoded-image handle, nil when stale.
func (l *Layer) EncodedImage() []byte { return l.encodedImage }

// SetEncodedImage stores an encoded-image handle for the current content
// version. InvalidateImageCache clears it.
func (l *Layer) SetEncodedImage(data []byte) { l.encodedImage = data }

// Bounds returns the layer's base rectangle in document space. Groups have
// no intrinsic bounds and return ok=false.
func (l *Layer) Bounds() (strata.Rect, bool) {
	if l.kind == KindGroup {
		return strata.Rect{}, false
	}
	return strata.Rect{X: l.offsetX, Y: l.offsetY, Width: l.width, Height: l.height}, true
}

// VisualBounds returns the base rectangle expanded by the enabled effects.
// Effects render independently of each other, so each side grows by the
// maximum (not the sum) of that side's expansion across all enabled
// effects.
func (l *Layer) VisualBounds() strata.Rect {
	b, ok := l.Bounds()
	if !ok {
		return strata.Rect{}
	}
	e := l.VisualExpansion()
	return b.Expand(e.Left, e.Top, e.Right, e.Bottom)
}

// VisualExpansion returns the per-side maximum expansion over all enabled
// effects.
func (l *Layer) VisualExpansion() Expansion {
	var out Expansion
	for _, e := range l.effects {
		if !e.Enabled {
			continue
		}
		x := e.Expansion()
		out.Left = maxInt(out.Left, x.Left)
		out.Top = maxInt(out.Top, x.Top)
		out.Right = maxInt(out.Right, x.Right)
		out.Bottom = maxInt(out.Bottom, x.Bottom)
	}
	return out
}

// Surface returns the layer's current drawable surface: the active frame's
// raster for raster layers, the document-resolution rasterization for
// scalable layers (nil until EnsureFresh has run), and nil for groups.
func (l *Layer) Surface() *strata.Pixmap {
	switch l.kind {
	case KindRaster:
		if f := l.ActiveFrame(); f != nil {
			if rf, ok := f.Payload.(*RasterFrame); ok {
				return rf.Surface
			}
		}
		return nil
	case KindScalable:
		return l.scalable.base
	default:
		return nil
	}
}

// ExpandToInclude grows a raster layer so its base rectangle covers r,
// preserving existing pixels. A freshly created empty layer takes r's
// position and size exactly. Returns false for non-raster layers or an
// empty r.
func (l *Layer) ExpandToInclude(r strata.Rect) bool {
	if l.kind != KindRaster || r.IsEmpty() {
		return false
	}
	cur := strata.Rect{X: l.offsetX, Y: l.offsetY, Width: l.width, Height: l.height}
	want := cur.Union(r)
	if want == cur && !cur.IsEmpty() {
		return true
	}
	want.Width = clampDim(want.Width, l.maxDim)
	want.Height = clampDim(want.Height, l.maxDim)

	for _, f := range l.frames {
		rf, ok := f.Payload.(*RasterFrame)
		if !ok || rf.Surface == nil {
			continue
		}
		grown := strata.NewPixmap(want.Width, want.Height)
		blitPixels(grown, rf.Surface, cur.X-want.X, cur.Y-want.Y)
		rf.Surface = grown
	}

	l.offsetX = want.X
	l.offsetY = want.Y
	l.width = want.Width
	l.height = want.Height
	l.contentVersion++
	l.markChanged()
	return true
}

// Dispose releases kind-specific resources. Called by the document when a
// layer is removed from the hierarchy.
func (l *Layer) Dispose() {
	for _, f := range l.frames {
		if f.Payload != nil {
			f.Payload.Dispose()
		}
	}
	l.frames = nil
	l.encodedImage = nil
	if l.scalable != nil {
		l.scalable.base = nil
		l.scalable.hiRes = nil
	}
}

// blitPixels copies src into dst at (dx, dy) without blending.
func blitPixels(dst, src *strata.Pixmap, dx, dy int) {
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			dst.SetPixel(x+dx, y+dy, src.GetPixel(x, y))
		}
	}
}

func clampDim(v, maxDim int) int {
	if v < 0 {
		return 0
	}
	if v > maxDim {
		return maxDim
	}
	return v
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

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
