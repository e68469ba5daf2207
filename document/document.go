// Package document maintains the layer hierarchy of an open document: a
// flat back-to-front list of layers with parent links for grouping, a
// structural version for the compositor's dirty tracking, and a bounded
// cache of encoded layer images.
package document

import (
	"fmt"

	"github.com/strata-editor/strata/cache"
	"github.com/strata-editor/strata/layer"
)

// Document is the layer hierarchy of one open document.
//
// Layers live in a single flat slice in back-to-front render order.
// Grouping is expressed through parent links; a group's descendants are
// kept contiguous immediately after the group's own entry, so a render
// walk can treat the block as a unit.
type Document struct {
	width  int
	height int

	layers []*layer.Layer
	active string

	// structuralVersion advances on every add, remove, or reorder.
	// Together with the sum of per-layer change counters it forms the
	// compositor's composite version.
	structuralVersion uint64

	// imageCache bounds memory held by encoded layer images. Keys are
	// id:contentVersion, so stale versions age out instead of being
	// tracked explicitly.
	imageCache *cache.Sharded[string, []byte]
}

// Option configures a document during creation.
type Option func(*Document)

// WithImageCacheCapacity overrides the per-shard capacity of the encoded
// image cache.
func WithImageCacheCapacity(n int) Option {
	return func(d *Document) {
		d.imageCache = cache.NewSharded[string, []byte](n, cache.StringHasher)
	}
}

// New creates an empty document with the given canvas size.
func New(width, height int, opts ...Option) *Document {
	d := &Document{
		width:      width,
		height:     height,
		imageCache: cache.NewSharded[string, []byte](cache.DefaultCapacity, cache.StringHasher),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Width returns the canvas width in pixels.
func (d *Document) Width() int { return d.width }

// Height returns the canvas height in pixels.
func (d *Document) Height() int { return d.height }

// Resize changes the canvas size.
func (d *Document) Resize(width, height int) {
	if width < 0 || height < 0 || (width == d.width && height == d.height) {
		return
	}
	d.width = width
	d.height = height
	d.structuralVersion++
}

// Len returns the number of layers, groups included.
func (d *Document) Len() int { return len(d.layers) }

// Layers returns the layer list in back-to-front order. The slice is a
// copy; the layers are shared.
func (d *Document) Layers() []*layer.Layer {
	out := make([]*layer.Layer, len(d.layers))
	copy(out, d.layers)
	return out
}

// Layer returns the layer with the given ID, or nil.
func (d *Document) Layer(id string) *layer.Layer {
	if i := d.index(id); i >= 0 {
		return d.layers[i]
	}
	return nil
}

// Index returns the stack position of the layer with the given ID, or -1.
func (d *Document) Index(id string) int { return d.index(id) }

func (d *Document) index(id string) int {
	for i, l := range d.layers {
		if l.ID() == id {
			return i
		}
	}
	return -1
}

// StructuralVersion returns the hierarchy version counter.
func (d *Document) StructuralVersion() uint64 { return d.structuralVersion }

// SumChangeCounters returns the sum of all per-layer change counters.
// Unsigned overflow is harmless: the compositor only compares for
// inequality.
func (d *Document) SumChangeCounters() uint64 {
	var sum uint64
	for _, l := range d.layers {
		sum += l.ChangeCounter()
	}
	return sum
}

// ActiveLayer returns the currently selected layer, or nil.
func (d *Document) ActiveLayer() *layer.Layer { return d.Layer(d.active) }

// SetActiveLayer selects the layer with the given ID. Returns false when
// no such layer exists. An empty ID clears the selection.
func (d *Document) SetActiveLayer(id string) bool {
	if id == "" {
		d.active = ""
		d.structuralVersion++
		return true
	}
	if d.index(id) < 0 {
		return false
	}
	d.active = id
	d.structuralVersion++
	return true
}

// Add inserts l at stack position at, clamped into range; a negative
// index appends (topmost). Returns the final position.
func (d *Document) Add(l *layer.Layer, at int) int {
	if at < 0 || at > len(d.layers) {
		at = len(d.layers)
	}
	d.layers = append(d.layers, nil)
	copy(d.layers[at+1:], d.layers[at:])
	d.layers[at] = l
	d.structuralVersion++
	return at
}

// Remove deletes the layer with the given ID and disposes it. Removing a
// group removes its whole descendant block. Returns false when no such
// layer exists.
func (d *Document) Remove(id string) bool {
	i := d.index(id)
	if i < 0 {
		return false
	}
	start, end := d.blockSpan(i)
	for _, l := range d.layers[start:end] {
		if l.ID() == d.active {
			d.active = ""
		}
		// Fold the disposed counter into the structural version.
		// Dropping it from the sum alone can cancel the structural
		// bump and leave the composite version unmoved.
		d.structuralVersion += l.ChangeCounter()
		l.Dispose()
	}
	d.layers = append(d.layers[:start], d.layers[end:]...)
	d.structuralVersion++
	return true
}

// Move reorders the layer with the given ID to stack position to, clamped
// into range. Groups move with their descendant block. Returns false when
// no such layer exists or the move would place a block inside itself.
func (d *Document) Move(id string, to int) bool {
	i := d.index(id)
	if i < 0 {
		return false
	}
	start, end := d.blockSpan(i)
	block := make([]*layer.Layer, end-start)
	copy(block, d.layers[start:end])

	rest := append(d.layers[:start:start], d.layers[end:]...)
	if to < 0 {
		to = 0
	}
	if to > len(rest) {
		to = len(rest)
	}
	// Landing inside another group's block would break contiguity
	// unless the moved layer belongs to that group; reparenting is the
	// caller's job, so refuse.
	if to > 0 && to < len(rest) {
		above := rest[to]
		if above.Parent() != nil && above.Parent() != block[0].Parent() && above.Parent() != block[0] {
			return false
		}
	}

	d.layers = append(rest[:to:to], append(block, rest[to:]...)...)
	d.structuralVersion++
	return true
}

// blockSpan returns the [start, end) span of the layer at index i plus,
// when it is a group, its contiguous descendant block.
func (d *Document) blockSpan(i int) (int, int) {
	l := d.layers[i]
	if l.Kind() != layer.KindGroup {
		return i, i + 1
	}
	end := i + 1
	for end < len(d.layers) && d.hasAncestor(d.layers[end], l) {
		end++
	}
	return i, end
}

func (d *Document) hasAncestor(l, ancestor *layer.Layer) bool {
	for p := l.Parent(); p != nil; p = p.Parent() {
		if p == ancestor {
			return true
		}
	}
	return false
}

// ChildrenOf returns the direct children of a group, back to front.
func (d *Document) ChildrenOf(g *layer.Layer) []*layer.Layer {
	var out []*layer.Layer
	for _, l := range d.layers {
		if l.Parent() == g {
			out = append(out, l)
		}
	}
	return out
}

// Group gathers the named layers into a new group inserted at the
// position of the bottom-most member. Members are pulled out of their
// current positions and packed contiguously after the group entry,
// preserving their relative order. Returns nil when ids names no layers.
func (d *Document) Group(name string, ids []string) (*layer.Layer, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var members []*layer.Layer
	insertAt := -1
	for i, l := range d.layers {
		if !want[l.ID()] {
			continue
		}
		if l.Kind() == layer.KindGroup {
			return nil, fmt.Errorf("group %q: nested group members are not supported", name)
		}
		if insertAt == -1 {
			insertAt = i
		}
		members = append(members, l)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("group %q: no members", name)
	}

	kept := d.layers[:0]
	for _, l := range d.layers {
		if !want[l.ID()] {
			kept = append(kept, l)
		}
	}
	d.layers = kept

	g := layer.NewGroup(name)
	if insertAt > len(d.layers) {
		insertAt = len(d.layers)
	}
	block := append([]*layer.Layer{g}, members...)
	d.layers = append(d.layers[:insertAt:insertAt], append(block, d.layers[insertAt:]...)...)
	for _, m := range members {
		m.SetParent(g)
	}
	d.structuralVersion++
	return g, nil
}

// Ungroup dissolves the named group: its children take the group's place
// in the stack and inherit the group's parent. Returns false when no such
// group exists.
func (d *Document) Ungroup(id string) bool {
	i := d.index(id)
	if i < 0 || d.layers[i].Kind() != layer.KindGroup {
		return false
	}
	g := d.layers[i]
	for _, l := range d.layers {
		if l.Parent() == g {
			l.SetParent(g.Parent())
		}
	}
	d.layers = append(d.layers[:i], d.layers[i+1:]...)
	// Fold the group's counter as in Remove.
	d.structuralVersion += g.ChangeCounter()
	g.Dispose()
	d.structuralVersion++
	return true
}

// IsEffectivelyVisible reports whether l and every enclosing group is
// visible.
func (d *Document) IsEffectivelyVisible(l *layer.Layer) bool {
	for ; l != nil; l = l.Parent() {
		if !l.Visible() {
			return false
		}
	}
	return true
}

// EffectiveOpacity returns l's opacity multiplied through every enclosing
// group. Passthrough groups still contribute their opacity factor; only
// isolation is bypassed, not attenuation.
func (d *Document) EffectiveOpacity(l *layer.Layer) float64 {
	o := 1.0
	for ; l != nil; l = l.Parent() {
		o *= l.Opacity()
	}
	return o
}

// EncodedImage returns the layer's surface encoded as PNG, serving from
// the layer handle or the document cache when the content version has not
// moved. Returns nil for layers without a surface.
func (d *Document) EncodedImage(l *layer.Layer) ([]byte, error) {
	if data := l.EncodedImage(); data != nil {
		return data, nil
	}
	surface := l.Surface()
	if surface == nil {
		return nil, nil
	}

	key := fmt.Sprintf("%s:%d", l.ID(), l.ContentVersion())
	if data, ok := d.imageCache.Get(key); ok {
		l.SetEncodedImage(data)
		return data, nil
	}

	data, err := surface.EncodePNG()
	if err != nil {
		return nil, fmt.Errorf("encode layer %q: %w", l.Name(), err)
	}
	d.imageCache.Set(key, data)
	l.SetEncodedImage(data)
	return data, nil
}

// ImageCacheStats reports hit/miss/eviction counters of the encoded image
// cache.
func (d *Document) ImageCacheStats() cache.Stats { return d.imageCache.Stats() }
