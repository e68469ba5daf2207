package layer

import (
	"fmt"
	"math"

	"github.com/lithammer/shortuuid/v3"
)

// EffectType identifies a layer effect.
type EffectType uint8

// Effect type constants. Drop shadow and outer glow render behind the
// layer content; color overlay renders on top of it.
const (
	EffectDropShadow EffectType = iota
	EffectOuterGlow
	EffectColorOverlay
)

var effectTags = map[EffectType]string{
	EffectDropShadow:   "drop-shadow",
	EffectOuterGlow:    "outer-glow",
	EffectColorOverlay: "color-overlay",
}

// String returns the effect type tag.
func (t EffectType) String() string {
	if tag, ok := effectTags[t]; ok {
		return tag
	}
	return "unknown"
}

// MarshalText serializes the effect type as its tag.
func (t EffectType) MarshalText() ([]byte, error) {
	tag, ok := effectTags[t]
	if !ok {
		return nil, fmt.Errorf("marshal effect type %d: %w", t, ErrUnknownKind)
	}
	return []byte(tag), nil
}

// UnmarshalText parses an effect type tag.
func (t *EffectType) UnmarshalText(data []byte) error {
	for typ, tag := range effectTags {
		if tag == string(data) {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unmarshal effect type %q: %w", data, ErrUnknownKind)
}

// Behind reports whether the effect renders behind the layer content
// (phase one of the two-phase effect composite) rather than on top of it.
func (t EffectType) Behind() bool {
	return t == EffectDropShadow || t == EffectOuterGlow
}

// Expansion is the number of pixels an effect extends beyond the layer
// rectangle on each side.
type Expansion struct {
	Left, Top, Right, Bottom int
}

// Effect is one entry of a layer's effect stack. Params hold the
// type-specific numeric parameters; see the New* constructors for the
// keys each type reads.
type Effect struct {
	ID      string             `json:"id"`
	Type    EffectType         `json:"type"`
	Enabled bool               `json:"enabled"`
	Opacity float64            `json:"opacity"`
	Mode    string             `json:"mode"`
	Params  map[string]float64 `json:"params"`
}

// NewDropShadow creates a drop shadow offset by (dx, dy) with the given
// blur radius.
func NewDropShadow(dx, dy, blur float64) *Effect {
	return &Effect{
		ID:      shortuuid.New(),
		Type:    EffectDropShadow,
		Enabled: true,
		Opacity: 1,
		Mode:    "normal",
		Params:  map[string]float64{"dx": dx, "dy": dy, "blur": blur, "r": 0, "g": 0, "b": 0},
	}
}

// NewOuterGlow creates an outer glow with the given blur radius.
func NewOuterGlow(blur float64) *Effect {
	return &Effect{
		ID:      shortuuid.New(),
		Type:    EffectOuterGlow,
		Enabled: true,
		Opacity: 1,
		Mode:    "normal",
		Params:  map[string]float64{"blur": blur, "r": 1, "g": 1, "b": 0.6},
	}
}

// NewColorOverlay creates a color overlay with the given color components
// in [0, 1].
func NewColorOverlay(r, g, b float64) *Effect {
	return &Effect{
		ID:      shortuuid.New(),
		Type:    EffectColorOverlay,
		Enabled: true,
		Opacity: 1,
		Mode:    "normal",
		Params:  map[string]float64{"r": r, "g": g, "b": b},
	}
}

// Expansion returns how far the effect reaches beyond the layer rectangle.
// Blurred silhouettes extend three radii in every direction; a shadow's
// offset shifts that reach per side.
func (e *Effect) Expansion() Expansion {
	switch e.Type {
	case EffectDropShadow:
		r := int(math.Ceil(3 * e.Params["blur"]))
		dx := int(math.Round(e.Params["dx"]))
		dy := int(math.Round(e.Params["dy"]))
		return Expansion{
			Left:   maxInt(0, r-dx),
			Top:    maxInt(0, r-dy),
			Right:  maxInt(0, r+dx),
			Bottom: maxInt(0, r+dy),
		}
	case EffectOuterGlow:
		r := int(math.Ceil(3 * e.Params["blur"]))
		return Expansion{Left: r, Top: r, Right: r, Bottom: r}
	default:
		return Expansion{}
	}
}

// Effects returns a copy of the effect stack, bottom to top.
func (l *Layer) Effects() []*Effect {
	out := make([]*Effect, len(l.effects))
	copy(out, l.effects)
	return out
}

// HasEffects reports whether any effect is enabled.
func (l *Layer) HasEffects() bool {
	for _, e := range l.effects {
		if e.Enabled {
			return true
		}
	}
	return false
}

// AddEffect inserts e at the given stack index, clamped into range; a
// negative index appends. An empty ID is assigned. Returns the final
// index, or -1 for groups, which carry no effects.
func (l *Layer) AddEffect(e *Effect, at int) int {
	if l.kind == KindGroup || e == nil {
		return -1
	}
	if e.ID == "" {
		e.ID = shortuuid.New()
	}
	if at < 0 || at > len(l.effects) {
		at = len(l.effects)
	}
	l.effects = append(l.effects, nil)
	copy(l.effects[at+1:], l.effects[at:])
	l.effects[at] = e
	l.invalidateEffectCache()
	return at
}

// RemoveEffect deletes the effect with the given ID. Returns false when no
// such effect exists.
func (l *Layer) RemoveEffect(id string) bool {
	for i, e := range l.effects {
		if e.ID == id {
			l.effects = append(l.effects[:i], l.effects[i+1:]...)
			l.invalidateEffectCache()
			return true
		}
	}
	return false
}

// UpdateEffect merges params into the named effect's parameters. Returns
// false when no such effect exists.
func (l *Layer) UpdateEffect(id string, params map[string]float64) bool {
	e := l.findEffect(id)
	if e == nil {
		return false
	}
	if e.Params == nil {
		e.Params = make(map[string]float64, len(params))
	}
	for k, v := range params {
		e.Params[k] = v
	}
	l.invalidateEffectCache()
	return true
}

// SetEffectEnabled toggles the named effect. Returns false when no such
// effect exists.
func (l *Layer) SetEffectEnabled(id string, enabled bool) bool {
	e := l.findEffect(id)
	if e == nil {
		return false
	}
	if e.Enabled != enabled {
		e.Enabled = enabled
		l.invalidateEffectCache()
	}
	return true
}

// SetEffectOpacity sets the named effect's opacity, clamped to [0, 1].
// Returns false when no such effect exists.
func (l *Layer) SetEffectOpacity(id string, opacity float64) bool {
	e := l.findEffect(id)
	if e == nil {
		return false
	}
	e.Opacity = clamp01(opacity)
	l.invalidateEffectCache()
	return true
}

// MoveEffect reorders the named effect to the given stack index, clamped
// into range. Returns false when no such effect exists.
func (l *Layer) MoveEffect(id string, to int) bool {
	from := -1
	for i, e := range l.effects {
		if e.ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return false
	}
	e := l.effects[from]
	l.effects = append(l.effects[:from], l.effects[from+1:]...)
	if to < 0 {
		to = 0
	}
	if to > len(l.effects) {
		to = len(l.effects)
	}
	l.effects = append(l.effects, nil)
	copy(l.effects[to+1:], l.effects[to:])
	l.effects[to] = e
	l.invalidateEffectCache()
	return true
}

func (l *Layer) findEffect(id string) *Effect {
	for _, e := range l.effects {
		if e.ID == id {
			return e
		}
	}
	return nil
}
