package layer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	strata "github.com/strata-editor/strata"
)

func TestSnapshotRoundTripRaster(t *testing.T) {
	l := NewRaster("hero", 16, 12)
	l.SetOffset(5, -3)
	l.SetRotation(15)
	l.SetScale(2, 0.5)
	l.SetOpacity(0.7)
	l.SetBlendMode("screen")
	l.Surface().SetPixel(4, 4, strata.RGB(0, 0, 1))
	l.AddEffect(NewDropShadow(3, 3, 2), -1)
	l.AddFilter(NewBlurFilter(1.5), -1)
	l.AddFrame(true, -1)
	l.SetActiveFrame(0)

	data, err := EncodeSnapshot(l)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	got, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}

	if got.ID() != l.ID() || got.Name() != "hero" || got.Kind() != KindRaster {
		t.Errorf("identity mismatch: %s %s %v", got.ID(), got.Name(), got.Kind())
	}
	if x, y := got.Offset(); x != 5 || y != -3 {
		t.Errorf("offset = (%d, %d), want (5, -3)", x, y)
	}
	if got.Rotation() != 15 {
		t.Errorf("rotation = %v, want 15", got.Rotation())
	}
	if sx, sy := got.Scale(); sx != 2 || sy != 0.5 {
		t.Errorf("scale = (%v, %v), want (2, 0.5)", sx, sy)
	}
	if got.Opacity() != 0.7 || got.BlendMode() != "screen" {
		t.Errorf("appearance mismatch: %v %q", got.Opacity(), got.BlendMode())
	}
	if got.FrameCount() != 2 || got.ActiveFrameIndex() != 0 {
		t.Errorf("frames = %d active %d, want 2 active 0", got.FrameCount(), got.ActiveFrameIndex())
	}
	if px := got.Surface().GetPixel(4, 4); px != strata.RGB(0, 0, 1) {
		t.Errorf("pixel (4, 4) = %+v, want blue", px)
	}
	if len(got.Effects()) != 1 || got.Effects()[0].Type != EffectDropShadow {
		t.Errorf("effect stack did not survive")
	}
	if len(got.Filters()) != 1 || got.Filters()[0].Type != FilterBlur {
		t.Errorf("filter stack did not survive")
	}
}

func TestSnapshotRoundTripScalable(t *testing.T) {
	l := NewScalable("vec", 40, 30, "<rect/>", &stubRasterizer{})

	data, err := EncodeSnapshot(l)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	got, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if got.Kind() != KindScalable {
		t.Fatalf("Kind() = %v, want %v", got.Kind(), KindScalable)
	}
	if got.Source() != "<rect/>" {
		t.Errorf("Source() = %q, want %q", got.Source(), "<rect/>")
	}
	// Rasterizers do not serialize; the caller re-attaches one.
	got.SetRasterizer(&stubRasterizer{})
	if err := got.EnsureFresh(context.Background()); err != nil {
		t.Errorf("EnsureFresh after decode: %v", err)
	}
}

func TestSnapshotRoundTripGroup(t *testing.T) {
	g := NewGroup("folder")
	g.SetPassthrough(true)

	data, err := EncodeSnapshot(g)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	got, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if got.Kind() != KindGroup || !got.Passthrough() {
		t.Errorf("group did not survive: kind %v passthrough %v", got.Kind(), got.Passthrough())
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	data, _ := json.Marshal(map[string]any{"name": "x", "kind": "hologram"})
	if _, err := DecodeSnapshot(data); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("decode error = %v, want ErrUnknownKind", err)
	}
}

func TestDecodeDefensiveDefaults(t *testing.T) {
	// A minimal snapshot must decode into a usable layer: non-zero
	// scale, a non-empty frame list, a clamped active index.
	data, _ := json.Marshal(map[string]any{
		"name": "min", "kind": "raster", "width": 10, "height": 10,
		"visible": true, "opacity": 1, "fillOpacity": 1, "activeFrame": 9,
	})
	l, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if sx, sy := l.Scale(); sx != 1 || sy != 1 {
		t.Errorf("scale = (%v, %v), want (1, 1)", sx, sy)
	}
	if l.FrameCount() != 1 || l.ActiveFrameIndex() != 0 {
		t.Errorf("frames = %d active %d, want 1 active 0", l.FrameCount(), l.ActiveFrameIndex())
	}
	if l.BlendMode() != "normal" {
		t.Errorf("BlendMode() = %q, want %q", l.BlendMode(), "normal")
	}
	if l.Surface() == nil {
		t.Errorf("decoded raster layer has no surface")
	}
}

func TestEffectTypeTags(t *testing.T) {
	for _, typ := range []EffectType{EffectDropShadow, EffectOuterGlow, EffectColorOverlay} {
		text, err := typ.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", typ, err)
		}
		var back EffectType
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != typ {
			t.Errorf("round trip %v -> %s -> %v", typ, text, back)
		}
	}
	var bad EffectType
	if err := bad.UnmarshalText([]byte("plasma")); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown tag error = %v, want ErrUnknownKind", err)
	}
}
