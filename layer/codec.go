package layer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	strata "github.com/strata-editor/strata"
)

// ErrUnknownKind reports a serialized tag that no decoder handles. The
// kind set is closed; an unknown tag means the snapshot came from a newer
// or corrupted producer.
var ErrUnknownKind = errors.New("layer: unknown kind tag")

// snapshot is the serialized form of a layer. Raster surfaces travel as
// PNG bytes (base64 via encoding/json), scalable frames as their opaque
// source strings.
type snapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	OffsetX     int             `json:"offsetX"`
	OffsetY     int             `json:"offsetY"`
	Rotation    float64         `json:"rotation,omitempty"`
	ScaleX      float64         `json:"scaleX"`
	ScaleY      float64         `json:"scaleY"`
	Opacity     float64         `json:"opacity"`
	FillOpacity float64         `json:"fillOpacity"`
	BlendMode   string          `json:"blendMode"`
	Visible     bool            `json:"visible"`
	Locked      bool            `json:"locked,omitempty"`
	Passthrough bool            `json:"passthrough,omitempty"`
	Effects     []*Effect       `json:"effects,omitempty"`
	Filters     []*Filter       `json:"filters,omitempty"`
	ActiveFrame int             `json:"activeFrame"`
	Frames      []frameSnapshot `json:"frames,omitempty"`
}

type frameSnapshot struct {
	DurationMS int64  `json:"durationMs,omitempty"`
	DelayMS    int64  `json:"delayMs,omitempty"`
	Raster     []byte `json:"raster,omitempty"`
	Source     string `json:"source,omitempty"`
}

// kindDecoders dispatches snapshot decoding over the closed kind set.
var kindDecoders = map[string]func(*snapshot, *Layer) error{
	"raster":   decodeRasterFrames,
	"scalable": decodeScalableFrames,
	"group":    decodeGroupFrames,
}

// EncodeSnapshot serializes the layer to JSON. Parent links are not part
// of a snapshot; the document codec restores hierarchy.
func EncodeSnapshot(l *Layer) ([]byte, error) {
	s := snapshot{
		ID:          l.id,
		Name:        l.name,
		Kind:        kindTags[l.kind],
		Width:       l.width,
		Height:      l.height,
		OffsetX:     l.offsetX,
		OffsetY:     l.offsetY,
		Rotation:    l.rotation,
		ScaleX:      l.scaleX,
		ScaleY:      l.scaleY,
		Opacity:     l.opacity,
		FillOpacity: l.fillOpacity,
		BlendMode:   l.blendMode,
		Visible:     l.visible,
		Locked:      l.locked,
		Passthrough: l.passthrough,
		Effects:     l.effects,
		Filters:     l.filters,
		ActiveFrame: l.active,
	}
	for i, f := range l.frames {
		fs := frameSnapshot{
			DurationMS: f.Duration.Milliseconds(),
			DelayMS:    f.Delay.Milliseconds(),
		}
		switch p := f.Payload.(type) {
		case *RasterFrame:
			if p.Surface != nil && p.Surface.Width() > 0 && p.Surface.Height() > 0 {
				data, err := p.Surface.EncodePNG()
				if err != nil {
					return nil, fmt.Errorf("encode frame %d of %q: %w", i, l.name, err)
				}
				fs.Raster = data
			}
		case *ScalableFrame:
			fs.Source = p.Source
		}
		s.Frames = append(s.Frames, fs)
	}
	return json.Marshal(&s)
}

// DecodeSnapshot reconstructs a layer from JSON produced by
// EncodeSnapshot. Version counters start fresh; a decoded layer is a new
// entity for cache purposes. Decoded scalable layers need SetRasterizer
// before their first EnsureFresh.
func DecodeSnapshot(data []byte) (*Layer, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode layer snapshot: %w", err)
	}

	decode, ok := kindDecoders[s.Kind]
	if !ok {
		return nil, fmt.Errorf("decode layer snapshot %q: kind %q: %w", s.Name, s.Kind, ErrUnknownKind)
	}

	var kind Kind
	for k, tag := range kindTags {
		if tag == s.Kind {
			kind = k
		}
	}

	l := newLayer(kind, s.Name, s.Width, s.Height, nil)
	if s.ID != "" {
		l.id = s.ID
	}
	l.offsetX = s.OffsetX
	l.offsetY = s.OffsetY
	l.rotation = s.Rotation
	if s.ScaleX != 0 {
		l.scaleX = s.ScaleX
	}
	if s.ScaleY != 0 {
		l.scaleY = s.ScaleY
	}
	l.opacity = clamp01(s.Opacity)
	l.fillOpacity = clamp01(s.FillOpacity)
	if s.BlendMode != "" {
		l.blendMode = s.BlendMode
	}
	l.visible = s.Visible
	l.locked = s.Locked
	l.passthrough = s.Passthrough && kind == KindGroup
	l.effects = s.Effects
	l.filters = s.Filters

	if err := decode(&s, l); err != nil {
		return nil, err
	}
	if len(l.frames) > 0 {
		l.active = s.ActiveFrame
		if l.active < 0 || l.active >= len(l.frames) {
			l.active = 0
		}
	}
	return l, nil
}

func decodeRasterFrames(s *snapshot, l *Layer) error {
	for i, fs := range s.Frames {
		var surface *strata.Pixmap
		if len(fs.Raster) > 0 {
			pm, err := strata.DecodePNG(fs.Raster)
			if err != nil {
				return fmt.Errorf("decode frame %d of %q: %w", i, s.Name, err)
			}
			surface = pm
		} else {
			surface = strata.NewPixmap(l.width, l.height)
		}
		l.frames = append(l.frames, &Frame{
			Payload:  &RasterFrame{Surface: surface},
			Duration: time.Duration(fs.DurationMS) * time.Millisecond,
			Delay:    time.Duration(fs.DelayMS) * time.Millisecond,
		})
	}
	if len(l.frames) == 0 {
		l.frames = []*Frame{{Payload: &RasterFrame{Surface: strata.NewPixmap(l.width, l.height)}}}
	}
	return nil
}

func decodeScalableFrames(s *snapshot, l *Layer) error {
	for _, fs := range s.Frames {
		l.frames = append(l.frames, &Frame{
			Payload:  &ScalableFrame{Source: fs.Source},
			Duration: time.Duration(fs.DurationMS) * time.Millisecond,
			Delay:    time.Duration(fs.DelayMS) * time.Millisecond,
		})
	}
	if len(l.frames) == 0 {
		l.frames = []*Frame{{Payload: &ScalableFrame{}}}
	}
	return nil
}

func decodeGroupFrames(*snapshot, *Layer) error { return nil }
