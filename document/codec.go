package document

import (
	"encoding/json"
	"fmt"

	"github.com/strata-editor/strata/layer"
)

// snapshot is the serialized form of a document: canvas size plus the
// layer list in stack order. Parent links travel as IDs since the layer
// codec does not serialize hierarchy.
type snapshot struct {
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Active string          `json:"active,omitempty"`
	Layers []layerSnapshot `json:"layers"`
}

type layerSnapshot struct {
	Parent string          `json:"parent,omitempty"`
	Layer  json.RawMessage `json:"layer"`
}

// EncodeSnapshot serializes the document to JSON.
func EncodeSnapshot(d *Document) ([]byte, error) {
	s := snapshot{Width: d.width, Height: d.height, Active: d.active}
	for _, l := range d.layers {
		data, err := layer.EncodeSnapshot(l)
		if err != nil {
			return nil, err
		}
		ls := layerSnapshot{Layer: data}
		if p := l.Parent(); p != nil {
			ls.Parent = p.ID()
		}
		s.Layers = append(s.Layers, ls)
	}
	return json.Marshal(&s)
}

// DecodeSnapshot reconstructs a document from JSON produced by
// EncodeSnapshot. Scalable layers come back without rasterizers; the
// caller re-attaches them before rendering.
func DecodeSnapshot(data []byte, opts ...Option) (*Document, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode document snapshot: %w", err)
	}

	d := New(s.Width, s.Height, opts...)
	byID := make(map[string]*layer.Layer, len(s.Layers))
	for i, ls := range s.Layers {
		l, err := layer.DecodeSnapshot(ls.Layer)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		d.layers = append(d.layers, l)
		byID[l.ID()] = l
	}
	for i, ls := range s.Layers {
		if ls.Parent == "" {
			continue
		}
		p, ok := byID[ls.Parent]
		if !ok {
			return nil, fmt.Errorf("layer %d: parent %q not in snapshot", i, ls.Parent)
		}
		d.layers[i].SetParent(p)
	}
	if s.Active != "" && byID[s.Active] != nil {
		d.active = s.Active
	}
	return d, nil
}
