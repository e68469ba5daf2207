package layer

import (
	"time"

	strata "github.com/strata-editor/strata"
)

// FramePayload is the kind-specific data a frame holds.
type FramePayload interface {
	// Clone deep-copies the payload.
	Clone() FramePayload

	// Dispose releases any resources the payload owns.
	Dispose()
}

// RasterFrame holds one raster surface.
type RasterFrame struct {
	Surface *strata.Pixmap
}

// Clone deep-copies the frame's surface.
func (f *RasterFrame) Clone() FramePayload {
	if f.Surface == nil {
		return &RasterFrame{}
	}
	return &RasterFrame{Surface: f.Surface.Clone()}
}

// Dispose drops the surface.
func (f *RasterFrame) Dispose() { f.Surface = nil }

// ScalableFrame holds one opaque content source. The rasterization caches
// live on the layer, not the frame.
type ScalableFrame struct {
	Source string
}

// Clone copies the source string.
func (f *ScalableFrame) Clone() FramePayload { return &ScalableFrame{Source: f.Source} }

// Dispose is a no-op; scalable frames own no heavy resources.
func (f *ScalableFrame) Dispose() {}

// Frame is one animation frame of a layer.
type Frame struct {
	Payload  FramePayload
	Duration time.Duration
	Delay    time.Duration
}

// FrameCount returns the number of frames. Groups are frame-less and
// report one implicit frame.
func (l *Layer) FrameCount() int {
	if l.kind == KindGroup {
		return 1
	}
	return len(l.frames)
}

// ActiveFrameIndex returns the index of the active frame.
func (l *Layer) ActiveFrameIndex() int { return l.active }

// Frame returns the frame at index i, or nil when out of range.
func (l *Layer) Frame(i int) *Frame {
	if i < 0 || i >= len(l.frames) {
		return nil
	}
	return l.frames[i]
}

// ActiveFrame returns the active frame, or nil for groups.
func (l *Layer) ActiveFrame() *Frame { return l.Frame(l.active) }

// AddFrame inserts a new frame and makes it active, returning its index.
// When clone is true the new frame deep-copies the active frame's payload;
// otherwise it starts empty. at < 0 inserts after the active frame; other
// values are clamped into [0, FrameCount]. Returns -1 for groups.
func (l *Layer) AddFrame(clone bool, at int) int {
	if l.kind == KindGroup {
		return -1
	}
	if at < 0 {
		at = l.active + 1
	}
	if at > len(l.frames) {
		at = len(l.frames)
	}

	var payload FramePayload
	if clone {
		payload = l.frames[l.active].Payload.Clone()
	} else {
		payload = l.emptyPayload()
	}

	f := &Frame{Payload: payload}
	l.frames = append(l.frames, nil)
	copy(l.frames[at+1:], l.frames[at:])
	l.frames[at] = f
	l.active = at
	l.contentVersion++
	l.markChanged()
	return at
}

// RemoveFrame deletes the frame at index i and disposes its payload. The
// last remaining frame can never be removed; the frame list is never
// empty. Returns false when i is out of range or only one frame remains.
func (l *Layer) RemoveFrame(i int) bool {
	if l.kind == KindGroup || i < 0 || i >= len(l.frames) || len(l.frames) == 1 {
		return false
	}
	l.frames[i].Payload.Dispose()
	l.frames = append(l.frames[:i], l.frames[i+1:]...)
	if i < l.active {
		l.active--
	} else if l.active >= len(l.frames) {
		l.active = len(l.frames) - 1
	}
	l.contentVersion++
	l.markChanged()
	return true
}

// DuplicateFrame clones the frame at index i, inserts the copy right after
// it, and makes the copy active. Returns the new index, or -1 when i is
// out of range.
func (l *Layer) DuplicateFrame(i int) int {
	if l.kind == KindGroup || i < 0 || i >= len(l.frames) {
		return -1
	}
	src := l.frames[i]
	f := &Frame{
		Payload:  src.Payload.Clone(),
		Duration: src.Duration,
		Delay:    src.Delay,
	}
	at := i + 1
	l.frames = append(l.frames, nil)
	copy(l.frames[at+1:], l.frames[at:])
	l.frames[at] = f
	l.active = at
	l.contentVersion++
	l.markChanged()
	return at
}

// SetActiveFrame switches the active frame. Returns false on an invalid
// or unchanged index.
func (l *Layer) SetActiveFrame(i int) bool {
	if i < 0 || i >= len(l.frames) || i == l.active {
		return false
	}
	l.active = i
	l.contentVersion++
	l.markChanged()
	return true
}

func (l *Layer) emptyPayload() FramePayload {
	if l.kind == KindScalable {
		return &ScalableFrame{}
	}
	return &RasterFrame{Surface: strata.NewPixmap(l.width, l.height)}
}
