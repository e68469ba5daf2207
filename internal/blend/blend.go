// Package blend implements the pixel compositing operators behind the
// engine's opaque blend-mode strings.
//
// All blend operations work with premultiplied alpha values in the range
// 0-255, following the W3C Compositing and Blending Level 1 specification.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// Mode identifies a compositing operator.
type Mode uint8

const (
	// Porter-Duff modes (standard compositing operators)
	SourceOver      Mode = iota // S + D*(1-Sa) [default, "normal"]
	Source                      // S (replace with source)
	Destination                 // D (keep destination)
	DestinationOver             // S*(1-Da) + D
	SourceIn                    // S*Da
	DestinationIn               // D*Sa
	SourceOut                   // S*(1-Da)
	DestinationOut              // D*(1-Sa)
	SourceAtop                  // S*Da + D*(1-Sa)
	DestinationAtop             // S*(1-Da) + D*Sa
	Xor                         // S*(1-Da) + D*(1-Sa)
	Plus                        // S + D (clamped)
	Clear                       // 0

	// Separable blend modes
	Multiply   // S * D
	Screen     // 1 - (1-S)*(1-D)
	Overlay    // HardLight with swapped layers
	Darken     // min(S, D)
	Lighten    // max(S, D)
	Difference // |S - D|
	Exclusion  // S + D - 2*S*D
	HardLight  // Multiply or Screen depending on source
)

// names maps the engine's opaque blend-mode identifiers to operators.
// The vocabulary follows CSS <blend-mode> / canvas globalCompositeOperation,
// which is what document files carry.
var names = map[string]Mode{
	"normal":           SourceOver,
	"source-over":      SourceOver,
	"source":           Source,
	"copy":             Source,
	"destination":      Destination,
	"destination-over": DestinationOver,
	"source-in":        SourceIn,
	"destination-in":   DestinationIn,
	"source-out":       SourceOut,
	"destination-out":  DestinationOut,
	"source-atop":      SourceAtop,
	"destination-atop": DestinationAtop,
	"xor":              Xor,
	"plus":             Plus,
	"lighter":          Plus,
	"clear":            Clear,
	"multiply":         Multiply,
	"screen":           Screen,
	"overlay":          Overlay,
	"darken":           Darken,
	"lighten":          Lighten,
	"difference":       Difference,
	"exclusion":        Exclusion,
	"hard-light":       HardLight,
}

// ParseMode resolves an opaque blend-mode string to an operator.
// Unknown identifiers resolve to SourceOver with ok=false; callers render
// rather than fail on unrecognized modes.
func ParseMode(name string) (Mode, bool) {
	if m, ok := names[name]; ok {
		return m, true
	}
	return SourceOver, false
}

// Func is the signature for blend operations. All values are premultiplied
// alpha, 0-255: source (sr, sg, sb, sa) composited onto destination
// (dr, dg, db, da), returning the resulting color.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// FuncFor returns the blend function for the given mode.
// Returns sourceOver for unknown modes.
func FuncFor(mode Mode) Func {
	switch mode {
	case SourceOver:
		return sourceOver
	case Source:
		return source
	case Destination:
		return destination
	case DestinationOver:
		return destinationOver
	case SourceIn:
		return sourceIn
	case DestinationIn:
		return destinationIn
	case SourceOut:
		return sourceOut
	case DestinationOut:
		return destinationOut
	case SourceAtop:
		return sourceAtop
	case DestinationAtop:
		return destinationAtop
	case Xor:
		return xor
	case Plus:
		return plus
	case Clear:
		return clear
	case Multiply:
		return multiply
	case Screen:
		return screen
	case Overlay:
		return overlay
	case Darken:
		return darken
	case Lighten:
		return lighten
	case Difference:
		return difference
	case Exclusion:
		return exclusion
	case HardLight:
		return hardLight
	default:
		return sourceOver
	}
}

// mulDiv255 computes (a * b) / 255 with rounding.
func mulDiv255(a, b byte) byte {
	t := uint32(a)*uint32(b) + 128
	return byte((t + (t >> 8)) >> 8)
}

// addClamp255 computes a + b clamped to 255.
func addClamp255(a, b byte) byte {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return byte(s)
}
