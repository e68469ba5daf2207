package layer

import (
	"fmt"

	"github.com/lithammer/shortuuid/v3"
)

// FilterType identifies a non-destructive layer filter. Filters rework the
// layer's pixels before effects see them, so every filter mutation
// cascades through the filter cache into the effect cache.
type FilterType uint8

// Filter type constants.
const (
	FilterBlur FilterType = iota
	FilterBrightness
	FilterInvert
)

var filterTags = map[FilterType]string{
	FilterBlur:       "blur",
	FilterBrightness: "brightness",
	FilterInvert:     "invert",
}

// String returns the filter type tag.
func (t FilterType) String() string {
	if tag, ok := filterTags[t]; ok {
		return tag
	}
	return "unknown"
}

// MarshalText serializes the filter type as its tag.
func (t FilterType) MarshalText() ([]byte, error) {
	tag, ok := filterTags[t]
	if !ok {
		return nil, fmt.Errorf("marshal filter type %d: %w", t, ErrUnknownKind)
	}
	return []byte(tag), nil
}

// UnmarshalText parses a filter type tag.
func (t *FilterType) UnmarshalText(data []byte) error {
	for typ, tag := range filterTags {
		if tag == string(data) {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unmarshal filter type %q: %w", data, ErrUnknownKind)
}

// Filter is one entry of a layer's filter stack.
type Filter struct {
	ID      string             `json:"id"`
	Type    FilterType         `json:"type"`
	Enabled bool               `json:"enabled"`
	Params  map[string]float64 `json:"params"`
}

// NewBlurFilter creates a Gaussian blur filter with the given radius.
func NewBlurFilter(radius float64) *Filter {
	return &Filter{
		ID:      shortuuid.New(),
		Type:    FilterBlur,
		Enabled: true,
		Params:  map[string]float64{"radius": radius},
	}
}

// NewBrightnessFilter creates a brightness adjustment; amount is a change
// in [-1, 1] where 0 leaves pixels untouched.
func NewBrightnessFilter(amount float64) *Filter {
	return &Filter{
		ID:      shortuuid.New(),
		Type:    FilterBrightness,
		Enabled: true,
		Params:  map[string]float64{"amount": amount},
	}
}

// NewInvertFilter creates a color inversion filter.
func NewInvertFilter() *Filter {
	return &Filter{
		ID:      shortuuid.New(),
		Type:    FilterInvert,
		Enabled: true,
		Params:  map[string]float64{},
	}
}

// Filters returns a copy of the filter stack, applied first to last.
func (l *Layer) Filters() []*Filter {
	out := make([]*Filter, len(l.filters))
	copy(out, l.filters)
	return out
}

// HasFilters reports whether any filter is enabled.
func (l *Layer) HasFilters() bool {
	for _, f := range l.filters {
		if f.Enabled {
			return true
		}
	}
	return false
}

// AddFilter inserts f at the given stack index, clamped into range; a
// negative index appends. An empty ID is assigned. Returns the final
// index, or -1 for groups.
func (l *Layer) AddFilter(f *Filter, at int) int {
	if l.kind == KindGroup || f == nil {
		return -1
	}
	if f.ID == "" {
		f.ID = shortuuid.New()
	}
	if at < 0 || at > len(l.filters) {
		at = len(l.filters)
	}
	l.filters = append(l.filters, nil)
	copy(l.filters[at+1:], l.filters[at:])
	l.filters[at] = f
	l.invalidateFilterCache()
	return at
}

// RemoveFilter deletes the filter with the given ID. Returns false when no
// such filter exists.
func (l *Layer) RemoveFilter(id string) bool {
	for i, f := range l.filters {
		if f.ID == id {
			l.filters = append(l.filters[:i], l.filters[i+1:]...)
			l.invalidateFilterCache()
			return true
		}
	}
	return false
}

// UpdateFilter merges params into the named filter's parameters. Returns
// false when no such filter exists.
func (l *Layer) UpdateFilter(id string, params map[string]float64) bool {
	f := l.findFilter(id)
	if f == nil {
		return false
	}
	if f.Params == nil {
		f.Params = make(map[string]float64, len(params))
	}
	for k, v := range params {
		f.Params[k] = v
	}
	l.invalidateFilterCache()
	return true
}

// SetFilterEnabled toggles the named filter. Returns false when no such
// filter exists.
func (l *Layer) SetFilterEnabled(id string, enabled bool) bool {
	f := l.findFilter(id)
	if f == nil {
		return false
	}
	if f.Enabled != enabled {
		f.Enabled = enabled
		l.invalidateFilterCache()
	}
	return true
}

// MoveFilter reorders the named filter to the given stack index, clamped
// into range. Returns false when no such filter exists.
func (l *Layer) MoveFilter(id string, to int) bool {
	from := -1
	for i, f := range l.filters {
		if f.ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return false
	}
	f := l.filters[from]
	l.filters = append(l.filters[:from], l.filters[from+1:]...)
	if to < 0 {
		to = 0
	}
	if to > len(l.filters) {
		to = len(l.filters)
	}
	l.filters = append(l.filters, nil)
	copy(l.filters[to+1:], l.filters[to:])
	l.filters[to] = f
	l.invalidateFilterCache()
	return true
}

func (l *Layer) findFilter(id string) *Filter {
	for _, f := range l.filters {
		if f.ID == id {
			return f
		}
	}
	return nil
}
