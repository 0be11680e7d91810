package uzu

import "fmt"

// Location is a byte range in the source mini-notation, used by editors
// to highlight the token that produced an event.
type Location struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Context carries source locations and free-form tags through every
// combinator. Merging concatenates both, preserving insertion order.
type Context struct {
	Locations []Location `json:"locations"`
	Tags      []string   `json:"tags"`
}

// Merge concatenates the locations and tags of two contexts.
func (c Context) Merge(o Context) Context {
	out := Context{}
	out.Locations = append(out.Locations, c.Locations...)
	out.Locations = append(out.Locations, o.Locations...)
	out.Tags = append(out.Tags, c.Tags...)
	out.Tags = append(out.Tags, o.Tags...)
	return out
}

// WithLocation returns the context with a location appended.
func (c Context) WithLocation(start, end int) Context {
	out := c
	out.Locations = append(append([]Location{}, c.Locations...), Location{Start: start, End: end})
	return out
}

// Hap is a single timed event. Whole is the event's full extent (nil for
// continuous haps sampled from signals); Part is the extent clipped to
// the current query span. The same discrete event can appear in several
// adjacent queries with the same Whole but different Parts.
type Hap struct {
	Whole   *TimeSpan
	Part    TimeSpan
	Value   Value
	Context Context
}

// Discrete creates a hap whose whole and part are both span.
func Discrete(span TimeSpan, value Value, ctx Context) Hap {
	whole := span
	return Hap{Whole: &whole, Part: span, Value: value, Context: ctx}
}

// Continuous creates a hap with no whole, sampled from a signal.
func Continuous(part TimeSpan, value Value, ctx Context) Hap {
	return Hap{Part: part, Value: value, Context: ctx}
}

// IsContinuous reports whether the hap has no discrete extent.
func (h Hap) IsContinuous() bool { return h.Whole == nil }

// HasOnset reports whether the hap's part begins at its whole's begin,
// i.e. this query window contains the event's trigger point.
func (h Hap) HasOnset() bool {
	return h.Whole != nil && h.Whole.Begin.Equal(h.Part.Begin)
}

// Onset returns the whole's begin for discrete haps.
func (h Hap) Onset() (Time, bool) {
	if h.Whole == nil {
		return Time{}, false
	}
	return h.Whole.Begin, true
}

// WholeDuration returns the duration of the whole for discrete haps.
func (h Hap) WholeDuration() (Time, bool) {
	if h.Whole == nil {
		return Time{}, false
	}
	return h.Whole.Duration(), true
}

// Shift translates both whole and part by o.
func (h Hap) Shift(o Time) Hap {
	out := h
	if h.Whole != nil {
		w := h.Whole.Shift(o)
		out.Whole = &w
	}
	out.Part = h.Part.Shift(o)
	return out
}

// Scale multiplies both whole and part by f.
func (h Hap) Scale(f Time) Hap {
	out := h
	if h.Whole != nil {
		w := h.Whole.Scale(f)
		out.Whole = &w
	}
	out.Part = h.Part.Scale(f)
	return out
}

// WithSpans applies fn to both whole and part.
func (h Hap) WithSpans(fn func(TimeSpan) TimeSpan) Hap {
	out := h
	if h.Whole != nil {
		w := fn(*h.Whole)
		out.Whole = &w
	}
	out.Part = fn(h.Part)
	return out
}

// WithPart clips the hap to p. For discrete haps the new part is
// p ∩ whole and the result is nil when they do not intersect; for
// continuous haps the part is simply replaced.
func (h Hap) WithPart(p TimeSpan) *Hap {
	out := h
	if h.Whole == nil {
		out.Part = p
		return &out
	}
	isect := p.Intersection(*h.Whole)
	if isect == nil {
		return nil
	}
	out.Part = *isect
	return &out
}

// WithValue replaces the value by fn(value).
func (h Hap) WithValue(fn func(Value) Value) Hap {
	out := h
	out.Value = fn(h.Value)
	return out
}

// WithContext replaces the context by fn(context).
func (h Hap) WithContext(fn func(Context) Context) Hap {
	out := h
	out.Context = fn(h.Context)
	return out
}

// Equal compares whole, part, and value structurally. Context is not
// part of event identity.
func (h Hap) Equal(o Hap) bool {
	if (h.Whole == nil) != (o.Whole == nil) {
		return false
	}
	if h.Whole != nil && !h.Whole.Equal(*o.Whole) {
		return false
	}
	return h.Part.Equal(o.Part) && h.Value.Equal(o.Value)
}

// String renders the hap for debugging and test failure output.
func (h Hap) String() string {
	whole := "~"
	if h.Whole != nil {
		whole = h.Whole.String()
	}
	return fmt.Sprintf("Hap(whole: %s, part: %s, value: %s)", whole, h.Part, h.Value)
}

// SortHaps orders haps by part begin, then part end, for stable test
// comparison. It sorts in place and returns the slice.
func SortHaps(haps []Hap) []Hap {
	sortHapsBy(haps)
	return haps
}

func sortHapsBy(haps []Hap) {
	// Insertion sort: hap slices per query are small and mostly ordered.
	for i := 1; i < len(haps); i++ {
		for j := i; j > 0; j-- {
			a, b := haps[j-1], haps[j]
			c := a.Part.Begin.Cmp(b.Part.Begin)
			if c < 0 || (c == 0 && a.Part.End.Cmp(b.Part.End) <= 0) {
				break
			}
			haps[j-1], haps[j] = b, a
		}
	}
}
