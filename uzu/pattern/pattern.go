// Package pattern implements the lazy pattern algebra: a Pattern wraps a
// pure query function from a time span to a set of haps, and every
// combinator builds a new Pattern whose closure references the originals
// as shared immutable values.
package pattern

import (
	"github.com/wbrown/uzu-pattern/uzu"
)

// QueryFunc computes the haps of a pattern over a span. It must be
// referentially transparent: any randomness is seeded from the span's
// cycle, never from global state.
type QueryFunc func(uzu.TimeSpan) []uzu.Hap

// Pattern is an immutable value wrapping a query closure plus auxiliary
// metadata (a stored time function for signals).
// Patterns do not own each other; combinators capture sub-patterns by
// reference into a new closure.
type Pattern struct {
	query QueryFunc
	meta  map[string]interface{}
}

// New wraps a raw query closure.
func New(fn QueryFunc) *Pattern {
	return &Pattern{query: fn}
}

// Silence returns the empty pattern.
func Silence() *Pattern {
	return New(func(uzu.TimeSpan) []uzu.Hap { return nil })
}

// Pure repeats value once per cycle: for each cycle intersecting the
// query span there is one discrete hap with whole [cycle, cycle+1) and
// part clipped to the query.
func Pure(value uzu.Value) *Pattern {
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var haps []uzu.Hap
		for _, cs := range span.SpanCycles() {
			whole := uzu.NewTimeSpan(cs.Begin.Sam(), cs.Begin.NextSam())
			haps = append(haps, uzu.Hap{
				Whole: &whole,
				Part:  cs,
				Value: value.Copy(),
			})
		}
		return haps
	})
}

// Sound is Pure with an "s" (sound name) value.
func Sound(s string) *Pattern {
	return Pure(uzu.Value{"s": s})
}

// FromHaps builds a pattern from a fixed hap list: queries return the
// haps whose part intersects the span, clipped to it.
func FromHaps(haps []uzu.Hap) *Pattern {
	// Patterns are immutable; copy so the caller cannot mutate later.
	own := append([]uzu.Hap{}, haps...)
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, h := range own {
			isect := h.Part.Intersection(span)
			if isect == nil {
				continue
			}
			clipped := h
			clipped.Part = *isect
			out = append(out, clipped)
		}
		return out
	})
}

// FromCycles builds a pattern from a cycle-indexed function returning
// haps in the cycle's local time [0, 1). The wrapper splits the query by
// cycle, shifts results to absolute time, and clips.
func FromCycles(fn func(cycle int64) []uzu.Hap) *Pattern {
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, cs := range span.SpanCycles() {
			c := cs.CycleOf()
			for _, h := range fn(c) {
				shifted := h.Shift(uzu.NewTime(c))
				isect := shifted.Part.Intersection(cs)
				if isect == nil {
					continue
				}
				shifted.Part = *isect
				out = append(out, shifted)
			}
		}
		return out
	})
}

// QuerySpan runs the query closure over an arbitrary span. Inverted or
// empty spans yield no haps.
func (p *Pattern) QuerySpan(span uzu.TimeSpan) []uzu.Hap {
	if span.Begin.GreaterThanOrEqual(span.End) {
		return nil
	}
	return p.query(span)
}

// QueryCycle materializes the haps of cycle c with cycle-relative
// timing, sorted by part begin. This is the convenience used by tests
// and by the transport serializer.
func (p *Pattern) QueryCycle(c int64) []uzu.Hap {
	haps := p.QuerySpan(uzu.CycleSpan(c))
	off := uzu.NewTime(-c)
	out := make([]uzu.Hap, 0, len(haps))
	for _, h := range haps {
		out = append(out, h.Shift(off))
	}
	return uzu.SortHaps(out)
}

// Meta returns a metadata entry.
func (p *Pattern) Meta(key string) (interface{}, bool) {
	v, ok := p.meta[key]
	return v, ok
}

// WithMeta returns a copy of the pattern with a metadata entry set.
func (p *Pattern) WithMeta(key string, value interface{}) *Pattern {
	meta := make(map[string]interface{}, len(p.meta)+1)
	for k, v := range p.meta {
		meta[k] = v
	}
	meta[key] = value
	return &Pattern{query: p.query, meta: meta}
}

// MapHaps applies fn to every hap of every query result.
func (p *Pattern) MapHaps(fn func(uzu.Hap) uzu.Hap) *Pattern {
	out := p.withHaps(func(haps []uzu.Hap) []uzu.Hap {
		mapped := make([]uzu.Hap, 0, len(haps))
		for _, h := range haps {
			mapped = append(mapped, fn(h))
		}
		return mapped
	})
	out.meta = p.meta
	return out
}

// withQuerySpan transforms the query span on the way in.
func (p *Pattern) withQuerySpan(fn func(uzu.TimeSpan) uzu.TimeSpan) *Pattern {
	inner := p
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		return inner.QuerySpan(fn(span))
	})
}

// withQueryTime transforms both endpoints of the query span.
func (p *Pattern) withQueryTime(fn func(uzu.Time) uzu.Time) *Pattern {
	return p.withQuerySpan(func(s uzu.TimeSpan) uzu.TimeSpan {
		return s.WithTime(fn)
	})
}

// withHapSpans transforms the whole and part of every returned hap.
func (p *Pattern) withHapSpans(fn func(uzu.TimeSpan) uzu.TimeSpan) *Pattern {
	inner := p
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		haps := inner.QuerySpan(span)
		out := make([]uzu.Hap, 0, len(haps))
		for _, h := range haps {
			out = append(out, h.WithSpans(fn))
		}
		return out
	})
}

// withHapTime transforms every time endpoint of every returned hap.
func (p *Pattern) withHapTime(fn func(uzu.Time) uzu.Time) *Pattern {
	return p.withHapSpans(func(s uzu.TimeSpan) uzu.TimeSpan {
		return s.WithTime(fn)
	})
}

// withHaps transforms the whole result list of every query.
func (p *Pattern) withHaps(fn func([]uzu.Hap) []uzu.Hap) *Pattern {
	inner := p
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		return fn(inner.QuerySpan(span))
	})
}

// filterHaps keeps the haps satisfying pred.
func (p *Pattern) filterHaps(pred func(uzu.Hap) bool) *Pattern {
	return p.withHaps(func(haps []uzu.Hap) []uzu.Hap {
		var out []uzu.Hap
		for _, h := range haps {
			if pred(h) {
				out = append(out, h)
			}
		}
		return out
	})
}

// perCycle builds a pattern whose query runs fn once per cycle-span of
// the query. fn receives a span guaranteed to lie within one cycle.
func perCycle(fn func(cs uzu.TimeSpan) []uzu.Hap) *Pattern {
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, cs := range span.SpanCycles() {
			out = append(out, fn(cs)...)
		}
		return out
	})
}

// clipTo keeps only haps whose part intersects span, clipped to it.
func clipTo(haps []uzu.Hap, span uzu.TimeSpan) []uzu.Hap {
	var out []uzu.Hap
	for _, h := range haps {
		isect := h.Part.Intersection(span)
		if isect == nil {
			continue
		}
		clipped := h
		clipped.Part = *isect
		out = append(out, clipped)
	}
	return out
}
