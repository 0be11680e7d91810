package pattern

import (
	"github.com/wbrown/uzu-pattern/uzu"
)

// Stack layers patterns: each query is the union of the sub-patterns'
// haps over the same span, with no timing rescale.
func Stack(pats ...*Pattern) *Pattern {
	own := append([]*Pattern{}, pats...)
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, p := range own {
			out = append(out, p.QuerySpan(span)...)
		}
		return out
	})
}

// Weighted pairs a pattern with its share of the cycle in TimeCat.
type Weighted struct {
	Weight  int64
	Pattern *Pattern
}

// TimeCat concatenates patterns within each cycle, allocating time
// proportionally to the weights: slot i covers weight_i / total of the
// cycle. Non-positive weights are skipped.
func TimeCat(items []Weighted) *Pattern {
	var kept []Weighted
	var total int64
	for _, it := range items {
		if it.Weight <= 0 || it.Pattern == nil {
			continue
		}
		kept = append(kept, it)
		total += it.Weight
	}
	if total == 0 {
		return Silence()
	}
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		sam := cs.Begin.Sam()
		var out []uzu.Hap
		var acc int64
		for _, it := range kept {
			slot := uzu.NewTimeSpan(
				sam.Add(uzu.Frac(acc, total)),
				sam.Add(uzu.Frac(acc+it.Weight, total)),
			)
			acc += it.Weight
			out = append(out, querySlot(it.Pattern, sam, slot, cs)...)
		}
		return out
	})
}

// FastCat concatenates patterns sequentially within each cycle, each
// taking an equal share.
func FastCat(pats ...*Pattern) *Pattern {
	items := make([]Weighted, len(pats))
	for i, p := range pats {
		items[i] = Weighted{Weight: 1, Pattern: p}
	}
	return TimeCat(items)
}

// SlowCat alternates patterns across cycles: cycle c plays pattern
// c mod n, showing that pattern's cycle c div n.
func SlowCat(pats ...*Pattern) *Pattern {
	own := append([]*Pattern{}, pats...)
	n := int64(len(own))
	if n == 0 {
		return Silence()
	}
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		c := cs.CycleOf()
		i := floorMod(c, n)
		childCycle := floorDiv(c, n)
		offset := uzu.NewTime(c - childCycle)
		haps := own[i].QuerySpan(cs.Shift(offset.Neg()))
		out := make([]uzu.Hap, 0, len(haps))
		for _, h := range haps {
			out = append(out, h.Shift(offset))
		}
		return out
	})
}

// RandCat plays one of the patterns per cycle, chosen by the seeded
// cycle RNG.
func RandCat(pats ...*Pattern) *Pattern {
	own := append([]*Pattern{}, pats...)
	if len(own) == 0 {
		return Silence()
	}
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		i := cycleRandN(cs.CycleOf(), len(own))
		return own[i].QuerySpan(cs)
	})
}

// Append alternates two patterns cycle by cycle.
func Append(a, b *Pattern) *Pattern {
	return SlowCat(a, b)
}

// Append is the method form of the package function.
func (p *Pattern) Append(o *Pattern) *Pattern {
	return Append(p, o)
}

// Overlay stacks this pattern with another.
func (p *Pattern) Overlay(o *Pattern) *Pattern {
	return Stack(p, o)
}

// querySlot maps the portion of cs covered by slot into one cycle of
// child time ([sam, sam+1)), queries the child there, and maps the haps
// back into the slot. This single affine squeeze underlies TimeCat,
// Compress, and the interpreter's subdivision handling.
func querySlot(p *Pattern, sam uzu.Time, slot, cs uzu.TimeSpan) []uzu.Hap {
	isect := slot.Intersection(cs)
	if isect == nil {
		return nil
	}
	step := slot.Duration()
	if step.IsZero() {
		return nil
	}
	toChild := func(t uzu.Time) uzu.Time {
		d, _ := t.Sub(slot.Begin).Div(step)
		return sam.Add(d)
	}
	fromChild := func(t uzu.Time) uzu.Time {
		return slot.Begin.Add(t.Sub(sam).Mul(step))
	}
	haps := p.QuerySpan(isect.WithTime(toChild))
	var out []uzu.Hap
	for _, h := range haps {
		mapped := h.WithSpans(func(s uzu.TimeSpan) uzu.TimeSpan {
			return s.WithTime(fromChild)
		})
		clipped := mapped.Part.Intersection(*isect)
		if clipped == nil {
			continue
		}
		mapped.Part = *clipped
		out = append(out, mapped)
	}
	return out
}

// WithLoc appends a source location to every hap's context.
func (p *Pattern) WithLoc(start, end int) *Pattern {
	inner := p
	out := inner.withHaps(func(haps []uzu.Hap) []uzu.Hap {
		mapped := make([]uzu.Hap, 0, len(haps))
		for _, h := range haps {
			mapped = append(mapped, h.WithContext(func(c uzu.Context) uzu.Context {
				return c.WithLocation(start, end)
			}))
		}
		return mapped
	})
	out.meta = p.meta
	return out
}

// WithOffset shifts every recorded source location by off bytes, for
// notation embedded inside a larger source string.
func (p *Pattern) WithOffset(off int) *Pattern {
	return p.WithContextFn(func(c uzu.Context) uzu.Context {
		locs := make([]uzu.Location, len(c.Locations))
		for i, l := range c.Locations {
			locs[i] = uzu.Location{Start: l.Start + off, End: l.End + off}
		}
		out := c
		out.Locations = locs
		return out
	})
}

// WithContextFn applies fn to every hap's context.
func (p *Pattern) WithContextFn(fn func(uzu.Context) uzu.Context) *Pattern {
	out := p.withHaps(func(haps []uzu.Hap) []uzu.Hap {
		mapped := make([]uzu.Hap, 0, len(haps))
		for _, h := range haps {
			mapped = append(mapped, h.WithContext(fn))
		}
		return mapped
	})
	out.meta = p.meta
	return out
}

// Tag appends a tag to every hap's context.
func (p *Pattern) Tag(tag string) *Pattern {
	return p.WithContextFn(func(c uzu.Context) uzu.Context {
		out := c
		out.Tags = append(append([]string{}, c.Tags...), tag)
		return out
	})
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
