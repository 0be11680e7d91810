package pattern

import (
	"fmt"

	"github.com/wbrown/uzu-pattern/uzu"
)

// The time transforms all work by transforming the query span on the way
// in and the hap spans on the way out, keeping every intermediate value
// rational so round-trips like Fast(3) then Slow(3) are exact.

// fastBy speeds the pattern up by a factor known to be positive.
func (p *Pattern) fastBy(factor uzu.Time) *Pattern {
	inv, _ := uzu.NewTime(1).Div(factor)
	return p.
		withQueryTime(func(t uzu.Time) uzu.Time { return t.Mul(factor) }).
		withHapTime(func(t uzu.Time) uzu.Time { return t.Mul(inv) })
}

// Fast plays the pattern factor times per cycle. The factor must be a
// positive rational; fractional factors slow the pattern down.
func (p *Pattern) Fast(factor uzu.Time) (*Pattern, error) {
	if !factor.GreaterThan(uzu.NewTime(0)) {
		return nil, fmt.Errorf("fast: factor must be positive, got %s", factor)
	}
	return p.fastBy(factor), nil
}

// Slow stretches the pattern over factor cycles.
func (p *Pattern) Slow(factor uzu.Time) (*Pattern, error) {
	if !factor.GreaterThan(uzu.NewTime(0)) {
		return nil, fmt.Errorf("slow: factor must be positive, got %s", factor)
	}
	inv, _ := uzu.NewTime(1).Div(factor)
	return p.fastBy(inv), nil
}

// Early shifts events earlier by offset: the query is shifted forward on
// the way in and results shifted back on the way out, which correctly
// pulls events in from the next logical cycle.
func (p *Pattern) Early(offset uzu.Time) *Pattern {
	return p.
		withQueryTime(func(t uzu.Time) uzu.Time { return t.Add(offset) }).
		withHapTime(func(t uzu.Time) uzu.Time { return t.Sub(offset) })
}

// Late shifts events later by offset.
func (p *Pattern) Late(offset uzu.Time) *Pattern {
	return p.Early(offset.Neg())
}

// Ply replaces each event by n copies evenly spaced within its part.
func (p *Pattern) Ply(n int) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("ply: count must be positive, got %d", n)
	}
	inner := p
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, h := range inner.QuerySpan(span) {
			step, _ := h.Part.Duration().Div(uzu.NewTime(int64(n)))
			for i := 0; i < n; i++ {
				begin := h.Part.Begin.Add(step.Mul(uzu.NewTime(int64(i))))
				slice := uzu.NewTimeSpan(begin, begin.Add(step))
				copyh := h
				copyh.Part = slice
				if h.Whole != nil {
					w := slice
					copyh.Whole = &w
				}
				out = append(out, copyh)
			}
		}
		return out
	}), nil
}

// Compress squeezes each cycle of the pattern into the window
// [begin, end) of the cycle, leaving the rest silent.
func (p *Pattern) Compress(begin, end uzu.Time) (*Pattern, error) {
	zero, one := uzu.NewTime(0), uzu.NewTime(1)
	if begin.LessThan(zero) || end.GreaterThan(one) || begin.GreaterThanOrEqual(end) {
		return nil, fmt.Errorf("compress: need 0 <= begin < end <= 1, got [%s, %s)", begin, end)
	}
	inner := p
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		sam := cs.Begin.Sam()
		slot := uzu.NewTimeSpan(sam.Add(begin), sam.Add(end))
		return querySlot(inner, sam, slot, cs)
	}), nil
}

// Zoom plays only the [begin, end) window of each cycle, stretched to
// fill the whole cycle. Inverse of Compress on the window they share.
func (p *Pattern) Zoom(begin, end uzu.Time) (*Pattern, error) {
	zero, one := uzu.NewTime(0), uzu.NewTime(1)
	if begin.LessThan(zero) || end.GreaterThan(one) || begin.GreaterThanOrEqual(end) {
		return nil, fmt.Errorf("zoom: need 0 <= begin < end <= 1, got [%s, %s)", begin, end)
	}
	d := end.Sub(begin)
	inner := p
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		sam := cs.Begin.Sam()
		toChild := func(t uzu.Time) uzu.Time {
			return sam.Add(begin).Add(t.Sub(sam).Mul(d))
		}
		fromChild := func(t uzu.Time) uzu.Time {
			q, _ := t.Sub(sam).Sub(begin).Div(d)
			return sam.Add(q)
		}
		haps := inner.QuerySpan(cs.WithTime(toChild))
		var out []uzu.Hap
		for _, h := range haps {
			mapped := h.WithSpans(func(s uzu.TimeSpan) uzu.TimeSpan {
				return s.WithTime(fromChild)
			})
			clipped := mapped.Part.Intersection(cs)
			if clipped == nil {
				continue
			}
			mapped.Part = *clipped
			out = append(out, mapped)
		}
		return out
	}), nil
}

// Linger repeats the first fraction f of each cycle round(1/f) times.
func (p *Pattern) Linger(f uzu.Time) (*Pattern, error) {
	zero, one := uzu.NewTime(0), uzu.NewTime(1)
	if !f.GreaterThan(zero) || f.GreaterThan(one) {
		return nil, fmt.Errorf("linger: need 0 < f <= 1, got %s", f)
	}
	inv, _ := uzu.NewTime(1).Div(f)
	repeats := (inv.Num() + inv.Den()/2) / inv.Den() // round(1/f)
	if repeats < 1 {
		repeats = 1
	}
	inner := p
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		sam := cs.Begin.Sam()
		window := uzu.NewTimeSpan(sam, sam.Add(f))
		base := inner.QuerySpan(window)
		var out []uzu.Hap
		for i := int64(0); i < repeats; i++ {
			off := f.Mul(uzu.NewTime(i))
			for _, h := range base {
				out = append(out, h.Shift(off))
			}
		}
		return clipTo(out, cs)
	}), nil
}

// Inside applies fn at a slower timescale: fast(fn(slow(p, k)), k).
func (p *Pattern) Inside(k int64, fn func(*Pattern) *Pattern) (*Pattern, error) {
	if k <= 0 {
		return nil, fmt.Errorf("inside: factor must be positive, got %d", k)
	}
	factor := uzu.NewTime(k)
	slowed, _ := p.Slow(factor)
	return fn(slowed).Fast(factor)
}

// Outside applies fn at a faster timescale: slow(fn(fast(p, k)), k).
func (p *Pattern) Outside(k int64, fn func(*Pattern) *Pattern) (*Pattern, error) {
	if k <= 0 {
		return nil, fmt.Errorf("outside: factor must be positive, got %d", k)
	}
	factor := uzu.NewTime(k)
	sped, _ := p.Fast(factor)
	return fn(sped).Slow(factor)
}

// Within applies fn inside the [begin, end) window of each cycle: the
// transformed pattern plays where the window covers it, the original
// everywhere else.
func (p *Pattern) Within(begin, end uzu.Time, fn func(*Pattern) *Pattern) (*Pattern, error) {
	zero, one := uzu.NewTime(0), uzu.NewTime(1)
	if begin.LessThan(zero) || end.GreaterThan(one) || begin.GreaterThanOrEqual(end) {
		return nil, fmt.Errorf("within: need 0 <= begin < end <= 1, got [%s, %s)", begin, end)
	}
	member := func(h uzu.Hap) bool {
		t := h.Part.Begin
		if on, ok := h.Onset(); ok {
			t = on
		}
		pos := t.CyclePos()
		return pos.GreaterThanOrEqual(begin) && pos.LessThan(end)
	}
	insidePart := fn(p).filterHaps(member)
	outsidePart := p.filterHaps(func(h uzu.Hap) bool { return !member(h) })
	return Stack(insidePart, outsidePart), nil
}
