package pattern

import (
	"fmt"
	"math"

	"github.com/wbrown/uzu-pattern/uzu"
)

// onsetTolerance is the matching window for Struct and Mask.
var onsetTolerance = uzu.Frac(1, 1000)

// Rev reverses each cycle in place: time within the cycle is reflected,
// so the reversal is intra-cycle. Combine with Every or Palindrome for
// cross-cycle shapes.
func (p *Pattern) Rev() *Pattern {
	inner := p
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		pivot := cs.Begin.Sam().Add(cs.Begin.NextSam())
		reflect := func(t uzu.Time) uzu.Time { return pivot.Sub(t) }
		reflectSpan := func(s uzu.TimeSpan) uzu.TimeSpan {
			return uzu.NewTimeSpan(reflect(s.End), reflect(s.Begin))
		}
		haps := inner.QuerySpan(reflectSpan(cs))
		out := make([]uzu.Hap, 0, len(haps))
		for _, h := range haps {
			out = append(out, h.WithSpans(reflectSpan))
		}
		return out
	})
}

// Palindrome alternates forward and reversed cycles.
func (p *Pattern) Palindrome() *Pattern {
	return SlowCat(p, p.Rev())
}

// Struct keeps events of p only at onsets where the structure pattern
// has an event at matching time.
func (p *Pattern) Struct(structure *Pattern) *Pattern {
	return p.keepMatching(structure, func(uzu.Hap) bool { return true })
}

// Mask keeps events of p only at onsets where the mask has a non-silent
// event. Mask values "0", "~", and "rest" count as silent.
func (p *Pattern) Mask(mask *Pattern) *Pattern {
	return p.keepMatching(mask, func(h uzu.Hap) bool { return !isSilentValue(h.Value) })
}

func isSilentValue(v uzu.Value) bool {
	for _, key := range []string{"s", "value"} {
		if s, ok := v[key].(string); ok {
			switch s {
			case "0", "~", "rest":
				return true
			}
		}
	}
	return false
}

func (p *Pattern) keepMatching(gate *Pattern, counts func(uzu.Hap) bool) *Pattern {
	inner, gatePat := p, gate
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var onsets []uzu.Time
		for _, g := range gatePat.QuerySpan(span) {
			if on, ok := g.Onset(); ok && counts(g) {
				onsets = append(onsets, on)
			}
		}
		var out []uzu.Hap
		for _, h := range inner.QuerySpan(span) {
			on, ok := h.Onset()
			if !ok {
				continue
			}
			for _, g := range onsets {
				diff := on.Sub(g)
				if diff.LessThan(uzu.NewTime(0)) {
					diff = diff.Neg()
				}
				if diff.LessThan(onsetTolerance) {
					out = append(out, h)
					break
				}
			}
		}
		return out
	})
}

// DegradeBy drops each event with probability q, deterministically per
// cycle: the draw is keyed on the cycle and the event's onset, so a
// re-query makes the same drops.
func (p *Pattern) DegradeBy(q float64) (*Pattern, error) {
	if q < 0 || q > 1 {
		return nil, fmt.Errorf("degrade: probability must be in [0, 1], got %v", q)
	}
	return p.filterHaps(func(h uzu.Hap) bool {
		t := h.Part.Begin
		if on, ok := h.Onset(); ok {
			t = on
		}
		return hapRand(t.CycleOf(), t) >= q
	}), nil
}

// Degrade drops each event with probability 1/2.
func (p *Pattern) Degrade() *Pattern {
	out, _ := p.DegradeBy(0.5)
	return out
}

// JuxBy pans the original pattern left and a transformed copy right by
// amt.
func (p *Pattern) JuxBy(amt float64, fn func(*Pattern) *Pattern) *Pattern {
	left := p.setValueKey("pan", -amt)
	right := fn(p).setValueKey("pan", amt)
	return Stack(left, right)
}

// Jux is JuxBy with full stereo separation.
func (p *Pattern) Jux(fn func(*Pattern) *Pattern) *Pattern {
	return p.JuxBy(1, fn)
}

// setValueKey sets a parameter on every hap's value map.
func (p *Pattern) setValueKey(key string, v interface{}) *Pattern {
	return p.FMap(func(val uzu.Value) uzu.Value {
		out := val.Copy()
		out[key] = v
		return out
	})
}

// Superimpose layers a transformed copy on top of the pattern.
func (p *Pattern) Superimpose(fn func(*Pattern) *Pattern) *Pattern {
	return Stack(p, fn(p))
}

// Off layers a transformed copy shifted later by dt.
func (p *Pattern) Off(dt uzu.Time, fn func(*Pattern) *Pattern) *Pattern {
	return Stack(p, fn(p).Late(dt))
}

// Echo layers n delayed copies over the pattern, the i-th shifted by
// i*dt (wrapped into the cycle) with gain scaled by feedback^i.
func (p *Pattern) Echo(n int, dt uzu.Time, feedback float64) (*Pattern, error) {
	if n < 0 {
		return nil, fmt.Errorf("echo: copy count must be non-negative, got %d", n)
	}
	layers := []*Pattern{p}
	for i := 1; i <= n; i++ {
		off := dt.Mul(uzu.NewTime(int64(i)))
		off = off.Sub(uzu.NewTime(off.Floor())) // wrap into the cycle
		gain := math.Pow(feedback, float64(i))
		layers = append(layers, p.Late(off).FMap(func(v uzu.Value) uzu.Value {
			out := v.Copy()
			g := 1.0
			if cur, ok := uzu.NumberValue(out["gain"]); ok {
				g = cur
			}
			out["gain"] = g * gain
			return out
		}))
	}
	return Stack(layers...), nil
}

// Chop slices each event into n equal sub-events, writing begin/end
// sample offsets relative to the event's own slice window.
func (p *Pattern) Chop(n int) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("chop: slice count must be positive, got %d", n)
	}
	return p.sliceHaps(n, func(h uzu.Hap, i int) (float64, float64) {
		b0, e0 := 0.0, 1.0
		if v, ok := uzu.NumberValue(h.Value["begin"]); ok {
			b0 = v
		}
		if v, ok := uzu.NumberValue(h.Value["end"]); ok {
			e0 = v
		}
		w := (e0 - b0) / float64(n)
		return b0 + float64(i)*w, b0 + float64(i+1)*w
	}), nil
}

// Striate slices each event into n sub-events; sub-event i gets begin/end
// offsets i/n and (i+1)/n of the whole sample, replacing any offsets the
// event already carried.
func (p *Pattern) Striate(n int) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("striate: slice count must be positive, got %d", n)
	}
	return p.sliceHaps(n, func(_ uzu.Hap, i int) (float64, float64) {
		return float64(i) / float64(n), float64(i+1) / float64(n)
	}), nil
}

func (p *Pattern) sliceHaps(n int, offsets func(uzu.Hap, int) (float64, float64)) *Pattern {
	inner := p
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, h := range inner.QuerySpan(span) {
			step, _ := h.Part.Duration().Div(uzu.NewTime(int64(n)))
			for i := 0; i < n; i++ {
				begin := h.Part.Begin.Add(step.Mul(uzu.NewTime(int64(i))))
				slice := uzu.NewTimeSpan(begin, begin.Add(step))
				sub := h
				sub.Part = slice
				if h.Whole != nil {
					w := slice
					sub.Whole = &w
				}
				b, e := offsets(h, i)
				val := h.Value.Copy()
				val["begin"] = b
				val["end"] = e
				sub.Value = val
				out = append(out, sub)
			}
		}
		return out
	})
}
