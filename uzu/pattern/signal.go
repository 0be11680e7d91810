package pattern

import (
	"fmt"
	"math"

	"github.com/wbrown/uzu-pattern/uzu"
)

// metaTimeFn is the metadata key carrying a signal's waveform function.
// Keeping the function in metadata is what lets Range and Segment
// compose without losing sub-cycle continuity.
const metaTimeFn = "timeFn"

// TimeFn is a continuous waveform sampled at float cycle positions.
type TimeFn func(float64) float64

// Signal builds a continuous pattern from a waveform: each queried
// cycle yields one continuous hap spanning the cycle (clipped to the
// query), valued at the cycle start.
func Signal(fn TimeFn) *Pattern {
	p := perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		return []uzu.Hap{uzu.Continuous(cs, uzu.Value{"value": fn(cs.Begin.Sam().ToFloat())}, uzu.Context{})}
	})
	return p.WithMeta(metaTimeFn, fn)
}

// timeFn returns the stored waveform, if the pattern is a signal.
func (p *Pattern) timeFn() (TimeFn, bool) {
	v, ok := p.Meta(metaTimeFn)
	if !ok {
		return nil, false
	}
	fn, ok := v.(TimeFn)
	return fn, ok
}

func fract(t float64) float64 {
	return t - math.Floor(t)
}

// Sine is a unipolar sine wave over [0, 1], period one cycle.
func Sine() *Pattern {
	return Signal(func(t float64) float64 {
		return math.Sin(2*math.Pi*t)*0.5 + 0.5
	})
}

// Saw ramps 0 to 1 over each cycle.
func Saw() *Pattern {
	return Signal(fract)
}

// ISaw ramps 1 to 0 over each cycle.
func ISaw() *Pattern {
	return Signal(func(t float64) float64 { return 1 - fract(t) })
}

// Tri is a triangle wave over [0, 1], period one cycle.
func Tri() *Pattern {
	return Signal(func(t float64) float64 {
		return 1 - math.Abs(2*fract(t)-1)
	})
}

// Square is 0 for the first half of each cycle, 1 for the second.
func Square() *Pattern {
	return Signal(func(t float64) float64 {
		if fract(t) < 0.5 {
			return 0
		}
		return 1
	})
}

// Rand yields a fixed random value per cycle, seeded by the cycle.
func Rand() *Pattern {
	return Signal(func(t float64) float64 {
		return cycleRand(int64(math.Floor(t)))
	})
}

// IRand yields a seeded random integer in [0, n) per cycle.
func IRand(n int) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("irand: range must be positive, got %d", n)
	}
	return Signal(func(t float64) float64 {
		return math.Floor(cycleRand(int64(math.Floor(t))) * float64(n))
	}), nil
}

// Range rescales a unipolar signal to [lo, hi], composing into the
// stored waveform so fractional-time sampling stays continuous.
func (p *Pattern) Range(lo, hi float64) *Pattern {
	return p.mapSignal(func(x float64) float64 {
		return lo + x*(hi-lo)
	})
}

// RangeX rescales exponentially to [lo, hi]; both bounds must be
// positive.
func (p *Pattern) RangeX(lo, hi float64) (*Pattern, error) {
	if lo <= 0 || hi <= 0 {
		return nil, fmt.Errorf("rangex: bounds must be positive, got [%v, %v]", lo, hi)
	}
	return p.mapSignal(func(x float64) float64 {
		return lo * math.Pow(hi/lo, x)
	}), nil
}

// WithValue maps the numeric payload under every hap.
func (p *Pattern) WithValue(fn func(float64) float64) *Pattern {
	return p.mapSignal(fn)
}

// mapSignal composes fn over the "value" key of every hap, and over the
// stored waveform when the pattern is a signal.
func (p *Pattern) mapSignal(fn func(float64) float64) *Pattern {
	out := p.FMap(func(v uzu.Value) uzu.Value {
		mapped := v.Copy()
		if x, ok := uzu.NumberValue(v["value"]); ok {
			mapped["value"] = fn(x)
		}
		return mapped
	})
	if tf, ok := p.timeFn(); ok {
		out = out.WithMeta(metaTimeFn, TimeFn(func(t float64) float64 {
			return fn(tf(t))
		}))
	}
	return out
}

// Segment discretizes a signal into n events per cycle, each sampled at
// its slot's begin.
func (p *Pattern) Segment(n int64) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("segment: slice count must be positive, got %d", n)
	}
	inner := p
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		sam := cs.Begin.Sam()
		var out []uzu.Hap
		for i := int64(0); i < n; i++ {
			slot := uzu.NewTimeSpan(sam.Add(uzu.Frac(i, n)), sam.Add(uzu.Frac(i+1, n)))
			isect := slot.Intersection(cs)
			if isect == nil {
				continue
			}
			h := uzu.Discrete(slot, uzu.Value{"value": inner.SampleAt(slot.Begin.ToFloat())}, uzu.Context{})
			h.Part = *isect
			out = append(out, h)
		}
		return out
	}), nil
}

// SampleAt samples the pattern's numeric value at a point in time:
// signals evaluate their waveform directly; other patterns are queried
// at the containing cycle and the first hap's numeric value wins.
func (p *Pattern) SampleAt(t float64) float64 {
	if fn, ok := p.timeFn(); ok {
		return fn(t)
	}
	v, _, ok := p.ValueAt(uzu.FromFloat(t))
	if !ok {
		return 0
	}
	x, _ := numericOf(v)
	return x
}

// ValueAt returns the value and context of the hap sounding at time t,
// preferring the hap whose part contains t, falling back to the first
// hap of the cycle.
func (p *Pattern) ValueAt(t uzu.Time) (uzu.Value, uzu.Context, bool) {
	if fn, ok := p.timeFn(); ok {
		return uzu.Value{"value": fn(t.ToFloat())}, uzu.Context{}, true
	}
	c := t.CycleOf()
	haps := p.QuerySpan(uzu.CycleSpan(c))
	if len(haps) == 0 {
		return nil, uzu.Context{}, false
	}
	uzu.SortHaps(haps)
	for _, h := range haps {
		if h.Part.Contains(t) {
			return h.Value, h.Context, true
		}
	}
	return haps[0].Value, haps[0].Context, true
}
