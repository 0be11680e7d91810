package pattern

import (
	"fmt"

	"github.com/wbrown/uzu-pattern/uzu"
)

// Bjorklund distributes pulses across steps as evenly as possible, by
// the recursive pairing construction: start with pulses [1]-lists and
// steps-pulses [0]-lists, repeatedly zip the shorter side onto the
// longer with the remainder carried forward.
func Bjorklund(pulses, steps int) []bool {
	if steps <= 0 {
		return nil
	}
	out := make([]bool, 0, steps)
	if pulses <= 0 {
		return make([]bool, steps)
	}
	if pulses >= steps {
		for i := 0; i < steps; i++ {
			out = append(out, true)
		}
		return out
	}

	a := make([][]bool, pulses)
	for i := range a {
		a[i] = []bool{true}
	}
	b := make([][]bool, steps-pulses)
	for i := range b {
		b[i] = []bool{false}
	}

	for len(b) > 1 && len(a) > 1 {
		m := len(a)
		if len(b) < m {
			m = len(b)
		}
		paired := make([][]bool, 0, m)
		for i := 0; i < m; i++ {
			paired = append(paired, append(append([]bool{}, a[i]...), b[i]...))
		}
		var rest [][]bool
		if len(a) > m {
			rest = a[m:]
		} else {
			rest = b[m:]
		}
		a = paired
		b = rest
	}

	for _, group := range a {
		out = append(out, group...)
	}
	for _, group := range b {
		out = append(out, group...)
	}
	return out
}

// Rotate rotates a rhythm left by off steps.
func Rotate(bits []bool, off int) []bool {
	n := len(bits)
	if n == 0 {
		return bits
	}
	off = ((off % n) + n) % n
	return append(append([]bool{}, bits[off:]...), bits[:off]...)
}

// Euclid keeps events at the pulses of the Euclidean rhythm: step i of
// each cycle fires when the Bjorklund bit at i is set, taking its value
// from the base pattern's events for that cycle.
func (p *Pattern) Euclid(pulses, steps int) (*Pattern, error) {
	return p.euclidRhythm(pulses, steps, 0)
}

// EuclidRot is Euclid with the rhythm rotated left by rot steps.
func (p *Pattern) EuclidRot(pulses, steps, rot int) (*Pattern, error) {
	return p.euclidRhythm(pulses, steps, rot)
}

func (p *Pattern) euclidRhythm(pulses, steps, rot int) (*Pattern, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("euclid: steps must be positive, got %d", steps)
	}
	if pulses < 0 || pulses > steps {
		return nil, fmt.Errorf("euclid: need 0 <= pulses <= steps, got (%d, %d)", pulses, steps)
	}
	bits := Rotate(Bjorklund(pulses, steps), rot)
	inner := p
	n := int64(steps)
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		sam := cs.Begin.Sam()
		base := uzu.SortHaps(inner.QuerySpan(uzu.NewTimeSpan(sam, sam.NextSam())))
		if len(base) == 0 {
			return nil
		}
		var out []uzu.Hap
		for i := int64(0); i < n; i++ {
			if !bits[i] {
				continue
			}
			src := base[int(i)%len(base)]
			slot := uzu.NewTimeSpan(sam.Add(uzu.Frac(i, n)), sam.Add(uzu.Frac(i+1, n)))
			h := uzu.Discrete(slot, src.Value.Copy(), src.Context)
			isect := h.Part.Intersection(cs)
			if isect == nil {
				continue
			}
			h.Part = *isect
			out = append(out, h)
		}
		return out
	}), nil
}

// SwingBy delays events in the second half of each 1/n slice by
// amount * 1/(2n), wrapping within the cycle.
func (p *Pattern) SwingBy(amount uzu.Time, n int64) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("swing: slice count must be positive, got %d", n)
	}
	shift, _ := amount.Div(uzu.NewTime(2 * n))
	inner := p
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		sam := cs.Begin.Sam()
		// Query the whole cycle so shifted events clipped by cs are
		// still seen, then clip at the end.
		haps := inner.QuerySpan(uzu.NewTimeSpan(sam, sam.NextSam()))
		var out []uzu.Hap
		for _, h := range haps {
			t := h.Part.Begin
			if on, ok := h.Onset(); ok {
				t = on
			}
			pos := t.CyclePos()
			slice := pos.Mul(uzu.NewTime(n)).Floor()
			mid := uzu.Frac(2*slice+1, 2*n)
			if pos.GreaterThanOrEqual(mid) {
				shifted := h.Shift(shift)
				// Wrap events pushed past the cycle boundary.
				if on, ok := shifted.Onset(); ok && on.GreaterThanOrEqual(sam.NextSam()) {
					shifted = shifted.Shift(uzu.NewTime(-1))
				}
				h = shifted
			}
			out = append(out, h)
		}
		return clipTo(out, cs)
	}), nil
}

// Swing is SwingBy with a classic 1/3 feel.
func (p *Pattern) Swing(n int64) (*Pattern, error) {
	return p.SwingBy(uzu.Frac(1, 3), n)
}
