package pattern

import (
	"fmt"

	"github.com/wbrown/uzu-pattern/uzu"
)

// perCycleSelect builds a pattern that picks one of the given variants
// per cycle. The choice function receives the cycle index.
func perCycleSelect(variants []*Pattern, choose func(c int64) int) *Pattern {
	return perCycle(func(cs uzu.TimeSpan) []uzu.Hap {
		i := choose(cs.CycleOf())
		if i < 0 || i >= len(variants) {
			return nil
		}
		return variants[i].QuerySpan(cs)
	})
}

// Every applies fn on every n-th cycle, starting at cycle 0.
func (p *Pattern) Every(n int64, fn func(*Pattern) *Pattern) (*Pattern, error) {
	return p.EveryOffset(n, 0, fn)
}

// EveryOffset applies fn on cycles where c mod n == offset.
func (p *Pattern) EveryOffset(n, offset int64, fn func(*Pattern) *Pattern) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("every: cycle count must be positive, got %d", n)
	}
	variants := []*Pattern{p, fn(p)}
	off := floorMod(offset, n)
	return perCycleSelect(variants, func(c int64) int {
		if floorMod(c, n) == off {
			return 1
		}
		return 0
	}), nil
}

// FirstOf applies fn on the first cycle of each group of n.
func (p *Pattern) FirstOf(n int64, fn func(*Pattern) *Pattern) (*Pattern, error) {
	return p.EveryOffset(n, 0, fn)
}

// LastOf applies fn on the last cycle of each group of n.
func (p *Pattern) LastOf(n int64, fn func(*Pattern) *Pattern) (*Pattern, error) {
	return p.EveryOffset(n, n-1, fn)
}

// WhenFn applies fn on cycles where cond holds.
func (p *Pattern) WhenFn(cond func(cycle int64) bool, fn func(*Pattern) *Pattern) *Pattern {
	variants := []*Pattern{p, fn(p)}
	return perCycleSelect(variants, func(c int64) int {
		if cond(c) {
			return 1
		}
		return 0
	})
}

// SometimesBy applies fn with the given probability per cycle, seeded
// from the cycle index.
func (p *Pattern) SometimesBy(prob float64, fn func(*Pattern) *Pattern) (*Pattern, error) {
	if prob < 0 || prob > 1 {
		return nil, fmt.Errorf("sometimes: probability must be in [0, 1], got %v", prob)
	}
	variants := []*Pattern{p, fn(p)}
	return perCycleSelect(variants, func(c int64) int {
		if cycleRand(c) < prob {
			return 1
		}
		return 0
	}), nil
}

// Sometimes applies fn half the time.
func (p *Pattern) Sometimes(fn func(*Pattern) *Pattern) *Pattern {
	out, _ := p.SometimesBy(0.5, fn)
	return out
}

// Often applies fn three quarters of the time.
func (p *Pattern) Often(fn func(*Pattern) *Pattern) *Pattern {
	out, _ := p.SometimesBy(0.75, fn)
	return out
}

// Rarely applies fn a quarter of the time.
func (p *Pattern) Rarely(fn func(*Pattern) *Pattern) *Pattern {
	out, _ := p.SometimesBy(0.25, fn)
	return out
}

// Iter rotates the pattern earlier by r/n on cycle r of each group of
// n, cycling through every phase.
func (p *Pattern) Iter(n int64) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("iter: step count must be positive, got %d", n)
	}
	variants := make([]*Pattern, n)
	for r := int64(0); r < n; r++ {
		variants[r] = p.Early(uzu.Frac(r, n))
	}
	return perCycleSelect(variants, func(c int64) int {
		return int(floorMod(c, n))
	}), nil
}

// IterBack rotates through the phases in the opposite direction.
func (p *Pattern) IterBack(n int64) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("iter: step count must be positive, got %d", n)
	}
	variants := make([]*Pattern, n)
	for r := int64(0); r < n; r++ {
		variants[r] = p.Early(uzu.Frac(n-r, n))
	}
	return perCycleSelect(variants, func(c int64) int {
		return int(floorMod(c, n))
	}), nil
}

// Chunk applies fn to one 1/n slice of the cycle, stepping through the
// slices cycle by cycle.
func (p *Pattern) Chunk(n int64, fn func(*Pattern) *Pattern) (*Pattern, error) {
	return p.chunkBy(n, fn, false)
}

// ChunkBack steps through the slices in reverse order.
func (p *Pattern) ChunkBack(n int64, fn func(*Pattern) *Pattern) (*Pattern, error) {
	return p.chunkBy(n, fn, true)
}

func (p *Pattern) chunkBy(n int64, fn func(*Pattern) *Pattern, back bool) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("chunk: slice count must be positive, got %d", n)
	}
	variants := make([]*Pattern, n)
	for k := int64(0); k < n; k++ {
		v, err := p.Within(uzu.Frac(k, n), uzu.Frac(k+1, n), fn)
		if err != nil {
			return nil, err
		}
		variants[k] = v
	}
	return perCycleSelect(variants, func(c int64) int {
		k := floorMod(c, n)
		if back {
			k = n - 1 - k
		}
		return int(k)
	}), nil
}
