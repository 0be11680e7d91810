package pattern

import (
	"github.com/wbrown/uzu-pattern/uzu"
)

// Deterministic randomness. Every random draw in the library is keyed on
// the integer cycle being queried, so querying the same cycle twice is
// byte-identical. There is no global RNG state anywhere.

// splitmix64 is the mixing function behind all seeded draws.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// cycleSeed derives the per-cycle seed from (c, 7c, 13c).
func cycleSeed(c int64) uint64 {
	return splitmix64(uint64(c)) ^ splitmix64(uint64(c*7)) ^ splitmix64(uint64(c*13))
}

// seedFloat maps a seed to [0, 1).
func seedFloat(seed uint64) float64 {
	return float64(splitmix64(seed)>>11) / float64(uint64(1)<<53)
}

// cycleRand returns the fixed random float of a cycle.
func cycleRand(c int64) float64 {
	return seedFloat(cycleSeed(c))
}

// cycleRandN returns a fixed random integer in [0, n) for a cycle.
func cycleRandN(c int64, n int) int {
	if n <= 0 {
		return 0
	}
	return int(cycleRand(c) * float64(n))
}

// hapRand returns the random float of an event at time t within cycle c.
// Mixing the onset's reduced numerator and denominator into the seed
// makes the draw independent of result order within the cycle, so the
// same hap gets the same draw on every re-query.
func hapRand(c int64, t uzu.Time) float64 {
	seed := cycleSeed(c)
	seed = splitmix64(seed ^ uint64(t.Num()))
	seed = splitmix64(seed ^ uint64(t.Den()))
	return seedFloat(seed)
}
