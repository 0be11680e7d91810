package uzu

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
)

// Time is an exact rational point on the pattern timeline. The numerator
// and denominator are kept reduced to lowest terms with den > 0, so two
// equal times are structurally equal. Arithmetic is exact; ToFloat is the
// one-way conversion used at the scheduler boundary, inside signal
// waveforms, and in numeric value comparison.
type Time struct {
	num int64
	den int64
}

// NewTime creates a Time from an integer number of cycles.
func NewTime(n int64) Time {
	return Time{num: n, den: 1}
}

// NewTimeFrac creates a Time from a numerator/denominator pair.
func NewTimeFrac(num, den int64) (Time, error) {
	if den == 0 {
		return Time{}, fmt.Errorf("time: zero denominator")
	}
	return reduce(num, den), nil
}

// Frac is NewTimeFrac for denominators known to be non-zero.
// It panics on a zero denominator, which is a programming error, not
// runtime data.
func Frac(num, den int64) Time {
	if den == 0 {
		panic("uzu: Frac with zero denominator")
	}
	return reduce(num, den)
}

// FromFloat converts a float to the nearest rational with denominator
// capped at 2^24, using continued fractions. It is intended for user
// input at the API boundary, never for the query loop.
func FromFloat(f float64) Time {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Time{num: 0, den: 1}
	}
	neg := f < 0
	if neg {
		f = -f
	}
	const maxDen = 1 << 24

	// Continued fraction expansion, tracking convergents.
	var h0, h1 int64 = 0, 1 // numerators
	var k0, k1 int64 = 1, 0 // denominators
	x := f
	for i := 0; i < 64; i++ {
		a := int64(math.Floor(x))
		h2 := a*h1 + h0
		k2 := a*k1 + k0
		if k2 > maxDen || h2 < 0 || k2 < 0 {
			break
		}
		h0, h1 = h1, h2
		k0, k1 = k1, k2
		frac := x - math.Floor(x)
		if frac < 1e-12 {
			break
		}
		x = 1 / frac
	}
	if neg {
		h1 = -h1
	}
	return reduce(h1, k1)
}

// EnsureTime coerces a Time, integer, float, or [2]int64 pair to Time.
func EnsureTime(v interface{}) (Time, error) {
	switch t := v.(type) {
	case Time:
		return t, nil
	case int:
		return NewTime(int64(t)), nil
	case int64:
		return NewTime(t), nil
	case float64:
		return FromFloat(t), nil
	case [2]int64:
		return NewTimeFrac(t[0], t[1])
	}
	return Time{}, fmt.Errorf("time: cannot convert %T to Time", v)
}

// reduce normalizes sign and divides out the GCD.
func reduce(num, den int64) Time {
	if den < 0 {
		num = -num
		den = -den
	}
	if num == 0 {
		return Time{num: 0, den: 1}
	}
	g := gcd64(abs64(num), den)
	return Time{num: num / g, den: den / g}
}

func gcd64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

// mulChecked multiplies two int64s, reporting false when the product
// overflows. Callers then redo the operation through ratBig, which
// panics on a result that does not fit int64 rather than silently
// wrapping.
func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	neg := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(uint64(abs64(a)), uint64(abs64(b)))
	if hi != 0 || lo > uint64(math.MaxInt64) {
		return 0, false
	}
	r := int64(lo)
	if neg {
		r = -r
	}
	return r, true
}

// ratBig performs an operation through math/big when int64 overflows.
func ratBig(an, ad, bn, bd int64, op func(a, b *big.Rat) *big.Rat) Time {
	a := new(big.Rat).SetFrac(big.NewInt(an), big.NewInt(ad))
	b := new(big.Rat).SetFrac(big.NewInt(bn), big.NewInt(bd))
	res := op(a, b)
	if !res.Num().IsInt64() || !res.Denom().IsInt64() {
		panic(fmt.Sprintf("uzu: time arithmetic overflow: %s", res.RatString()))
	}
	return Time{num: res.Num().Int64(), den: res.Denom().Int64()}
}

// norm maps the zero value (0/0) onto canonical zero time.
func (t Time) norm() Time {
	if t.den == 0 {
		t.den = 1
	}
	return t
}

// Add returns t + o.
func (t Time) Add(o Time) Time {
	t, o = t.norm(), o.norm()
	// Cross-reduce before multiplying to keep intermediates small.
	g := gcd64(t.den, o.den)
	ad, bd := t.den/g, o.den/g
	x, ok1 := mulChecked(t.num, bd)
	y, ok2 := mulChecked(o.num, ad)
	d, ok3 := mulChecked(t.den, bd)
	if ok1 && ok2 && ok3 {
		sum := x + y
		// Detect addition overflow by sign.
		if (x > 0 && y > 0 && sum < 0) || (x < 0 && y < 0 && sum > 0) {
			return ratBig(t.num, t.den, o.num, o.den, func(a, b *big.Rat) *big.Rat { return a.Add(a, b) })
		}
		return reduce(sum, d)
	}
	return ratBig(t.num, t.den, o.num, o.den, func(a, b *big.Rat) *big.Rat { return a.Add(a, b) })
}

// Sub returns t - o.
func (t Time) Sub(o Time) Time {
	return t.Add(o.Neg())
}

// Mul returns t * o.
func (t Time) Mul(o Time) Time {
	t, o = t.norm(), o.norm()
	// Cross-reduce diagonally.
	g1 := gcd64(abs64(t.num), o.den)
	g2 := gcd64(abs64(o.num), t.den)
	an := t.num / g1
	bn := o.num / g2
	ad := t.den / g2
	bd := o.den / g1
	n, ok1 := mulChecked(an, bn)
	d, ok2 := mulChecked(ad, bd)
	if ok1 && ok2 {
		return reduce(n, d)
	}
	return ratBig(t.num, t.den, o.num, o.den, func(a, b *big.Rat) *big.Rat { return a.Mul(a, b) })
}

// Div returns t / o; dividing by zero is an error.
func (t Time) Div(o Time) (Time, error) {
	if o.num == 0 {
		return Time{}, fmt.Errorf("time: division by zero")
	}
	return t.Mul(Time{num: o.den, den: o.num}.normSign()), nil
}

// normSign restores the den > 0 invariant after an inversion.
func (t Time) normSign() Time {
	if t.den < 0 {
		return Time{num: -t.num, den: -t.den}
	}
	return t
}

// Neg returns -t.
func (t Time) Neg() Time {
	return Time{num: -t.num, den: t.den}
}

// Inverse returns 1/t; zero is an error.
func (t Time) Inverse() (Time, error) {
	return NewTime(1).Div(t)
}

// Cmp compares t with o, returning -1, 0, or 1.
func (t Time) Cmp(o Time) int {
	d := t.Sub(o)
	switch {
	case d.num < 0:
		return -1
	case d.num > 0:
		return 1
	}
	return 0
}

// Equal reports exact equality.
func (t Time) Equal(o Time) bool {
	t, o = t.norm(), o.norm()
	return t.num == o.num && t.den == o.den
}

// LessThan reports t < o.
func (t Time) LessThan(o Time) bool { return t.Cmp(o) < 0 }

// LessThanOrEqual reports t <= o.
func (t Time) LessThanOrEqual(o Time) bool { return t.Cmp(o) <= 0 }

// GreaterThan reports t > o.
func (t Time) GreaterThan(o Time) bool { return t.Cmp(o) > 0 }

// GreaterThanOrEqual reports t >= o.
func (t Time) GreaterThanOrEqual(o Time) bool { return t.Cmp(o) >= 0 }

// MaxTime returns the larger of a and b.
func MaxTime(a, b Time) Time {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// MinTime returns the smaller of a and b.
func MinTime(a, b Time) Time {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Floor returns the greatest integer <= t.
func (t Time) Floor() int64 {
	t = t.norm()
	q := t.num / t.den
	if t.num%t.den != 0 && t.num < 0 {
		q--
	}
	return q
}

// Sam returns the start of the cycle containing t, as a Time.
func (t Time) Sam() Time { return NewTime(t.Floor()) }

// CycleOf returns the integer cycle containing t.
func (t Time) CycleOf() int64 { return t.Floor() }

// NextSam returns the next integer boundary strictly greater than t.
func (t Time) NextSam() Time { return NewTime(t.Floor() + 1) }

// CyclePos returns the position of t within its cycle, in [0, 1).
func (t Time) CyclePos() Time { return t.Sub(t.Sam()) }

// ToFloat converts to float64. One-way; used at the scheduler boundary,
// in signal waveform math, and when value maps compare numbers.
func (t Time) ToFloat() float64 {
	t = t.norm()
	return float64(t.num) / float64(t.den)
}

// Num returns the reduced numerator.
func (t Time) Num() int64 { return t.num }

// Den returns the reduced denominator.
func (t Time) Den() int64 {
	if t.den == 0 {
		return 1 // zero value of Time is 0/1
	}
	return t.den
}

// IsZero reports t == 0. The zero value of Time is zero time.
func (t Time) IsZero() bool { return t.num == 0 }

// String returns "n" for whole cycles, "n/d" otherwise.
func (t Time) String() string {
	t = t.norm()
	if t.den == 1 {
		return fmt.Sprintf("%d", t.num)
	}
	return fmt.Sprintf("%d/%d", t.num, t.den)
}
