package uzu

import (
	"testing"
)

func TestTimeReduction(t *testing.T) {
	a := Frac(2, 4)
	b := Frac(1, 2)
	if !a.Equal(b) {
		t.Errorf("expected 2/4 to reduce to 1/2, got %s", a)
	}
	if a.Num() != 1 || a.Den() != 2 {
		t.Errorf("expected reduced 1/2, got %d/%d", a.Num(), a.Den())
	}

	c := Frac(-3, -6)
	if !c.Equal(b) {
		t.Errorf("expected -3/-6 to reduce to 1/2, got %s", c)
	}

	d := Frac(3, -6)
	if !d.Equal(Frac(-1, 2)) {
		t.Errorf("expected 3/-6 to reduce to -1/2, got %s", d)
	}
}

func TestTimeExactThirds(t *testing.T) {
	third := Frac(1, 3)
	sum := third.Add(third).Add(third)
	if !sum.Equal(NewTime(1)) {
		t.Errorf("1/3 + 1/3 + 1/3 should be exactly 1, got %s", sum)
	}
}

func TestTimeArithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  Time
		want Time
	}{
		{"add", Frac(1, 4).Add(Frac(1, 6)), Frac(5, 12)},
		{"sub", Frac(1, 2).Sub(Frac(1, 3)), Frac(1, 6)},
		{"mul", Frac(2, 3).Mul(Frac(3, 4)), Frac(1, 2)},
		{"neg", Frac(1, 2).Neg(), Frac(-1, 2)},
		{"max", MaxTime(Frac(1, 3), Frac(1, 2)), Frac(1, 2)},
		{"min", MinTime(Frac(1, 3), Frac(1, 2)), Frac(1, 3)},
	}
	for _, tc := range tests {
		if !tc.got.Equal(tc.want) {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, tc.got)
		}
	}
}

func TestTimeDiv(t *testing.T) {
	q, err := Frac(1, 2).Div(Frac(1, 4))
	if err != nil {
		t.Fatalf("division failed: %v", err)
	}
	if !q.Equal(NewTime(2)) {
		t.Errorf("expected (1/2)/(1/4) = 2, got %s", q)
	}

	if _, err := NewTime(1).Div(NewTime(0)); err == nil {
		t.Error("expected error dividing by zero")
	}
}

func TestTimeFrac(t *testing.T) {
	if _, err := NewTimeFrac(1, 0); err == nil {
		t.Error("expected error for zero denominator")
	}
	v, err := NewTimeFrac(6, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(Frac(3, 4)) {
		t.Errorf("expected 3/4, got %s", v)
	}
}

func TestTimeFloor(t *testing.T) {
	tests := []struct {
		in   Time
		want int64
	}{
		{Frac(5, 2), 2},
		{NewTime(3), 3},
		{Frac(-1, 2), -1},
		{Frac(-5, 2), -3},
		{NewTime(0), 0},
		{NewTime(-2), -2},
	}
	for _, tc := range tests {
		if got := tc.in.Floor(); got != tc.want {
			t.Errorf("floor(%s): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestTimeSamAndNextSam(t *testing.T) {
	v := Frac(7, 2)
	if !v.Sam().Equal(NewTime(3)) {
		t.Errorf("expected sam 3, got %s", v.Sam())
	}
	if !v.NextSam().Equal(NewTime(4)) {
		t.Errorf("expected next sam 4, got %s", v.NextSam())
	}
	if !v.CyclePos().Equal(Frac(1, 2)) {
		t.Errorf("expected cycle pos 1/2, got %s", v.CyclePos())
	}
	// Integer boundary: next sam is strictly greater.
	w := NewTime(2)
	if !w.NextSam().Equal(NewTime(3)) {
		t.Errorf("expected next sam of 2 to be 3, got %s", w.NextSam())
	}
}

func TestTimeComparison(t *testing.T) {
	a, b := Frac(1, 3), Frac(1, 2)
	if !a.LessThan(b) || a.GreaterThan(b) {
		t.Error("expected 1/3 < 1/2")
	}
	if !a.LessThanOrEqual(a) || !a.GreaterThanOrEqual(a) {
		t.Error("expected 1/3 <= 1/3 and 1/3 >= 1/3")
	}
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Error("Cmp disagrees with ordering")
	}
}

func TestFromFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want Time
	}{
		{0.5, Frac(1, 2)},
		{0.25, Frac(1, 4)},
		{2, NewTime(2)},
		{-0.75, Frac(-3, 4)},
		{1.0 / 3.0, Frac(1, 3)},
	}
	for _, tc := range tests {
		if got := FromFloat(tc.in); !got.Equal(tc.want) {
			t.Errorf("FromFloat(%v): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestEnsureTime(t *testing.T) {
	v, err := EnsureTime(3)
	if err != nil || !v.Equal(NewTime(3)) {
		t.Errorf("EnsureTime(3): got %s, %v", v, err)
	}
	v, err = EnsureTime([2]int64{3, 4})
	if err != nil || !v.Equal(Frac(3, 4)) {
		t.Errorf("EnsureTime([3 4]): got %s, %v", v, err)
	}
	v, err = EnsureTime(0.5)
	if err != nil || !v.Equal(Frac(1, 2)) {
		t.Errorf("EnsureTime(0.5): got %s, %v", v, err)
	}
	if _, err := EnsureTime("nope"); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestTimeNoDriftOverManyCycles(t *testing.T) {
	// Accumulating thirds for 300 steps lands exactly on 100.
	step := Frac(1, 3)
	acc := NewTime(0)
	for i := 0; i < 300; i++ {
		acc = acc.Add(step)
	}
	if !acc.Equal(NewTime(100)) {
		t.Errorf("accumulated 300 thirds should be exactly 100, got %s", acc)
	}
}

func TestTimeLargeDenominators(t *testing.T) {
	a := Frac(1, 1<<31)
	b := Frac(1, (1<<31)-1)
	sum := a.Add(b)
	want := Frac((1<<32)-1, (1<<31)*((1<<31)-1))
	if !sum.Equal(want) {
		t.Errorf("expected %s, got %s", want, sum)
	}
}

func TestTimeZeroValue(t *testing.T) {
	var zero Time
	if !zero.Equal(NewTime(0)) {
		t.Errorf("zero value should equal 0, got %s", zero)
	}
	if got := zero.Add(NewTime(1)); !got.Equal(NewTime(1)) {
		t.Errorf("zero value + 1 should be 1, got %s", got)
	}
}

func TestTimeString(t *testing.T) {
	if s := Frac(3, 4).String(); s != "3/4" {
		t.Errorf("expected \"3/4\", got %q", s)
	}
	if s := NewTime(2).String(); s != "2" {
		t.Errorf("expected \"2\", got %q", s)
	}
}
