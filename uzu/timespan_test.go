package uzu

import "testing"

func span(bn, bd, en, ed int64) TimeSpan {
	return NewTimeSpan(Frac(bn, bd), Frac(en, ed))
}

func TestTimeSpanDuration(t *testing.T) {
	s := span(1, 4, 3, 4)
	if !s.Duration().Equal(Frac(1, 2)) {
		t.Errorf("expected duration 1/2, got %s", s.Duration())
	}
	if !s.Midpoint().Equal(Frac(1, 2)) {
		t.Errorf("expected midpoint 1/2, got %s", s.Midpoint())
	}

	empty := span(1, 2, 1, 2)
	if !empty.Duration().Equal(NewTime(0)) {
		t.Errorf("expected zero duration, got %s", empty.Duration())
	}
}

func TestTimeSpanIntersection(t *testing.T) {
	a := span(0, 1, 1, 2)
	b := span(1, 4, 1, 1)
	isect := a.Intersection(b)
	if isect == nil {
		t.Fatal("expected overlap")
	}
	if !isect.Equal(span(1, 4, 1, 2)) {
		t.Errorf("expected [1/4, 1/2), got %s", isect)
	}

	// Adjacency does not overlap.
	c := span(1, 2, 1, 1)
	if a.Intersection(c) != nil {
		t.Error("adjacent spans must not intersect")
	}

	// Disjoint.
	d := span(2, 1, 3, 1)
	if a.Intersection(d) != nil {
		t.Error("disjoint spans must not intersect")
	}
}

func TestSpanCycles(t *testing.T) {
	s := NewTimeSpan(Frac(1, 2), Frac(5, 2))
	cycles := s.SpanCycles()
	want := []TimeSpan{
		NewTimeSpan(Frac(1, 2), NewTime(1)),
		NewTimeSpan(NewTime(1), NewTime(2)),
		NewTimeSpan(NewTime(2), Frac(5, 2)),
	}
	if len(cycles) != len(want) {
		t.Fatalf("expected %d sub-spans, got %d", len(want), len(cycles))
	}
	for i, cs := range cycles {
		if !cs.Equal(want[i]) {
			t.Errorf("sub-span %d: expected %s, got %s", i, want[i], cs)
		}
	}

	// Sub-spans are adjacent and cover the original exactly.
	if !cycles[0].Begin.Equal(s.Begin) || !cycles[len(cycles)-1].End.Equal(s.End) {
		t.Error("sub-spans do not cover the original span")
	}
	for i := 1; i < len(cycles); i++ {
		if !cycles[i-1].End.Equal(cycles[i].Begin) {
			t.Errorf("sub-spans %d and %d are not adjacent", i-1, i)
		}
	}
}

func TestSpanCyclesWithinOneCycle(t *testing.T) {
	s := span(1, 4, 3, 4)
	cycles := s.SpanCycles()
	if len(cycles) != 1 || !cycles[0].Equal(s) {
		t.Errorf("span within one cycle should yield itself, got %v", cycles)
	}
}

func TestSpanCyclesEmpty(t *testing.T) {
	if got := span(1, 2, 1, 2).SpanCycles(); len(got) != 0 {
		t.Errorf("empty span should yield no cycles, got %v", got)
	}
	if got := NewTimeSpan(NewTime(1), NewTime(0)).SpanCycles(); len(got) != 0 {
		t.Errorf("inverted span should yield no cycles, got %v", got)
	}
}

func TestTimeSpanShiftScale(t *testing.T) {
	s := span(1, 4, 1, 2)
	shifted := s.Shift(NewTime(1))
	if !shifted.Equal(span(5, 4, 3, 2)) {
		t.Errorf("expected [5/4, 3/2), got %s", shifted)
	}
	scaled := s.Scale(NewTime(2))
	if !scaled.Equal(span(1, 2, 1, 1)) {
		t.Errorf("expected [1/2, 1), got %s", scaled)
	}
}

func TestTimeSpanCycleOf(t *testing.T) {
	if c := span(5, 2, 3, 1).CycleOf(); c != 2 {
		t.Errorf("expected cycle 2, got %d", c)
	}
	if c := NewTimeSpan(Frac(-1, 2), NewTime(0)).CycleOf(); c != -1 {
		t.Errorf("expected cycle -1, got %d", c)
	}
}

func TestTimeSpanContains(t *testing.T) {
	s := span(1, 4, 3, 4)
	if !s.Contains(Frac(1, 4)) {
		t.Error("span should contain its begin")
	}
	if s.Contains(Frac(3, 4)) {
		t.Error("span should not contain its end")
	}
	if s.Contains(NewTime(0)) {
		t.Error("span should not contain points before begin")
	}
}
