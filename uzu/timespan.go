package uzu

import "fmt"

// TimeSpan is a half-open interval [Begin, End) on the pattern timeline.
type TimeSpan struct {
	Begin Time
	End   Time
}

// NewTimeSpan creates a span from begin to end.
func NewTimeSpan(begin, end Time) TimeSpan {
	return TimeSpan{Begin: begin, End: end}
}

// CycleSpan returns the span covering cycle c, [c, c+1).
func CycleSpan(c int64) TimeSpan {
	return TimeSpan{Begin: NewTime(c), End: NewTime(c + 1)}
}

// Duration returns End - Begin. May be zero.
func (s TimeSpan) Duration() Time {
	return s.End.Sub(s.Begin)
}

// Midpoint returns the center of the span.
func (s TimeSpan) Midpoint() Time {
	return s.Begin.Add(s.Duration().Mul(Frac(1, 2)))
}

// Intersection returns the overlap of two spans, or nil when they do not
// overlap. Adjacent spans (a.End == b.Begin) do not overlap.
func (s TimeSpan) Intersection(o TimeSpan) *TimeSpan {
	begin := MaxTime(s.Begin, o.Begin)
	end := MinTime(s.End, o.End)
	if begin.GreaterThanOrEqual(end) {
		return nil
	}
	return &TimeSpan{Begin: begin, End: end}
}

// SpanCycles clips the span at every integer cycle boundary, yielding
// consecutive non-empty sub-spans covering exactly [Begin, End). Empty
// or inverted spans yield nothing.
func (s TimeSpan) SpanCycles() []TimeSpan {
	if s.Begin.GreaterThanOrEqual(s.End) {
		return nil
	}
	var spans []TimeSpan
	begin := s.Begin
	for begin.LessThan(s.End) {
		end := MinTime(begin.NextSam(), s.End)
		spans = append(spans, TimeSpan{Begin: begin, End: end})
		begin = end
	}
	return spans
}

// CycleOf returns the cycle containing the start of the span.
func (s TimeSpan) CycleOf() int64 {
	return s.Begin.CycleOf()
}

// Shift translates both endpoints by o.
func (s TimeSpan) Shift(o Time) TimeSpan {
	return TimeSpan{Begin: s.Begin.Add(o), End: s.End.Add(o)}
}

// Scale multiplies both endpoints by f.
func (s TimeSpan) Scale(f Time) TimeSpan {
	return TimeSpan{Begin: s.Begin.Mul(f), End: s.End.Mul(f)}
}

// WithTime applies fn to both endpoints.
func (s TimeSpan) WithTime(fn func(Time) Time) TimeSpan {
	return TimeSpan{Begin: fn(s.Begin), End: fn(s.End)}
}

// Contains reports whether t lies within [Begin, End).
func (s TimeSpan) Contains(t Time) bool {
	return t.GreaterThanOrEqual(s.Begin) && t.LessThan(s.End)
}

// Equal reports structural equality of the endpoints.
func (s TimeSpan) Equal(o TimeSpan) bool {
	return s.Begin.Equal(o.Begin) && s.End.Equal(o.End)
}

// String returns "[begin, end)".
func (s TimeSpan) String() string {
	return fmt.Sprintf("[%s, %s)", s.Begin, s.End)
}
