package pattern

import (
	"strconv"

	"github.com/wbrown/uzu-pattern/uzu"
)

// FMap replaces every hap's value by fn(value). Shapes are unchanged.
func (p *Pattern) FMap(fn func(uzu.Value) uzu.Value) *Pattern {
	out := p.withHaps(func(haps []uzu.Hap) []uzu.Hap {
		mapped := make([]uzu.Hap, 0, len(haps))
		for _, h := range haps {
			mapped = append(mapped, h.WithValue(fn))
		}
		return mapped
	})
	out.meta = p.meta
	return out
}

// ValueFunc is a function-valued entry in a value map, applied by the
// applicatives via the "func" key.
type ValueFunc func(uzu.Value) uzu.Value

// applyValues applies a function-side value to an argument-side value:
// a "func" entry is called; otherwise the maps merge, argument keys
// winning.
func applyValues(f, v uzu.Value) uzu.Value {
	if fn, ok := f["func"].(ValueFunc); ok {
		return fn(v)
	}
	if fn, ok := f["func"].(func(uzu.Value) uzu.Value); ok {
		return fn(v)
	}
	return f.Merge(v)
}

func wholeIntersection(a, b *uzu.TimeSpan) *uzu.TimeSpan {
	if a == nil || b == nil {
		return nil
	}
	return a.Intersection(*b)
}

// wholeOrPart returns the hap's whole when discrete, its part otherwise.
func wholeOrPart(h uzu.Hap) uzu.TimeSpan {
	if h.Whole != nil {
		return *h.Whole
	}
	return h.Part
}

// AppBoth combines every overlapping pair of haps: part is the part
// intersection, whole the whole intersection, value the applied values.
func (pf *Pattern) AppBoth(pv *Pattern) *Pattern {
	f, v := pf, pv
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		fhaps := f.QuerySpan(span)
		vhaps := v.QuerySpan(span)
		var out []uzu.Hap
		for _, hf := range fhaps {
			for _, hv := range vhaps {
				part := hf.Part.Intersection(hv.Part)
				if part == nil {
					continue
				}
				out = append(out, uzu.Hap{
					Whole:   wholeIntersection(hf.Whole, hv.Whole),
					Part:    *part,
					Value:   applyValues(hf.Value, hv.Value),
					Context: hf.Context.Merge(hv.Context),
				})
			}
		}
		return out
	})
}

// AppLeft combines patterns with structure taken from the left: for each
// left hap, the right pattern is queried over the hap's extent and each
// overlapping right hap contributes its value.
func (pf *Pattern) AppLeft(pv *Pattern) *Pattern {
	f, v := pf, pv
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, hf := range f.QuerySpan(span) {
			for _, hv := range v.QuerySpan(wholeOrPart(hf)) {
				part := hf.Part.Intersection(hv.Part)
				if part == nil {
					continue
				}
				out = append(out, uzu.Hap{
					Whole:   hf.Whole,
					Part:    *part,
					Value:   applyValues(hf.Value, hv.Value),
					Context: hf.Context.Merge(hv.Context),
				})
			}
		}
		return out
	})
}

// AppRight is AppLeft with structure taken from the right.
func (pf *Pattern) AppRight(pv *Pattern) *Pattern {
	f, v := pf, pv
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, hv := range v.QuerySpan(span) {
			for _, hf := range f.QuerySpan(wholeOrPart(hv)) {
				part := hf.Part.Intersection(hv.Part)
				if part == nil {
					continue
				}
				out = append(out, uzu.Hap{
					Whole:   hv.Whole,
					Part:    *part,
					Value:   applyValues(hf.Value, hv.Value),
					Context: hf.Context.Merge(hv.Context),
				})
			}
		}
		return out
	})
}

// BindWith is the monadic bind parameterized over how the outer and
// inner wholes combine. For each outer hap the bound pattern is queried
// over the outer part; inner haps keep their parts and values, with
// contexts merged.
func (p *Pattern) BindWith(f func(uzu.Value) *Pattern, chooseWhole func(outer, inner *uzu.TimeSpan) *uzu.TimeSpan) *Pattern {
	outer := p
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, ho := range outer.QuerySpan(span) {
			pi := f(ho.Value)
			if pi == nil {
				continue
			}
			for _, hi := range pi.QuerySpan(ho.Part) {
				out = append(out, uzu.Hap{
					Whole:   chooseWhole(ho.Whole, hi.Whole),
					Part:    hi.Part,
					Value:   hi.Value,
					Context: ho.Context.Merge(hi.Context),
				})
			}
		}
		return out
	})
}

// Bind combines wholes by intersection.
func (p *Pattern) Bind(f func(uzu.Value) *Pattern) *Pattern {
	return p.BindWith(f, wholeIntersection)
}

// OuterBind keeps the outer hap's whole.
func (p *Pattern) OuterBind(f func(uzu.Value) *Pattern) *Pattern {
	return p.BindWith(f, func(outer, _ *uzu.TimeSpan) *uzu.TimeSpan { return outer })
}

// InnerBind keeps the inner hap's whole.
func (p *Pattern) InnerBind(f func(uzu.Value) *Pattern) *Pattern {
	return p.BindWith(f, func(_, inner *uzu.TimeSpan) *uzu.TimeSpan { return inner })
}

// SqueezeBind focuses each bound pattern into the outer hap's extent:
// one cycle of the inner pattern is rescaled to fit the outer whole
// exactly. This is what makes pattern-valued arguments to Fast and the
// parameter setters work.
func (p *Pattern) SqueezeBind(f func(uzu.Value) *Pattern) *Pattern {
	outer := p
	return New(func(span uzu.TimeSpan) []uzu.Hap {
		var out []uzu.Hap
		for _, ho := range outer.QuerySpan(span) {
			pi := f(ho.Value)
			if pi == nil {
				continue
			}
			focused := pi.FocusSpan(wholeOrPart(ho))
			for _, hi := range focused.QuerySpan(ho.Part) {
				out = append(out, uzu.Hap{
					Whole:   wholeIntersection(ho.Whole, hi.Whole),
					Part:    hi.Part,
					Value:   hi.Value,
					Context: ho.Context.Merge(hi.Context),
				})
			}
		}
		return out
	})
}

// Join flattens a pattern whose values carry inner patterns under the
// "pattern" key.
func (p *Pattern) Join() *Pattern {
	return p.Bind(func(v uzu.Value) *Pattern {
		if inner, ok := v["pattern"].(*Pattern); ok {
			return inner
		}
		return Silence()
	})
}

// FocusSpan rescales the pattern so that one of its cycles occupies the
// given span: queries map back into the pattern's original time by the
// affine sending span to [0, 1), and results map forward again.
func (p *Pattern) FocusSpan(span uzu.TimeSpan) *Pattern {
	d := span.Duration()
	if !d.GreaterThan(uzu.NewTime(0)) {
		return Silence()
	}
	b := span.Begin
	toChild := func(t uzu.Time) uzu.Time {
		q, _ := t.Sub(b).Div(d)
		return q
	}
	fromChild := func(t uzu.Time) uzu.Time {
		return b.Add(t.Mul(d))
	}
	return p.withQueryTime(toChild).withHapTime(fromChild)
}

// FastP speeds the pattern by a pattern of factors: each factor event
// plays the sped-up pattern squeezed into its extent.
func (p *Pattern) FastP(factor *Pattern) *Pattern {
	inner := p
	return factor.SqueezeBind(func(v uzu.Value) *Pattern {
		k, ok := numericOf(v)
		if !ok || k <= 0 {
			return Silence()
		}
		return inner.fastBy(uzu.FromFloat(k))
	})
}

// SlowP stretches the pattern by a pattern of factors.
func (p *Pattern) SlowP(factor *Pattern) *Pattern {
	inner := p
	return factor.SqueezeBind(func(v uzu.Value) *Pattern {
		k, ok := numericOf(v)
		if !ok || k <= 0 {
			return Silence()
		}
		inv, _ := uzu.NewTime(1).Div(uzu.FromFloat(k))
		return inner.fastBy(inv)
	})
}

// numericOf extracts the numeric payload of a value map, checking the
// signal "value" key, then "n", "note", and a parseable "s".
func numericOf(v uzu.Value) (float64, bool) {
	for _, key := range []string{"value", "n", "note"} {
		if x, ok := uzu.NumberValue(v[key]); ok {
			return x, true
		}
	}
	if s, ok := v["s"].(string); ok {
		if x, err := strconv.ParseFloat(s, 64); err == nil {
			return x, true
		}
	}
	return 0, false
}
