// Package transport materializes finite slices of patterns for external
// audio schedulers. Hap times are converted to floats here, at the
// scheduler boundary.
package transport

import (
	"encoding/json"

	"github.com/wbrown/uzu-pattern/uzu"
	"github.com/wbrown/uzu-pattern/uzu/pattern"
)

// FloatSpan is a span converted for the scheduler, cycle-relative.
type FloatSpan struct {
	Begin float64 `json:"begin"`
	End   float64 `json:"end"`
}

// SchedulerHap is the JSON shape handed to schedulers. Whole is null
// for continuous haps, which schedulers must treat as sampled values
// rather than onsets.
type SchedulerHap struct {
	Whole   *FloatSpan             `json:"whole"`
	Part    FloatSpan              `json:"part"`
	Value   map[string]interface{} `json:"value"`
	Context uzu.Context            `json:"context"`
}

// Expansion is a block of materialized cycles.
type Expansion struct {
	Cycles    map[int64][]SchedulerHap `json:"cycles"`
	NumCycles int                      `json:"num_cycles"`
}

// JSON serializes the expansion.
func (e *Expansion) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Options tunes materialization. The zero value uses the defaults.
type Options struct {
	NumCycles int // cycles per expansion (default 16)
	MaxPeriod int // period search bound (default 64)
	MinCycles int // floor for auto expansion (default 1)
}

func (o Options) withDefaults() Options {
	if o.NumCycles <= 0 {
		o.NumCycles = 16
	}
	if o.MaxPeriod <= 0 {
		o.MaxPeriod = 64
	}
	if o.MinCycles <= 0 {
		o.MinCycles = 1
	}
	return o
}

// QueryForScheduler materializes cycle c as scheduler haps with
// cycle-relative float times, sorted by part begin.
func QueryForScheduler(p *pattern.Pattern, c int64) []SchedulerHap {
	haps := p.QueryCycle(c)
	out := make([]SchedulerHap, 0, len(haps))
	for _, h := range haps {
		sh := SchedulerHap{
			Part:    floatSpan(h.Part),
			Value:   serializableValue(h.Value),
			Context: h.Context,
		}
		if h.Whole != nil {
			w := floatSpan(*h.Whole)
			sh.Whole = &w
		}
		out = append(out, sh)
	}
	return out
}

func floatSpan(s uzu.TimeSpan) FloatSpan {
	return FloatSpan{Begin: s.Begin.ToFloat(), End: s.End.ToFloat()}
}

// serializableValue strips entries JSON cannot carry (applicative
// functions, embedded patterns) and converts exact times to floats.
func serializableValue(v uzu.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(v))
	for k, val := range v {
		switch t := val.(type) {
		case *pattern.Pattern, pattern.ValueFunc, func(uzu.Value) uzu.Value:
			continue
		case uzu.Time:
			out[k] = t.ToFloat()
		default:
			out[k] = val
		}
	}
	return out
}

// ExpandForTransport materializes numCycles cycles starting at zero.
func ExpandForTransport(p *pattern.Pattern, numCycles int) *Expansion {
	if numCycles <= 0 {
		numCycles = Options{}.withDefaults().NumCycles
	}
	cycles := make(map[int64][]SchedulerHap, numCycles)
	for c := int64(0); c < int64(numCycles); c++ {
		cycles[c] = QueryForScheduler(p, c)
	}
	return &Expansion{Cycles: cycles, NumCycles: numCycles}
}

// DetectPeriod finds the smallest cycle count after which the pattern's
// values repeat, comparing value-only projections so per-cycle timing
// variation does not defeat detection. Returns false when no period is
// found within max cycles.
func DetectPeriod(p *pattern.Pattern, max int) (int, bool) {
	if max <= 0 {
		max = Options{}.withDefaults().MaxPeriod
	}
	base := valueProjection(p, 0)
	for c := 1; c <= max; c++ {
		if projectionsEqual(base, valueProjection(p, int64(c))) {
			return c, true
		}
	}
	return 0, false
}

// valueProjection is the timing-free view of a cycle: the ordered list
// of hap values.
func valueProjection(p *pattern.Pattern, c int64) []uzu.Value {
	haps := p.QueryCycle(c)
	out := make([]uzu.Value, len(haps))
	for i, h := range haps {
		out[i] = h.Value
	}
	return out
}

func projectionsEqual(a, b []uzu.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ExpandForTransportAuto materializes one full period of the pattern,
// falling back to the search bound when no period is detected.
func ExpandForTransportAuto(p *pattern.Pattern, opts Options) *Expansion {
	opts = opts.withDefaults()
	period, ok := DetectPeriod(p, opts.MaxPeriod)
	if !ok {
		period = opts.MaxPeriod
	}
	if period < opts.MinCycles {
		period = opts.MinCycles
	}
	return ExpandForTransport(p, period)
}
