package transport

import (
	"encoding/json"
	"testing"

	"github.com/wbrown/uzu-pattern/uzu"
	"github.com/wbrown/uzu-pattern/uzu/interp"
	"github.com/wbrown/uzu-pattern/uzu/pattern"
)

func pat(t *testing.T, src string) *pattern.Pattern {
	t.Helper()
	p, err := interp.Pattern(src)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestQueryForScheduler(t *testing.T) {
	haps := QueryForScheduler(pat(t, "bd sd"), 0)
	if len(haps) != 2 {
		t.Fatalf("expected 2 haps, got %d", len(haps))
	}
	if haps[0].Part.Begin != 0 || haps[0].Part.End != 0.5 {
		t.Errorf("expected part [0, 0.5), got %v", haps[0].Part)
	}
	if haps[1].Whole == nil || haps[1].Whole.Begin != 0.5 {
		t.Errorf("expected whole beginning at 0.5, got %v", haps[1].Whole)
	}
	if haps[0].Value["s"] != "bd" {
		t.Errorf("expected sound bd, got %v", haps[0].Value)
	}
}

func TestQueryForSchedulerIsCycleRelative(t *testing.T) {
	haps := QueryForScheduler(pat(t, "bd sd"), 7)
	if haps[0].Part.Begin != 0 || haps[1].Part.Begin != 0.5 {
		t.Errorf("times must be cycle-relative, got %v and %v", haps[0].Part, haps[1].Part)
	}
}

func TestQueryForSchedulerContinuousWhole(t *testing.T) {
	haps := QueryForScheduler(pattern.Sine(), 0)
	if len(haps) != 1 {
		t.Fatalf("expected 1 hap, got %d", len(haps))
	}
	if haps[0].Whole != nil {
		t.Error("continuous haps serialize with a null whole")
	}
}

func TestSchedulerJSONShape(t *testing.T) {
	haps := QueryForScheduler(pat(t, "bd"), 0)
	data, err := json.Marshal(haps)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	h := decoded[0]
	for _, key := range []string{"whole", "part", "value", "context"} {
		if _, ok := h[key]; !ok {
			t.Errorf("scheduler hap missing %q: %v", key, h)
		}
	}
	ctx := h["context"].(map[string]interface{})
	if _, ok := ctx["locations"]; !ok {
		t.Errorf("context missing locations: %v", ctx)
	}
}

func TestExpandForTransport(t *testing.T) {
	e := ExpandForTransport(pat(t, "bd sd"), 4)
	if e.NumCycles != 4 || len(e.Cycles) != 4 {
		t.Fatalf("expected 4 cycles, got %d (%d keyed)", e.NumCycles, len(e.Cycles))
	}
	for c := int64(0); c < 4; c++ {
		if len(e.Cycles[c]) != 2 {
			t.Errorf("cycle %d: expected 2 haps, got %d", c, len(e.Cycles[c]))
		}
	}
}

func TestExpandForTransportDefault(t *testing.T) {
	e := ExpandForTransport(pat(t, "bd"), 0)
	if e.NumCycles != 16 {
		t.Errorf("expected default of 16 cycles, got %d", e.NumCycles)
	}
}

func TestDetectPeriod(t *testing.T) {
	if p, ok := DetectPeriod(pat(t, "bd sd"), 16); !ok || p != 1 {
		t.Errorf("constant pattern: expected period 1, got %d (%v)", p, ok)
	}
	if p, ok := DetectPeriod(pat(t, "<bd sd>"), 16); !ok || p != 2 {
		t.Errorf("alternation of 2: expected period 2, got %d (%v)", p, ok)
	}
	if p, ok := DetectPeriod(pat(t, "<a b c> <x y>"), 16); !ok || p != 6 {
		t.Errorf("alternations of 3 and 2: expected period 6, got %d (%v)", p, ok)
	}
}

func TestDetectPeriodIgnoresTiming(t *testing.T) {
	// Swing moves events around but the value sequence per cycle is
	// constant.
	p, err := pat(t, "a b c d").SwingBy(uzu.Frac(1, 3), 2)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := DetectPeriod(p, 16); !ok || got != 1 {
		t.Errorf("expected period 1, got %d (%v)", got, ok)
	}
}

func TestDetectPeriodNotFound(t *testing.T) {
	// Period 5 lies outside a search bound of 3.
	if _, ok := DetectPeriod(pat(t, "<a b c d e>"), 3); ok {
		t.Error("expected no period within the search bound")
	}
}

func TestDetectPeriodSoundness(t *testing.T) {
	p := pat(t, "<a b c> <x y>")
	k, ok := DetectPeriod(p, 16)
	if !ok {
		t.Fatal("expected a period")
	}
	for c := int64(0); c < 12; c++ {
		a := p.QueryCycle(c)
		b := p.QueryCycle(c + int64(k))
		if len(a) != len(b) {
			t.Fatalf("cycle %d vs %d: counts differ", c, c+int64(k))
		}
		for i := range a {
			if !a[i].Value.Equal(b[i].Value) {
				t.Errorf("cycle %d hap %d: values differ across one period", c, i)
			}
		}
	}
}

func TestExpandForTransportAuto(t *testing.T) {
	e := ExpandForTransportAuto(pat(t, "<bd sd>"), Options{})
	if e.NumCycles != 2 {
		t.Errorf("expected the detected period of 2 cycles, got %d", e.NumCycles)
	}

	e = ExpandForTransportAuto(pat(t, "bd"), Options{MinCycles: 4})
	if e.NumCycles != 4 {
		t.Errorf("expected the min-cycles floor of 4, got %d", e.NumCycles)
	}
}

func TestExpansionJSONRoundTrip(t *testing.T) {
	e := ExpandForTransport(pat(t, "bd sd, hh"), 2)
	data, err := e.JSON()
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Cycles    map[string][]json.RawMessage `json:"cycles"`
		NumCycles int                          `json:"num_cycles"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.NumCycles != 2 || len(decoded.Cycles["0"]) != 3 {
		t.Errorf("unexpected expansion: %v cycles, %d haps in cycle 0",
			decoded.NumCycles, len(decoded.Cycles["0"]))
	}
}

func TestSerializableValueStripsFunctions(t *testing.T) {
	p := pattern.Pure(uzu.Value{
		"s":    "bd",
		"func": pattern.ValueFunc(func(v uzu.Value) uzu.Value { return v }),
	})
	haps := QueryForScheduler(p, 0)
	if _, ok := haps[0].Value["func"]; ok {
		t.Error("function values must not reach the scheduler")
	}
	if haps[0].Value["s"] != "bd" {
		t.Error("data values must survive")
	}
}
