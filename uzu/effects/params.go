// Package effects sets control parameters on patterns. Values may be
// plain numbers or strings, other patterns (sampled at each event's
// onset), or mini-notation strings (parsed, then sampled).
package effects

import (
	"strconv"

	"github.com/wbrown/uzu-pattern/uzu"
	"github.com/wbrown/uzu-pattern/uzu/interp"
	"github.com/wbrown/uzu-pattern/uzu/pattern"
)

// Canonical parameter keys. Aliases resolve to these before anything is
// stored or serialized.
const (
	KeyCutoff        = "cutoff"
	KeyResonance     = "resonance"
	KeyHCutoff       = "hcutoff"
	KeyHResonance    = "hresonance"
	KeyBandF         = "bandf"
	KeyBandQ         = "bandq"
	KeyAttack        = "attack"
	KeyDecay         = "decay"
	KeySustain       = "sustain"
	KeyRelease       = "release"
	KeyGain          = "gain"
	KeyPan           = "pan"
	KeySpeed         = "speed"
	KeyRoom          = "room"
	KeyRoomSize      = "roomsize"
	KeyDelay         = "delay"
	KeyDelayTime     = "delaytime"
	KeyDelayFeedback = "delayfeedback"
	KeyDistort       = "distort"
	KeyCrush         = "crush"
	KeyCoarse        = "coarse"
	KeyVib           = "vib"
	KeyVibMod        = "vibmod"
	KeyTremolo       = "tremolo"
	KeyDetune        = "detune"
	KeyBegin         = "begin"
	KeyEnd           = "end"
	KeyLoop          = "loop"
	KeyClip          = "clip"
	KeyUnit          = "unit"
	KeyOrbit         = "orbit"
	KeyCut           = "cut"
	KeySound         = "s"
	KeyNumber        = "n"
	KeyNote          = "note"
)

// aliases maps the DSL's short names onto canonical keys. Aliasing is a
// naming convention only; the canonical key is what gets stored.
var aliases = map[string]string{
	"lpf":     KeyCutoff,
	"lpq":     KeyResonance,
	"hpf":     KeyHCutoff,
	"hpq":     KeyHResonance,
	"bpf":     KeyBandF,
	"bpq":     KeyBandQ,
	"ctf":     KeyCutoff,
	"res":     KeyResonance,
	"sz":      KeyRoomSize,
	"size":    KeyRoomSize,
	"delayt":  KeyDelayTime,
	"delayfb": KeyDelayFeedback,
	"dist":    KeyDistort,
	"sound":   KeySound,
	"vel":     KeyGain,
}

// Canonical resolves an alias to its canonical key. Unknown names pass
// through unchanged.
func Canonical(key string) string {
	if c, ok := aliases[key]; ok {
		return c
	}
	return key
}

// Option adjusts how a parameter is applied.
type Option func(*config)

type config struct {
	sourceOffset int
}

// SourceOffset shifts the source locations recorded from a notation
// value, for notation embedded in a larger source string.
func SourceOffset(off int) Option {
	return func(c *config) { c.sourceOffset = off }
}

// Set applies a parameter to every event of p. Numbers and plain
// strings are stored directly; a Pattern is sampled at each event's
// onset; a mini-notation string is parsed and then sampled, with
// numeric tokens coerced to numbers.
func Set(p *pattern.Pattern, key string, value interface{}, opts ...Option) *pattern.Pattern {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	key = Canonical(key)

	switch v := value.(type) {
	case *pattern.Pattern:
		return setFromPattern(p, key, v)
	case string:
		return setFromString(p, key, v, cfg)
	default:
		return setAtom(p, key, v)
	}
}

func setAtom(p *pattern.Pattern, key string, v interface{}) *pattern.Pattern {
	return p.FMap(func(val uzu.Value) uzu.Value {
		out := val.Copy()
		out[key] = v
		return out
	})
}

// setFromString decides between the atom and notation cases: a numeric
// string becomes a number, any other string that parses as notation (a
// bare word included) is sampled as a pattern, and an unparseable
// string stays a plain string value.
func setFromString(p *pattern.Pattern, key, s string, cfg config) *pattern.Pattern {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return setAtom(p, key, n)
	}
	vp, err := interp.Pattern(s)
	if err != nil {
		return setAtom(p, key, s)
	}
	if cfg.sourceOffset != 0 {
		vp = vp.WithOffset(cfg.sourceOffset)
	}
	return setFromPattern(p, key, vp)
}

// setFromPattern samples the value pattern at each event's onset and
// stores the sampled payload, merging the sampled event's source
// locations so editor highlighting can reach the modulation source.
func setFromPattern(p *pattern.Pattern, key string, vp *pattern.Pattern) *pattern.Pattern {
	return p.MapHaps(func(h uzu.Hap) uzu.Hap {
		t := h.Part.Begin
		if on, ok := h.Onset(); ok {
			t = on
		}
		sampled, ctx, ok := vp.ValueAt(t)
		if !ok {
			return h
		}
		out := h
		val := h.Value.Copy()
		val[key] = payloadOf(sampled)
		out.Value = val
		out.Context = h.Context.Merge(uzu.Context{Locations: ctx.Locations})
		return out
	})
}

// payloadOf extracts the storable value from a sampled value map:
// signal payloads and sample numbers first, then sounds, coercing
// numeric strings.
func payloadOf(v uzu.Value) interface{} {
	for _, key := range []string{"value", "n", "note"} {
		if x, ok := v[key]; ok {
			return x
		}
	}
	if s, ok := v["s"].(string); ok {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
		return s
	}
	return nil
}

// Named setters for the common controls.

// Gain sets the amplitude.
func Gain(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyGain, v, opts...)
}

// Pan sets the stereo position.
func Pan(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyPan, v, opts...)
}

// Speed sets the sample playback rate.
func Speed(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeySpeed, v, opts...)
}

// Cutoff sets the low-pass filter frequency.
func Cutoff(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyCutoff, v, opts...)
}

// Lpf is the DSL alias for Cutoff.
func Lpf(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, "lpf", v, opts...)
}

// Resonance sets the low-pass filter resonance.
func Resonance(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyResonance, v, opts...)
}

// Hpf sets the high-pass filter frequency.
func Hpf(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, "hpf", v, opts...)
}

// Attack sets the envelope attack time.
func Attack(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyAttack, v, opts...)
}

// Release sets the envelope release time.
func Release(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyRelease, v, opts...)
}

// Room sets the reverb send.
func Room(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyRoom, v, opts...)
}

// Delay sets the delay send.
func Delay(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyDelay, v, opts...)
}

// Crush sets the bit-crush depth.
func Crush(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyCrush, v, opts...)
}

// Note sets the pitch.
func Note(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyNote, v, opts...)
}

// N sets the sample index.
func N(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyNumber, v, opts...)
}

// Orbit routes the pattern to an effect bus.
func Orbit(p *pattern.Pattern, v interface{}, opts ...Option) *pattern.Pattern {
	return Set(p, KeyOrbit, v, opts...)
}
