// Package interp turns mini-notation syntax trees into patterns. The
// interpreter never fails: malformed or unrecognized nodes become
// silence, so a built pattern is always safe to query.
package interp

import (
	"fmt"

	"github.com/wbrown/uzu-pattern/uzu"
	"github.com/wbrown/uzu-pattern/uzu/ast"
	"github.com/wbrown/uzu-pattern/uzu/mini"
	"github.com/wbrown/uzu-pattern/uzu/pattern"
)

// Pattern parses a mini-notation string and interprets it. Parse errors
// surface here, at the string-to-pattern boundary; after that the
// pattern cannot fail.
func Pattern(src string) (*pattern.Pattern, error) {
	node, err := mini.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("notation %q: %w", src, err)
	}
	return Interpret(node), nil
}

// Interpret converts a syntax tree into a pattern. Unknown node kinds
// interpret as silence. A lone element replicated with "!n" fills the
// cycle with its n copies, as it would inside a sequence.
func Interpret(node ast.Node) *pattern.Pattern {
	if replicateOf(node) > 1 {
		return pattern.TimeCat(sequenceSlots([]ast.Node{node}))
	}
	return interpretNode(node)
}

// interpretNode converts one node, leaving its "!n" replication to the
// containing sequence or alternation.
func interpretNode(node ast.Node) *pattern.Pattern {
	switch n := node.(type) {
	case *ast.Sequence:
		return pattern.TimeCat(sequenceSlots(n.Items))

	case *ast.Stack:
		pats := make([]*pattern.Pattern, len(n.Sequences))
		for i, s := range n.Sequences {
			pats[i] = Interpret(s)
		}
		return pattern.Stack(pats...)

	case *ast.Subdivision:
		inner := pattern.TimeCat(sequenceSlots(n.Children))
		return applyMods(inner, n.Mods)

	case *ast.Alternation:
		var pats []*pattern.Pattern
		for _, c := range n.Children {
			// Replicated children occupy several alternation slots.
			count := replicateOf(c)
			child := interpretNode(c)
			for i := 0; i < count; i++ {
				pats = append(pats, child)
			}
		}
		return applyMods(pattern.SlowCat(pats...), n.Mods)

	case *ast.Polymetric:
		return interpretPolymetric(n)

	case *ast.RandomChoice:
		pats := make([]*pattern.Pattern, len(n.Children))
		for i, c := range n.Children {
			pats[i] = Interpret(c)
		}
		return pattern.RandCat(pats...)

	case *ast.Atom:
		return atomPattern(n)

	case *ast.Rest, *ast.Elongation:
		return pattern.Silence()
	}
	return pattern.Silence()
}

// sequenceSlots computes the weighted slot list of a sequence: one slot
// per item, widened by "@" weights, multiplied out by "!" replication,
// with "_" elongations widening the preceding slot.
func sequenceSlots(items []ast.Node) []pattern.Weighted {
	var slots []pattern.Weighted
	for _, item := range items {
		if _, ok := item.(*ast.Elongation); ok {
			if len(slots) > 0 {
				slots[len(slots)-1].Weight++
			} else {
				slots = append(slots, pattern.Weighted{Weight: 1, Pattern: pattern.Silence()})
			}
			continue
		}
		child := interpretNode(item)
		w := weightOf(item)
		for i := 0; i < replicateOf(item); i++ {
			slots = append(slots, pattern.Weighted{Weight: w, Pattern: child})
		}
	}
	return slots
}

func modsOf(n ast.Node) ast.Modifiers {
	switch node := n.(type) {
	case *ast.Atom:
		return node.Mods
	case *ast.Subdivision:
		return node.Mods
	case *ast.Alternation:
		return node.Mods
	case *ast.Polymetric:
		return node.Mods
	}
	return ast.Modifiers{}
}

func weightOf(n ast.Node) int64 {
	if w := modsOf(n).Weight; w > 0 {
		return int64(w)
	}
	return 1
}

func replicateOf(n ast.Node) int {
	if r := modsOf(n).Replicate; r > 0 {
		return r
	}
	return 1
}

// interpretPolymetric overlays the groups, each scaled so its tokens
// land on the shared step grid: the explicit "%n" step count, or the
// first group's length.
func interpretPolymetric(n *ast.Polymetric) *pattern.Pattern {
	type group struct {
		pat   *pattern.Pattern
		count int64
	}
	var groups []group
	for _, g := range n.Groups {
		seq, ok := g.(*ast.Sequence)
		if !ok {
			continue
		}
		slots := sequenceSlots(seq.Items)
		var count int64
		for _, s := range slots {
			count += s.Weight
		}
		if count == 0 {
			continue
		}
		groups = append(groups, group{pat: pattern.TimeCat(slots), count: count})
	}
	if len(groups) == 0 {
		return pattern.Silence()
	}
	align := int64(n.Steps)
	if align <= 0 {
		align = groups[0].count
	}
	pats := make([]*pattern.Pattern, len(groups))
	for i, g := range groups {
		scaled, err := g.pat.Fast(uzu.Frac(align, g.count))
		if err != nil {
			scaled = pattern.Silence()
		}
		pats[i] = scaled
	}
	return applyMods(pattern.Stack(pats...), n.Mods)
}

func atomPattern(a *ast.Atom) *pattern.Pattern {
	value := uzu.Value{"s": a.Value}
	if a.Sample != nil {
		value["n"] = *a.Sample
	}
	p := pattern.Pure(value).WithLoc(a.Loc.Start, a.Loc.End)
	return applyMods(p, a.Mods)
}

// applyMods applies the numeric modifiers shared by atoms and groups:
// the Euclidean gate, then repetition, division, and probability.
// Replication and weight are slot-level concerns handled by the
// containing sequence. Out-of-range modifiers degrade to silence.
func applyMods(p *pattern.Pattern, mods ast.Modifiers) *pattern.Pattern {
	if mods.Euclid != nil {
		next, err := p.EuclidRot(mods.Euclid.Pulses, mods.Euclid.Steps, mods.Euclid.Rotation)
		if err != nil {
			return pattern.Silence()
		}
		p = next
	}
	if mods.Repeat > 0 {
		next, err := p.Fast(uzu.NewTime(int64(mods.Repeat)))
		if err != nil {
			return pattern.Silence()
		}
		p = next
	}
	if mods.Division > 0 {
		next, err := p.Slow(uzu.NewTime(int64(mods.Division)))
		if err != nil {
			return pattern.Silence()
		}
		p = next
	}
	if mods.KeepProb != nil {
		drop := 1 - *mods.KeepProb
		if drop < 0 {
			drop = 0
		}
		if drop > 1 {
			drop = 1
		}
		next, err := p.DegradeBy(drop)
		if err != nil {
			return pattern.Silence()
		}
		p = next
	}
	return p
}
