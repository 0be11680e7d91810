package mini

import (
	"testing"

	"github.com/wbrown/uzu-pattern/uzu/ast"
)

func parse(t *testing.T, input string) ast.Node {
	t.Helper()
	node, err := Parse(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return node
}

func TestParseSequence(t *testing.T) {
	node := parse(t, "bd sd hh")
	seq, ok := node.(*ast.Sequence)
	if !ok {
		t.Fatalf("expected sequence, got %T", node)
	}
	if len(seq.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(seq.Items))
	}
	atom, ok := seq.Items[0].(*ast.Atom)
	if !ok || atom.Value != "bd" {
		t.Errorf("expected atom bd, got %v", seq.Items[0])
	}
	if atom.Loc.Start != 0 || atom.Loc.End != 2 {
		t.Errorf("expected location [0, 2), got %v", atom.Loc)
	}
}

func TestParseSingleAtomUnwraps(t *testing.T) {
	node := parse(t, "bd")
	if _, ok := node.(*ast.Atom); !ok {
		t.Fatalf("expected bare atom, got %T", node)
	}
}

func TestParseSampleSuffix(t *testing.T) {
	node := parse(t, "bd:3")
	atom := node.(*ast.Atom)
	if atom.Value != "bd" || atom.Sample == nil || *atom.Sample != 3 {
		t.Errorf("expected bd sample 3, got %v", atom)
	}
}

func TestParseRestAndElongation(t *testing.T) {
	seq := parse(t, "bd ~ _ sd").(*ast.Sequence)
	if _, ok := seq.Items[1].(*ast.Rest); !ok {
		t.Errorf("expected rest, got %T", seq.Items[1])
	}
	if _, ok := seq.Items[2].(*ast.Elongation); !ok {
		t.Errorf("expected elongation, got %T", seq.Items[2])
	}
}

func TestParseModifiers(t *testing.T) {
	atom := parse(t, "bd*3").(*ast.Atom)
	if atom.Mods.Repeat != 3 {
		t.Errorf("expected repeat 3, got %d", atom.Mods.Repeat)
	}

	atom = parse(t, "bd/2").(*ast.Atom)
	if atom.Mods.Division != 2 {
		t.Errorf("expected division 2, got %d", atom.Mods.Division)
	}

	atom = parse(t, "bd@3").(*ast.Atom)
	if atom.Mods.Weight != 3 {
		t.Errorf("expected weight 3, got %d", atom.Mods.Weight)
	}

	atom = parse(t, "bd!4").(*ast.Atom)
	if atom.Mods.Replicate != 4 {
		t.Errorf("expected replicate 4, got %d", atom.Mods.Replicate)
	}

	atom = parse(t, "bd!").(*ast.Atom)
	if atom.Mods.Replicate != 2 {
		t.Errorf("bare ! should replicate 2, got %d", atom.Mods.Replicate)
	}
}

func TestParseProbability(t *testing.T) {
	atom := parse(t, "bd?").(*ast.Atom)
	if atom.Mods.KeepProb == nil || *atom.Mods.KeepProb != 0.5 {
		t.Errorf("bare ? should keep with probability 0.5, got %v", atom.Mods.KeepProb)
	}

	atom = parse(t, "bd?0.25").(*ast.Atom)
	if atom.Mods.KeepProb == nil || *atom.Mods.KeepProb != 0.75 {
		t.Errorf("?0.25 drops a quarter, keep should be 0.75, got %v", atom.Mods.KeepProb)
	}
}

func TestParseEuclid(t *testing.T) {
	atom := parse(t, "bd(3,8)").(*ast.Atom)
	e := atom.Mods.Euclid
	if e == nil || e.Pulses != 3 || e.Steps != 8 || e.Rotation != 0 {
		t.Errorf("expected (3,8), got %v", e)
	}

	atom = parse(t, "bd(3,8,2)").(*ast.Atom)
	e = atom.Mods.Euclid
	if e == nil || e.Rotation != 2 {
		t.Errorf("expected rotation 2, got %v", e)
	}
}

func TestParseSubdivision(t *testing.T) {
	seq := parse(t, "bd [sd hh]*2").(*ast.Sequence)
	sub, ok := seq.Items[1].(*ast.Subdivision)
	if !ok {
		t.Fatalf("expected subdivision, got %T", seq.Items[1])
	}
	if len(sub.Children) != 2 || sub.Mods.Repeat != 2 {
		t.Errorf("unexpected subdivision: %v", sub)
	}
}

func TestParseAlternation(t *testing.T) {
	alt := parse(t, "<bd sd hh>").(*ast.Alternation)
	if len(alt.Children) != 3 {
		t.Errorf("expected 3 children, got %d", len(alt.Children))
	}
}

func TestParseStack(t *testing.T) {
	stack := parse(t, "bd sd, hh hh hh").(*ast.Stack)
	if len(stack.Sequences) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(stack.Sequences))
	}
}

func TestParsePolymetric(t *testing.T) {
	poly := parse(t, "{bd sd cp, hh hh}").(*ast.Polymetric)
	if len(poly.Groups) != 2 || poly.Steps != 0 {
		t.Errorf("unexpected polymetric: %v", poly)
	}

	poly = parse(t, "{bd sd}%4").(*ast.Polymetric)
	if poly.Steps != 4 {
		t.Errorf("expected steps 4, got %d", poly.Steps)
	}
}

func TestParseRandomChoice(t *testing.T) {
	choice := parse(t, "bd sd | hh | cp").(*ast.RandomChoice)
	if len(choice.Children) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(choice.Children))
	}
	if _, ok := choice.Children[0].(*ast.Sequence); !ok {
		t.Errorf("first choice should be the two-item sequence, got %T", choice.Children[0])
	}
}

func TestParseNestedBrackets(t *testing.T) {
	seq := parse(t, "[bd [sd sd]] hh").(*ast.Sequence)
	outer := seq.Items[0].(*ast.Subdivision)
	if len(outer.Children) != 2 {
		t.Fatalf("expected 2 children in outer subdivision, got %d", len(outer.Children))
	}
	if _, ok := outer.Children[1].(*ast.Subdivision); !ok {
		t.Errorf("expected nested subdivision, got %T", outer.Children[1])
	}
}

func TestParsePolyphonyInsideBrackets(t *testing.T) {
	sub := parse(t, "[bd, hh hh]").(*ast.Subdivision)
	if len(sub.Children) != 1 {
		t.Fatalf("expected single stack child, got %d", len(sub.Children))
	}
	if _, ok := sub.Children[0].(*ast.Stack); !ok {
		t.Errorf("expected stack inside brackets, got %T", sub.Children[0])
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"[bd sd",
		"bd]",
		"<bd",
		"bd*",
		"bd*x",
		"bd(3)",
		"bd(3,8",
		"{bd sd}%x",
	}
	for _, input := range bad {
		if _, err := Parse(input); err == nil {
			t.Errorf("expected parse error for %q", input)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	node := parse(t, "")
	seq, ok := node.(*ast.Sequence)
	if !ok || len(seq.Items) != 0 {
		t.Errorf("expected empty sequence, got %v", node)
	}
}
