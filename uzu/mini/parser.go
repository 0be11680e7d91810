// Package mini parses Tidal-style mini-notation strings into the ast
// package's syntax tree. The grammar: whitespace-separated sequences,
// "[...]" subdivisions with "," polyphony, "<...>" alternation, "{...}"
// polymetric groups with an optional "%n" step count, "~" rests, "_"
// elongation, postfix "*n" "/n" "@n" "!n" "?p" "(k,n,r)" modifiers, and
// "|" random choice.
package mini

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wbrown/uzu-pattern/uzu/ast"
)

// Parse parses a mini-notation string into a syntax tree.
func Parse(input string) (ast.Node, error) {
	lex := NewLexer(input)
	if err := lex.Lex(); err != nil {
		return nil, fmt.Errorf("mini-notation lex error: %w", err)
	}
	p := &parser{tokens: lex.Tokens()}
	node, err := p.parsePolyphony(TokenEOF)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %s at offset %d", tok.Type, tok.Pos)
	}
	return node, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *parser) expect(tt TokenType) (Token, error) {
	tok := p.next()
	if tok.Type != tt {
		return tok, fmt.Errorf("expected %s at offset %d, got %s", tt, tok.Pos, tok.Type)
	}
	return tok, nil
}

// parsePolyphony parses comma-separated sequences up to the closing
// token, producing a Stack when there is more than one.
func (p *parser) parsePolyphony(end TokenType) (ast.Node, error) {
	var seqs []ast.Node
	for {
		seq, err := p.parseChoices(end)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
		if p.peek().Type != TokenComma {
			break
		}
		p.next()
	}
	if len(seqs) == 1 {
		return seqs[0], nil
	}
	return &ast.Stack{Sequences: seqs}, nil
}

// parseChoices parses pipe-separated sequences, producing a
// RandomChoice when there is more than one.
func (p *parser) parseChoices(end TokenType) (ast.Node, error) {
	var alts []ast.Node
	for {
		seq, err := p.parseSequence(end)
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
		if p.peek().Type != TokenPipe {
			break
		}
		p.next()
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &ast.RandomChoice{Children: alts}, nil
}

// parseSequence parses terms until a comma, pipe, closing token, or EOF.
func (p *parser) parseSequence(end TokenType) (ast.Node, error) {
	var items []ast.Node
	for {
		switch p.peek().Type {
		case end, TokenComma, TokenPipe, TokenEOF:
			if len(items) == 1 {
				return items[0], nil
			}
			return &ast.Sequence{Items: items}, nil
		}
		item, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

// parseTerm parses one factor plus its postfix modifiers.
func (p *parser) parseTerm() (ast.Node, error) {
	factor, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	mods, err := p.parseModifiers()
	if err != nil {
		return nil, err
	}
	switch n := factor.(type) {
	case *ast.Atom:
		n.Mods = mods
	case *ast.Subdivision:
		n.Mods = mods
	case *ast.Alternation:
		n.Mods = mods
	case *ast.Polymetric:
		n.Mods = mods
	}
	return factor, nil
}

func (p *parser) parseFactor() (ast.Node, error) {
	tok := p.next()
	switch tok.Type {
	case TokenWord:
		if tok.Value == "_" {
			return &ast.Elongation{}, nil
		}
		return wordAtom(tok), nil

	case TokenTilde:
		return &ast.Rest{Loc: ast.Location{Start: tok.Pos, End: tok.End}}, nil

	case TokenLeftBracket:
		inner, err := p.parsePolyphony(TokenRightBracket)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightBracket); err != nil {
			return nil, err
		}
		return &ast.Subdivision{Children: sequenceItems(inner)}, nil

	case TokenLeftAngle:
		inner, err := p.parseSequence(TokenRightAngle)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightAngle); err != nil {
			return nil, err
		}
		return &ast.Alternation{Children: sequenceItems(inner)}, nil

	case TokenLeftBrace:
		var groups []ast.Node
		for {
			seq, err := p.parseSequence(TokenRightBrace)
			if err != nil {
				return nil, err
			}
			groups = append(groups, asSequence(seq))
			if p.peek().Type != TokenComma {
				break
			}
			p.next()
		}
		if _, err := p.expect(TokenRightBrace); err != nil {
			return nil, err
		}
		steps := 0
		if p.peek().Type == TokenPercent {
			p.next()
			n, err := p.parseInt("polymetric steps")
			if err != nil {
				return nil, err
			}
			steps = n
		}
		return &ast.Polymetric{Groups: groups, Steps: steps}, nil
	}
	return nil, fmt.Errorf("unexpected %s at offset %d", tok.Type, tok.Pos)
}

// wordAtom builds an Atom from a word token, splitting a numeric
// ":sample" suffix.
func wordAtom(tok Token) *ast.Atom {
	atom := &ast.Atom{
		Value: tok.Value,
		Loc:   ast.Location{Start: tok.Pos, End: tok.End},
	}
	if i := strings.LastIndexByte(tok.Value, ':'); i > 0 {
		if n, err := strconv.Atoi(tok.Value[i+1:]); err == nil {
			atom.Value = tok.Value[:i]
			atom.Sample = &n
		}
	}
	return atom
}

func (p *parser) parseModifiers() (ast.Modifiers, error) {
	var m ast.Modifiers
	for {
		switch p.peek().Type {
		case TokenStar:
			p.next()
			n, err := p.parseInt("repeat factor")
			if err != nil {
				return m, err
			}
			m.Repeat = n

		case TokenSlash:
			p.next()
			n, err := p.parseInt("division factor")
			if err != nil {
				return m, err
			}
			m.Division = n

		case TokenAt:
			p.next()
			n, err := p.parseInt("weight")
			if err != nil {
				return m, err
			}
			m.Weight = n

		case TokenBang:
			p.next()
			m.Replicate = 2
			if tok := p.peek(); tok.Type == TokenWord {
				if n, err := strconv.Atoi(tok.Value); err == nil {
					p.next()
					m.Replicate = n
				}
			}

		case TokenQuestion:
			p.next()
			drop := 0.5
			if tok := p.peek(); tok.Type == TokenWord {
				if f, err := strconv.ParseFloat(tok.Value, 64); err == nil {
					p.next()
					drop = f
				}
			}
			keep := 1 - drop
			m.KeepProb = &keep

		case TokenLeftParen:
			p.next()
			e, err := p.parseEuclid()
			if err != nil {
				return m, err
			}
			m.Euclid = e

		default:
			return m, nil
		}
	}
}

func (p *parser) parseEuclid() (*ast.Euclid, error) {
	pulses, err := p.parseInt("euclid pulses")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}
	steps, err := p.parseInt("euclid steps")
	if err != nil {
		return nil, err
	}
	e := &ast.Euclid{Pulses: pulses, Steps: steps}
	if p.peek().Type == TokenComma {
		p.next()
		rot, err := p.parseInt("euclid rotation")
		if err != nil {
			return nil, err
		}
		e.Rotation = rot
	}
	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseInt(what string) (int, error) {
	tok := p.next()
	if tok.Type != TokenWord {
		return 0, fmt.Errorf("expected %s at offset %d, got %s", what, tok.Pos, tok.Type)
	}
	n, err := strconv.Atoi(tok.Value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q at offset %d", what, tok.Value, tok.Pos)
	}
	return n, nil
}

// sequenceItems flattens a parsed group into item nodes.
func sequenceItems(n ast.Node) []ast.Node {
	if seq, ok := n.(*ast.Sequence); ok {
		return seq.Items
	}
	return []ast.Node{n}
}

// asSequence wraps a single item as a Sequence for polymetric groups.
func asSequence(n ast.Node) ast.Node {
	if _, ok := n.(*ast.Sequence); ok {
		return n
	}
	return &ast.Sequence{Items: []ast.Node{n}}
}
