package query

import (
	"github.com/graftdb/graft"
)

// argType constrains what a literal may be in each predicate position.
type argType int

const (
	argStr  argType = iota
	argAtom         // literal must be canonical-izable UUID text
	argHash         // literal must be 64-char hex
)

// predicates fixes the query surface: each predicate's arity and the type
// of every argument position. The tuple layouts match the Snapshot
// relations exactly.
var predicates = map[string][]argType{
	"atom": {argAtom},
	"name": {argAtom, argStr, argStr},
	"edge": {argAtom, argAtom, argStr},
	"tag":  {argAtom, argStr, argStr},
	"blob": {argAtom, argStr, argStr, argHash},
}

// Parse parses and validates query source text.
//
// It fails with graft.CodeMalformed on a syntax error, an unknown
// predicate, a wrong arity, an oversized literal, or a literal that does
// not parse in an atom- or hash-typed position. Atom and hash literals are
// rewritten to their canonical text forms so matching against the stored
// relations is textual.
func Parse(src string) (*Query, error) {
	p := parser{lex: lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	q, err := p.query()
	if err != nil {
		return nil, err
	}
	for i := range q.Goals {
		if err := checkGoal(&q.Goals[i]); err != nil {
			return nil, err
		}
	}
	return q, nil
}

type parser struct {
	lex lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokenKind) (token, error) {
	if p.tok.kind != kind {
		return token{}, p.lex.errorf(p.tok.pos, "expected %v, found %v", kind, p.tok.kind)
	}
	tok := p.tok
	return tok, p.advance()
}

// query := "?-" goal ("," goal)* "." EOF
func (p *parser) query() (*Query, error) {
	if _, err := p.expect(tokQuery); err != nil {
		return nil, err
	}
	var q Query
	for {
		g, err := p.goal()
		if err != nil {
			return nil, err
		}
		q.Goals = append(q.Goals, g)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokPeriod); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return &q, nil
}

// goal := ident "(" arg ("," arg)* ")"
func (p *parser) goal() (Goal, error) {
	name, err := p.expect(tokIdent)
	if err != nil {
		return Goal{}, err
	}
	g := Goal{Pred: name.text}
	if _, err := p.expect(tokLParen); err != nil {
		return Goal{}, err
	}
	for {
		switch p.tok.kind {
		case tokIdent:
			g.Args = append(g.Args, Term{Kind: Var, Text: p.tok.text})
		case tokString:
			g.Args = append(g.Args, Term{Kind: Lit, Text: p.tok.text})
		default:
			return Goal{}, p.lex.errorf(p.tok.pos, "expected argument, found %v", p.tok.kind)
		}
		if err := p.advance(); err != nil {
			return Goal{}, err
		}
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return Goal{}, err
		}
	}
	_, err = p.expect(tokRParen)
	return g, err
}

// checkGoal validates predicate name, arity, and literal forms, and
// canonicalizes literals in place.
func checkGoal(g *Goal) error {
	types, ok := predicates[g.Pred]
	if !ok {
		return graft.Errorf(graft.CodeMalformed, "unknown predicate %s/%d", g.Pred, len(g.Args))
	}
	if len(g.Args) != len(types) {
		return graft.Errorf(graft.CodeMalformed, "%s takes %d arguments, got %d", g.Pred, len(types), len(g.Args))
	}
	for i, t := range g.Args {
		if t.Kind != Lit {
			continue
		}
		switch types[i] {
		case argAtom:
			a, err := graft.ParseAtom(t.Text)
			if err != nil {
				return err
			}
			g.Args[i].Text = a.String()
		case argHash:
			h, err := graft.ParseHash(t.Text)
			if err != nil {
				return err
			}
			g.Args[i].Text = h.String()
		default:
			s, err := graft.CheckString("literal", t.Text)
			if err != nil {
				return err
			}
			g.Args[i].Text = s
		}
	}
	return nil
}
