package query

import "strings"

// TermKind distinguishes the two argument forms.
type TermKind int

const (
	// Var is a free variable, written as a bare identifier.
	Var TermKind = iota
	// Lit is a string literal, written double-quoted.
	Lit
)

// Term is one argument of a goal: either a variable name or a literal
// value. Literal values are canonical by construction: Parse normalizes
// string literals to NFC and rewrites atom and hash literals into their
// canonical text forms.
type Term struct {
	Kind TermKind
	Text string
}

// Goal is one predicate application within a query.
type Goal struct {
	Pred string
	Args []Term
}

// Query is a parsed, validated conjunction of goals.
type Query struct {
	Goals []Goal
}

// Vars returns the distinct variables of the query in order of first
// appearance, reading goals left to right and arguments left to right
// within a goal. This is the result column order.
func (q *Query) Vars() []string {
	var vars []string
	seen := make(map[string]bool)
	for _, g := range q.Goals {
		for _, t := range g.Args {
			if t.Kind == Var && !seen[t.Text] {
				seen[t.Text] = true
				vars = append(vars, t.Text)
			}
		}
	}
	return vars
}

// String renders the query back in canonical source form.
func (q *Query) String() string {
	var b strings.Builder
	b.WriteString("?- ")
	for i, g := range q.Goals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.Pred)
		b.WriteByte('(')
		for j, t := range g.Args {
			if j > 0 {
				b.WriteString(", ")
			}
			if t.Kind == Var {
				b.WriteString(t.Text)
			} else {
				writeQuoted(&b, t.Text)
			}
		}
		b.WriteByte(')')
	}
	b.WriteByte('.')
	return b.String()
}

// writeQuoted emits a string literal using only the escapes the language
// defines.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
