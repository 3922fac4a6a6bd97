package graft

import (
	"fmt"

	"github.com/google/uuid"
)

// Atom is an opaque graph node identifier. Atoms carry no payload; all data
// is attached to them as names, edges, tags, and blob attachments.
//
// An Atom is a 128-bit random identifier. Its text form is the canonical
// hyphenated lowercase UUID, which is also how atoms appear in query
// results and in the query language's atom-typed literal positions.
type Atom uuid.UUID

// NewAtom generates a fresh random Atom.
//
// Uses github.com/google/uuid for RFC 4122 compliant random (v4) UUIDs,
// giving a cryptographically negligible collision probability.
func NewAtom() Atom {
	return Atom(uuid.New())
}

// String returns the canonical hyphenated text form.
func (a Atom) String() string {
	return uuid.UUID(a).String()
}

// ParseAtom parses the text form of an Atom. The result is canonical: any
// accepted variant spelling parses to the same Atom and re-renders in the
// canonical hyphenated lowercase form.
func ParseAtom(s string) (Atom, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Atom{}, &Error{
			Code:    CodeMalformed,
			Message: fmt.Sprintf("invalid atom %q", s),
			Err:     err,
		}
	}
	return Atom(id), nil
}
