// Package query parses and evaluates conjunctive pattern queries over the
// store's relations.
//
// A query is a conjunction of goals terminated by a period:
//
//	?- name(A, "wiki", "Index"), edge(A, B, "links-to"), tag(B, "lang", L).
//
// Each goal applies one of the fixed predicates atom/1, name/3, edge/3,
// tag/3, or blob/4 to arguments that are either variables (bare
// identifiers) or double-quoted string literals. `%` starts a comment that
// runs to end of line.
//
// Evaluation is a natural join: a variable shared between goals must bind
// to the same value everywhere it appears, and goals sharing no variables
// combine by cross product. Results have one column per distinct variable
// in order of first appearance, one row per satisfying combination of
// underlying facts (bag semantics, no deduplication), in a deterministic
// order derived from the per-relation scan order of the snapshot.
package query
