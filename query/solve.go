package query

// Snapshot is a consistent in-memory copy of every relation a query can
// scan, taken by the store in a single transaction. Tuple field order
// matches the predicate argument order, and atoms and hashes are already in
// canonical text form.
//
// Slice order is the deterministic scan order: the result order of a query
// is composed from these per-relation orders, so two Solve calls on equal
// snapshots return identical results.
type Snapshot struct {
	Atoms []string
	Names [][3]string
	Edges [][3]string
	Tags  [][3]string
	Blobs [][4]string
}

func (s *Snapshot) relation(pred string) [][]string {
	switch pred {
	case "atom":
		rows := make([][]string, len(s.Atoms))
		for i, a := range s.Atoms {
			rows[i] = []string{a}
		}
		return rows
	case "name":
		return widen3(s.Names)
	case "edge":
		return widen3(s.Edges)
	case "tag":
		return widen3(s.Tags)
	case "blob":
		rows := make([][]string, len(s.Blobs))
		for i, t := range s.Blobs {
			rows[i] = t[:]
		}
		return rows
	}
	return nil
}

func widen3(tuples [][3]string) [][]string {
	rows := make([][]string, len(tuples))
	for i, t := range tuples {
		rows[i] = t[:]
	}
	return rows
}

// Solve evaluates a parsed query against a snapshot and returns the result
// rows: one column per distinct variable in first-appearance order, one
// row per satisfying combination of facts, without deduplication.
//
// Evaluation is a left-to-right nested-loop join. The candidate bindings
// after goal k are ordered by the scan indices of goals 1..k
// lexicographically, which makes the final row order a pure function of
// the snapshot. This is the naive strategy: every goal scans its whole
// relation and filters. Fine at the scale this store targets.
func Solve(snap *Snapshot, q *Query) [][]string {
	bindings := []map[string]string{{}}
	for _, g := range q.Goals {
		rows := snap.relation(g.Pred)
		var next []map[string]string
		for _, b := range bindings {
			for _, row := range rows {
				if nb, ok := match(b, g, row); ok {
					next = append(next, nb)
				}
			}
		}
		bindings = next
		if len(bindings) == 0 {
			break
		}
	}

	vars := q.Vars()
	out := make([][]string, len(bindings))
	for i, b := range bindings {
		row := make([]string, len(vars))
		for j, v := range vars {
			row[j] = b[v]
		}
		out[i] = row
	}
	return out
}

// match unifies one goal against one relation tuple under the bindings
// accumulated so far. Literals and already-bound variables must equal the
// tuple field; a free variable binds to it. On success the extended binding
// set is returned; the input map is never mutated.
func match(b map[string]string, g Goal, row []string) (map[string]string, bool) {
	var bound map[string]string
	for i, t := range g.Args {
		want, free := t.Text, false
		if t.Kind == Var {
			if v, ok := b[t.Text]; ok {
				want = v
			} else if v, ok := bound[t.Text]; ok {
				want = v
			} else {
				free = true
			}
		}
		if free {
			if bound == nil {
				bound = make(map[string]string)
			}
			bound[t.Text] = row[i]
			continue
		}
		if want != row[i] {
			return nil, false
		}
	}
	if len(bound) == 0 {
		return b, true
	}
	nb := make(map[string]string, len(b)+len(bound))
	for k, v := range b {
		nb[k] = v
	}
	for k, v := range bound {
		nb[k] = v
	}
	return nb, true
}
