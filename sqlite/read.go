package sqlite

import (
	"context"
	"database/sql"

	"github.com/graftdb/graft/query"
)

// snapshot reads every relation inside one read transaction, so a query
// joins goals against a single consistent state of the store: a
// concurrently committed mutation is either visible to all goals or to
// none.
//
// Each relation is scanned ORDER BY rowid, physical insertion order. A
// replace rewrites an existing row in place (ON CONFLICT DO UPDATE keeps
// its rowid), so the scan order, and with it the result order of queries,
// is stable across repeated calls on an unchanged store.
func (c *Conn) snapshot(ctx context.Context) (*query.Snapshot, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, mapError("query snapshot", err)
	}
	defer tx.Rollback() // no-op after Commit

	var snap query.Snapshot

	if snap.Atoms, err = scanAtoms(ctx, tx); err != nil {
		return nil, err
	}
	if snap.Names, err = scan3(ctx, tx, `SELECT atom, ns, title FROM names ORDER BY rowid`); err != nil {
		return nil, err
	}
	if snap.Edges, err = scan3(ctx, tx, `SELECT edge_from, edge_to, label FROM edges ORDER BY rowid`); err != nil {
		return nil, err
	}
	if snap.Tags, err = scan3(ctx, tx, `SELECT atom, kind, value FROM tags ORDER BY rowid`); err != nil {
		return nil, err
	}
	if snap.Blobs, err = scanBlobs(ctx, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError("query snapshot", err)
	}
	return &snap, nil
}

func scanAtoms(ctx context.Context, tx *sql.Tx) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT atom FROM atoms ORDER BY rowid`)
	if err != nil {
		return nil, mapError("scan atoms", err)
	}
	defer rows.Close()

	var atoms []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, mapError("scan atoms", err)
		}
		atoms = append(atoms, a)
	}
	return atoms, mapError("scan atoms", rows.Err())
}

func scan3(ctx context.Context, tx *sql.Tx, q string) ([][3]string, error) {
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, mapError("scan relation", err)
	}
	defer rows.Close()

	var tuples [][3]string
	for rows.Next() {
		var t [3]string
		if err := rows.Scan(&t[0], &t[1], &t[2]); err != nil {
			return nil, mapError("scan relation", err)
		}
		tuples = append(tuples, t)
	}
	return tuples, mapError("scan relation", rows.Err())
}

func scanBlobs(ctx context.Context, tx *sql.Tx) ([][4]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT atom, kind, mime, hash FROM blob_attachments ORDER BY rowid`)
	if err != nil {
		return nil, mapError("scan blob attachments", err)
	}
	defer rows.Close()

	var tuples [][4]string
	for rows.Next() {
		var t [4]string
		if err := rows.Scan(&t[0], &t[1], &t[2], &t[3]); err != nil {
			return nil, mapError("scan blob attachments", err)
		}
		tuples = append(tuples, t)
	}
	return tuples, mapError("scan blob attachments", rows.Err())
}
