package sqlite

import (
	"context"

	"github.com/graftdb/graft/query"
)

// QueryAll parses q and evaluates it against a snapshot of the relations.
// See graft.Conn for the result contract.
func (c *Conn) QueryAll(ctx context.Context, q string) ([][]string, error) {
	parsed, err := query.Parse(q)
	if err != nil {
		return nil, err
	}
	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.Solve(snap, parsed), nil
}

// QueryFirst returns the first row QueryAll would return, or nil if the
// result is empty.
func (c *Conn) QueryFirst(ctx context.Context, q string) ([]string, error) {
	rows, err := c.QueryAll(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
