package sqlite

import (
	"context"
	"io"
	"log/slog"

	"github.com/graftdb/graft"
)

// atomRetries bounds the retry loop on the (cryptographically unlikely)
// event of a random UUID collision.
const atomRetries = 3

// CreateAtom allocates a fresh atom and registers it. The insert itself is
// the uniqueness check; a collision is retried with a new identifier.
func (c *Conn) CreateAtom(ctx context.Context) (graft.Atom, error) {
	for attempt := 0; ; attempt++ {
		atom := graft.NewAtom()
		_, err := c.db.ExecContext(ctx, `INSERT INTO atoms (atom) VALUES (?)`, atom.String())
		if err == nil {
			return atom, nil
		}
		if isUniqueViolation(err) && attempt < atomRetries {
			slog.Warn("atom identifier collision, retrying; check your entropy", "atom", atom)
			continue
		}
		return graft.Atom{}, mapError("create atom", err)
	}
}

// CreateName binds the unique (ns, title) name to atom. With replace=false
// an existing binding fails the call with DuplicateKey; with replace=true
// the binding is unconditionally pointed at atom and the previous binding
// is gone for good (no history is kept).
func (c *Conn) CreateName(ctx context.Context, atom graft.Atom, ns, title string, replace bool) error {
	ns, err := graft.CheckString("namespace", ns)
	if err != nil {
		return err
	}
	title, err = graft.CheckString("title", title)
	if err != nil {
		return err
	}

	q := `INSERT INTO names (atom, ns, title) VALUES (?, ?, ?)`
	if replace {
		q += ` ON CONFLICT (ns, title) DO UPDATE SET atom = excluded.atom`
	}
	_, err = c.db.ExecContext(ctx, q, atom.String(), ns, title)
	return mapError("create name", err)
}

// CreateEdge records the directed edge (from, to, label). Edges have no
// replace mode; a duplicate always fails with DuplicateKey. The reverse
// edge is a distinct key.
func (c *Conn) CreateEdge(ctx context.Context, from, to graft.Atom, label string) error {
	label, err := graft.CheckString("label", label)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO edges (edge_from, edge_to, label) VALUES (?, ?, ?)`,
		from.String(), to.String(), label)
	return mapError("create edge", err)
}

// CreateTag binds value to the (atom, kind) tag, with the same replace
// semantics as CreateName.
func (c *Conn) CreateTag(ctx context.Context, atom graft.Atom, kind, value string, replace bool) error {
	kind, err := graft.CheckString("kind", kind)
	if err != nil {
		return err
	}
	value, err = graft.CheckString("value", value)
	if err != nil {
		return err
	}

	q := `INSERT INTO tags (atom, kind, value) VALUES (?, ?, ?)`
	if replace {
		q += ` ON CONFLICT (atom, kind) DO UPDATE SET value = excluded.value`
	}
	_, err = c.db.ExecContext(ctx, q, atom.String(), kind, value)
	return mapError("create tag", err)
}

// CreateBlobAttachment binds (mimeType, hash) to the (atom, kind)
// attachment, with the same replace semantics as CreateName. The hash must
// reference content the blob store holds; blob content is immutable and
// never deleted, so checking it before the insert cannot race with
// anything.
func (c *Conn) CreateBlobAttachment(ctx context.Context, atom graft.Atom, kind, mimeType string, hash graft.Hash, replace bool) error {
	kind, err := graft.CheckString("kind", kind)
	if err != nil {
		return err
	}
	mimeType, err = graft.CheckMIME(mimeType)
	if err != nil {
		return err
	}
	ok, err := c.blobs.Has(hash)
	if err != nil {
		return err
	}
	if !ok {
		return graft.Errorf(graft.CodeUnknownHash, "no blob content with hash %s", hash)
	}

	q := `INSERT INTO blob_attachments (atom, kind, mime, hash) VALUES (?, ?, ?, ?)`
	if replace {
		q += ` ON CONFLICT (atom, kind) DO UPDATE SET mime = excluded.mime, hash = excluded.hash`
	}
	_, err = c.db.ExecContext(ctx, q, atom.String(), kind, mimeType, hash.String())
	return mapError("create blob attachment", err)
}

// StoreBlob streams r into the content store. See blob.Store.Put for the
// durability and cancellation story.
func (c *Conn) StoreBlob(ctx context.Context, r io.Reader) (graft.Hash, error) {
	return c.blobs.Put(ctx, r)
}

// FetchBlob streams back the content stored under hash.
func (c *Conn) FetchBlob(ctx context.Context, hash graft.Hash) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.blobs.Open(hash)
}
