package graft

import (
	"context"
	"io"
)

// Conn is the connection to a graft store: the single facade every client
// goes through. The sqlite subpackage provides the durable local
// implementation; a remote client speaking to a served store must satisfy
// the same contract.
//
// A Conn is safe for concurrent use from many goroutines. Every operation
// is independently atomic; there are no multi-call transactions. Mutations
// racing on the same uniqueness key are linearized: of N concurrent
// attempts to bind one key without replace, exactly one succeeds and the
// rest fail with CodeDuplicateKey.
//
// Queries are passed as text in the conjunctive query language (see the
// query subpackage) and are evaluated against a single consistent snapshot
// of all relations; a result row is never assembled from two different
// states of the store.
type Conn interface {
	// CreateAtom allocates a fresh atom and registers it.
	CreateAtom(ctx context.Context) (Atom, error)

	// CreateName binds the unique (ns, title) name to atom. If the name
	// is already bound the call fails with CodeDuplicateKey, unless
	// replace is true, in which case the previous binding is discarded.
	CreateName(ctx context.Context, atom Atom, ns, title string, replace bool) error

	// CreateEdge records the directed edge (from, to, label). Direction
	// matters; the reverse edge is independent. A duplicate edge always
	// fails with CodeDuplicateKey: edges have no replace mode.
	CreateEdge(ctx context.Context, from, to Atom, label string) error

	// CreateTag binds value to the (atom, kind) tag, with the same
	// replace semantics as CreateName.
	CreateTag(ctx context.Context, atom Atom, kind, value string, replace bool) error

	// StoreBlob streams r into the content store, returning the SHA-256
	// hash of its bytes. Storing content that is already present is not
	// an error; the same hash comes back and nothing is duplicated.
	// On error or cancellation no partial content becomes visible.
	StoreBlob(ctx context.Context, r io.Reader) (Hash, error)

	// FetchBlob streams back the content stored under hash. An unstored
	// hash fails with CodeNotFound. The caller must close the reader.
	FetchBlob(ctx context.Context, hash Hash) (io.ReadCloser, error)

	// CreateBlobAttachment binds (mimeType, hash) to the (atom, kind)
	// attachment, with the same replace semantics as CreateName. The hash
	// must reference stored content or the call fails with
	// CodeUnknownHash.
	CreateBlobAttachment(ctx context.Context, atom Atom, kind, mimeType string, hash Hash, replace bool) error

	// QueryAll evaluates a query and returns every satisfying row, in a
	// deterministic order that is stable across repeated calls on an
	// unchanged store. Rows are not deduplicated. Atom-valued columns are
	// canonical UUID text. No matches is an empty result, not an error.
	QueryAll(ctx context.Context, q string) ([][]string, error)

	// QueryFirst returns the first row QueryAll would return, or nil if
	// the result is empty.
	QueryFirst(ctx context.Context, q string) ([]string, error)

	// Close releases the connection. Operations in flight on other
	// goroutines may fail once Close is called.
	Close() error
}
