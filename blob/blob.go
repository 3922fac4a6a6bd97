// Package blob is a content-addressed store for binary payloads on the
// local filesystem. Content lives at blobs/<sha256-hex> under the store
// directory; identical bytes are stored once, whatever kind of attachment
// references them.
package blob

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/graftdb/graft"
)

// layoutVersion is stamped into the store directory so a future layout
// change can refuse (or migrate) old directories instead of misreading
// them.
const layoutVersion = "1"

const putBufSize = 64 * 1024

// Store is a filesystem blob store rooted at a directory. It is safe for
// concurrent use: ingestion goes through per-call temp files, and a rename
// is the only visible commit.
type Store struct {
	dir string
}

// Open prepares dir as a blob store, creating the blobs/ and tmp/
// subdirectories and the layout stamp as needed.
func Open(dir string) (*Store, error) {
	for _, sub := range []string{"blobs", "tmp"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, &graft.Error{Code: graft.CodeIOFailure, Message: "creating blob store", Err: err}
		}
	}

	stamp := filepath.Join(dir, "layout")
	switch got, err := os.ReadFile(stamp); {
	case os.IsNotExist(err):
		// renameio keeps a half-written stamp from ever being visible.
		if err := renameio.WriteFile(stamp, []byte(layoutVersion+"\n"), 0o644); err != nil {
			return nil, &graft.Error{Code: graft.CodeIOFailure, Message: "stamping blob store layout", Err: err}
		}
	case err != nil:
		return nil, &graft.Error{Code: graft.CodeIOFailure, Message: "reading blob store layout", Err: err}
	case string(got) != layoutVersion+"\n":
		return nil, graft.Errorf(graft.CodeIOFailure, "unsupported blob store layout %q", string(got))
	}

	return &Store{dir: dir}, nil
}

func (s *Store) path(h graft.Hash) string {
	return filepath.Join(s.dir, "blobs", h.String())
}

// Put streams r to durable storage and returns the SHA-256 hash of its
// bytes. The content is written to a temp file while the digest is
// computed incrementally, then renamed into place; until the rename
// nothing is visible, so a failed or cancelled Put has no observable
// effect. If the content is already stored the temp copy is discarded and
// the existing content wins.
func (s *Store) Put(ctx context.Context, r io.Reader) (graft.Hash, error) {
	tmp, err := os.CreateTemp(filepath.Join(s.dir, "tmp"), "put-*")
	if err != nil {
		return graft.Hash{}, &graft.Error{Code: graft.CodeIOFailure, Message: "creating temp blob", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
		}
		os.Remove(tmpName) // no-op once renamed
	}()

	hasher := sha256.New()
	buf := make([]byte, putBufSize)
	for {
		if err := ctx.Err(); err != nil {
			return graft.Hash{}, &graft.Error{Code: graft.CodeIOFailure, Message: "blob ingest cancelled", Err: err}
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
			if _, werr := tmp.Write(buf[:n]); werr != nil {
				return graft.Hash{}, &graft.Error{Code: graft.CodeIOFailure, Message: "writing blob", Err: werr}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return graft.Hash{}, &graft.Error{Code: graft.CodeIOFailure, Message: "reading blob content", Err: rerr}
		}
	}

	if err := tmp.Sync(); err != nil {
		return graft.Hash{}, &graft.Error{Code: graft.CodeIOFailure, Message: "syncing blob", Err: err}
	}
	if err := tmp.Close(); err != nil {
		tmp = nil
		return graft.Hash{}, &graft.Error{Code: graft.CodeIOFailure, Message: "closing blob", Err: err}
	}
	tmp = nil

	var h graft.Hash
	hasher.Sum(h[:0])

	dest := s.path(h)
	if _, err := os.Stat(dest); err == nil {
		// Same digest, same content: the copy already stored wins.
		return h, nil
	} else if !os.IsNotExist(err) {
		return graft.Hash{}, &graft.Error{Code: graft.CodeIOFailure, Message: "checking stored blob", Err: err}
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return graft.Hash{}, &graft.Error{Code: graft.CodeIOFailure, Message: "publishing blob", Err: err}
	}
	if err := syncDir(filepath.Dir(dest)); err != nil {
		return graft.Hash{}, &graft.Error{Code: graft.CodeIOFailure, Message: "syncing blob dir", Err: err}
	}
	return h, nil
}

// Open returns a reader over the content stored under h. The caller must
// close it.
func (s *Store) Open(h graft.Hash) (io.ReadCloser, error) {
	f, err := os.Open(s.path(h))
	if os.IsNotExist(err) {
		return nil, graft.Errorf(graft.CodeNotFound, "no blob with hash %s", h)
	}
	if err != nil {
		return nil, &graft.Error{Code: graft.CodeIOFailure, Message: fmt.Sprintf("opening blob %s", h), Err: err}
	}
	return f, nil
}

// Has reports whether content with hash h is stored.
func (s *Store) Has(h graft.Hash) (bool, error) {
	_, err := os.Stat(s.path(h))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, &graft.Error{Code: graft.CodeIOFailure, Message: fmt.Sprintf("checking blob %s", h), Err: err}
	}
	return true, nil
}

// syncDir makes the rename durable before Put reports success.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
