package graft

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash identifies blob content: the SHA-256 digest of its bytes.
//
// Hashes are computed server-side while the content is ingested, so a hash
// held by a caller always refers to content the store actually has.
type Hash [sha256.Size]byte

// HashBytes computes the Hash of an in-memory byte slice.
func HashBytes(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// String returns the 64-character lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parses the 64-character hex form of a Hash. Both upper- and
// lowercase hex digits are accepted.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != 2*sha256.Size {
		return h, &Error{
			Code:    CodeMalformed,
			Message: fmt.Sprintf("invalid hash: length %d, want %d", len(s), 2*sha256.Size),
		}
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, &Error{
			Code:    CodeMalformed,
			Message: fmt.Sprintf("invalid hash %q", s),
			Err:     err,
		}
	}
	return h, nil
}
