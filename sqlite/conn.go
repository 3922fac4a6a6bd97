// Package sqlite provides the durable graft.Conn implementation: relations
// in a SQLite database, blob content in a content-addressed directory next
// to it.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/graftdb/graft"
	"github.com/graftdb/graft/blob"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// Conn is a graft connection backed by a store directory holding the
// SQLite database file and the blob store.
//
// Conn is safe for concurrent use. SQLite supports one writer at a time;
// the pool is capped at a single connection so concurrent mutations
// serialize here instead of surfacing SQLITE_BUSY, and a busy timeout
// covers external writers on the same file.
type Conn struct {
	db    *sql.DB
	blobs *blob.Store
	dir   string
}

var _ graft.Conn = (*Conn)(nil)

// Open creates or opens the store in dir. The directory is created if
// needed; it ends up holding graft.db plus the blob store layout.
//
// The database is configured with WAL journaling, NORMAL synchronous mode,
// a 5-second busy timeout, and foreign key enforcement (which is what turns
// a fact naming an unknown atom into a NotFound error).
//
// Open is idempotent; the schema is applied only where missing.
func Open(dir string) (*Conn, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &graft.Error{Code: graft.CodeIOFailure, Message: "creating store directory", Err: err}
	}

	blobs, err := blob.Open(dir)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, "graft.db"))
	if err != nil {
		return nil, &graft.Error{Code: graft.CodeIOFailure, Message: "opening database", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &graft.Error{Code: graft.CodeIOFailure, Message: "connecting to database", Err: err}
	}

	// Single writer; keep the one connection ready.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Conn{db: db, blobs: blobs, dir: dir}, nil
}

// Close releases the database connection. The connection must not be used
// afterwards.
func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return &graft.Error{Code: graft.CodeIOFailure, Message: "applying " + pragma, Err: err}
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return &graft.Error{Code: graft.CodeIOFailure, Message: "applying schema", Err: err}
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return &graft.Error{Code: graft.CodeIOFailure, Message: "reading schema version", Err: err}
	}
	if version > currentSchemaVersion {
		return graft.Errorf(graft.CodeIOFailure, "store schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return &graft.Error{Code: graft.CodeIOFailure, Message: "setting schema version", Err: err}
	}
	return nil
}
