package sqlite

import (
	"context"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/graftdb/graft"
)

// mapError translates driver errors into the store's error taxonomy:
// unique-constraint violations become DuplicateKey, foreign-key violations
// (a fact naming an atom that does not exist) become NotFound, lock
// contention becomes the retryable Conflict, and anything else is an
// IOFailure. Context cancellation passes through untranslated so callers
// can still match it with errors.Is.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &graft.Error{Code: graft.CodeDuplicateKey, Message: op, Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &graft.Error{Code: graft.CodeNotFound, Message: op + ": no such atom", Err: err}
		}
		switch serr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return &graft.Error{Code: graft.CodeConflict, Message: op, Err: err}
		}
	}
	return &graft.Error{Code: graft.CodeIOFailure, Message: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) &&
		(serr.ExtendedCode == sqlite3.ErrConstraintUnique || serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
