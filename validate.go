package graft

import (
	"mime"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxStringLen is the byte limit on every stored string: namespaces,
// titles, edge labels, tag kinds and values, attachment kinds, MIME types,
// and query string literals.
const MaxStringLen = 256

// CheckString validates and canonicalizes a stored string. It must be valid
// UTF-8 and, after NFC normalization, at most MaxStringLen bytes.
//
// Strings are NFC normalized before storage and comparison, so uniqueness
// of names and tags is up to Unicode normalization: two spellings of the
// same composed sequence cannot coexist as distinct keys.
//
// The field name is only used in error messages.
func CheckString(field, s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", Errorf(CodeMalformed, "%s is not valid UTF-8", field)
	}
	s = norm.NFC.String(s)
	if len(s) > MaxStringLen {
		return "", Errorf(CodeMalformed, "%s is %d bytes, limit %d", field, len(s), MaxStringLen)
	}
	return s, nil
}

// CheckMIME validates a MIME type string for a blob attachment. On top of
// the CheckString rules the value must parse as a media type.
func CheckMIME(s string) (string, error) {
	s, err := CheckString("mime type", s)
	if err != nil {
		return "", err
	}
	if _, _, err := mime.ParseMediaType(s); err != nil {
		return "", &Error{Code: CodeMalformed, Message: "invalid mime type " + s, Err: err}
	}
	return s, nil
}
