// Package graft defines the core types and the connection contract of a
// minimal graph-structured data store.
//
// The store keeps opaque nodes called atoms. An atom has no payload of its
// own; everything interesting about it is recorded as attached facts:
//
//   - Names: a unique (namespace, title) label bound to exactly one atom.
//   - Edges: directed, labeled relations between two atoms.
//   - Tags: single-valued (atom, kind) string attributes.
//   - Blob attachments: named references from an atom to immutable,
//     content-addressed binary data.
//
// Facts are retrieved with a small conjunctive query language; see the
// query subpackage. The durable implementation of Conn lives in the sqlite
// subpackage, with blob content handled by the blob subpackage.
package graft
