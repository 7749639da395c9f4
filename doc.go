// Package cas is a content-addressable object store.
//
// It stores three kinds of immutable object:
// blobs (opaque bytes),
// trees (ordered lists of named, moded references to other objects),
// and commits (a tree, zero or more parent commits, metadata, and a log message).
// Each object has a canonical encoding,
//
//	<type> <body length>\x00<body>
//
// and its ID is the SHA-1 hash of that encoding.
// Since the ID is computed from the content,
// storing equal content twice writes the same bytes under the same key.
//
// A Store reads and writes objects through a store.Backend,
// a plain key/value store with pattern queries.
// Several Stores may share one backend,
// each confined to its own namespace of keys.
// Store.Get hashes whatever bytes the backend returns
// and refuses to hand back an object that does not match the ID requested.
//
// Backends for many engines live in subpackages of store.
package cas
