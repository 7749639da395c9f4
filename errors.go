package cas

import (
	"errors"

	"github.com/ooici/cas/store"
)

var (
	// ErrFormat is the error for bytes that are not a well-formed canonical encoding:
	// a header with no NUL separator,
	// a declared length that differs from the actual body length,
	// a truncated tree entry,
	// or a commit body with no tree line.
	ErrFormat = errors.New("malformed object encoding")

	// ErrUnknownType is the error for an envelope naming a type absent from the registry.
	ErrUnknownType = errors.New("unknown object type")

	// ErrIntegrity is the error returned by Store.Get
	// when the fetched bytes do not hash to the requested ID.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrInvalid is the error for objects that cannot be constructed
	// because their canonical encoding could not represent them,
	// such as a tree entry name containing NUL.
	ErrInvalid = errors.New("invalid object")

	// ErrNotFound is the error for an ID with no stored object.
	// It is the same value as store.ErrNotFound.
	ErrNotFound = store.ErrNotFound
)
