// Package store defines the key/value backend beneath an object store,
// and a registry of backend implementations.
package store

import (
	"context"
	"errors"
)

// Backend is a key/value store of byte strings.
//
// Calls block only the calling goroutine;
// callers wanting several requests in flight issue them from separate goroutines.
// A Backend must make each single-key request atomic.
// Nothing above it coordinates requests across keys.
type Backend interface {
	// Get gets the value stored under key.
	// It returns ErrNotFound if there is none.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Remove deletes the value stored under key.
	// Removing a key with no value is not an error.
	Remove(ctx context.Context, key string) error

	// Query returns the keys matched by pattern,
	// a regular expression in RE2 syntax,
	// in lexicographic order.
	// A key matches if the expression matches any part of it;
	// use ^ and $ to anchor.
	Query(ctx context.Context, pattern string) ([]string, error)
}

// ErrNotFound is the error returned
// when a Backend is asked for a key it does not have.
var ErrNotFound = errors.New("not found")
