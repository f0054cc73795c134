// Package objectstore abstracts the binary object store holding uploaded
// image content. The production implementation talks to an S3-compatible
// backend; tests substitute in-memory fakes.
package objectstore

import (
	"context"
	"errors"
	"time"
)

// ErrKeyExists is returned by Put when an object already exists under the
// requested key. Creates rely on this no-overwrite behavior instead of
// taking a coordination lock.
var ErrKeyExists = errors.New("object already exists under key")

// Object describes a stored object, as returned by List.
type Object struct {
	Key          string
	LastModified time.Time
}

// Store is the narrow object-store contract used by the asset coordinator
// and the orphan sweeper.
type Store interface {
	// Put writes data under key with no-overwrite semantics: if the key is
	// already occupied it fails with ErrKeyExists and leaves the existing
	// object untouched.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Remove deletes the object under key. Removing a missing key is a no-op.
	Remove(ctx context.Context, key string) error

	// PublicURL derives the public URL for a key. Pure and deterministic:
	// the same key always yields the same URL.
	PublicURL(key string) string

	// KeyFromURL reverses PublicURL. It fails if the URL was not produced
	// by this store.
	KeyFromURL(url string) (string, error)

	// List returns all objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
}
