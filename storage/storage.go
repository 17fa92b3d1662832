// Package storage is the blob-store boundary for event images.
// Swap implementations by changing the concrete type injected at startup —
// Firebase Storage is the default, Cloudinary the alternate driver.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when an object does not exist, or when a deletion
// target's object path cannot be derived from a malformed URL.
var ErrNotFound = errors.New("storage: object not found")

// BlobStore uploads named binary objects and deletes them by retrieval URL.
type BlobStore interface {
	// Upload streams data to the store under objectPath and returns the
	// durable retrieval URL for the new object.
	Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object referenced by a retrieval URL previously
	// returned from Upload. A URL the path cannot be recovered from yields
	// ErrNotFound.
	Delete(ctx context.Context, imageURL string) error
}
