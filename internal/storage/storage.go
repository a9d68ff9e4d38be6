// Package storage holds product and profile images in an S3-compatible
// object store. A stub implementation backs tests and local runs without a
// configured bucket.
package storage

import (
	"context"
	"io"
)

// BlobStore is the external blob-storage collaborator. Put stores the object
// under key and returns the public URL to persist on the owning record.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
