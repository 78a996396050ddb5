package storage

import (
	"context"
	"io"
)

// BlobStore keeps file bytes in remote object storage while metadata stays in
// the document store.
type BlobStore interface {
	Put(ctx context.Context, bucket, key, contentType string, body io.Reader) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
}
