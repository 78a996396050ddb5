package repository

import (
	"context"

	"filevault/internal/domain"
)

// FileRepository exposes persistence operations for File records. Every query
// except Report's global counts is scoped to the owning user.
type FileRepository interface {
	Init(ctx context.Context) error
	// Create persists the file and fills in its store-assigned ID. Duplicate
	// (owner, filename) pairs are permitted; each upload is a new record.
	Create(ctx context.Context, file *domain.File) error
	// Get returns the first file matching (owner, filename) in insertion
	// order, content included. Returns ErrNotFound when nothing matches.
	Get(ctx context.Context, ownerID, filename string) (*domain.File, error)
	// Delete removes at most one file matching (owner, filename). Deleting a
	// filename that does not exist is not an error.
	Delete(ctx context.Context, ownerID, filename string) error
	// List returns one page of the owner's file metadata in insertion order,
	// plus the total match count across all pages. page and pageSize are
	// 1-indexed; an out-of-range page yields an empty slice.
	List(ctx context.Context, ownerID string, page, pageSize int) ([]domain.FileInfo, int64, error)
	// Report computes global file counts plus the owner's own count.
	Report(ctx context.Context, ownerID string) (*domain.Report, error)
}
