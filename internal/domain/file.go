package domain

import "time"

// File is a stored blob plus its metadata, scoped to the owning user. When a
// blob backend is configured the bytes live under StorageKey and Content is
// empty in the store.
type File struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
	OwnerID     string
	StorageKey  string
	UploadedAt  time.Time
}

// FileInfo is the listing projection of a File: metadata only, never content.
type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

// Report aggregates file counts across the store.
type Report struct {
	// TotalFiles counts every stored file, regardless of owner.
	TotalFiles int64
	// ByContentType maps content type to the number of files carrying it.
	ByContentType map[string]int64
	// OwnerFiles counts the files belonging to the user who asked.
	OwnerFiles int64
}
