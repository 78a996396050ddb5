package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"filevault/internal/domain"
	"filevault/internal/repository"
	"filevault/internal/storage"
)

// ErrFileNotFound indicates that no file matches the requested (owner, filename).
var ErrFileNotFound = errors.New("file not found")

const defaultContentType = "application/octet-stream"

// FileService coordinates file operations scoped to an owning user.
type FileService interface {
	// Upload stores a new file stamped with the current time. Re-uploading an
	// existing filename creates a duplicate record rather than overwriting.
	Upload(ctx context.Context, ownerID, filename, contentType string, content []byte) (*domain.File, error)
	// Download returns the file with its content.
	Download(ctx context.Context, ownerID, filename string) (*domain.File, error)
	// Delete removes at most one matching file; absent filenames are a no-op.
	Delete(ctx context.Context, ownerID, filename string) error
	// List returns one page of metadata plus the total match count. Page and
	// pageSize are 1-indexed and clamped to at least 1.
	List(ctx context.Context, ownerID string, page, pageSize int) ([]domain.FileInfo, int64, error)
	// Report computes global counts by content type plus the caller's own count.
	Report(ctx context.Context, ownerID string) (*domain.Report, error)
}

type fileService struct {
	files     repository.FileRepository
	blobs     storage.BlobStore
	bucket    string
	keyPrefix string
}

// NewFileService builds a FileService. When blobs is nil, content is stored
// inline in the file record; otherwise the bytes go to the blob store and the
// record keeps only the storage key.
func NewFileService(files repository.FileRepository, blobs storage.BlobStore, bucket, keyPrefix string) FileService {
	return &fileService{
		files:     files,
		blobs:     blobs,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}
}

func (s *fileService) Upload(ctx context.Context, ownerID, filename, contentType string, content []byte) (*domain.File, error) {
	if filename == "" {
		return nil, errors.New("filename is required")
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	file := &domain.File{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(content)),
		OwnerID:     ownerID,
		UploadedAt:  time.Now().UTC(),
	}

	if s.blobs != nil {
		key := s.objectKey(filename)
		if err := s.blobs.Put(ctx, s.bucket, key, contentType, bytes.NewReader(content)); err != nil {
			return nil, fmt.Errorf("store blob: %w", err)
		}
		file.StorageKey = key
	} else {
		file.Content = content
	}

	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *fileService) Download(ctx context.Context, ownerID, filename string) (*domain.File, error) {
	file, err := s.files.Get(ctx, ownerID, filename)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	if file.StorageKey != "" && s.blobs != nil {
		content, err := s.blobs.Get(ctx, s.bucket, file.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("fetch blob: %w", err)
		}
		file.Content = content
	}
	return file, nil
}

func (s *fileService) Delete(ctx context.Context, ownerID, filename string) error {
	file, err := s.files.Get(ctx, ownerID, filename)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if file.StorageKey != "" && s.blobs != nil {
		if err := s.blobs.Delete(ctx, s.bucket, file.StorageKey); err != nil {
			return fmt.Errorf("delete blob: %w", err)
		}
	}

	return s.files.Delete(ctx, ownerID, filename)
}

func (s *fileService) List(ctx context.Context, ownerID string, page, pageSize int) ([]domain.FileInfo, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return s.files.List(ctx, ownerID, page, pageSize)
}

func (s *fileService) Report(ctx context.Context, ownerID string) (*domain.Report, error) {
	report, err := s.files.Report(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if report.ByContentType == nil {
		report.ByContentType = map[string]int64{}
	}
	return report, nil
}

func (s *fileService) objectKey(filename string) string {
	key := fmt.Sprintf("%s/%s", uuid.NewString(), filename)
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + key
	}
	return key
}
