package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"filevault/internal/domain"
	"filevault/internal/repository"
)

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size INTEGER NOT NULL,
	content BLOB,
	owner TEXT NOT NULL,
	storage_key TEXT NOT NULL DEFAULT '',
	upload_date DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_owner_filename ON files(owner, filename);
`

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) repository.FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFilesTable); err != nil {
		return fmt.Errorf("create files table: %w", err)
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO files (id, filename, content_type, size, content, owner, storage_key, upload_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		file.ID,
		file.Filename,
		file.ContentType,
		file.Size,
		file.Content,
		file.OwnerID,
		file.StorageKey,
		file.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *FileRepository) Get(ctx context.Context, ownerID, filename string) (*domain.File, error) {
	// rowid order is insertion order; with duplicate filenames the earliest
	// upload wins.
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, content_type, size, content, owner, storage_key, upload_date
FROM files
WHERE owner = ? AND filename = ?
ORDER BY rowid ASC
LIMIT 1`,
		ownerID,
		filename,
	)

	var file domain.File
	if err := row.Scan(
		&file.ID,
		&file.Filename,
		&file.ContentType,
		&file.Size,
		&file.Content,
		&file.OwnerID,
		&file.StorageKey,
		&file.UploadedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) Delete(ctx context.Context, ownerID, filename string) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM files
WHERE rowid = (
	SELECT rowid FROM files
	WHERE owner = ? AND filename = ?
	ORDER BY rowid ASC
	LIMIT 1
)`,
		ownerID,
		filename,
	)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (r *FileRepository) List(ctx context.Context, ownerID string, page, pageSize int) ([]domain.FileInfo, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM files WHERE owner = ?`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count files: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT filename, content_type, size, upload_date
FROM files
WHERE owner = ?
ORDER BY rowid ASC
LIMIT ? OFFSET ?`,
		ownerID,
		pageSize,
		(page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var infos []domain.FileInfo
	for rows.Next() {
		var info domain.FileInfo
		if err := rows.Scan(&info.Filename, &info.ContentType, &info.Size, &info.UploadedAt); err != nil {
			return nil, 0, fmt.Errorf("scan file info: %w", err)
		}
		infos = append(infos, info)
	}

	return infos, total, rows.Err()
}

func (r *FileRepository) Report(ctx context.Context, ownerID string) (*domain.Report, error) {
	report := &domain.Report{ByContentType: map[string]int64{}}

	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM files`).Scan(&report.TotalFiles); err != nil {
		return nil, fmt.Errorf("count all files: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM files WHERE owner = ?`, ownerID).Scan(&report.OwnerFiles); err != nil {
		return nil, fmt.Errorf("count owner files: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT content_type, COUNT(*)
FROM files
GROUP BY content_type`)
	if err != nil {
		return nil, fmt.Errorf("group by content type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contentType string
		var count int64
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, fmt.Errorf("scan content type count: %w", err)
		}
		report.ByContentType[contentType] = count
	}

	return report, rows.Err()
}
