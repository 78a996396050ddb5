package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"filevault/internal/domain"
	"filevault/internal/repository"
)

const filesCollection = "files"

type fileDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Filename    string             `bson:"filename"`
	ContentType string             `bson:"content_type"`
	Size        int64              `bson:"size"`
	Content     []byte             `bson:"content,omitempty"`
	Owner       string             `bson:"owner"`
	StorageKey  string             `bson:"storage_key,omitempty"`
	UploadDate  time.Time          `bson:"upload_date"`
}

type FileRepository struct {
	col *mongo.Collection
}

func NewFileRepository(db *mongo.Database) repository.FileRepository {
	return &FileRepository{col: db.Collection(filesCollection)}
}

func (r *FileRepository) Init(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "filename", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create files index: %w", err)
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, fileDoc{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		Content:     file.Content,
		Owner:       file.OwnerID,
		StorageKey:  file.StorageKey,
		UploadDate:  file.UploadedAt,
	})
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		file.ID = id.Hex()
	}
	return nil
}

func (r *FileRepository) Get(ctx context.Context, ownerID, filename string) (*domain.File, error) {
	// _id order is insertion order; with duplicate filenames the earliest
	// upload wins.
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})

	var doc fileDoc
	err := r.col.FindOne(ctx, ownerFilter(ownerID, filename), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}

	return &domain.File{
		ID:          doc.ID.Hex(),
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		Content:     doc.Content,
		OwnerID:     doc.Owner,
		StorageKey:  doc.StorageKey,
		UploadedAt:  doc.UploadDate,
	}, nil
}

func (r *FileRepository) Delete(ctx context.Context, ownerID, filename string) error {
	if _, err := r.col.DeleteOne(ctx, ownerFilter(ownerID, filename)); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (r *FileRepository) List(ctx context.Context, ownerID string, page, pageSize int) ([]domain.FileInfo, int64, error) {
	filter := bson.M{"owner": ownerID}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count files: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(page-1) * int64(pageSize)).
		SetLimit(int64(pageSize)).
		SetProjection(bson.M{"content": 0})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list files: %w", err)
	}

	var docs []fileDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode files: %w", err)
	}

	infos := make([]domain.FileInfo, len(docs))
	for i, doc := range docs {
		infos[i] = domain.FileInfo{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Size:        doc.Size,
			UploadedAt:  doc.UploadDate,
		}
	}
	return infos, total, nil
}

func (r *FileRepository) Report(ctx context.Context, ownerID string) (*domain.Report, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$facet", Value: bson.D{
			{Key: "total", Value: bson.A{
				bson.D{{Key: "$count", Value: "n"}},
			}},
			{Key: "by_type", Value: bson.A{
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: "$content_type"},
					{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
				}}},
			}},
			{Key: "owner", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "owner", Value: ownerID}}}},
				bson.D{{Key: "$count", Value: "n"}},
			}},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate report: %w", err)
	}

	var facets []struct {
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
		ByType []struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		} `bson:"by_type"`
		Owner []struct {
			N int64 `bson:"n"`
		} `bson:"owner"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	report := &domain.Report{ByContentType: map[string]int64{}}
	if len(facets) == 0 {
		return report, nil
	}

	if len(facets[0].Total) > 0 {
		report.TotalFiles = facets[0].Total[0].N
	}
	if len(facets[0].Owner) > 0 {
		report.OwnerFiles = facets[0].Owner[0].N
	}
	for _, group := range facets[0].ByType {
		report.ByContentType[group.ID] = group.Count
	}
	return report, nil
}

func ownerFilter(ownerID, filename string) bson.M {
	return bson.M{"owner": ownerID, "filename": filename}
}
