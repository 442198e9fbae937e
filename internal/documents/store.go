package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

const bucketName = "documents"

// Store is the file-cleanup boundary consumed by appointment cancellation and
// waiting-list removal. Deletion is best-effort: callers log failures per
// file and move on.
type Store interface {
	DeleteIfExists(ctx context.Context, fileURL string) error
}

// GridFSStore keeps uploaded documents in a GridFS bucket next to the rest
// of the scheduler data.
type GridFSStore struct {
	bucket *gridfs.Bucket
	log    *logger.Logger
}

func NewGridFSStore(db *mongo.Database, log *logger.Logger) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket, log: log}, nil
}

// Save writes one uploaded file under a fresh id and returns its metadata.
// The returned FileURL is the download route for the stored file.
func (s *GridFSStore) Save(fileID, originalName, accountID, accountEmail string, source io.Reader) (*model.FileMetadata, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{
		"original_file_name": originalName,
		"account_id":         accountID,
		"account_email":      accountEmail,
	})

	storedName := fileID + path.Ext(originalName)
	if err := s.bucket.UploadFromStreamWithID(fileID, storedName, source, opts); err != nil {
		return nil, fmt.Errorf("failed to upload file %q: %w", originalName, err)
	}

	return &model.FileMetadata{
		OriginalFileName: originalName,
		FileURL:          FileURL(fileID),
		AccountID:        accountID,
		AccountEmail:     accountEmail,
	}, nil
}

// Open streams a stored file; the caller owns closing the stream.
func (s *GridFSStore) Open(fileID string) (*gridfs.DownloadStream, error) {
	return s.bucket.OpenDownloadStream(fileID)
}

// DeleteIfExists removes the file referenced by fileURL. A file that is
// already gone is a success, not an error.
func (s *GridFSStore) DeleteIfExists(ctx context.Context, fileURL string) error {
	fileID := FileIDFromURL(fileURL)
	if fileID == "" {
		return fmt.Errorf("file url %q carries no file id", fileURL)
	}

	if err := s.bucket.Delete(fileID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete file %q: %w", fileID, err)
	}

	s.log.Info("Deleted stored document", "file_id", fileID)
	return nil
}

// FileURL renders the download route for a stored file id.
func FileURL(fileID string) string {
	return "/api/v1/documents/files/" + fileID
}

// FileIDFromURL extracts the trailing id segment of a file URL.
func FileIDFromURL(fileURL string) string {
	trimmed := strings.TrimRight(fileURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
