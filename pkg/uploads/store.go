package uploads

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Upload describes a stored asset. ID is the reference the wizard keeps on
// the submission.
type Upload struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the asset storage backend.
type Store interface {
	// Save writes the content and returns the stored upload record.
	Save(ctx context.Context, filename, contentType string, content io.Reader) (*Upload, error)
	// Open returns a reader for a previously stored upload.
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	// Delete removes a stored upload. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

func newUploadID() string {
	return uuid.New().String()
}
