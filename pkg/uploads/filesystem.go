package uploads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileSystemStore implements Store using the local filesystem. Each upload
// gets its own directory holding the content plus a metadata sidecar.
type FileSystemStore struct {
	rootDir string
}

// NewFileSystemStore creates a filesystem-backed store rooted at rootDir.
func NewFileSystemStore(rootDir string) (*FileSystemStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileSystemStore{rootDir: rootDir}, nil
}

// Save implements Store.Save
func (s *FileSystemStore) Save(ctx context.Context, filename, contentType string, content io.Reader) (*Upload, error) {
	up := &Upload{
		ID:          newUploadID(),
		Filename:    filename,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}

	dir := filepath.Join(s.rootDir, up.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "content"))
	if err != nil {
		return nil, fmt.Errorf("failed to create content file: %w", err)
	}
	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write content: %w", err)
	}
	up.Size = n

	meta, err := json.Marshal(up)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "upload.json"), meta, 0644); err != nil {
		return nil, fmt.Errorf("failed to write upload metadata: %w", err)
	}

	return up, nil
}

// Open implements Store.Open
func (s *FileSystemStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.rootDir, id, "content"))
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", id, err)
	}
	return f, nil
}

// Get returns the metadata for a stored upload.
func (s *FileSystemStore) Get(id string) (*Upload, error) {
	data, err := os.ReadFile(filepath.Join(s.rootDir, id, "upload.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload metadata: %w", err)
	}

	var up Upload
	if err := json.Unmarshal(data, &up); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upload metadata: %w", err)
	}
	return &up, nil
}

// Delete implements Store.Delete
func (s *FileSystemStore) Delete(ctx context.Context, id string) error {
	if err := os.RemoveAll(filepath.Join(s.rootDir, id)); err != nil {
		return fmt.Errorf("failed to delete upload %s: %w", id, err)
	}
	return nil
}
