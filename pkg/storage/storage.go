package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStorage persists an uploaded image and returns a URL the edit model can fetch.
type ImageStorage interface {
	Save(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

type uploader interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

// FalStorage stores files on the fal CDN.
type FalStorage struct {
	client uploader
}

func NewFalStorage(client uploader) *FalStorage {
	return &FalStorage{client: client}
}

func (s *FalStorage) Save(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	return s.client.Upload(ctx, objectName(fileName), contentType, data)
}

// LocalStorage writes files under dir; they are served by the API at publicPrefix.
type LocalStorage struct {
	dir          string
	publicPrefix string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{
		dir:          dir,
		publicPrefix: strings.TrimRight(baseURL, "/") + "/uploads/",
	}, nil
}

func (s *LocalStorage) Save(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	name := objectName(fileName)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.publicPrefix + name, nil
}

// objectName keeps the extension and replaces the rest with a uuid so client
// supplied names never reach the filesystem or CDN path.
func objectName(fileName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(fileName)))
	if len(ext) > 10 {
		ext = ""
	}
	return uuid.NewString() + ext
}
